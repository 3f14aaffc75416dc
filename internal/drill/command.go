package drill

// Command is a closed set of navigation messages consumed by the Navigator.
// The set is sealed by the unexported marker method; dispatch in
// Navigator.Handle is an exhaustive type switch over exactly these three.
type Command interface {
	isCommand()
}

// DrillInto descends one level into the node with the given ID.
// The node must be present in the current level's data.
type DrillInto struct {
	NodeID string
}

// NavigateToBreadcrumb jumps back to a previously visited ancestor level.
// Path must match a prefix of the current path; the empty path is the
// overview level.
type NavigateToBreadcrumb struct {
	Path []string
}

// Reset returns to the overview level. Equivalent to
// NavigateToBreadcrumb with an empty path.
type Reset struct{}

func (DrillInto) isCommand()            {}
func (NavigateToBreadcrumb) isCommand() {}
func (Reset) isCommand()                {}
