package drill

import (
	"context"
	"fmt"
)

// OverviewName is the fixed name of the root breadcrumb.
const OverviewName = "Overview"

// Provider supplies the node set for a drill position. Implementations may
// run a live aggregation query or derive children from an in-memory tree;
// either way results are keyed by the navigation path and the level name.
//
// NodesFor must be deterministic for a given (path, level) so that
// re-navigating to a breadcrumb reproduces the data previously shown there.
type Provider interface {
	NodesFor(ctx context.Context, path []string, level string) ([]Node, error)
}

// Crumb is one entry in the breadcrumb trail. Path is the full navigation
// path up to and including this crumb (empty for the overview).
type Crumb struct {
	Name string   `json:"name"`
	Path []string `json:"path"`
}

// State is the navigator's complete position. Values returned by
// Navigator.State are defensive copies; mutating them has no effect on the
// machine.
type State struct {
	Level       int
	Path        []string
	Data        []Node
	Breadcrumbs []Crumb
}

// Navigator is the drill-down state machine.
//
// INVARIANTS (hold after every Handle call, successful or not):
//   - Level == len(Path) == len(Breadcrumbs)-1
//   - Breadcrumbs[0] == {OverviewName, []}
//   - 0 <= Level <= len(levels)-1
//
// Not safe for concurrent use; the owning controller serializes access.
type Navigator struct {
	levels      []string // level names in drill order; levels[0] is the overview
	interactive bool
	provider    Provider

	root  []Node
	state State
}

// NewNavigator creates a navigator over the given root dataset.
//
// levels names each drill depth in order; a nil or empty slice yields a
// single non-drillable overview level. provider is consulted for every
// level below the overview; a nil provider makes those levels unreachable
// (drilling becomes a no-op).
func NewNavigator(levels []string, interactive bool, provider Provider, root []Node) *Navigator {
	if len(levels) == 0 {
		levels = []string{OverviewName}
	}
	n := &Navigator{
		levels:      append([]string(nil), levels...),
		interactive: interactive,
		provider:    provider,
	}
	n.SetRoot(root)
	return n
}

// SetRoot replaces the root dataset and resets navigation to the overview.
// Called when the upstream dataset changes wholesale (e.g. new fetch).
func (n *Navigator) SetRoot(root []Node) {
	n.root = CloneNodes(root)
	n.state = State{
		Level:       0,
		Path:        []string{},
		Data:        CloneNodes(root),
		Breadcrumbs: []Crumb{{Name: OverviewName, Path: []string{}}},
	}
}

// State returns a defensive copy of the current position.
func (n *Navigator) State() State {
	return copyState(n.state)
}

// MaxLevel returns the deepest reachable level index.
func (n *Navigator) MaxLevel() int {
	return len(n.levels) - 1
}

// LevelName returns the configured name for a level index, or "" if the
// index is out of range.
func (n *Navigator) LevelName(level int) string {
	if level < 0 || level >= len(n.levels) {
		return ""
	}
	return n.levels[level]
}

// Handle dispatches a navigation command. Invalid transitions are silent
// no-ops and return nil; the only errors surfaced are provider failures,
// which leave state unchanged.
func (n *Navigator) Handle(ctx context.Context, cmd Command) error {
	switch c := cmd.(type) {
	case DrillInto:
		return n.drillInto(ctx, c.NodeID)
	case NavigateToBreadcrumb:
		return n.navigateTo(ctx, c.Path)
	case Reset:
		return n.navigateTo(ctx, nil)
	default:
		// Command is a sealed interface; this is unreachable unless a new
		// command type is added without a Handle arm.
		return fmt.Errorf("drill: unhandled command type %T", cmd)
	}
}

func (n *Navigator) drillInto(ctx context.Context, nodeID string) error {
	if !n.interactive || n.state.Level >= n.MaxLevel() {
		return nil
	}
	// Without a provider, every level below the overview is unreachable.
	if n.provider == nil {
		return nil
	}

	node, ok := n.findCurrent(nodeID)
	if !ok {
		return nil
	}

	newLevel := n.state.Level + 1
	newPath := append(append([]string(nil), n.state.Path...), node.Name)

	data, err := n.provider.NodesFor(ctx, newPath, n.levels[newLevel])
	if err != nil {
		return fmt.Errorf("drill into %q: %w", node.Name, err)
	}

	n.state.Level = newLevel
	n.state.Path = newPath
	n.state.Data = data
	n.state.Breadcrumbs = append(n.state.Breadcrumbs, Crumb{
		Name: node.Name,
		Path: append([]string(nil), newPath...),
	})
	return nil
}

func (n *Navigator) navigateTo(ctx context.Context, target []string) error {
	level := len(target)
	if level > n.state.Level || !isPathPrefix(target, n.state.Path) {
		return nil
	}

	var data []Node
	if level == 0 {
		data = CloneNodes(n.root)
	} else {
		var err error
		data, err = n.provider.NodesFor(ctx, target, n.levels[level])
		if err != nil {
			return fmt.Errorf("navigate to %v: %w", target, err)
		}
	}

	n.state.Level = level
	n.state.Path = append([]string{}, target...)
	n.state.Data = data
	n.state.Breadcrumbs = n.state.Breadcrumbs[:level+1]
	return nil
}

// findCurrent looks up a node by ID in the current level's data.
func (n *Navigator) findCurrent(nodeID string) (Node, bool) {
	for _, node := range n.state.Data {
		if node.ID == nodeID {
			return node, true
		}
	}
	return Node{}, false
}

func isPathPrefix(prefix, path []string) bool {
	if len(prefix) > len(path) {
		return false
	}
	for i := range prefix {
		if prefix[i] != path[i] {
			return false
		}
	}
	return true
}

func copyState(s State) State {
	out := State{
		Level: s.Level,
		Path:  append([]string{}, s.Path...),
		Data:  CloneNodes(s.Data),
	}
	out.Breadcrumbs = make([]Crumb, len(s.Breadcrumbs))
	for i, c := range s.Breadcrumbs {
		out.Breadcrumbs[i] = Crumb{Name: c.Name, Path: append([]string{}, c.Path...)}
	}
	return out
}
