// Package drill implements the hierarchical drill-down state machine.
//
// The navigator tracks a position in a tree of aggregated data: the current
// level, the path of node names taken to get there, and a breadcrumb trail
// for returning to any ancestor. It is driven entirely by explicit command
// messages (DrillInto, NavigateToBreadcrumb, Reset) so it can be tested
// without any rendering harness.
//
// ARCHITECTURE:
//
// Single-Writer State:
// All state mutation happens through Navigator.Handle. The navigator itself
// holds no locks; the owning controller serializes access. This keeps
// transitions deterministic and trivially replayable.
//
// Transition rules:
//  1. Invalid transitions are silent no-ops. Drilling past the deepest
//     configured level, drilling while non-interactive, or navigating to a
//     breadcrumb that was never visited must leave state untouched and must
//     not return an error.
//  2. Every successful transition preserves the structural invariant
//     level == len(path) == len(breadcrumbs)-1, with breadcrumbs[0] always
//     the immutable {Overview, []} root crumb.
//  3. Data for deeper levels comes from a pluggable Provider keyed by
//     (path, level name). The machine never fabricates child data.
package drill
