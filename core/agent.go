package core

import "context"

// Agent is a named unit that declares the types it consumes (through
// subscriptions) and the types it publishes (through publish specs), and
// executes once per satisfied match group.
//
// Implementations must:
//   - Respect context cancellation; the engine discards all outputs of a
//     cancelled invocation (all-or-nothing per invocation)
//   - Return produced payloads keyed by output type name; the engine applies
//     fan-out clamping and filter predicates before publishing
//   - Be safe for concurrent Execute calls, since independent match groups
//     may be invoked in parallel
type Agent interface {
	Name() string
	Description() string
	Subscriptions() []*Subscription
	Outputs() []*PublishSpec
	Execute(ctx context.Context, group *MatchGroup) (map[string][]any, error)
}
