// Package engine implements the blackboard dispatcher: it matches newly
// published artifacts against agent subscriptions, maintains join correlation
// tables and batch buffers, invokes agents exactly once per satisfied match
// group, expands invocation outputs according to fan-out rules, and tracks
// idleness so callers can wait for a run to settle.
//
// Concurrency model: dispatch is serialized under a single mutex, so match
// and buffer state never sees concurrent publishes for the same key. Agent
// invocations run in their own goroutines, bounded by a weighted semaphore;
// independent subscriptions therefore execute in parallel while dependent
// chains serialize naturally by data availability. Within one type's delivery
// to one subscription, artifacts are grouped in publish order; across
// unrelated subscriptions no ordering is guaranteed.
package engine
