// Package trace contains concrete implementations of core.TraceStore, the
// record of per-artifact dispatch decisions. The trace is what makes "seen
// but filtered" observable: every artifact a subscription saw but did not
// receive is recorded here with its outcome.
package trace
