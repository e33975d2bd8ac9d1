package core

import "fmt"

// PublishSpec declares one output type of an agent together with its fan-out
// cardinality, an optional post-generation filter and the default visibility
// of produced artifacts.
//
// Fan-out is either fixed (FanOut = N: the invocation must produce exactly N
// instances) or a bounded range (MinFanOut..MaxFanOut: the raw output count
// is clamped to the range, truncating above MaxFanOut and failing below
// MinFanOut). The Filter predicate is applied strictly after the range check,
// never before.
type PublishSpec struct {
	// Type is the produced artifact type name.
	Type string

	// FanOut fixes the produced instance count. Zero means one instance
	// unless MinFanOut/MaxFanOut define a range.
	FanOut int

	// MinFanOut and MaxFanOut bound a random-cardinality fan-out.
	MinFanOut int
	MaxFanOut int

	// Filter optionally prunes produced instances after the range check.
	Filter Predicate

	// Visibility is applied to produced artifacts. Nil means public.
	Visibility Visibility
}

// Bounds returns the effective (min, max) produced instance counts.
func (p *PublishSpec) Bounds() (int, int) {
	if p.FanOut > 0 {
		return p.FanOut, p.FanOut
	}
	if p.MaxFanOut > 0 {
		return p.MinFanOut, p.MaxFanOut
	}
	return 1, 1
}

// Validate checks structural consistency of the publish spec.
func (p *PublishSpec) Validate() error {
	if p.Type == "" {
		return fmt.Errorf("publish spec has no type")
	}
	if p.FanOut < 0 {
		return fmt.Errorf("publish spec for %s has negative fan-out", p.Type)
	}
	if p.FanOut > 0 && (p.MinFanOut != 0 || p.MaxFanOut != 0) {
		return fmt.Errorf("publish spec for %s mixes fixed and ranged fan-out", p.Type)
	}
	if p.MinFanOut < 0 || p.MaxFanOut < 0 {
		return fmt.Errorf("publish spec for %s has a negative fan-out bound", p.Type)
	}
	if p.MaxFanOut > 0 && p.MinFanOut > p.MaxFanOut {
		return fmt.Errorf("publish spec for %s has min fan-out above max", p.Type)
	}
	if p.MinFanOut > 0 && p.MaxFanOut == 0 {
		return fmt.Errorf("publish spec for %s has min fan-out without max", p.Type)
	}
	return nil
}
