package core

import (
	"fmt"
	"time"
)

// JoinSpec correlates artifacts of different types by a shared key within a
// time window. A join group fires only when every participating type has at
// least one artifact sharing the key inside the window; the earliest-arrived
// artifact per type wins when multiples arrive.
type JoinSpec struct {
	// By extracts the correlation key from each artifact.
	By KeyFunc

	// Within bounds how far apart correlated artifacts may arrive. Pending
	// artifacts older than Within relative to the newest arrival for the
	// same key are expired and never matched.
	Within time.Duration
}

// BatchSpec buffers matched artifacts until a size or time threshold is met.
// Size and Timeout race against the same buffer lifetime: the buffer flushes
// when Size artifacts accumulated OR Timeout elapsed since the first buffered
// item, whichever first. Either field may be zero, meaning only the other
// condition applies.
type BatchSpec struct {
	Size    int
	Timeout time.Duration
}

// Subscription binds one consuming agent to one or more artifact types with
// optional filtering, correlation and batching. Without a Join, an artifact
// of any of the declared types triggers the agent on its own; with a Join the
// declared types are correlated and delivered together.
type Subscription struct {
	// Agent is the name of the consuming agent.
	Agent string

	// Types lists the consumed artifact type names.
	Types []string

	// Where optionally filters artifacts before correlation or batching.
	Where Predicate

	// Join optionally correlates the declared types by key.
	Join *JoinSpec

	// Batch optionally aggregates matched artifacts. Mutually exclusive
	// with Join.
	Batch *BatchSpec
}

// Matches reports whether the subscription consumes the given type.
func (s *Subscription) Matches(typeName string) bool {
	for _, t := range s.Types {
		if t == typeName {
			return true
		}
	}
	return false
}

// Validate checks structural consistency of the subscription.
func (s *Subscription) Validate() error {
	if s.Agent == "" {
		return fmt.Errorf("subscription has no agent")
	}
	if len(s.Types) == 0 {
		return fmt.Errorf("subscription for agent %s consumes no types", s.Agent)
	}
	seen := make(map[string]struct{}, len(s.Types))
	for _, t := range s.Types {
		if t == "" {
			return fmt.Errorf("subscription for agent %s has an empty type", s.Agent)
		}
		if _, dup := seen[t]; dup {
			return fmt.Errorf("subscription for agent %s declares type %s twice", s.Agent, t)
		}
		seen[t] = struct{}{}
	}
	if s.Join != nil && s.Batch != nil {
		return fmt.Errorf("subscription for agent %s combines join and batch", s.Agent)
	}
	if s.Join != nil {
		if s.Join.By == nil {
			return fmt.Errorf("join for agent %s has no key function", s.Agent)
		}
		if s.Join.Within <= 0 {
			return fmt.Errorf("join for agent %s has no time window", s.Agent)
		}
		if len(s.Types) < 2 {
			return fmt.Errorf("join for agent %s needs at least two types", s.Agent)
		}
	}
	if s.Batch != nil && s.Batch.Size <= 0 && s.Batch.Timeout <= 0 {
		return fmt.Errorf("batch for agent %s has neither size nor timeout", s.Agent)
	}
	return nil
}
