package core

import (
	"time"

	"github.com/google/uuid"
)

// Artifact is an immutable, typed record published to the blackboard. After
// publish it must be treated as read-only; the engine and stores never mutate
// it and hand out shallow copies to callers.
//
// Producer is the name of the agent whose invocation produced the artifact,
// or empty for artifacts published from outside the engine.
type Artifact struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Payload    any        `json:"payload"`
	Producer   string     `json:"producer,omitempty"`
	Visibility Visibility `json:"visibility"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NewArtifact creates a public artifact of the given type with a fresh ID and
// a UTC creation timestamp.
func NewArtifact(typeName string, payload any) *Artifact {
	return &Artifact{
		ID:         NewID(),
		Type:       typeName,
		Payload:    payload,
		Visibility: PublicVisibility{},
		CreatedAt:  time.Now().UTC(),
	}
}

// Clone returns a shallow copy of the artifact. The payload is shared; it is
// immutable by contract.
func (a *Artifact) Clone() *Artifact {
	cp := *a
	return &cp
}

// NewID generates a new unique identifier for artifacts, match groups and
// invocations.
func NewID() string { return uuid.NewString() }
