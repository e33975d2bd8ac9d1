package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an artifact for the given id does not
	// exist in the underlying store.
	ErrNotFound = errors.New("artifact not found")

	// ErrTypeNotRegistered is returned when publishing or decoding a type
	// unknown to the registry.
	ErrTypeNotRegistered = errors.New("artifact type not registered")
)

// ValidationError reports a published or produced payload failing its type's
// structural validation. It is surfaced immediately to the caller and never
// retried or coerced.
type ValidationError struct {
	Type   string
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("validation failed for type %s: %s", e.Type, e.Err)
	}
	return fmt.Sprintf("validation failed for type %s: %s", e.Type, e.Reason)
}

// Unwrap returns the wrapped cause, if any.
func (e *ValidationError) Unwrap() error { return e.Err }

// PredicateError reports a where or join key function failing for one
// artifact. The artifact is dropped from the affected subscription only.
type PredicateError struct {
	Agent      string
	ArtifactID string
	Err        error
}

// Error implements the error interface.
func (e *PredicateError) Error() string {
	return fmt.Sprintf("predicate failed for agent %s on artifact %s: %s", e.Agent, e.ArtifactID, e.Err)
}

// Unwrap returns the wrapped cause.
func (e *PredicateError) Unwrap() error { return e.Err }

// InvocationError reports a failed agent invocation. The failure is scoped to
// the invocation: the store and other pending matches are unaffected, and no
// output of the failed invocation is published.
type InvocationError struct {
	Agent   string
	GroupID string
	Err     error
}

// Error implements the error interface.
func (e *InvocationError) Error() string {
	return fmt.Sprintf("invocation failed for agent %s (group %s): %s", e.Agent, e.GroupID, e.Err)
}

// Unwrap returns the wrapped cause.
func (e *InvocationError) Unwrap() error { return e.Err }
