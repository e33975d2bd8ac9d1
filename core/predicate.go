package core

import "fmt"

// Predicate is a boolean filter over artifacts. Variants exist for structural
// matching (Where), correlation keys (KeyFunc, see JoinSpec) and semantic
// similarity (SemanticPredicate); each is independently testable.
//
// Evaluate errors do not fail the publish: the dispatcher drops the artifact
// from the affected subscription with a logged warning and leaves every other
// subscription untouched.
type Predicate interface {
	Evaluate(a *Artifact) (bool, error)
}

// WhereFunc adapts a plain function to the Predicate interface.
type WhereFunc func(a *Artifact) (bool, error)

// Evaluate implements Predicate.
func (f WhereFunc) Evaluate(a *Artifact) (bool, error) { return f(a) }

// Where builds a structural predicate over a typed payload. Artifacts whose
// payload is not of type T fail evaluation with an error.
func Where[T any](fn func(payload T) bool) Predicate {
	return WhereFunc(func(a *Artifact) (bool, error) {
		payload, ok := a.Payload.(T)
		if !ok {
			if p, ok := a.Payload.(*T); ok {
				return fn(*p), nil
			}
			return false, fmt.Errorf("predicate expects payload of type %T, artifact %s carries %T", *new(T), a.ID, a.Payload)
		}
		return fn(payload), nil
	})
}

// KeyFunc extracts a correlation key from an artifact for join matching.
// Returning an error drops the artifact from the subscription's matching.
type KeyFunc func(a *Artifact) (string, error)

// JoinBy builds a typed correlation key function. Artifacts whose payload is
// not of type T produce a key error.
func JoinBy[T any](fn func(payload T) string) KeyFunc {
	return func(a *Artifact) (string, error) {
		payload, ok := a.Payload.(T)
		if !ok {
			if p, ok := a.Payload.(*T); ok {
				return fn(*p), nil
			}
			return "", fmt.Errorf("join key expects payload of type %T, artifact %s carries %T", *new(T), a.ID, a.Payload)
		}
		return fn(payload), nil
	}
}
