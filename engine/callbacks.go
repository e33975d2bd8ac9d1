package engine

import (
	"context"

	"github.com/whiteducksoftware/flock-go/core"
)

// HookType defines the lifecycle points where callbacks can be executed.
//
// Callbacks hook into the dispatch pipeline without modifying core logic.
// They are executed synchronously and can influence execution flow by
// returning errors: an OnPublish error aborts the publish before the artifact
// is stored, a BeforeInvoke error aborts the invocation.
type HookType string

const (
	// HookOnPublish is triggered before an artifact is appended to the
	// store. Use for validation, auditing or instrumentation.
	HookOnPublish HookType = "on_publish"

	// HookBeforeInvoke is triggered before an agent executes a match
	// group. Use for setup, rate limiting or instrumentation.
	HookBeforeInvoke HookType = "before_invoke"

	// HookAfterInvoke is triggered after a successful invocation, once its
	// outputs have been published. Use for metrics or post-processing.
	HookAfterInvoke HookType = "after_invoke"

	// HookOnError is triggered when an invocation fails. Use for
	// alerting or recovery mechanisms.
	HookOnError HookType = "on_error"
)

// HookContext carries the information available at a lifecycle point. Fields
// are populated per hook type: Artifact for OnPublish, Group for the
// invocation hooks, Err for OnError.
type HookContext struct {
	Agent    string
	Artifact *core.Artifact
	Group    *core.MatchGroup
	Err      error
	Metadata map[string]any
}

// Callback defines the interface for dispatch lifecycle hooks.
//
// Implementations should be fast (callbacks run synchronously on the dispatch
// or invocation path), safe (no panics) and stateless between invocations.
type Callback interface {
	// Type returns the hook this implementation handles.
	Type() HookType

	// Execute performs the callback logic. Returning an error terminates
	// the associated operation.
	Execute(ctx context.Context, hc *HookContext) error
}

// FunctionCallback wraps a function as a callback implementation.
type FunctionCallback struct {
	hookType HookType
	fn       func(ctx context.Context, hc *HookContext) error
}

// NewFunctionCallback creates a function-based callback for the given hook.
func NewFunctionCallback(hookType HookType, fn func(ctx context.Context, hc *HookContext) error) *FunctionCallback {
	return &FunctionCallback{hookType: hookType, fn: fn}
}

// Type returns the hook this function handles.
func (c *FunctionCallback) Type() HookType { return c.hookType }

// Execute calls the wrapped function.
func (c *FunctionCallback) Execute(ctx context.Context, hc *HookContext) error {
	return c.fn(ctx, hc)
}

// CallbackManager routes hooks to registered callbacks in registration
// order. Registration is not thread-safe; complete it before publishing.
// Execution is safe for concurrent use once registration is done.
type CallbackManager struct {
	callbacks map[HookType][]Callback
}

// NewCallbackManager creates an empty callback manager.
func NewCallbackManager() *CallbackManager {
	return &CallbackManager{callbacks: make(map[HookType][]Callback)}
}

// Register adds a callback for its hook type.
func (cm *CallbackManager) Register(cb Callback) {
	cm.callbacks[cb.Type()] = append(cm.callbacks[cb.Type()], cb)
}

// Execute runs all callbacks registered for the hook in order, stopping at
// the first error.
func (cm *CallbackManager) Execute(ctx context.Context, hookType HookType, hc *HookContext) error {
	for _, cb := range cm.callbacks[hookType] {
		if err := cb.Execute(ctx, hc); err != nil {
			return err
		}
	}
	return nil
}
