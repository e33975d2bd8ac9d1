package agent

import (
	"context"
	"runtime/debug"
)

// FunctionExecutor runs a plain Go function as an agent body. Panics are
// recovered and surfaced as invocation errors so a misbehaving agent never
// takes the dispatcher down.
type FunctionExecutor struct {
	fn func(ctx context.Context, inv *Invocation) (map[string][]any, error)
}

var _ Executor = (*FunctionExecutor)(nil)

// NewFunctionExecutor wraps a function as an executor.
func NewFunctionExecutor(fn func(ctx context.Context, inv *Invocation) (map[string][]any, error)) *FunctionExecutor {
	return &FunctionExecutor{fn: fn}
}

// Execute runs the wrapped function with panic recovery.
func (e *FunctionExecutor) Execute(ctx context.Context, inv *Invocation) (out map[string][]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &panicErr{val: r, stack: debug.Stack()}
		}
	}()
	return e.fn(ctx, inv)
}

type panicErr struct {
	val   any
	stack []byte
}

func (p *panicErr) Error() string { return "panic recovered in agent function" }
