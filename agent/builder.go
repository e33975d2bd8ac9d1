package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/whiteducksoftware/flock-go/core"
	"github.com/whiteducksoftware/flock-go/registry"
)

// ConsumeOption refines one consume declaration.
type ConsumeOption func(s *core.Subscription)

// WithWhere filters consumed artifacts before correlation or batching.
func WithWhere(p core.Predicate) ConsumeOption {
	return func(s *core.Subscription) { s.Where = p }
}

// WithJoin correlates the declared types by key within a time window.
func WithJoin(by core.KeyFunc, within time.Duration) ConsumeOption {
	return func(s *core.Subscription) { s.Join = &core.JoinSpec{By: by, Within: within} }
}

// WithBatch buffers matched artifacts until size or timeout. A zero value
// disables the respective condition.
func WithBatch(size int, timeout time.Duration) ConsumeOption {
	return func(s *core.Subscription) { s.Batch = &core.BatchSpec{Size: size, Timeout: timeout} }
}

// PublishOption refines one publish declaration.
type PublishOption func(p *core.PublishSpec)

// WithFanOut fixes the produced instance count to exactly n.
func WithFanOut(n int) PublishOption {
	return func(p *core.PublishSpec) { p.FanOut = n }
}

// WithFanOutRange bounds the produced instance count to min..max.
func WithFanOutRange(min, max int) PublishOption {
	return func(p *core.PublishSpec) { p.MinFanOut, p.MaxFanOut = min, max }
}

// WithFilter prunes produced instances after the fan-out range check.
func WithFilter(pred core.Predicate) PublishOption {
	return func(p *core.PublishSpec) { p.Filter = pred }
}

// WithVisibility sets the visibility of produced artifacts.
func WithVisibility(v core.Visibility) PublishOption {
	return func(p *core.PublishSpec) { p.Visibility = v }
}

// Builder assembles an agent definition fluently. The first error sticks and
// surfaces from Build; intermediate calls after an error are no-ops.
//
// Consumed and published types are given either as registered type names or
// as prototype values whose Go type is looked up in the registry.
type Builder struct {
	name     string
	desc     string
	reg      *registry.Registry
	register func(core.Agent) error

	subs     []*core.Subscription
	outputs  []*core.PublishSpec
	executor Executor
	err      error
}

// NewBuilder starts a definition for the named agent. register is called with
// the finished definition from Build and may be nil.
func NewBuilder(name string, reg *registry.Registry, register func(core.Agent) error) *Builder {
	b := &Builder{name: name, reg: reg, register: register}
	if name == "" {
		b.err = fmt.Errorf("agent name must not be empty")
	}
	return b
}

// Description sets the human-readable agent description.
func (b *Builder) Description(desc string) *Builder {
	b.desc = desc
	return b
}

// Consumes declares a subscription. Arguments are consumed type names or
// prototypes, mixed freely with ConsumeOption values.
func (b *Builder) Consumes(args ...any) *Builder {
	if b.err != nil {
		return b
	}
	sub := &core.Subscription{Agent: b.name}
	for _, arg := range args {
		if opt, ok := arg.(ConsumeOption); ok {
			opt(sub)
			continue
		}
		name, err := b.resolveType(arg)
		if err != nil {
			b.err = err
			return b
		}
		sub.Types = append(sub.Types, name)
	}
	if err := sub.Validate(); err != nil {
		b.err = err
		return b
	}
	b.subs = append(b.subs, sub)
	return b
}

// Publishes declares an output type with optional fan-out, filter and
// visibility settings.
func (b *Builder) Publishes(typeRef any, opts ...PublishOption) *Builder {
	if b.err != nil {
		return b
	}
	name, err := b.resolveType(typeRef)
	if err != nil {
		b.err = err
		return b
	}
	spec := &core.PublishSpec{Type: name}
	for _, opt := range opts {
		opt(spec)
	}
	if err := spec.Validate(); err != nil {
		b.err = err
		return b
	}
	b.outputs = append(b.outputs, spec)
	return b
}

// WithExecutor sets the agent's executor.
func (b *Builder) WithExecutor(ex Executor) *Builder {
	b.executor = ex
	return b
}

// WithFunction sets a plain Go function as the agent's executor.
func (b *Builder) WithFunction(fn func(ctx context.Context, inv *Invocation) (map[string][]any, error)) *Builder {
	b.executor = NewFunctionExecutor(fn)
	return b
}

// Build finishes the definition and hands it to the registration callback.
func (b *Builder) Build() (*Definition, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.subs) == 0 {
		return nil, fmt.Errorf("agent %s consumes nothing", b.name)
	}
	if b.executor == nil {
		return nil, fmt.Errorf("agent %s has no executor", b.name)
	}
	d := &Definition{
		name:        b.name,
		description: b.desc,
		subs:        b.subs,
		outputs:     b.outputs,
		executor:    b.executor,
	}
	if b.register != nil {
		if err := b.register(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// MustBuild is Build that panics on error. Intended for program
// initialization.
func (b *Builder) MustBuild() *Definition {
	d, err := b.Build()
	if err != nil {
		panic(err)
	}
	return d
}

func (b *Builder) resolveType(ref any) (string, error) {
	if name, ok := ref.(string); ok {
		if name == "" {
			return "", fmt.Errorf("agent %s references an empty type name", b.name)
		}
		return name, nil
	}
	if b.reg != nil {
		if name, ok := b.reg.TypeOf(ref); ok {
			return name, nil
		}
	}
	return "", fmt.Errorf("agent %s references unregistered type %T", b.name, ref)
}
