// Package flock provides a high-level façade over the blackboard engine and
// its service abstractions (artifact store, type registry, dispatch trace and
// logging) enabling rapid construction of artifact-driven agent systems. Most
// applications interact with this package by:
//  1. Creating a Flock via New() (optionally overriding default in-memory services)
//  2. Registering artifact types (RegisterType) and agents (Agent builder)
//  3. Publishing artifacts and waiting for the cascade with RunUntilIdle
//
// The façade delegates orchestration to engine.Engine while keeping setup and
// usage ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply a durable store and a
// structured logger.
package flock

import (
	"context"
	"fmt"

	"github.com/whiteducksoftware/flock-go/agent"
	"github.com/whiteducksoftware/flock-go/config"
	"github.com/whiteducksoftware/flock-go/core"
	"github.com/whiteducksoftware/flock-go/engine"
	"github.com/whiteducksoftware/flock-go/logging"
	"github.com/whiteducksoftware/flock-go/metrics"
	"github.com/whiteducksoftware/flock-go/registry"
	"github.com/whiteducksoftware/flock-go/store"
	"github.com/whiteducksoftware/flock-go/trace"
)

// Options configures the Flock instance.
type Options struct {
	// EngineConfig contains operational parameters for the dispatcher.
	EngineConfig engine.Config

	// Stores (defaults to in-memory implementations if not provided)
	Store core.ArtifactStore
	Trace core.TraceStore

	// Registry maps artifact type names to Go types. Defaults to a fresh
	// empty registry.
	Registry *registry.Registry

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger

	// Metrics (defaults to Noop recorder if nil)
	Metrics metrics.Recorder
}

// Flock is the high-level façade aggregating the underlying engine and services.
type Flock struct {
	opts     Options
	engine   *engine.Engine
	registry *registry.Registry
}

// New creates a new Flock instance with optional overrides. Any unset service
// is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *Flock {
	opts := Options{
		EngineConfig: engine.DefaultConfig,
		Store:        store.NewInMemoryStore(),
		Trace:        trace.NewInMemoryStore(),
		Registry:     registry.New(),
		Logger:       logging.NoOpLogger{},
		Metrics:      metrics.NoopRecorder{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	e := engine.New(func(o *engine.Options) {
		o.Config = opts.EngineConfig
		o.Store = opts.Store
		o.Trace = opts.Trace
		o.Registry = opts.Registry
		o.Logger = opts.Logger
		o.Metrics = opts.Metrics
	})

	return &Flock{opts: opts, engine: e, registry: opts.Registry}
}

// NewFromConfig creates a Flock instance from a loaded configuration,
// constructing the store backend and logger it names.
func NewFromConfig(cfg config.Config, optFns ...func(o *Options)) (*Flock, error) {
	reg := registry.New()

	var artifacts core.ArtifactStore
	switch cfg.Store.Driver {
	case "", "memory":
		artifacts = store.NewInMemoryStore()
	case "sqlite":
		s, err := store.NewSQLiteStore(cfg.Store.DSN, reg)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		artifacts = s
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	logger := logging.NewLogger(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format, nil)

	f := New(append([]func(o *Options){func(o *Options) {
		o.EngineConfig = engine.Config{
			MaxConcurrentInvocations: cfg.Engine.MaxConcurrentInvocations,
			StrictIdleWait:           cfg.Engine.StrictIdleWait,
		}
		o.Store = artifacts
		o.Registry = reg
		o.Logger = logger
	}}, optFns...)...)
	return f, nil
}

// RegisterType adds an artifact type under the given name. The prototype
// value determines the Go type; validate may be nil.
func (f *Flock) RegisterType(name string, prototype any, validate func(payload any) error) error {
	return f.registry.Register(name, prototype, validate)
}

// MustRegisterType is RegisterType that panics on error.
func (f *Flock) MustRegisterType(name string, prototype any, validate func(payload any) error) {
	f.registry.MustRegister(name, prototype, validate)
}

// Agent starts a fluent agent definition. Build() registers the finished
// agent with the engine.
func (f *Flock) Agent(name string) *agent.Builder {
	return agent.NewBuilder(name, f.registry, f.engine.Register)
}

// RegisterAgent adds a pre-built agent to the engine.
func (f *Flock) RegisterAgent(a core.Agent) error { return f.engine.Register(a) }

// RegisterCallback adds a lifecycle callback. Register before publishing.
func (f *Flock) RegisterCallback(cb engine.Callback) { f.engine.RegisterCallback(cb) }

// PublishOption refines one publish call.
type PublishOption func(a *core.Artifact)

// WithVisibility publishes the artifact with restricted visibility.
func WithVisibility(v core.Visibility) PublishOption {
	return func(a *core.Artifact) { a.Visibility = v }
}

// Publish wraps a registered payload in a fresh artifact and dispatches it.
// The payload's Go type resolves the artifact type through the registry.
func (f *Flock) Publish(ctx context.Context, payload any, opts ...PublishOption) (*core.Artifact, error) {
	typeName, ok := f.registry.TypeOf(payload)
	if !ok {
		return nil, fmt.Errorf("%w: %T", core.ErrTypeNotRegistered, payload)
	}
	a := core.NewArtifact(typeName, payload)
	for _, opt := range opts {
		opt(a)
	}
	if err := f.engine.Publish(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// PublishArtifact dispatches a pre-built artifact.
func (f *Flock) PublishArtifact(ctx context.Context, a *core.Artifact) error {
	return f.engine.Publish(ctx, a)
}

// RunUntilIdle blocks until all triggered work has settled or the context is
// done.
func (f *Flock) RunUntilIdle(ctx context.Context) error {
	return f.engine.RunUntilIdle(ctx)
}

// FlushOpenBatches force-flushes partial batch buffers.
func (f *Flock) FlushOpenBatches() { f.engine.FlushOpenBatches() }

// Store returns the artifact store.
func (f *Flock) Store() core.ArtifactStore { return f.engine.Store() }

// Trace returns the dispatch trace store.
func (f *Flock) Trace() core.TraceStore { return f.engine.Trace() }

// Registry returns the artifact type registry.
func (f *Flock) Registry() *registry.Registry { return f.registry }

// Shutdown cancels in-flight invocations and waits for the engine to settle.
func (f *Flock) Shutdown(ctx context.Context) error { return f.engine.Shutdown(ctx) }
