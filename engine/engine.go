package engine

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/whiteducksoftware/flock-go/core"
	"github.com/whiteducksoftware/flock-go/logging"
	"github.com/whiteducksoftware/flock-go/metrics"
	"github.com/whiteducksoftware/flock-go/registry"
	"github.com/whiteducksoftware/flock-go/store"
	"github.com/whiteducksoftware/flock-go/trace"
)

// Config defines tuning parameters for the engine's operational behavior.
type Config struct {
	// MaxConcurrentInvocations limits the number of agent invocations that
	// can execute simultaneously. This prevents resource exhaustion and
	// provides backpressure. Set to 0 for unlimited (not recommended).
	MaxConcurrentInvocations int

	// StrictIdleWait makes RunUntilIdle return the context error when its
	// deadline fires before the engine settles. The default treats the
	// deadline as advisory and returns nil.
	StrictIdleWait bool
}

// DefaultConfig provides production-ready default configuration values.
var DefaultConfig = Config{
	MaxConcurrentInvocations: 10,
}

// Options configures an Engine instance using the functional options
// pattern. All services have in-memory defaults suitable for development and
// testing; production deployments typically supply a durable store and a
// structured logger.
type Options struct {
	// Config contains operational parameters for the engine behavior.
	// Defaults to DefaultConfig if not specified.
	Config Config

	// Store holds published artifacts. Defaults to an in-memory store.
	Store core.ArtifactStore

	// Registry maps artifact type names to Go types and validation.
	// Defaults to an empty registry.
	Registry *registry.Registry

	// Trace records per-artifact dispatch decisions. Defaults to an
	// in-memory store.
	Trace core.TraceStore

	// Logger provides structured logging. Defaults to NoOp.
	Logger logging.Logger

	// Metrics receives engine observations. Defaults to Noop.
	Metrics metrics.Recorder
}

// scheduled pairs a satisfied match group with its owning agent, queued for
// invocation after the dispatch lock is released.
type scheduled struct {
	agent core.Agent
	group *core.MatchGroup
}

// Engine is the blackboard dispatcher. It owns the subscription registry,
// the join correlation tables and the batch buffers, and coordinates agent
// invocations and fan-out publishing.
//
// All dispatch state is guarded by a single mutex; invocations run outside
// the lock in their own goroutines.
type Engine struct {
	store    core.ArtifactStore
	registry *registry.Registry
	traces   core.TraceStore
	logger   logging.Logger
	metrics  metrics.Recorder
	config   Config

	callbacks *CallbackManager

	mu      sync.Mutex
	agents  map[string]core.Agent
	order   []string // agent names in registration order
	joins   map[*core.Subscription]*joinTable
	batches map[*core.Subscription]*batchBuffer

	sem  *semaphore.Weighted
	idle *idleTracker

	baseCtx context.Context
	cancel  context.CancelFunc
}

// New creates an Engine with in-memory defaults and optional overrides.
func New(optFns ...func(o *Options)) *Engine {
	opts := Options{
		Config:   DefaultConfig,
		Store:    store.NewInMemoryStore(),
		Registry: registry.New(),
		Trace:    trace.NewInMemoryStore(),
		Logger:   logging.NoOpLogger{},
		Metrics:  metrics.NoopRecorder{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	baseCtx, cancel := context.WithCancel(context.Background())

	e := &Engine{
		store:     opts.Store,
		registry:  opts.Registry,
		traces:    opts.Trace,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		config:    opts.Config,
		callbacks: NewCallbackManager(),
		agents:    make(map[string]core.Agent),
		joins:     make(map[*core.Subscription]*joinTable),
		batches:   make(map[*core.Subscription]*batchBuffer),
		idle:      &idleTracker{},
		baseCtx:   baseCtx,
		cancel:    cancel,
	}
	if opts.Config.MaxConcurrentInvocations > 0 {
		e.sem = semaphore.NewWeighted(int64(opts.Config.MaxConcurrentInvocations))
	}
	return e
}

// Register makes an agent's subscriptions live. Registering a name twice
// replaces the previous agent. Complete registration before publishing;
// replacing agents mid-run leaves their pending join and batch state behind.
func (e *Engine) Register(a core.Agent) error {
	if a.Name() == "" {
		return fmt.Errorf("agent has no name")
	}
	for _, sub := range a.Subscriptions() {
		if err := sub.Validate(); err != nil {
			return fmt.Errorf("invalid subscription: %w", err)
		}
	}
	for _, spec := range a.Outputs() {
		if err := spec.Validate(); err != nil {
			return fmt.Errorf("invalid publish spec for agent %s: %w", a.Name(), err)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.agents[a.Name()]; !exists {
		e.order = append(e.order, a.Name())
	}
	e.agents[a.Name()] = a
	for _, sub := range a.Subscriptions() {
		if sub.Join != nil {
			e.joins[sub] = newJoinTable()
		}
		if sub.Batch != nil {
			e.batches[sub] = &batchBuffer{}
		}
	}
	return nil
}

// GetAgent returns a registered agent by name.
func (e *Engine) GetAgent(name string) (core.Agent, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.agents[name]
	return a, ok
}

// RegisterCallback adds a lifecycle callback. Not thread-safe; register
// before publishing.
func (e *Engine) RegisterCallback(cb Callback) { e.callbacks.Register(cb) }

// Publish validates and stores an artifact, then dispatches it against all
// matching subscriptions. Validation failures surface immediately as
// *core.ValidationError (or core.ErrTypeNotRegistered) and nothing is
// stored. Artifacts published by agent invocations re-enter dispatch here.
func (e *Engine) Publish(ctx context.Context, a *core.Artifact) error {
	if a == nil {
		return fmt.Errorf("artifact must not be nil")
	}
	if a.ID == "" || a.Type == "" {
		return fmt.Errorf("artifact must have id and type")
	}
	if err := e.registry.Validate(a.Type, a.Payload); err != nil {
		return err
	}
	if a.Visibility == nil {
		a.Visibility = core.PublicVisibility{}
	}

	if err := e.callbacks.Execute(ctx, HookOnPublish, &HookContext{Artifact: a}); err != nil {
		return fmt.Errorf("publish rejected by callback: %w", err)
	}

	if err := e.store.Append(a); err != nil {
		return fmt.Errorf("failed to store artifact: %w", err)
	}
	e.metrics.ArtifactPublished(a.Type)
	e.logger.Debug("engine.publish", "artifact_id", a.ID, "type", a.Type, "producer", a.Producer)

	e.dispatch(a)
	return nil
}

// dispatch matches one stored artifact against every live subscription and
// schedules the resulting invocations. Runs the matching under the dispatch
// lock; invocations start after the lock is released.
func (e *Engine) dispatch(a *core.Artifact) {
	e.mu.Lock()
	var queue []scheduled
	for _, name := range e.order {
		ag := e.agents[name]
		// Agents never consume their own publishes; trivial self-loops
		// would otherwise never settle.
		if ag.Name() == a.Producer {
			continue
		}
		for _, sub := range ag.Subscriptions() {
			if !sub.Matches(a.Type) {
				continue
			}
			if groups := e.matchLocked(ag, sub, a); len(groups) > 0 {
				for _, g := range groups {
					queue = append(queue, scheduled{agent: ag, group: g})
				}
			}
		}
	}
	e.idle.Add(len(queue))
	e.mu.Unlock()

	for _, s := range queue {
		e.metrics.GroupMatched(s.group.Agent)
		go e.invoke(s.agent, s.group)
	}
}

// matchLocked evaluates one artifact against one subscription. Returns the
// match groups ready for invocation (usually zero or one). Caller holds the
// dispatch lock.
func (e *Engine) matchLocked(ag core.Agent, sub *core.Subscription, a *core.Artifact) []*core.MatchGroup {
	if !a.Visibility.VisibleTo(sub.Agent) {
		e.record(a, sub.Agent, core.OutcomeVisibilityDenied, "")
		e.metrics.ArtifactFiltered(sub.Agent, a.Type)
		return nil
	}

	if sub.Where != nil {
		ok, err := sub.Where.Evaluate(a)
		if err != nil {
			perr := &core.PredicateError{Agent: sub.Agent, ArtifactID: a.ID, Err: err}
			e.logger.Warn("engine.predicate.error", "agent", sub.Agent, "artifact_id", a.ID, "error", perr.Error())
			e.record(a, sub.Agent, core.OutcomePredicateError, err.Error())
			e.metrics.ArtifactFiltered(sub.Agent, a.Type)
			return nil
		}
		if !ok {
			e.record(a, sub.Agent, core.OutcomeFiltered, "")
			e.metrics.ArtifactFiltered(sub.Agent, a.Type)
			return nil
		}
	}

	switch {
	case sub.Join != nil:
		g := e.correlateLocked(sub, a)
		if g == nil {
			return nil
		}
		return []*core.MatchGroup{g}

	case sub.Batch != nil:
		g := e.bufferLocked(ag, sub, a)
		if g == nil {
			return nil
		}
		return []*core.MatchGroup{g}

	default:
		e.record(a, sub.Agent, core.OutcomeDelivered, "")
		return []*core.MatchGroup{core.NewMatchGroup(sub.Agent, "", []*core.Artifact{a})}
	}
}

// record appends a dispatch decision to the trace store.
func (e *Engine) record(a *core.Artifact, agent string, outcome core.DispatchOutcome, detail string) {
	rec := core.DispatchRecord{
		ArtifactID:   a.ID,
		ArtifactType: a.Type,
		Agent:        agent,
		Outcome:      outcome,
		Detail:       detail,
		Timestamp:    a.CreatedAt,
	}
	if err := e.traces.Record(rec); err != nil {
		e.logger.Warn("engine.trace.record.failed", "artifact_id", a.ID, "error", err.Error())
	}
}

// RunUntilIdle blocks until the engine has no queued or in-flight
// invocations and no batch buffer awaiting its timeout, or until the context
// is done, whichever first. A context deadline is advisory: expiry returns
// nil unless Config.StrictIdleWait is set.
func (e *Engine) RunUntilIdle(ctx context.Context) error {
	if err := e.idle.Wait(ctx); err != nil {
		if e.config.StrictIdleWait {
			return err
		}
		e.logger.Debug("engine.idle.wait.expired", "error", err.Error())
	}
	return nil
}

// Shutdown cancels in-flight invocations and waits for the engine to settle
// or the context to expire. Partially produced fan-out artifacts of
// cancelled invocations are never published.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.cancel()
	return e.idle.Wait(ctx)
}

// Store returns the underlying artifact store.
func (e *Engine) Store() core.ArtifactStore { return e.store }

// Trace returns the underlying dispatch trace store.
func (e *Engine) Trace() core.TraceStore { return e.traces }

// Registry returns the artifact type registry.
func (e *Engine) Registry() *registry.Registry { return e.registry }
