package engine

import (
	"fmt"
	"time"

	"github.com/whiteducksoftware/flock-go/core"
)

// invoke executes one agent against one match group and publishes its
// outputs. Output publishing is all-or-nothing per invocation: every output
// of every publish spec is collected and checked first, and a failure or
// cancellation anywhere discards the whole set.
func (e *Engine) invoke(ag core.Agent, g *core.MatchGroup) {
	defer e.idle.Done()

	ctx := e.baseCtx
	if e.sem != nil {
		if err := e.sem.Acquire(ctx, 1); err != nil {
			e.logger.Debug("engine.invoke.cancelled", "agent", g.Agent, "group_id", g.ID)
			return
		}
		defer e.sem.Release(1)
	}

	hc := &HookContext{Agent: g.Agent, Group: g}
	if err := e.callbacks.Execute(ctx, HookBeforeInvoke, hc); err != nil {
		e.logger.Warn("engine.invoke.aborted", "agent", g.Agent, "group_id", g.ID, "error", err.Error())
		return
	}

	start := time.Now()
	outputs, err := ag.Execute(ctx, g)
	elapsed := time.Since(start)

	if ctx.Err() != nil {
		e.logger.Debug("engine.invoke.cancelled", "agent", g.Agent, "group_id", g.ID)
		e.metrics.InvocationObserved(g.Agent, elapsed, ctx.Err())
		return
	}
	if err == nil {
		err = e.publishOutputs(ag, g, outputs)
	}
	e.metrics.InvocationObserved(g.Agent, elapsed, err)
	if err != nil {
		ierr := &core.InvocationError{Agent: g.Agent, GroupID: g.ID, Err: err}
		e.logger.Error("engine.invoke.failed", "agent", g.Agent, "group_id", g.ID, "error", ierr.Error())
		hc.Err = ierr
		if cbErr := e.callbacks.Execute(ctx, HookOnError, hc); cbErr != nil {
			e.logger.Warn("engine.invoke.error_hook.failed", "agent", g.Agent, "error", cbErr.Error())
		}
		return
	}

	if err := e.callbacks.Execute(ctx, HookAfterInvoke, hc); err != nil {
		e.logger.Warn("engine.invoke.after_hook.failed", "agent", g.Agent, "error", err.Error())
	}
}

// publishOutputs applies fan-out rules and filters to the raw invocation
// outputs, validates every resulting payload, then publishes them all.
// Nothing is published if any spec fails.
func (e *Engine) publishOutputs(ag core.Agent, g *core.MatchGroup, outputs map[string][]any) error {
	specs := ag.Outputs()
	declared := make(map[string]struct{}, len(specs))
	var artifacts []*core.Artifact

	for _, spec := range specs {
		declared[spec.Type] = struct{}{}
		batch, err := e.collectOutputs(ag, spec, outputs[spec.Type])
		if err != nil {
			return err
		}
		artifacts = append(artifacts, batch...)
	}

	for t := range outputs {
		if _, ok := declared[t]; !ok {
			e.logger.Warn("engine.invoke.undeclared_output", "agent", g.Agent, "type", t)
		}
	}

	for _, a := range artifacts {
		if err := e.Publish(e.baseCtx, a); err != nil {
			return fmt.Errorf("publishing output %s: %w", a.Type, err)
		}
	}
	return nil
}

// collectOutputs turns one spec's raw payloads into artifacts. Fixed fan-out
// demands exactly the declared count; ranged fan-out truncates above the max
// and fails below the min. The filter runs after the range check and drops
// instances without affecting the count requirement.
func (e *Engine) collectOutputs(ag core.Agent, spec *core.PublishSpec, payloads []any) ([]*core.Artifact, error) {
	min, max := spec.Bounds()
	if len(payloads) < min {
		return nil, fmt.Errorf("agent produced %d instances of %s, need at least %d", len(payloads), spec.Type, min)
	}
	if len(payloads) > max {
		// A fixed spec is a contract, not a cap; only ranged specs clamp.
		if spec.FanOut > 0 {
			return nil, fmt.Errorf("agent produced %d instances of %s, declared exactly %d", len(payloads), spec.Type, spec.FanOut)
		}
		e.logger.Debug("engine.fanout.truncated", "agent", ag.Name(), "type", spec.Type, "produced", len(payloads), "max", max)
		payloads = payloads[:max]
	}

	vis := spec.Visibility
	if vis == nil {
		vis = core.PublicVisibility{}
	}

	out := make([]*core.Artifact, 0, len(payloads))
	for _, p := range payloads {
		if err := e.registry.Validate(spec.Type, p); err != nil {
			return nil, err
		}
		a := core.NewArtifact(spec.Type, p)
		a.Producer = ag.Name()
		a.Visibility = vis

		if spec.Filter != nil {
			ok, err := spec.Filter.Evaluate(a)
			if err != nil {
				e.logger.Warn("engine.fanout.filter.error", "agent", ag.Name(), "type", spec.Type, "error", err.Error())
				continue
			}
			if !ok {
				e.metrics.ArtifactFiltered(ag.Name(), spec.Type)
				continue
			}
		}
		out = append(out, a)
	}
	return out, nil
}
