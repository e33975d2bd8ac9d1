package engine

import (
	"time"

	"github.com/whiteducksoftware/flock-go/core"
)

// batchBuffer accumulates artifacts for one batch subscription. The timer is
// armed when the first artifact of a buffer lifetime arrives and races the
// size threshold; whichever fires first flushes and resets the buffer. gen
// guards against a stale timer firing after a size flush already consumed the
// buffer it was armed for.
type batchBuffer struct {
	items []*core.Artifact
	timer *time.Timer
	gen   int
}

// bufferLocked appends one artifact to the subscription's batch buffer and
// returns a match group when the size threshold is reached. Timeout flushes
// run asynchronously via flushBatchTimeout. Caller holds the dispatch lock.
func (e *Engine) bufferLocked(ag core.Agent, sub *core.Subscription, a *core.Artifact) *core.MatchGroup {
	buf := e.batches[sub]
	buf.items = append(buf.items, a)
	e.record(a, sub.Agent, core.OutcomeBuffered, "")

	if len(buf.items) == 1 && sub.Batch.Timeout > 0 {
		buf.gen++
		gen := buf.gen
		// The armed timer counts toward idle so RunUntilIdle waits for a
		// pending timeout flush.
		e.idle.Add(1)
		buf.timer = time.AfterFunc(sub.Batch.Timeout, func() {
			e.flushBatchTimeout(ag, sub, gen)
		})
	}

	if sub.Batch.Size > 0 && len(buf.items) >= sub.Batch.Size {
		return e.flushLocked(sub, buf, "size")
	}
	return nil
}

// flushLocked drains the buffer, cancels any armed timer and returns the
// flushed items as a match group. Caller holds the dispatch lock.
func (e *Engine) flushLocked(sub *core.Subscription, buf *batchBuffer, cause string) *core.MatchGroup {
	items := buf.items
	buf.items = nil
	if buf.timer != nil {
		if buf.timer.Stop() {
			e.idle.Done()
		}
		buf.timer = nil
	}
	for _, m := range items {
		e.record(m, sub.Agent, core.OutcomeDelivered, cause)
	}
	e.metrics.BatchFlushed(sub.Agent, cause)
	e.logger.Debug("engine.batch.flush", "agent", sub.Agent, "cause", cause, "count", len(items))
	return core.NewMatchGroup(sub.Agent, "", items)
}

// flushBatchTimeout fires when a batch timer elapses. A generation mismatch
// means the buffer was already flushed by size and re-armed; the stale timer
// does nothing.
func (e *Engine) flushBatchTimeout(ag core.Agent, sub *core.Subscription, gen int) {
	e.mu.Lock()
	buf := e.batches[sub]
	if buf.gen != gen || len(buf.items) == 0 {
		e.mu.Unlock()
		e.idle.Done()
		return
	}
	items := buf.items
	buf.items = nil
	buf.timer = nil
	for _, m := range items {
		e.record(m, sub.Agent, core.OutcomeDelivered, "timeout")
	}
	// Hand the timer's idle slot to the invocation before releasing it so
	// the tracker never dips to zero in between.
	e.idle.Add(1)
	e.mu.Unlock()

	e.idle.Done()
	e.metrics.BatchFlushed(sub.Agent, "timeout")
	e.logger.Debug("engine.batch.flush", "agent", sub.Agent, "cause", "timeout", "count", len(items))
	g := core.NewMatchGroup(sub.Agent, "", items)
	e.metrics.GroupMatched(sub.Agent)
	go e.invoke(ag, g)
}

// FlushOpenBatches force-flushes every non-empty batch buffer, delivering
// partial batches without waiting for size or timeout. Size-only buffers
// otherwise hold their items indefinitely; call this before final shutdown
// when partial batches should still be processed.
func (e *Engine) FlushOpenBatches() {
	e.mu.Lock()
	var queue []scheduled
	for sub, buf := range e.batches {
		if len(buf.items) == 0 {
			continue
		}
		ag := e.agents[sub.Agent]
		if ag == nil {
			continue
		}
		g := e.flushLocked(sub, buf, "forced")
		queue = append(queue, scheduled{agent: ag, group: g})
	}
	e.idle.Add(len(queue))
	e.mu.Unlock()

	for _, s := range queue {
		e.metrics.GroupMatched(s.group.Agent)
		go e.invoke(s.agent, s.group)
	}
}
