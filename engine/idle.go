package engine

import (
	"context"
	"sync"
)

// idleTracker counts outstanding work: queued and in-flight invocations plus
// armed batch timers. Waiters are released when the count drops to zero.
//
// Cascades cannot produce a false idle: an invocation publishing new
// artifacts schedules the resulting child work (Add) before its own Done.
type idleTracker struct {
	mu      sync.Mutex
	n       int
	waiters []chan struct{}
}

func (t *idleTracker) Add(delta int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.n += delta
}

func (t *idleTracker) Done() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.n--
	if t.n > 0 {
		return
	}
	t.n = 0
	for _, ch := range t.waiters {
		close(ch)
	}
	t.waiters = nil
}

// Wait blocks until the tracker is idle or the context is done, whichever
// first. Returns ctx.Err() on early return.
func (t *idleTracker) Wait(ctx context.Context) error {
	t.mu.Lock()
	if t.n == 0 {
		t.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	t.waiters = append(t.waiters, ch)
	t.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
