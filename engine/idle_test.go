package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdleTracker_WaitReturnsImmediatelyWhenIdle(t *testing.T) {
	tr := &idleTracker{}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.NoError(t, tr.Wait(ctx))
}

func TestIdleTracker_WaitBlocksUntilDone(t *testing.T) {
	tr := &idleTracker{}
	tr.Add(2)

	done := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		done <- tr.Wait(ctx)
	}()

	tr.Done()
	select {
	case <-done:
		t.Fatal("wait returned with work outstanding")
	case <-time.After(20 * time.Millisecond):
	}

	tr.Done()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("wait did not return after count reached zero")
	}
}

func TestIdleTracker_WaitHonorsContext(t *testing.T) {
	tr := &idleTracker{}
	tr.Add(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, tr.Wait(ctx), context.DeadlineExceeded)

	tr.Done()
}

func TestIdleTracker_MultipleWaiters(t *testing.T) {
	tr := &idleTracker{}
	tr.Add(1)

	results := make(chan error, 3)
	for i := 0; i < 3; i++ {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			results <- tr.Wait(ctx)
		}()
	}

	time.Sleep(20 * time.Millisecond)
	tr.Done()

	for i := 0; i < 3; i++ {
		require.NoError(t, <-results)
	}
}
