package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whiteducksoftware/flock-go/core"
)

func registerWriter(t *testing.T, e *Engine, outs []*core.PublishSpec, fn func(ctx context.Context, g *core.MatchGroup) (map[string][]any, error)) *stubAgent {
	t.Helper()
	writer := &stubAgent{
		name: "writer",
		subs: []*core.Subscription{{Agent: "writer", Types: []string{"idea"}}},
		outs: outs,
		fn:   fn,
	}
	require.NoError(t, e.Register(writer))
	return writer
}

func movies(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = moviePayload{Title: "m"}
	}
	return out
}

func storedMovies(t *testing.T, e *Engine) []*core.Artifact {
	t.Helper()
	ms, err := e.Store().GetByType("movie")
	require.NoError(t, err)
	return ms
}

func TestEngine_FixedFanOutPublishesExactly(t *testing.T) {
	e := newTestEngine(t)
	registerWriter(t, e, []*core.PublishSpec{{Type: "movie", FanOut: 4}},
		func(ctx context.Context, g *core.MatchGroup) (map[string][]any, error) {
			return map[string][]any{"movie": movies(4)}, nil
		})

	require.NoError(t, e.Publish(context.Background(), core.NewArtifact("idea", ideaPayload{})))
	waitIdle(t, e)

	ms := storedMovies(t, e)
	require.Len(t, ms, 4)
	for _, m := range ms {
		assert.Equal(t, "writer", m.Producer)
	}
}

func TestEngine_FixedFanOutMismatchDiscardsAll(t *testing.T) {
	e := newTestEngine(t)
	var invocationErr atomic.Value
	e.RegisterCallback(NewFunctionCallback(HookOnError, func(ctx context.Context, hc *HookContext) error {
		invocationErr.Store(hc.Err)
		return nil
	}))
	registerWriter(t, e, []*core.PublishSpec{{Type: "movie", FanOut: 4}},
		func(ctx context.Context, g *core.MatchGroup) (map[string][]any, error) {
			return map[string][]any{"movie": movies(2)}, nil
		})

	require.NoError(t, e.Publish(context.Background(), core.NewArtifact("idea", ideaPayload{})))
	waitIdle(t, e)

	assert.Empty(t, storedMovies(t, e))

	err, _ := invocationErr.Load().(error)
	var ierr *core.InvocationError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, "writer", ierr.Agent)
}

func TestEngine_FixedFanOutOverproductionDiscardsAll(t *testing.T) {
	e := newTestEngine(t)
	registerWriter(t, e, []*core.PublishSpec{{Type: "movie", FanOut: 2}},
		func(ctx context.Context, g *core.MatchGroup) (map[string][]any, error) {
			return map[string][]any{"movie": movies(3)}, nil
		})

	require.NoError(t, e.Publish(context.Background(), core.NewArtifact("idea", ideaPayload{})))
	waitIdle(t, e)

	assert.Empty(t, storedMovies(t, e))
}

func TestEngine_RangeFanOutTruncatesAboveMax(t *testing.T) {
	e := newTestEngine(t)
	registerWriter(t, e, []*core.PublishSpec{{Type: "movie", MinFanOut: 1, MaxFanOut: 3}},
		func(ctx context.Context, g *core.MatchGroup) (map[string][]any, error) {
			return map[string][]any{"movie": movies(5)}, nil
		})

	require.NoError(t, e.Publish(context.Background(), core.NewArtifact("idea", ideaPayload{})))
	waitIdle(t, e)

	assert.Len(t, storedMovies(t, e), 3)
}

func TestEngine_RangeFanOutBelowMinDiscardsAll(t *testing.T) {
	e := newTestEngine(t)
	registerWriter(t, e, []*core.PublishSpec{{Type: "movie", MinFanOut: 2, MaxFanOut: 5}},
		func(ctx context.Context, g *core.MatchGroup) (map[string][]any, error) {
			return map[string][]any{"movie": movies(1)}, nil
		})

	require.NoError(t, e.Publish(context.Background(), core.NewArtifact("idea", ideaPayload{})))
	waitIdle(t, e)

	assert.Empty(t, storedMovies(t, e))
}

func TestEngine_FanOutFilterRunsAfterClamp(t *testing.T) {
	e := newTestEngine(t)
	// Titles a..e; clamp keeps a,b,c; filter then drops b. If the filter ran
	// first, three artifacts would survive instead of two.
	titles := []string{"a", "b", "c", "d", "e"}
	registerWriter(t, e, []*core.PublishSpec{{
		Type:      "movie",
		MinFanOut: 1,
		MaxFanOut: 3,
		Filter:    core.Where(func(m moviePayload) bool { return m.Title != "b" }),
	}}, func(ctx context.Context, g *core.MatchGroup) (map[string][]any, error) {
		out := make([]any, len(titles))
		for i, title := range titles {
			out[i] = moviePayload{Title: title}
		}
		return map[string][]any{"movie": out}, nil
	})

	require.NoError(t, e.Publish(context.Background(), core.NewArtifact("idea", ideaPayload{})))
	waitIdle(t, e)

	ms := storedMovies(t, e)
	require.Len(t, ms, 2)
	assert.Equal(t, "a", ms[0].Payload.(moviePayload).Title)
	assert.Equal(t, "c", ms[1].Payload.(moviePayload).Title)
}

func TestEngine_OutputsAllOrNothingAcrossSpecs(t *testing.T) {
	e := newTestEngine(t)
	registerWriter(t, e, []*core.PublishSpec{
		{Type: "movie", FanOut: 2},
		{Type: "review", FanOut: 2},
	}, func(ctx context.Context, g *core.MatchGroup) (map[string][]any, error) {
		return map[string][]any{
			"movie":  movies(2),
			"review": {reviewPayload{Stars: 5}}, // one short
		}, nil
	})

	require.NoError(t, e.Publish(context.Background(), core.NewArtifact("idea", ideaPayload{})))
	waitIdle(t, e)

	assert.Empty(t, storedMovies(t, e))
	reviews, err := e.Store().GetByType("review")
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestEngine_ExecuteErrorPublishesNothing(t *testing.T) {
	e := newTestEngine(t)
	registerWriter(t, e, []*core.PublishSpec{{Type: "movie"}},
		func(ctx context.Context, g *core.MatchGroup) (map[string][]any, error) {
			return map[string][]any{"movie": movies(1)}, errors.New("model unavailable")
		})
	other := &stubAgent{
		name: "other",
		subs: []*core.Subscription{{Agent: "other", Types: []string{"idea"}}},
	}
	require.NoError(t, e.Register(other))

	require.NoError(t, e.Publish(context.Background(), core.NewArtifact("idea", ideaPayload{})))
	waitIdle(t, e)

	// The failure is scoped to the invocation; the sibling still ran.
	assert.Empty(t, storedMovies(t, e))
	assert.Len(t, other.invocations(), 1)
}

func TestEngine_OutputVisibilityFromSpec(t *testing.T) {
	e := newTestEngine(t)
	registerWriter(t, e, []*core.PublishSpec{{
		Type:       "movie",
		Visibility: core.NewPrivateVisibility("critic"),
	}}, func(ctx context.Context, g *core.MatchGroup) (map[string][]any, error) {
		return map[string][]any{"movie": movies(1)}, nil
	})
	critic := &stubAgent{
		name: "critic",
		subs: []*core.Subscription{{Agent: "critic", Types: []string{"movie"}}},
	}
	editor := &stubAgent{
		name: "editor",
		subs: []*core.Subscription{{Agent: "editor", Types: []string{"movie"}}},
	}
	require.NoError(t, e.Register(critic))
	require.NoError(t, e.Register(editor))

	require.NoError(t, e.Publish(context.Background(), core.NewArtifact("idea", ideaPayload{})))
	waitIdle(t, e)

	assert.Len(t, critic.invocations(), 1)
	assert.Empty(t, editor.invocations())
}

func TestEngine_InvalidOutputPayloadFailsInvocation(t *testing.T) {
	e := newTestEngine(t)
	registerWriter(t, e, []*core.PublishSpec{{Type: "movie"}},
		func(ctx context.Context, g *core.MatchGroup) (map[string][]any, error) {
			return map[string][]any{"movie": {ideaPayload{Topic: "wrong type"}}}, nil
		})

	require.NoError(t, e.Publish(context.Background(), core.NewArtifact("idea", ideaPayload{})))
	waitIdle(t, e)

	assert.Empty(t, storedMovies(t, e))
}
