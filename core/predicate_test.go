package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reviewPayload struct {
	Stars int
}

func TestWhere_TypedPayload(t *testing.T) {
	pred := Where(func(r reviewPayload) bool { return r.Stars >= 4 })

	ok, err := pred.Evaluate(NewArtifact("review", reviewPayload{Stars: 5}))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = pred.Evaluate(NewArtifact("review", reviewPayload{Stars: 2}))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWhere_PointerPayload(t *testing.T) {
	pred := Where(func(r reviewPayload) bool { return r.Stars >= 4 })
	ok, err := pred.Evaluate(NewArtifact("review", &reviewPayload{Stars: 4}))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWhere_WrongPayloadType(t *testing.T) {
	pred := Where(func(r reviewPayload) bool { return true })
	_, err := pred.Evaluate(NewArtifact("review", "not a review"))
	require.Error(t, err)
}

func TestJoinBy(t *testing.T) {
	key := JoinBy(func(r reviewPayload) string { return "stars" })

	k, err := key(NewArtifact("review", reviewPayload{}))
	require.NoError(t, err)
	assert.Equal(t, "stars", k)

	k, err = key(NewArtifact("review", &reviewPayload{}))
	require.NoError(t, err)
	assert.Equal(t, "stars", k)

	_, err = key(NewArtifact("review", 42))
	require.Error(t, err)
}
