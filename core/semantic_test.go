package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSemanticPredicate_Score(t *testing.T) {
	pred := NewSemanticPredicate("space travel adventure", 0.5)

	identical := NewArtifact("idea", "space travel adventure")
	assert.InDelta(t, 1.0, pred.Score(identical), 0.001)

	disjoint := NewArtifact("idea", "quarterly tax report")
	assert.Equal(t, 0.0, pred.Score(disjoint))

	partial := NewArtifact("idea", "space pirates")
	score := pred.Score(partial)
	assert.Greater(t, score, 0.0)
	assert.Less(t, score, 1.0)
}

func TestSemanticPredicate_Evaluate(t *testing.T) {
	pred := NewSemanticPredicate("space travel", 0.9)

	ok, err := pred.Evaluate(NewArtifact("idea", "space travel"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = pred.Evaluate(NewArtifact("idea", "cooking show"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSemanticPredicate_StructPayload(t *testing.T) {
	pred := NewSemanticPredicate("sentient vacuum", 0.1)
	ok, err := pred.Evaluate(NewArtifact("idea", struct {
		Topic string `json:"topic"`
	}{Topic: "sentient vacuum cleaners"}))
	require.NoError(t, err)
	assert.True(t, ok)
}
