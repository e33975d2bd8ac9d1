package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whiteducksoftware/flock-go/core"
)

func TestInMemoryStore_AppendAndGet(t *testing.T) {
	s := NewInMemoryStore()
	a := core.NewArtifact("idea", "space travel")
	require.NoError(t, s.Append(a))

	got, err := s.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, "idea", got.Type)

	_, err = s.Get("missing")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestInMemoryStore_AppendOnly(t *testing.T) {
	s := NewInMemoryStore()
	a := core.NewArtifact("idea", "x")
	require.NoError(t, s.Append(a))
	require.Error(t, s.Append(a))
	require.Error(t, s.Append(&core.Artifact{Type: "idea"}))
}

func TestInMemoryStore_GetByTypePreservesOrder(t *testing.T) {
	s := NewInMemoryStore()
	first := core.NewArtifact("movie", "one")
	second := core.NewArtifact("movie", "two")
	require.NoError(t, s.Append(first))
	require.NoError(t, s.Append(core.NewArtifact("idea", "noise")))
	require.NoError(t, s.Append(second))

	movies, err := s.GetByType("movie")
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, first.ID, movies[0].ID)
	assert.Equal(t, second.ID, movies[1].ID)

	none, err := s.GetByType("script")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestInMemoryStore_ListAndCount(t *testing.T) {
	s := NewInMemoryStore()
	require.NoError(t, s.Append(core.NewArtifact("idea", "a")))
	require.NoError(t, s.Append(core.NewArtifact("movie", "b")))

	all, err := s.List()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestInMemoryStore_HandsOutCopies(t *testing.T) {
	s := NewInMemoryStore()
	a := core.NewArtifact("idea", "x")
	require.NoError(t, s.Append(a))

	got, err := s.Get(a.ID)
	require.NoError(t, err)
	got.Producer = "mutated"

	again, err := s.Get(a.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Producer)
}
