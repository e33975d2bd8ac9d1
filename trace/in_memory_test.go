package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whiteducksoftware/flock-go/core"
)

func TestInMemoryStore_RecordAndQuery(t *testing.T) {
	s := NewInMemoryStore()

	require.NoError(t, s.Record(core.DispatchRecord{
		ArtifactID: "a1", ArtifactType: "idea", Agent: "critic", Outcome: core.OutcomeDelivered,
	}))
	require.NoError(t, s.Record(core.DispatchRecord{
		ArtifactID: "a1", ArtifactType: "idea", Agent: "editor", Outcome: core.OutcomeFiltered,
	}))
	require.NoError(t, s.Record(core.DispatchRecord{
		ArtifactID: "a2", ArtifactType: "idea", Agent: "critic", Outcome: core.OutcomeFiltered,
	}))

	byCritic, err := s.ByAgent("critic")
	require.NoError(t, err)
	require.Len(t, byCritic, 2)
	assert.Equal(t, "a1", byCritic[0].ArtifactID)
	assert.Equal(t, "a2", byCritic[1].ArtifactID)

	byArtifact, err := s.ByArtifact("a1")
	require.NoError(t, err)
	require.Len(t, byArtifact, 2)
	assert.Equal(t, "critic", byArtifact[0].Agent)
	assert.Equal(t, "editor", byArtifact[1].Agent)

	none, err := s.ByAgent("stranger")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestInMemoryStore_CountByOutcome(t *testing.T) {
	s := NewInMemoryStore()
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Record(core.DispatchRecord{
			ArtifactID: "a", Agent: "critic", Outcome: core.OutcomeFiltered,
		}))
	}
	require.NoError(t, s.Record(core.DispatchRecord{
		ArtifactID: "a", Agent: "critic", Outcome: core.OutcomeDelivered,
	}))

	n, err := s.CountByOutcome("critic", core.OutcomeFiltered)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = s.CountByOutcome("critic", core.OutcomeExpired)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
