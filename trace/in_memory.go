package trace

import (
	"sync"

	"github.com/whiteducksoftware/flock-go/core"
)

// InMemoryStore is a volatile TraceStore keeping dispatch records in process
// local slices. It is safe for concurrent access and best suited for tests
// and single-process runs. Query results are snapshots safe for caller
// mutation.
type InMemoryStore struct {
	mu         sync.RWMutex
	records    []core.DispatchRecord
	byAgent    map[string][]int
	byArtifact map[string][]int
}

// NewInMemoryStore constructs an empty in-memory trace store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byAgent:    make(map[string][]int),
		byArtifact: make(map[string][]int),
	}
}

// Record appends a dispatch record.
func (s *InMemoryStore) Record(r core.DispatchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := len(s.records)
	s.records = append(s.records, r)
	s.byAgent[r.Agent] = append(s.byAgent[r.Agent], idx)
	s.byArtifact[r.ArtifactID] = append(s.byArtifact[r.ArtifactID], idx)
	return nil
}

// ByAgent returns all records for the agent in record order.
func (s *InMemoryStore) ByAgent(agent string) ([]core.DispatchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(s.byAgent[agent]), nil
}

// ByArtifact returns all records for the artifact in record order.
func (s *InMemoryStore) ByArtifact(artifactID string) ([]core.DispatchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(s.byArtifact[artifactID]), nil
}

// CountByOutcome returns how many records for the agent carry the outcome.
func (s *InMemoryStore) CountByOutcome(agent string, outcome core.DispatchOutcome) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	for _, idx := range s.byAgent[agent] {
		if s.records[idx].Outcome == outcome {
			n++
		}
	}
	return n, nil
}

func (s *InMemoryStore) snapshot(indexes []int) []core.DispatchRecord {
	out := make([]core.DispatchRecord, len(indexes))
	for i, idx := range indexes {
		out[i] = s.records[idx]
	}
	return out
}
