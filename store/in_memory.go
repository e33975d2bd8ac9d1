package store

import (
	"fmt"
	"sync"

	"github.com/whiteducksoftware/flock-go/core"
)

// InMemoryStore is an in-process ArtifactStore useful for tests, examples and
// single-process runs. It keeps artifacts in append order guarded by an
// RWMutex and hands out shallow copies so callers cannot mutate stored
// records. Publish order is preserved globally and therefore per type.
//
// This implementation is intentionally minimal; it does not enforce retention
// limits, size quotas or eviction. For runs that must survive process
// restarts, prefer SQLiteStore.
type InMemoryStore struct {
	mu     sync.RWMutex
	byID   map[string]*core.Artifact
	order  []*core.Artifact
	byType map[string][]*core.Artifact
}

// NewInMemoryStore returns an empty in-memory artifact store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:   make(map[string]*core.Artifact),
		byType: make(map[string][]*core.Artifact),
	}
}

// Append stores the artifact. Appending an ID twice is an error; the store is
// append-only and artifacts are immutable.
func (s *InMemoryStore) Append(a *core.Artifact) error {
	if a == nil || a.ID == "" {
		return fmt.Errorf("artifact must have an id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[a.ID]; exists {
		return fmt.Errorf("artifact %s already stored", a.ID)
	}
	cp := a.Clone()
	s.byID[cp.ID] = cp
	s.order = append(s.order, cp)
	s.byType[cp.Type] = append(s.byType[cp.Type], cp)
	return nil
}

// Get returns a copy of the stored artifact or core.ErrNotFound.
func (s *InMemoryStore) Get(id string) (*core.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return a.Clone(), nil
}

// GetByType returns copies of all artifacts of the type in publish order.
func (s *InMemoryStore) GetByType(typeName string) ([]*core.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.byType[typeName]
	out := make([]*core.Artifact, len(stored))
	for i, a := range stored {
		out[i] = a.Clone()
	}
	return out, nil
}

// List returns copies of all artifacts in publish order.
func (s *InMemoryStore) List() ([]*core.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*core.Artifact, len(s.order))
	for i, a := range s.order {
		out[i] = a.Clone()
	}
	return out, nil
}

// Count returns the number of stored artifacts.
func (s *InMemoryStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order), nil
}
