package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // pure-Go sqlite driver

	"github.com/whiteducksoftware/flock-go/core"
	"github.com/whiteducksoftware/flock-go/registry"
)

const createArtifactsTable = `
CREATE TABLE IF NOT EXISTS artifacts (
	id         TEXT PRIMARY KEY,
	type       TEXT NOT NULL,
	payload    TEXT NOT NULL,
	producer   TEXT NOT NULL DEFAULT '',
	visibility TEXT NOT NULL,
	created_at TEXT NOT NULL,
	seq        INTEGER
);
CREATE INDEX IF NOT EXISTS idx_artifacts_type ON artifacts(type, seq);
`

// SQLiteStore is a durable ArtifactStore backed by SQLite. Payloads are
// stored as JSON and decoded through the type registry on read, so artifacts
// survive process restarts with their Go types intact. Artifacts of types no
// longer registered decode to map[string]any.
type SQLiteStore struct {
	db       *sql.DB
	registry *registry.Registry

	mu  sync.Mutex // guards seq across concurrent appends
	seq int64
}

// NewSQLiteStore opens (or creates) the database at dsn and prepares the
// schema. Use ":memory:" for an ephemeral store.
func NewSQLiteStore(dsn string, reg *registry.Registry) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}
	// Serialize access through a single connection; the engine already
	// serializes dispatch, and sqlite locks whole files anyway.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(createArtifactsTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create artifacts table: %w", err)
	}
	s := &SQLiteStore{db: db, registry: reg}
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(seq), 0) FROM artifacts`).Scan(&s.seq); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to read artifact sequence: %w", err)
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Append stores the artifact. The store is append-only; inserting an
// existing ID fails on the primary key.
func (s *SQLiteStore) Append(a *core.Artifact) error {
	if a == nil || a.ID == "" {
		return fmt.Errorf("artifact must have an id")
	}
	payload, err := json.Marshal(a.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload for artifact %s: %w", a.ID, err)
	}
	visibility, err := core.MarshalVisibility(a.Visibility)
	if err != nil {
		return fmt.Errorf("failed to marshal visibility for artifact %s: %w", a.ID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	_, err = s.db.Exec(
		`INSERT INTO artifacts (id, type, payload, producer, visibility, created_at, seq) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Type, string(payload), a.Producer, string(visibility), a.CreatedAt.UTC().Format(time.RFC3339Nano), s.seq,
	)
	if err != nil {
		return fmt.Errorf("failed to insert artifact %s: %w", a.ID, err)
	}
	return nil
}

// Get returns the artifact with the given id or core.ErrNotFound.
func (s *SQLiteStore) Get(id string) (*core.Artifact, error) {
	row := s.db.QueryRow(
		`SELECT id, type, payload, producer, visibility, created_at FROM artifacts WHERE id = ?`, id,
	)
	a, err := s.scanArtifact(row.Scan)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	return a, err
}

// GetByType returns all artifacts of the type in publish order.
func (s *SQLiteStore) GetByType(typeName string) ([]*core.Artifact, error) {
	rows, err := s.db.Query(
		`SELECT id, type, payload, producer, visibility, created_at FROM artifacts WHERE type = ? ORDER BY seq`, typeName,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query artifacts of type %s: %w", typeName, err)
	}
	return s.collect(rows)
}

// List returns all artifacts in publish order.
func (s *SQLiteStore) List() ([]*core.Artifact, error) {
	rows, err := s.db.Query(
		`SELECT id, type, payload, producer, visibility, created_at FROM artifacts ORDER BY seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	return s.collect(rows)
}

// Count returns the number of stored artifacts.
func (s *SQLiteStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM artifacts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count artifacts: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) collect(rows *sql.Rows) ([]*core.Artifact, error) {
	defer rows.Close()
	var out []*core.Artifact
	for rows.Next() {
		a, err := s.scanArtifact(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) scanArtifact(scan func(dest ...any) error) (*core.Artifact, error) {
	var (
		a          core.Artifact
		payload    string
		visibility string
		createdAt  string
	)
	if err := scan(&a.ID, &a.Type, &payload, &a.Producer, &visibility, &createdAt); err != nil {
		return nil, err
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at for artifact %s: %w", a.ID, err)
	}
	a.CreatedAt = ts
	a.Visibility, err = core.UnmarshalVisibility([]byte(visibility))
	if err != nil {
		return nil, fmt.Errorf("failed to decode visibility for artifact %s: %w", a.ID, err)
	}
	a.Payload, err = s.decodePayload(a.Type, []byte(payload))
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// decodePayload restores the typed payload via the registry; unknown types
// decode to a generic map.
func (s *SQLiteStore) decodePayload(typeName string, data []byte) (any, error) {
	if s.registry != nil {
		if ptr, ok := s.registry.New(typeName); ok {
			if err := json.Unmarshal(data, ptr); err != nil {
				return nil, fmt.Errorf("failed to decode %s payload: %w", typeName, err)
			}
			return ptr, nil
		}
	}
	var generic map[string]any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", typeName, err)
	}
	return generic, nil
}
