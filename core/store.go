package core

// ArtifactStore is the append-only typed store of published artifacts.
// Implementations must be thread-safe and preserve publish order within a
// type. Artifacts are never mutated after Append; implementations hand out
// copies to prevent external mutation.
type ArtifactStore interface {
	Append(a *Artifact) error
	Get(id string) (*Artifact, error)
	GetByType(typeName string) ([]*Artifact, error)
	List() ([]*Artifact, error)
	Count() (int, error)
}
