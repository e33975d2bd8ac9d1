package core

import "time"

// DispatchOutcome classifies what the dispatcher decided for one artifact
// against one subscription. "Seen but filtered" artifacts are recorded here
// for observability even though they are never delivered.
type DispatchOutcome string

const (
	// OutcomeDelivered marks an artifact that became part of an emitted
	// match group.
	OutcomeDelivered DispatchOutcome = "delivered"

	// OutcomeFiltered marks an artifact rejected by a where predicate.
	OutcomeFiltered DispatchOutcome = "filtered"

	// OutcomeVisibilityDenied marks an artifact the agent was not allowed
	// to see.
	OutcomeVisibilityDenied DispatchOutcome = "visibility_denied"

	// OutcomePredicateError marks an artifact dropped because a where or
	// join key function returned an error.
	OutcomePredicateError DispatchOutcome = "predicate_error"

	// OutcomeJoinPending marks an artifact parked in a join correlation
	// table waiting for partners.
	OutcomeJoinPending DispatchOutcome = "join_pending"

	// OutcomeExpired marks a pending join artifact that fell out of the
	// correlation window.
	OutcomeExpired DispatchOutcome = "expired"

	// OutcomeBuffered marks an artifact accumulated in a batch buffer.
	OutcomeBuffered DispatchOutcome = "buffered"
)

// DispatchRecord is one dispatch decision for one artifact against one
// subscription.
type DispatchRecord struct {
	ArtifactID   string          `json:"artifact_id"`
	ArtifactType string          `json:"artifact_type"`
	Agent        string          `json:"agent"`
	Outcome      DispatchOutcome `json:"outcome"`
	Detail       string          `json:"detail,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
}

// TraceStore records dispatch decisions for observability. Implementations
// must be thread-safe; query results are snapshots safe for caller mutation.
type TraceStore interface {
	Record(r DispatchRecord) error
	ByAgent(agent string) ([]DispatchRecord, error)
	ByArtifact(artifactID string) ([]DispatchRecord, error)
	CountByOutcome(agent string, outcome DispatchOutcome) (int, error)
}
