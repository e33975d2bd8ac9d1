package engine

import (
	"sort"

	"github.com/whiteducksoftware/flock-go/core"
)

// joinTable holds the pending correlation state for one join subscription:
// key -> type -> artifacts in arrival order.
type joinTable struct {
	pending map[string]map[string][]*core.Artifact
}

func newJoinTable() *joinTable {
	return &joinTable{pending: make(map[string]map[string][]*core.Artifact)}
}

// correlateLocked feeds one artifact into the subscription's join table and
// returns a match group when every participating type has an artifact
// sharing the key within the window. Caller holds the dispatch lock.
//
// Window policy: pending artifacts older than Within relative to the newest
// arrival for the same key are expired and dropped; a late arrival whose
// partners already expired starts a fresh pending window. The
// earliest-arrived artifact per type wins when multiples share a key.
func (e *Engine) correlateLocked(sub *core.Subscription, a *core.Artifact) *core.MatchGroup {
	key, err := sub.Join.By(a)
	if err != nil {
		perr := &core.PredicateError{Agent: sub.Agent, ArtifactID: a.ID, Err: err}
		e.logger.Warn("engine.join.key.error", "agent", sub.Agent, "artifact_id", a.ID, "error", perr.Error())
		e.record(a, sub.Agent, core.OutcomePredicateError, err.Error())
		e.metrics.ArtifactFiltered(sub.Agent, a.Type)
		return nil
	}

	table := e.joins[sub]
	byType := table.pending[key]
	if byType == nil {
		byType = make(map[string][]*core.Artifact)
		table.pending[key] = byType
	}

	// Expire partners that fell out of the window relative to this arrival.
	for typeName, entries := range byType {
		kept := entries[:0]
		for _, entry := range entries {
			if a.CreatedAt.Sub(entry.CreatedAt) > sub.Join.Within {
				e.record(entry, sub.Agent, core.OutcomeExpired, "join window elapsed")
				e.metrics.ArtifactFiltered(sub.Agent, entry.Type)
				continue
			}
			kept = append(kept, entry)
		}
		if len(kept) == 0 {
			delete(byType, typeName)
		} else {
			byType[typeName] = kept
		}
	}

	byType[a.Type] = append(byType[a.Type], a)

	for _, t := range sub.Types {
		if len(byType[t]) == 0 {
			e.record(a, sub.Agent, core.OutcomeJoinPending, key)
			return nil
		}
	}

	// All types present: take the earliest-arrived artifact per type and
	// clear the consumed entries so nothing is delivered twice.
	members := make([]*core.Artifact, 0, len(sub.Types))
	for _, t := range sub.Types {
		members = append(members, byType[t][0])
		if rest := byType[t][1:]; len(rest) > 0 {
			byType[t] = rest
		} else {
			delete(byType, t)
		}
	}
	if len(byType) == 0 {
		delete(table.pending, key)
	}
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].CreatedAt.Before(members[j].CreatedAt)
	})
	for _, m := range members {
		e.record(m, sub.Agent, core.OutcomeDelivered, key)
	}
	return core.NewMatchGroup(sub.Agent, key, members)
}
