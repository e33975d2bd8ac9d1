package core

// MatchGroup is an ephemeral grouping of artifacts that together satisfied
// one subscription. Each group triggers exactly one agent invocation; the
// dispatcher never re-delivers artifacts that were part of an emitted group.
type MatchGroup struct {
	// ID identifies the group (and the invocation it triggers).
	ID string

	// Agent is the name of the agent owning the satisfied subscription.
	Agent string

	// Key is the join correlation key, or empty for non-join groups.
	Key string

	// Artifacts are the grouped artifacts in arrival order.
	Artifacts []*Artifact
}

// NewMatchGroup creates a group with a fresh ID.
func NewMatchGroup(agent, key string, artifacts []*Artifact) *MatchGroup {
	return &MatchGroup{ID: NewID(), Agent: agent, Key: key, Artifacts: artifacts}
}

// ByType returns the grouped artifacts of the given type in arrival order.
func (g *MatchGroup) ByType(typeName string) []*Artifact {
	var out []*Artifact
	for _, a := range g.Artifacts {
		if a.Type == typeName {
			out = append(out, a)
		}
	}
	return out
}

// First returns the earliest-arrived artifact of the given type.
func (g *MatchGroup) First(typeName string) (*Artifact, bool) {
	for _, a := range g.Artifacts {
		if a.Type == typeName {
			return a, true
		}
	}
	return nil, false
}

// Types returns the distinct artifact types present in the group, in first
// arrival order.
func (g *MatchGroup) Types() []string {
	seen := make(map[string]struct{}, len(g.Artifacts))
	var out []string
	for _, a := range g.Artifacts {
		if _, ok := seen[a.Type]; ok {
			continue
		}
		seen[a.Type] = struct{}{}
		out = append(out, a.Type)
	}
	return out
}
