package core

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Visibility restricts which agents may consume an artifact. The dispatcher
// checks visibility before any predicate evaluation; a denied delivery is
// recorded as filtered, never delivered.
type Visibility interface {
	// VisibleTo reports whether the named agent may consume the artifact.
	VisibleTo(agent string) bool

	// Kind returns a stable discriminator used for serialization ("public",
	// "private").
	Kind() string
}

// PublicVisibility makes an artifact consumable by every agent. It is the
// default scope for published artifacts.
type PublicVisibility struct{}

// VisibleTo always returns true.
func (PublicVisibility) VisibleTo(string) bool { return true }

// Kind returns "public".
func (PublicVisibility) Kind() string { return "public" }

// PrivateVisibility restricts consumption to an explicit set of agent names.
type PrivateVisibility struct {
	Agents map[string]struct{}
}

// NewPrivateVisibility builds a PrivateVisibility from agent names.
func NewPrivateVisibility(agents ...string) PrivateVisibility {
	set := make(map[string]struct{}, len(agents))
	for _, a := range agents {
		set[a] = struct{}{}
	}
	return PrivateVisibility{Agents: set}
}

// VisibleTo reports whether the agent is in the allowed set.
func (v PrivateVisibility) VisibleTo(agent string) bool {
	_, ok := v.Agents[agent]
	return ok
}

// Kind returns "private".
func (v PrivateVisibility) Kind() string { return "private" }

// visibilityJSON is the wire form used by durable stores.
type visibilityJSON struct {
	Kind   string   `json:"kind"`
	Agents []string `json:"agents,omitempty"`
}

// MarshalVisibility serializes a visibility scope to JSON for durable stores.
// A nil visibility marshals as public.
func MarshalVisibility(v Visibility) ([]byte, error) {
	if v == nil {
		v = PublicVisibility{}
	}
	wire := visibilityJSON{Kind: v.Kind()}
	if pv, ok := v.(PrivateVisibility); ok {
		wire.Agents = make([]string, 0, len(pv.Agents))
		for a := range pv.Agents {
			wire.Agents = append(wire.Agents, a)
		}
		sort.Strings(wire.Agents)
	}
	return json.Marshal(wire)
}

// UnmarshalVisibility restores a visibility scope serialized by
// MarshalVisibility.
func UnmarshalVisibility(data []byte) (Visibility, error) {
	if len(data) == 0 {
		return PublicVisibility{}, nil
	}
	var wire visibilityJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("failed to unmarshal visibility: %w", err)
	}
	switch wire.Kind {
	case "", "public":
		return PublicVisibility{}, nil
	case "private":
		return NewPrivateVisibility(wire.Agents...), nil
	default:
		return nil, fmt.Errorf("unknown visibility kind %q", wire.Kind)
	}
}
