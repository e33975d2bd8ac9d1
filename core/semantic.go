package core

import (
	"encoding/json"
	"strings"
	"unicode"
)

// SemanticPredicate matches artifacts whose textual content overlaps a query
// above a threshold. Scoring is token-level Jaccard similarity over the
// lower-cased JSON rendering of the payload; swap for an embedding-backed
// implementation when real semantic retrieval is needed.
type SemanticPredicate struct {
	Query     string
	Threshold float64

	queryTokens map[string]struct{}
}

// NewSemanticPredicate creates a semantic predicate. Threshold is the minimum
// Jaccard similarity in [0,1] required to match.
func NewSemanticPredicate(query string, threshold float64) *SemanticPredicate {
	return &SemanticPredicate{
		Query:       query,
		Threshold:   threshold,
		queryTokens: tokenize(query),
	}
}

// Evaluate implements Predicate.
func (p *SemanticPredicate) Evaluate(a *Artifact) (bool, error) {
	return p.Score(a) >= p.Threshold, nil
}

// Score returns the Jaccard similarity between the query and the artifact's
// textual content in [0,1].
func (p *SemanticPredicate) Score(a *Artifact) float64 {
	tokens := tokenize(artifactText(a))
	if len(tokens) == 0 || len(p.queryTokens) == 0 {
		return 0
	}
	var intersection int
	for t := range tokens {
		if _, ok := p.queryTokens[t]; ok {
			intersection++
		}
	}
	union := len(tokens) + len(p.queryTokens) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// artifactText renders the payload as searchable text. String payloads pass
// through; everything else is JSON-encoded.
func artifactText(a *Artifact) string {
	if s, ok := a.Payload.(string); ok {
		return s
	}
	data, err := json.Marshal(a.Payload)
	if err != nil {
		return ""
	}
	return string(data)
}

func tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, field := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}) {
		if len(field) > 1 {
			tokens[field] = struct{}{}
		}
	}
	return tokens
}
