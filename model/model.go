package model

import (
	"context"
	"encoding/json"
	"fmt"
)

// OutputSpec asks the model for Count instances of one named output type
// conforming to the given JSON schema.
type OutputSpec struct {
	Type   string         `json:"type"`
	Count  int            `json:"count"`
	Schema map[string]any `json:"schema"`
}

// Request captures the normalized model input produced by agent invocations.
// Input is the JSON rendering of the triggering artifacts.
type Request struct {
	Instructions string          `json:"instructions"`
	Input        json.RawMessage `json:"input"`
	Outputs      []OutputSpec    `json:"outputs"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response holds the generated instances keyed by output type name, each as
// raw JSON ready for registry-directed decoding.
type Response struct {
	Outputs map[string][]json.RawMessage `json:"outputs"`
	Usage   *TokenUsage                  `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Model is the minimal interface required to drive structured generation.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests and examples.
// It replays canned instances per output type and fabricates empty objects
// when no canned data exists, always honoring the requested counts.
type MockModel struct {
	info   Info
	canned map[string][]json.RawMessage
	err    error
}

// NewMockModel constructs a MockModel with the given display name.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info:   Info{Name: name, Provider: "mock"},
		canned: make(map[string][]json.RawMessage),
	}
}

// AddOutput registers canned JSON instances for one output type. Values are
// marshaled at registration; a marshal failure surfaces from Generate.
func (m *MockModel) AddOutput(typeName string, values ...any) *MockModel {
	for _, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			m.err = fmt.Errorf("mock output for %s: %w", typeName, err)
			return m
		}
		m.canned[typeName] = append(m.canned[typeName], raw)
	}
	return m
}

// FailWith makes every Generate call return the given error.
func (m *MockModel) FailWith(err error) *MockModel {
	m.err = err
	return m
}

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if m.err != nil {
		return nil, m.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[string][]json.RawMessage, len(req.Outputs))
	for _, spec := range req.Outputs {
		instances := m.canned[spec.Type]
		for len(instances) < spec.Count {
			instances = append(instances, json.RawMessage(`{}`))
		}
		if len(instances) > spec.Count {
			instances = instances[:spec.Count]
		}
		out[spec.Type] = instances
	}
	return &Response{Outputs: out}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
