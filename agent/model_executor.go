package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/whiteducksoftware/flock-go/internal/schema"
	"github.com/whiteducksoftware/flock-go/model"
	"github.com/whiteducksoftware/flock-go/registry"
)

// ModelExecutor drives a generation model to produce the agent's outputs.
// The triggering artifacts are rendered to JSON as model input, every output
// spec is translated into a typed instance request with a schema derived from
// the registered Go type, and the model's JSON reply is decoded back through
// the registry.
type ModelExecutor struct {
	model        model.Model
	registry     *registry.Registry
	instructions string
}

var _ Executor = (*ModelExecutor)(nil)

// NewModelExecutor creates a model-backed executor. instructions prime the
// model with the agent's task; the registry supplies output schemas and
// decoding targets.
func NewModelExecutor(m model.Model, reg *registry.Registry, instructions string) *ModelExecutor {
	return &ModelExecutor{model: m, registry: reg, instructions: instructions}
}

// Execute implements Executor.
func (e *ModelExecutor) Execute(ctx context.Context, inv *Invocation) (map[string][]any, error) {
	if len(inv.Outputs) == 0 {
		return nil, nil
	}

	req, err := e.buildRequest(inv)
	if err != nil {
		return nil, err
	}

	resp, err := e.model.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("model generation for agent %s: %w", inv.Agent, err)
	}

	out := make(map[string][]any, len(inv.Outputs))
	for _, spec := range inv.Outputs {
		for _, raw := range resp.Outputs[spec.Type] {
			payload, ok := e.registry.New(spec.Type)
			if !ok {
				return nil, fmt.Errorf("output type %s is not registered", spec.Type)
			}
			if err := json.Unmarshal(raw, payload); err != nil {
				return nil, fmt.Errorf("decoding %s instance: %w", spec.Type, err)
			}
			out[spec.Type] = append(out[spec.Type], payload)
		}
	}
	return out, nil
}

type inputArtifact struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func (e *ModelExecutor) buildRequest(inv *Invocation) (model.Request, error) {
	inputs := make([]inputArtifact, 0, len(inv.Group.Artifacts))
	for _, a := range inv.Group.Artifacts {
		inputs = append(inputs, inputArtifact{Type: a.Type, Payload: a.Payload})
	}
	inputJSON, err := json.Marshal(map[string]any{"artifacts": inputs})
	if err != nil {
		return model.Request{}, fmt.Errorf("encoding model input: %w", err)
	}

	outputs := make([]model.OutputSpec, 0, len(inv.Outputs))
	for _, spec := range inv.Outputs {
		prototype, ok := e.registry.New(spec.Type)
		if !ok {
			return model.Request{}, fmt.Errorf("output type %s is not registered", spec.Type)
		}
		_, max := spec.Bounds()
		outputs = append(outputs, model.OutputSpec{
			Type:   spec.Type,
			Count:  max,
			Schema: schema.FromType(prototype),
		})
	}

	instructions := e.instructions
	if instructions == "" {
		instructions = inv.Description
	}
	return model.Request{
		Instructions: instructions,
		Input:        inputJSON,
		Outputs:      outputs,
	}, nil
}
