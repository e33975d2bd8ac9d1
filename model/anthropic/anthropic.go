// Package anthropic provides a model wrapper for the Anthropic Claude API.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/whiteducksoftware/flock-go/model"
)

// Options configures the Anthropic model adapter (temperature, model id,
// max tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Model wraps the Anthropic Messages API behind the generic model.Model interface.
type Model struct {
	client *anthropic.Client
	opts   Options
}

var _ model.Model = (*Model)(nil)

// NewModel creates a new Anthropic model using the official client
func NewModel(optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Model{
		client: &client,
		opts:   opts,
	}
}

// NewModelFromClient creates a new Anthropic model from an existing client
func NewModelFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Model{
		client: client,
		opts:   opts,
	}
}

// Generate implements structured JSON generation against the Messages API.
func (m *Model) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	input := "{}"
	if len(req.Input) > 0 {
		input = string(req.Input)
	}

	params := anthropic.MessageNewParams{
		Model:       m.opts.Model,
		MaxTokens:   m.opts.MaxTokens,
		Temperature: anthropic.Float(m.opts.Temperature),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt(req)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(input)),
		},
	}

	resp, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(tb.Text)
		}
	}

	outputs, err := decodeOutputs(sb.String(), req.Outputs)
	if err != nil {
		return nil, err
	}
	return &model.Response{
		Outputs: outputs,
		Usage: &model.TokenUsage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
			TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		},
	}, nil
}

// Info returns metadata describing this Anthropic model implementation.
func (m *Model) Info() model.Info {
	return model.Info{Name: string(m.opts.Model), Provider: "anthropic"}
}

// systemPrompt renders the instruction block including the required output
// contract: a single JSON object keyed by output type name.
func systemPrompt(req model.Request) string {
	var sb strings.Builder
	if req.Instructions != "" {
		sb.WriteString(req.Instructions)
		sb.WriteString("\n\n")
	}
	sb.WriteString("Respond with a single JSON object and nothing else. For each required ")
	sb.WriteString("output type, the object maps the type name to an array with exactly the ")
	sb.WriteString("requested number of instances conforming to the given schema.\n")
	for _, spec := range req.Outputs {
		schemaJSON, _ := json.Marshal(spec.Schema)
		fmt.Fprintf(&sb, "- %q: %d instance(s), schema: %s\n", spec.Type, spec.Count, schemaJSON)
	}
	return sb.String()
}

// decodeOutputs parses the JSON object reply into per-type raw instances. A
// type the model answered with a single object instead of an array is
// accepted and wrapped.
func decodeOutputs(content string, specs []model.OutputSpec) (map[string][]json.RawMessage, error) {
	content = strings.TrimSpace(content)
	var reply map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &reply); err != nil {
		return nil, fmt.Errorf("model reply is not a JSON object: %w", err)
	}
	out := make(map[string][]json.RawMessage, len(specs))
	for _, spec := range specs {
		raw, ok := reply[spec.Type]
		if !ok {
			return nil, fmt.Errorf("model reply is missing output type %s", spec.Type)
		}
		var instances []json.RawMessage
		if err := json.Unmarshal(raw, &instances); err != nil {
			instances = []json.RawMessage{raw}
		}
		out[spec.Type] = instances
	}
	return out, nil
}
