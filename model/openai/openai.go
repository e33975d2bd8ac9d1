// Package openai provides an implementation of model.Model using the OpenAI
// Chat Completions API in JSON mode. It renders the normalized structured
// generation request into chat messages and decodes the JSON object reply
// back into per-type output instances.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"

	"github.com/whiteducksoftware/flock-go/model"
)

// Options configure the OpenAI model adapter.
// Fields mirror a subset of Chat Completion parameters intentionally kept
// minimal; extend via functional options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Model wraps the OpenAI Chat Completions API behind the generic model.Model interface.
type Model struct {
	client *openai.Client
	opts   Options
}

var _ model.Model = (*Model)(nil)

// NewModel creates a new OpenAI model using the official client
func NewModel(optFns ...func(o *Options)) *Model {
	client := openai.NewClient()
	return NewModelFromClient(&client, optFns...)
}

// NewModelFromClient creates a new OpenAI model from an existing client
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Generate implements structured JSON generation against Chat Completions.
func (m *Model) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt(req)),
			openai.UserMessage(userPrompt(req)),
		},
		Model:               m.opts.Model,
		Temperature:         openai.Float(m.opts.Temperature),
		MaxCompletionTokens: openai.Int(m.opts.MaxCompletionTokens),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned")
	}

	outputs, err := decodeOutputs(resp.Choices[0].Message.Content, req.Outputs)
	if err != nil {
		return nil, err
	}
	return &model.Response{
		Outputs: outputs,
		Usage: &model.TokenUsage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

// Info returns metadata describing this OpenAI model implementation.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "openai"}
}

// systemPrompt renders the instruction block including the required output
// contract: a single JSON object keyed by output type name.
func systemPrompt(req model.Request) string {
	var sb strings.Builder
	if req.Instructions != "" {
		sb.WriteString(req.Instructions)
		sb.WriteString("\n\n")
	}
	sb.WriteString("Respond with a single JSON object. For each required output type, ")
	sb.WriteString("the object maps the type name to an array with exactly the requested ")
	sb.WriteString("number of instances conforming to the given schema.\n")
	for _, spec := range req.Outputs {
		schemaJSON, _ := json.Marshal(spec.Schema)
		fmt.Fprintf(&sb, "- %q: %d instance(s), schema: %s\n", spec.Type, spec.Count, schemaJSON)
	}
	return sb.String()
}

// userPrompt renders the triggering artifacts as the user turn.
func userPrompt(req model.Request) string {
	if len(req.Input) == 0 {
		return "{}"
	}
	return string(req.Input)
}

// decodeOutputs parses the JSON object reply into per-type raw instances. A
// type the model answered with a single object instead of an array is
// accepted and wrapped.
func decodeOutputs(content string, specs []model.OutputSpec) (map[string][]json.RawMessage, error) {
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
