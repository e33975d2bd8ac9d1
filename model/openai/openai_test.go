package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whiteducksoftware/flock-go/model"
)

func TestDecodeOutputs(t *testing.T) {
	specs := []model.OutputSpec{{Type: "movie", Count: 2}}

	out, err := decodeOutputs(`{"movie":[{"title":"a"},{"title":"b"}]}`, specs)
	require.NoError(t, err)
	assert.Len(t, out["movie"], 2)
}

func TestDecodeOutputs_WrapsSingleObject(t *testing.T) {
	specs := []model.OutputSpec{{Type: "movie", Count: 1}}

	out, err := decodeOutputs(`{"movie":{"title":"a"}}`, specs)
	require.NoError(t, err)
	assert.Len(t, out["movie"], 1)
}

func TestDecodeOutputs_Errors(t *testing.T) {
	specs := []model.OutputSpec{{Type: "movie", Count: 1}}

	_, err := decodeOutputs(`not json`, specs)
	require.Error(t, err)

	_, err = decodeOutputs(`{"other":[]}`, specs)
	require.Error(t, err)
}

func TestSystemPrompt_ListsOutputContract(t *testing.T) {
	prompt := systemPrompt(model.Request{
		Instructions: "write movies",
		Outputs: []model.OutputSpec{{
			Type:   "movie",
			Count:  4,
			Schema: map[string]any{"type": "object"},
		}},
	})
	assert.Contains(t, prompt, "write movies")
	assert.Contains(t, prompt, `"movie"`)
	assert.Contains(t, prompt, "4 instance(s)")
}

func TestNewModel_DefaultOptions(t *testing.T) {
	m := NewModel(func(o *Options) { o.Temperature = 0.2 })
	info := m.Info()
	assert.Equal(t, "openai", info.Provider)
	assert.NotEmpty(t, info.Name)
	assert.Equal(t, 0.2, m.opts.Temperature)
}
