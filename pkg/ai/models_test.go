package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestParseModels_Shapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []Model
	}{
		{
			name: "envelope",
			body: `{"data":[{"id":"llama3","name":"Llama 3","owned_by":"ollama"},{"id":"gpt-x"}]}`,
			want: []Model{{ID: "llama3", DisplayName: "Llama 3", OwnedBy: "ollama"}, {ID: "gpt-x"}},
		},
		{
			name: "models envelope",
			body: `{"models":[{"name":"only-name"}]}`,
			want: []Model{{ID: "only-name"}},
		},
		{
			name: "bare list of objects",
			body: `[{"id":"b"},{"id":"a","name":"a"}]`,
			want: []Model{{ID: "b"}, {ID: "a"}},
		},
		{
			name: "bare list of names",
			body: `["Azion Copilot","other"]`,
			want: []Model{{ID: "Azion Copilot"}, {ID: "other"}},
		},
		{
			name: "empty envelope",
			body: `{"data":[]}`,
			want: []Model{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseModels([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseModels_Rejects(t *testing.T) {
	for _, body := range []string{
		`not json`,
		`{"object":"list"}`,
		`{"data":{"id":"x"}}`,
		`"just a string"`,
		`[{"owned_by":"nobody"}]`,
		`[42]`,
	} {
		_, err := parseModels([]byte(body))
		assert.Error(t, err, body)
	}
}

func TestDetectModelsShape(t *testing.T) {
	assert.Equal(t, shapeList, detectModelsShape(gjsonParse(`[]`)))
	assert.Equal(t, shapeEnvelope, detectModelsShape(gjsonParse(`{"data":[]}`)))
	assert.Equal(t, shapeUnknown, detectModelsShape(gjsonParse(`{"data":null}`)))
}

func TestFindModel(t *testing.T) {
	models := []Model{{ID: "llama3", DisplayName: "Llama 3"}, {ID: "Azion Copilot"}}

	m, ok := FindModel(models, "Llama 3")
	assert.True(t, ok)
	assert.Equal(t, "llama3", m.ID)

	_, ok = FindModel(models, "missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"llama3", "Azion Copilot"}, ModelIDs(models))
	assert.Equal(t, "Llama 3", models[0].Name())
	assert.Equal(t, "Azion Copilot", models[1].Name())
}

func TestParseCompletion(t *testing.T) {
	text, err := parseCompletion([]byte(`{"model":"m","choices":[{"finish_reason":"stop","message":{"content":"hi"}}],"usage":{"total_tokens":7}}`))
	require.NoError(t, err)
	assert.Equal(t, GeneratedText{Text: "hi", Model: "m", FinishReason: "stop", Usage: Usage{TotalTokens: 7}}, text)

	for _, body := range []string{`{}`, `{"choices":[]}`, `{"choices":[{"message":{"content":null}}]}`, `<html>`} {
		_, err := parseCompletion([]byte(body))
		assert.Error(t, err, body)
	}
}

func gjsonParse(s string) gjson.Result {
	return gjson.Parse(s)
}
