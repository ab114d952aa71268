package ai

import (
	"errors"

	"github.com/tidwall/gjson"
)

// Usage reports token accounting for a completion, when the service
// returns it.
type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
}

// GeneratedText is the result of a completion call.
type GeneratedText struct {
	Text         string
	Model        string
	FinishReason string
	Usage        Usage
}

const completionContentPath = "choices.0.message.content"

func parseCompletion(body []byte) (GeneratedText, error) {
	if !gjson.ValidBytes(body) {
		return GeneratedText{}, errors.New("response is not valid JSON")
	}
	root := gjson.ParseBytes(body)

	content := root.Get(completionContentPath)
	if content.Type != gjson.String {
		return GeneratedText{}, errors.New("missing choices[0].message.content")
	}

	usage := root.Get("usage")
	return GeneratedText{
		Text:         content.Str,
		Model:        root.Get("model").String(),
		FinishReason: root.Get("choices.0.finish_reason").String(),
		Usage: Usage{
			PromptTokens:     usage.Get("prompt_tokens").Int(),
			CompletionTokens: usage.Get("completion_tokens").Int(),
			TotalTokens:      usage.Get("total_tokens").Int(),
		},
	}, nil
}
