package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateToWidth(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  string
	}{
		{"gpt-4o", 10, "gpt-4o"},
		{"gpt-4o-mini", 8, "gpt-4..."},
		{"gpt-4o", 3, "gpt"},
		{"gpt-4o", 0, ""},
		{"模型名称", 5, "模..."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TruncateToWidth(tt.text, tt.width), "%q/%d", tt.text, tt.width)
	}
}

func TestTrimToWidth_WideRunes(t *testing.T) {
	assert.Equal(t, "模型", TrimToWidth("模型名称", 5))
}

func TestPadPlain(t *testing.T) {
	assert.Equal(t, "ab   ", PadPlain("ab", 5))
	assert.Equal(t, "abcdef", PadPlain("abcdef", 3))
	assert.Equal(t, "ab", PadPlain("ab", 0))
}

func TestWrap(t *testing.T) {
	assert.Equal(t, "one two\nthree", Wrap("one two three", 8))
	assert.Equal(t, "abcd\nefgh", Wrap("abcdefgh", 4))
	assert.Equal(t, "keep\n\nlines", Wrap("keep\n\nlines", 20))
	assert.Equal(t, "as is", Wrap("as is", 0))
}
