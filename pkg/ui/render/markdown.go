package render

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	glamourstyles "github.com/charmbracelet/glamour/styles"
)

// Markdown renders a reply with glamour. When styled is false the
// plain-text style is used, for output that is not a terminal.
func Markdown(content string, styled bool, opts Options) (string, error) {
	style := glamourstyles.NoTTYStyle
	if styled {
		style = glamourstyles.DarkStyle
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(opts.wrapWidth()),
	)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := renderer.Render(content)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
