// Package render formats replies, model lists and configuration for the
// terminal. Output carries lipgloss styling; callers print it through
// lipgloss.Fprint so colors are downsampled for the destination.
package render

import (
	"os"
	"strings"
	"time"

	"aicorp_cli/pkg/ui/styles"

	"golang.org/x/term"
)

const (
	defaultWidth = 80
	maxRuleWidth = 80
	maxWrapWidth = 120
)

// Options controls layout.
type Options struct {
	// Width is the terminal width; zero uses 80 columns.
	Width int
	// Now stamps reply headers; nil uses time.Now.
	Now func() time.Time
}

func (o Options) width() int {
	if o.Width <= 0 {
		return defaultWidth
	}
	return o.Width
}

func (o Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

func (o Options) rule() string {
	return styles.RuleStyle.Render(strings.Repeat("─", min(o.width(), maxRuleWidth)))
}

func (o Options) wrapWidth() int {
	return max(min(o.width()-4, maxWrapWidth), 20)
}

// TerminalWidth reports the width of f when it is a terminal, else 0.
func TerminalWidth(f *os.File) int {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}
