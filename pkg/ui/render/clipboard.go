package render

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/aymanbagabas/go-osc52/v2"
)

// ErrNothingToCopy is returned when the clipboard text is empty.
var ErrNothingToCopy = errors.New("nothing to copy")

// CopyToClipboard writes text to the terminal clipboard with an OSC52
// sequence, wrapped for tmux or screen when running inside one.
func CopyToClipboard(w io.Writer, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrNothingToCopy
	}
	seq := osc52.New(text)
	switch {
	case os.Getenv("TMUX") != "":
		seq = seq.Tmux()
	case os.Getenv("STY") != "":
		seq = seq.Screen()
	}
	_, err := seq.WriteTo(w)
	return err
}
