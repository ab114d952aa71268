package render

import (
	"fmt"
	"strings"

	"aicorp_cli/pkg/ai"
	"aicorp_cli/pkg/ui/components/utils"
	"aicorp_cli/pkg/ui/styles"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const commandHint = "Command: "

var tokenPrinter = message.NewPrinter(language.English)

// Response renders a reply: a header line with model, token count and time,
// the wrapped body and rules around it. Lines inside fenced code blocks
// are printed trimmed and highlighted so they can be copied as commands.
func Response(reply ai.GeneratedText, fallbackModel string, opts Options) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(styles.TextMutedStyle.Render(responseHeader(reply, fallbackModel, opts)))
	b.WriteString("\n")
	b.WriteString(opts.rule())
	b.WriteString("\n")

	for _, line := range responseBody(reply.Text, opts.wrapWidth()) {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(opts.rule())
	b.WriteString("\n")
	return b.String()
}

func responseHeader(reply ai.GeneratedText, fallbackModel string, opts Options) string {
	model := reply.Model
	if model == "" {
		model = fallbackModel
	}
	if model == "" {
		model = "unknown"
	}
	stamp := opts.now().Format("15:04:05")
	if reply.Usage.TotalTokens > 0 {
		return tokenPrinter.Sprintf("[%s] %d tokens | %s", model, reply.Usage.TotalTokens, stamp)
	}
	return fmt.Sprintf("[%s] %s", model, stamp)
}

func responseBody(content string, wrapWidth int) []string {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	var rendered []string
	inCode := false
	for _, line := range strings.Split(normalized, "\n") {
		line = strings.ReplaceAll(line, "\t", "    ")
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inCode = !inCode
			if inCode {
				rendered = append(rendered,
					styles.TextBoldStyle.Render(commandHint)+styles.TextMutedStyle.Render("(use --copy to copy the first block)"),
					"")
			} else {
				rendered = append(rendered, "")
			}
			continue
		}

		if inCode {
			rendered = append(rendered, renderCodeLine(line))
			continue
		}
		rendered = append(rendered, renderTextLine(line, wrapWidth)...)
	}
	return rendered
}

func renderCodeLine(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return ""
	}
	return styles.CodeStyle.Render(trimmed)
}

func renderTextLine(line string, wrapWidth int) []string {
	if strings.TrimSpace(line) == "" {
		return []string{""}
	}
	wrapped := strings.Split(utils.Wrap(line, wrapWidth), "\n")
	out := make([]string, len(wrapped))
	for i, l := range wrapped {
		out[i] = styles.TextStyle.Render(l)
	}
	return out
}
