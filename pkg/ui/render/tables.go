package render

import (
	"fmt"
	"strings"

	"aicorp_cli/pkg/ai"
	"aicorp_cli/pkg/config"
	"aicorp_cli/pkg/ui/components/utils"
	"aicorp_cli/pkg/ui/styles"

	"github.com/mattn/go-runewidth"
)

const maxIDColumn = 48

// ModelTable renders the model list, one model per line, marking the
// configured default.
func ModelTable(models []ai.Model, defaultModel string, opts Options) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(styles.TitleStyle.Render(fmt.Sprintf("Available Models (%d total):", len(models))))
	b.WriteString("\n")
	b.WriteString(opts.rule())
	b.WriteString("\n")

	if len(models) == 0 {
		b.WriteString(styles.TextMutedStyle.Render("No models found"))
		b.WriteString("\n")
	}

	idWidth := 0
	for _, m := range models {
		idWidth = max(idWidth, runewidth.StringWidth(m.ID))
	}
	idWidth = min(idWidth, maxIDColumn)

	for _, m := range models {
		id := utils.TruncateToWidth(m.ID, idWidth)

		var notes []string
		if m.DisplayName != "" && m.DisplayName != m.ID {
			notes = append(notes, "("+m.DisplayName+")")
		}
		if defaultModel != "" && (m.ID == defaultModel || m.DisplayName == defaultModel) {
			notes = append(notes, "[default]")
		}

		if len(notes) == 0 {
			b.WriteString(styles.TextBoldStyle.Render(id))
		} else {
			b.WriteString(styles.TextBoldStyle.Render(utils.PadPlain(id, idWidth)))
			b.WriteString(" ")
			b.WriteString(styles.TextMutedStyle.Render(strings.Join(notes, " ")))
		}
		b.WriteString("\n")
	}

	b.WriteString(opts.rule())
	b.WriteString("\n")
	b.WriteString(styles.FooterStyle.Render(`Usage: aicorp -m "<Model ID>" -p "Your prompt"`))
	b.WriteString("\n")
	return b.String()
}

// ConfigSummary renders the resolved configuration with the API key masked
// and the source of each value.
func ConfigSummary(cfg config.Config, platformInfo, userFile string, opts Options) string {
	values := map[string]string{
		config.KeyBaseURL:          cfg.BaseURL,
		config.KeyAPIKey:           config.MaskSecret(cfg.APIKey),
		config.KeyDefaultModel:     cfg.DefaultModel,
		config.KeySystemPromptFile: cfg.SystemPromptFile,
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Configuration"))
	b.WriteString("\n")
	b.WriteString(opts.rule())
	b.WriteString("\n")

	for _, key := range config.Keys {
		value := values[key]
		origin := cfg.Origin(key)
		switch {
		case value == "":
			value = "(unset)"
			origin = ""
		case origin == "":
			origin = config.OriginDefault
		}
		writeField(&b, key, value, origin)
	}
	writeField(&b, "Platform", platformInfo, "")
	writeField(&b, "User file", userFile, "")

	b.WriteString(opts.rule())
	b.WriteString("\n")
	return b.String()
}

func writeField(b *strings.Builder, label, value, origin string) {
	b.WriteString(styles.LabelStyle.Render(label))
	b.WriteString(" ")
	b.WriteString(styles.ValueStyle.Render(value))
	if origin != "" {
		b.WriteString(" ")
		b.WriteString(styles.TextMutedStyle.Render("(" + origin + ")"))
	}
	b.WriteString("\n")
}

// Error renders an error line for the terminal.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return styles.ErrorStyle.Render("✗ Error: ") + styles.TextStyle.Render(err.Error()) + "\n"
}

// Success renders a confirmation line.
func Success(msg string) string {
	return styles.SuccessStyle.Render("✓ "+msg) + "\n"
}
