package picker

import (
	"strings"

	"aicorp_cli/pkg/ai"
	"aicorp_cli/pkg/ui/components/utils"
	"aicorp_cli/pkg/ui/styles"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// SelectMsg is emitted when the user picks a model. Custom is set when the
// ID was typed by hand and is not in the listed options.
type SelectMsg struct {
	Model  ai.Model
	Custom bool
}

// CancelMsg is emitted when the picker is dismissed with Esc.
type CancelMsg struct{}

// ModelPicker provides a searchable list of models.
type ModelPicker struct {
	options  []ai.Model
	filter   string
	selected int
	scroll   int
	visible  bool
	width    int
	height   int
	current  string
	title    string
}

// NewModelPicker creates a hidden picker with the given title.
func NewModelPicker(title string) *ModelPicker {
	if title == "" {
		title = "Select a model"
	}
	return &ModelPicker{title: title}
}

// Show displays the picker, preselecting current when it is listed.
func (p *ModelPicker) Show(options []ai.Model, current string) {
	p.visible = true
	p.filter = ""
	p.selected = 0
	p.scroll = 0
	p.options = append([]ai.Model(nil), options...)
	p.current = current

	if current != "" {
		for i, option := range p.options {
			if option.ID == current {
				p.selected = i
				break
			}
		}
	}

	p.ensureVisible(p.filteredOptions(), p.listHeight())
}

func (p *ModelPicker) Hide() {
	p.visible = false
}

func (p *ModelPicker) IsVisible() bool {
	return p.visible
}

// Filter returns the current search text.
func (p *ModelPicker) Filter() string {
	return p.filter
}

// SetSize updates the picker dimensions.
func (p *ModelPicker) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// Update handles keyboard input for the picker.
func (p *ModelPicker) Update(msg tea.KeyPressMsg) tea.Cmd {
	if !p.visible {
		return nil
	}

	filtered := p.filteredOptions()
	listHeight := p.listHeight()

	switch msg.String() {
	case "up", "ctrl+p":
		if p.selected > 0 {
			p.selected--
		}
		p.ensureVisible(filtered, listHeight)
		return nil

	case "down", "ctrl+n":
		if p.selected < len(filtered)-1 {
			p.selected++
		}
		p.ensureVisible(filtered, listHeight)
		return nil

	case "pgup":
		p.selected -= listHeight
		p.ensureVisible(filtered, listHeight)
		return nil

	case "pgdown":
		p.selected += listHeight
		p.ensureVisible(filtered, listHeight)
		return nil

	case "home":
		p.selected = 0
		p.ensureVisible(filtered, listHeight)
		return nil

	case "end":
		p.selected = len(filtered) - 1
		p.ensureVisible(filtered, listHeight)
		return nil

	case "enter":
		return p.choose(filtered)

	case "esc":
		p.Hide()
		return func() tea.Msg { return CancelMsg{} }

	case "backspace":
		if len(p.filter) > 0 {
			runes := []rune(p.filter)
			p.filter = string(runes[:len(runes)-1])
			p.selected = 0
			p.scroll = 0
		}
		return nil

	default:
		if text := msg.Key().Text; text != "" {
			p.filter += text
			p.selected = 0
			p.scroll = 0
		}
		return nil
	}
}

func (p *ModelPicker) choose(filtered []ai.Model) tea.Cmd {
	var selected SelectMsg
	switch {
	case len(filtered) > 0 && p.selected < len(filtered):
		selected = SelectMsg{Model: filtered[p.selected]}
	case strings.TrimSpace(p.filter) != "":
		selected = SelectMsg{Model: ai.Model{ID: strings.TrimSpace(p.filter)}, Custom: true}
	default:
		return nil
	}
	p.Hide()
	return func() tea.Msg { return selected }
}

// View renders the picker.
func (p *ModelPicker) View() string {
	if !p.visible {
		return ""
	}

	boxWidth, contentWidth, listHeight := p.dimensions()
	descStyle := styles.TextMutedStyle

	var content strings.Builder
	content.WriteString(styles.TitleStyle.Render(p.title))
	content.WriteString("\n")

	content.WriteString(descStyle.Render("Search: "))
	if strings.TrimSpace(p.filter) == "" {
		content.WriteString(styles.PlaceholderStyle.Render("type to filter"))
	} else {
		content.WriteString(styles.FilterStyle.Render(p.filter))
	}
	content.WriteString("\n\n")

	filtered := p.filteredOptions()
	if len(filtered) == 0 {
		if strings.TrimSpace(p.filter) == "" {
			content.WriteString(descStyle.Render("No models available"))
		} else {
			content.WriteString(descStyle.Render("No matching models, Enter uses the typed ID"))
		}
		for i := 1; i < listHeight; i++ {
			content.WriteString("\n")
		}
		content.WriteString("\n")
	} else {
		labelWidth := p.maxLabelWidth(filtered, contentWidth)
		descWidth := max(contentWidth-2-labelWidth-1, 0)

		for i := 0; i < listHeight; i++ {
			index := p.scroll + i
			if index >= len(filtered) {
				content.WriteString("\n")
				continue
			}
			option := filtered[index]
			labelText := utils.PadPlain(utils.TruncateToWidth(optionLabel(option), labelWidth), labelWidth)

			desc := ""
			if descWidth > 0 {
				desc = utils.TruncateToWidth(p.optionDesc(option), descWidth)
			}

			if index == p.selected {
				line := "  " + labelText
				if desc != "" {
					line += " " + desc
				}
				content.WriteString(styles.SelectedStyle.Render(utils.PadPlain(line, contentWidth)))
			} else {
				line := styles.TextStyle.Render("  " + labelText)
				if desc != "" {
					line += " " + descStyle.Render(desc)
				}
				content.WriteString(line)
			}
			content.WriteString("\n")
		}
	}

	content.WriteString("\n")
	content.WriteString(styles.FooterStyle.Render("Up/Down Navigate | Enter Select | Esc Cancel"))

	return styles.BoxStyle.Width(boxWidth).Render(content.String())
}

func (p *ModelPicker) filteredOptions() []ai.Model {
	filter := strings.ToLower(strings.TrimSpace(p.filter))
	if filter == "" {
		return p.options
	}

	filtered := make([]ai.Model, 0, len(p.options))
	for _, option := range p.options {
		if strings.Contains(strings.ToLower(option.ID), filter) ||
			strings.Contains(strings.ToLower(option.DisplayName), filter) {
			filtered = append(filtered, option)
		}
	}
	return filtered
}

func (p *ModelPicker) ensureVisible(filtered []ai.Model, listHeight int) {
	if len(filtered) == 0 {
		p.selected = 0
		p.scroll = 0
		return
	}

	p.selected = min(max(p.selected, 0), len(filtered)-1)

	maxScroll := max(len(filtered)-listHeight, 0)
	if p.scroll > maxScroll {
		p.scroll = maxScroll
	}
	if p.selected < p.scroll {
		p.scroll = p.selected
	}
	if p.selected >= p.scroll+listHeight {
		p.scroll = p.selected - listHeight + 1
	}
	if p.scroll < 0 {
		p.scroll = 0
	}
}

// dimensions returns box width, content width and list height.
func (p *ModelPicker) dimensions() (int, int, int) {
	width := p.width
	height := p.height
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}

	boxWidth := min(max(width-2, 30), 90)
	contentWidth := max(boxWidth-6, 10)

	// title, search, blank, blank, footer plus border and padding
	const fixedLines = 5 + 4
	listHeight := max(height-fixedLines, 1)

	return boxWidth, contentWidth, listHeight
}

func (p *ModelPicker) listHeight() int {
	_, _, listHeight := p.dimensions()
	return listHeight
}

func (p *ModelPicker) maxLabelWidth(options []ai.Model, contentWidth int) int {
	const minLabelWidth = 8
	const prefixWidth = 2
	const gapWidth = 1

	maxWidth := minLabelWidth
	for _, option := range options {
		if width := lipgloss.Width(optionLabel(option)); width > maxWidth {
			maxWidth = width
		}
	}

	maxAllowed := max(contentWidth-prefixWidth-gapWidth, 4)
	return min(maxWidth, maxAllowed)
}

func optionLabel(option ai.Model) string {
	return option.ID
}

func (p *ModelPicker) optionDesc(option ai.Model) string {
	desc := option.DisplayName
	if option.ID == p.current {
		if desc != "" {
			desc += " "
		}
		desc += "(current)"
	}
	return desc
}
