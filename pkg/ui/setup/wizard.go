// Package setup implements the interactive configuration wizard behind
// `aicorp --setup`.
package setup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"aicorp_cli/pkg/ai"
	"aicorp_cli/pkg/config"
	"aicorp_cli/pkg/ui/components/picker"
	"aicorp_cli/pkg/ui/styles"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// ErrCancelled is returned by Run when the user leaves without saving.
var ErrCancelled = errors.New("setup cancelled")

// ModelLister fetches the models offered in the model step.
type ModelLister func(ctx context.Context, baseURL, apiKey string) ([]ai.Model, error)

type step int

const (
	stepBaseURL step = iota
	stepAPIKey
	stepModel
	stepConfirm
	stepDone
)

type modelsLoadedMsg struct {
	models []ai.Model
	err    error
}

// Wizard is the bubbletea model for the setup flow.
type Wizard struct {
	ctx     context.Context
	path    string
	current config.Values
	values  config.Values
	lister  ModelLister

	step    step
	input   textinput.Model
	spinner spinner.Model
	picker  *picker.ModelPicker

	loading     bool
	manualModel bool
	listErr     error
	errMsg      string
	saveErr     error
	cancelled   bool

	width  int
	height int
}

// New creates a wizard that edits current and saves to path.
func New(ctx context.Context, current config.Values, path string, lister ModelLister) *Wizard {
	if current == nil {
		current = config.Values{}
	}
	w := &Wizard{
		ctx:     ctx,
		path:    path,
		current: current,
		values:  config.Values{},
		lister:  lister,
		input:   textinput.New(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.TitleStyle)),
		picker:  picker.NewModelPicker("3. Default model"),
	}
	w.values.Set(config.KeySystemPromptFile, current.Get(config.KeySystemPromptFile))
	w.enterBaseURL()
	return w
}

func (w *Wizard) Init() tea.Cmd {
	return w.input.Focus()
}

// Saved reports whether the configuration was written.
func (w *Wizard) Saved() bool {
	return w.step == stepDone && w.saveErr == nil
}

// Values returns the values collected so far.
func (w *Wizard) Values() config.Values {
	return w.values
}

func (w *Wizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width, w.height = msg.Width, msg.Height
		w.picker.SetSize(msg.Width, msg.Height)
		return w, nil

	case modelsLoadedMsg:
		return w, w.modelsLoaded(msg)

	case spinner.TickMsg:
		if !w.loading {
			return w, nil
		}
		var cmd tea.Cmd
		w.spinner, cmd = w.spinner.Update(msg)
		return w, cmd

	case picker.SelectMsg:
		w.values.Set(config.KeyDefaultModel, msg.Model.ID)
		w.step = stepConfirm
		return w, nil

	case picker.CancelMsg:
		w.values.Set(config.KeyDefaultModel, w.current.Get(config.KeyDefaultModel))
		w.step = stepConfirm
		return w, nil

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			return w, w.cancel()
		}
		return w, w.handleKey(msg)
	}

	var cmd tea.Cmd
	w.input, cmd = w.input.Update(msg)
	return w, cmd
}

func (w *Wizard) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch w.step {
	case stepModel:
		if w.loading {
			if msg.String() == "esc" {
				return w.cancel()
			}
			return nil
		}
		if !w.manualModel {
			return w.picker.Update(msg)
		}
	case stepConfirm:
		return w.handleConfirm(msg)
	case stepDone:
		return nil
	}

	switch msg.String() {
	case "esc":
		return w.cancel()
	case "enter":
		return w.submit()
	}

	var cmd tea.Cmd
	w.input, cmd = w.input.Update(msg)
	return cmd
}

func (w *Wizard) submit() tea.Cmd {
	value := strings.TrimSpace(w.input.Value())
	w.errMsg = ""

	switch w.step {
	case stepBaseURL:
		switch {
		case strings.EqualFold(value, "d"):
			value = config.DefaultBaseURL
		case value == "":
			value = w.current.Get(config.KeyBaseURL)
			if value == "" {
				value = config.DefaultBaseURL
			}
		}
		value = strings.TrimRight(value, "/")
		if err := config.ValidateBaseURL(value); err != nil {
			w.errMsg = err.Error()
			return nil
		}
		w.values.Set(config.KeyBaseURL, value)
		return w.enterAPIKey()

	case stepAPIKey:
		if value == "" {
			value = w.current.Get(config.KeyAPIKey)
		}
		if value == "" {
			w.errMsg = "An API key is required"
			return nil
		}
		w.values.Set(config.KeyAPIKey, value)
		return w.enterModel()

	case stepModel:
		if value == "" {
			value = w.current.Get(config.KeyDefaultModel)
		}
		w.values.Set(config.KeyDefaultModel, value)
		w.input.Blur()
		w.step = stepConfirm
	}
	return nil
}

func (w *Wizard) handleConfirm(msg tea.KeyPressMsg) tea.Cmd {
	switch strings.ToLower(msg.String()) {
	case "enter", "y":
		if err := config.Save(w.path, w.values); err != nil {
			w.saveErr = err
			w.errMsg = err.Error()
			return tea.Quit
		}
		w.step = stepDone
		return tea.Quit
	case "n", "esc":
		return w.cancel()
	case "b":
		return w.enterBaseURL()
	}
	return nil
}

func (w *Wizard) cancel() tea.Cmd {
	w.cancelled = true
	w.input.Blur()
	return tea.Quit
}

func (w *Wizard) enterBaseURL() tea.Cmd {
	w.step = stepBaseURL
	w.resetInput(w.current.Get(config.KeyBaseURL), config.DefaultBaseURL)
	w.input.EchoMode = textinput.EchoNormal
	return w.input.Focus()
}

func (w *Wizard) enterAPIKey() tea.Cmd {
	w.step = stepAPIKey
	w.resetInput(config.MaskSecret(w.current.Get(config.KeyAPIKey)), "paste your API key")
	w.input.EchoMode = textinput.EchoPassword
	return w.input.Focus()
}

func (w *Wizard) enterModel() tea.Cmd {
	w.step = stepModel
	w.input.Blur()
	w.input.EchoMode = textinput.EchoNormal
	if w.lister == nil {
		return w.enterManualModel(nil)
	}
	w.loading = true
	return tea.Batch(w.spinner.Tick, w.fetchModels())
}

func (w *Wizard) enterManualModel(err error) tea.Cmd {
	w.manualModel = true
	w.listErr = err
	w.resetInput(w.current.Get(config.KeyDefaultModel), "model ID")
	return w.input.Focus()
}

func (w *Wizard) resetInput(current, fallback string) {
	w.input.Reset()
	w.input.Placeholder = fallback
	if current != "" {
		w.input.Placeholder = current
	}
}

func (w *Wizard) fetchModels() tea.Cmd {
	ctx := w.ctx
	baseURL := w.values.Get(config.KeyBaseURL)
	apiKey := w.values.Get(config.KeyAPIKey)
	lister := w.lister
	return func() tea.Msg {
		models, err := lister(ctx, baseURL, apiKey)
		return modelsLoadedMsg{models: models, err: err}
	}
}

func (w *Wizard) modelsLoaded(msg modelsLoadedMsg) tea.Cmd {
	w.loading = false
	if msg.err != nil || len(msg.models) == 0 {
		if msg.err == nil {
			msg.err = errors.New("the service returned no models")
		}
		return w.enterManualModel(msg.err)
	}
	w.manualModel = false
	w.picker.Show(msg.models, w.current.Get(config.KeyDefaultModel))
	return nil
}

func (w *Wizard) View() tea.View {
	return tea.NewView(w.render())
}

func (w *Wizard) render() string {
	if w.cancelled || w.step == stepDone {
		return ""
	}
	if w.step == stepModel && !w.loading && !w.manualModel {
		return w.picker.View() + "\n"
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("AI Corp Configuration Setup"))
	b.WriteString("\n")
	b.WriteString(styles.TextMutedStyle.Render("Configuration file: " + w.path))
	b.WriteString("\n\n")

	switch w.step {
	case stepBaseURL:
		w.renderField(&b, "1. WebUI Base URL",
			"The base URL of your AI Corp WebUI endpoint. Enter keeps the current value, 'd' restores the default.")
	case stepAPIKey:
		w.renderField(&b, "2. API Key", "Used as a bearer token. Enter keeps the current key.")
	case stepModel:
		if w.loading {
			b.WriteString(styles.TextBoldStyle.Render("3. Default Model"))
			b.WriteString("\n")
			b.WriteString(w.spinner.View() + " Fetching available models...")
			b.WriteString("\n")
		} else {
			desc := "The model used when -m is not given. Enter keeps the current model."
			if w.listErr != nil {
				desc = fmt.Sprintf("Could not fetch models (%v). Type a model ID.", w.listErr)
			}
			w.renderField(&b, "3. Default Model", desc)
		}
	case stepConfirm:
		w.renderSummary(&b)
	}

	if w.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorStyle.Render(w.errMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if w.step == stepConfirm {
		b.WriteString(styles.FooterStyle.Render("Enter/y Save | b Start over | n/Esc Cancel"))
	} else {
		b.WriteString(styles.FooterStyle.Render("Enter Next | Esc Cancel"))
	}
	return styles.BoxStyle.Render(b.String()) + "\n"
}

func (w *Wizard) renderField(b *strings.Builder, title, desc string) {
	b.WriteString(styles.TextBoldStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(styles.TextMutedStyle.Render(desc))
	b.WriteString("\n\n")
	b.WriteString(w.input.View())
	b.WriteString("\n")
}

func (w *Wizard) renderSummary(b *strings.Builder) {
	b.WriteString(styles.TextBoldStyle.Render("Configuration Summary"))
	b.WriteString("\n")
	for _, key := range config.Keys {
		value := w.values.Get(key)
		if key == config.KeyAPIKey {
			value = config.MaskSecret(value)
		}
		if value == "" {
			value = styles.PlaceholderStyle.Render("(not set)")
		}
		b.WriteString(styles.LabelStyle.Render(key))
		b.WriteString(" ")
		b.WriteString(styles.ValueStyle.Render(value))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.TextStyle.Render("Save this configuration? [Y/n]"))
	b.WriteString("\n")
}

// Run executes the wizard on the given terminal streams. It returns the
// saved values, ErrCancelled, or the error that stopped the save.
func Run(ctx context.Context, in io.Reader, out io.Writer, current config.Values, path string, lister ModelLister) (config.Values, error) {
	wizard := New(ctx, current, path, lister)
	program := tea.NewProgram(wizard,
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	if _, err := program.Run(); err != nil {
		return nil, fmt.Errorf("run setup: %w", err)
	}
	if wizard.saveErr != nil {
		return nil, wizard.saveErr
	}
	if !wizard.Saved() {
		return nil, ErrCancelled
	}
	return wizard.Values(), nil
}
