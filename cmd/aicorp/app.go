package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"aicorp_cli/pkg/ai"
	"aicorp_cli/pkg/config"
	"aicorp_cli/pkg/logging"
	"aicorp_cli/pkg/platform"
	"aicorp_cli/pkg/ui/render"
	"aicorp_cli/pkg/ui/setup"
	"aicorp_cli/pkg/version"

	"charm.land/lipgloss/v2"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// app holds the process dependencies so tests can swap them.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// terminal is the stdout file when it is a TTY.
	terminal *os.File

	userConfigPath string
	logPath        string

	newResolver func(logger *slog.Logger) *config.Resolver
	clientOpts  []ai.Option
	runSetup    func(ctx context.Context, current config.Values, path string, lister setup.ModelLister) (config.Values, error)
}

func newApp() *app {
	a := &app{
		stdin:          os.Stdin,
		stdout:         os.Stdout,
		stderr:         os.Stderr,
		userConfigPath: config.UserConfigPath(),
		logPath:        config.LogPath(),
		newResolver: func(logger *slog.Logger) *config.Resolver {
			return config.NewResolver(config.WithLogger(logger))
		},
	}
	if render.IsTerminal(os.Stdout) {
		a.terminal = os.Stdout
	}
	a.runSetup = func(ctx context.Context, current config.Values, path string, lister setup.ModelLister) (config.Values, error) {
		return setup.Run(ctx, a.stdin, a.stdout, current, path, lister)
	}
	return a
}

func (a *app) run(ctx context.Context, args []string) int {
	opts, err := parseArgs(args, a.stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(a.stderr, "aicorp: %v\nRun 'aicorp -h' for usage.\n", err)
		return exitUsage
	}

	if opts.action == actionVersion {
		fmt.Fprint(a.stdout, version.Full())
		return exitOK
	}

	logger, _ := logging.Init(logging.Options{
		Verbosity: int(opts.verbosity),
		Console:   a.stderr,
	})

	if opts.action == actionSetup {
		return a.setup(ctx, logger)
	}

	cfg, err := a.newResolver(logger).Resolve()
	if err != nil {
		a.printError(err)
		return exitFailure
	}

	logger, err = logging.Init(logging.Options{
		Verbosity: int(opts.verbosity),
		File:      a.logPath,
		Console:   a.stderr,
		Redact:    cfg.Redactor(),
	})
	if err != nil {
		logger.Warn("File logging disabled", "path", a.logPath, "error", err)
	}
	logger.Debug("Configuration resolved", "config", cfg, "version", version.Summary(),
		"platform", platform.Current().Summary())

	if opts.action == actionShowConfig {
		a.print(render.ConfigSummary(cfg, platform.Descriptor(), a.userConfigPath, a.renderOptions()))
		return exitOK
	}

	clientOpts := append([]ai.Option{
		ai.WithTimeout(opts.timeout),
		ai.WithLogger(logger),
	}, a.clientOpts...)
	client, err := ai.NewClient(cfg, clientOpts...)
	if err != nil {
		a.printError(err)
		return exitFailure
	}

	switch opts.action {
	case actionListModels:
		return a.listModels(ctx, client)
	case actionPrompt, actionChat:
		return a.generate(ctx, client, opts, logger)
	}
	return exitUsage
}

func (a *app) listModels(ctx context.Context, client *ai.Client) int {
	models, err := client.ListModels(ctx)
	if err != nil {
		a.printError(err)
		return exitFailure
	}
	a.print(render.ModelTable(models, client.Config().DefaultModel, a.renderOptions()))
	return exitOK
}

func (a *app) generate(ctx context.Context, client *ai.Client, opts options, logger *slog.Logger) int {
	params, err := ai.ValidateParameters(opts.params)
	if err != nil {
		a.printError(err)
		return exitUsage
	}

	var msgs ai.ValidatedMessages
	if opts.action == actionChat {
		msgs, err = a.readConversation(opts.chatFile)
		if err != nil {
			a.printError(err)
			return exitFailure
		}
	}

	if opts.model != "" {
		model, code, ok := a.checkModel(ctx, client, opts.model, logger)
		if !ok {
			return code
		}
		opts.model = model
	}

	var reply ai.GeneratedText
	if opts.action == actionChat {
		reply, err = client.SendChatPrompt(ctx, msgs, opts.model, params)
	} else {
		reply, err = client.SendPrompt(ctx, opts.prompt, opts.model, params)
	}
	if err != nil {
		a.printError(err)
		return exitFailure
	}
	logger.Info("Reply received",
		"model", reply.Model,
		"finish_reason", reply.FinishReason,
		"total_tokens", reply.Usage.TotalTokens)

	fallbackModel := opts.model
	if fallbackModel == "" {
		fallbackModel = client.Config().DefaultModel
	}
	if err := a.printReply(reply, fallbackModel, opts.markdown); err != nil {
		a.printError(err)
		return exitFailure
	}

	if opts.copy {
		if err := render.CopyToClipboard(a.clipboardWriter(), render.CopyText(reply.Text)); err != nil {
			logger.Warn("Copy to clipboard failed", "error", err)
		} else {
			lipgloss.Fprint(a.stderr, render.Success("Copied to clipboard"))
		}
	}
	return exitOK
}

// checkModel verifies that an explicitly requested model is listed and
// returns the ID to send, so a display name resolves to its model ID. When
// the list cannot be fetched the request goes ahead unchecked.
func (a *app) checkModel(ctx context.Context, client *ai.Client, model string, logger *slog.Logger) (string, int, bool) {
	models, err := client.ListModels(ctx)
	if err != nil {
		logger.Warn("Could not verify model", "model", model, "error", err)
		return model, exitOK, true
	}
	if m, found := ai.FindModel(models, model); found {
		if m.ID != model {
			logger.Info("Resolved model name", "name", model, "id", m.ID)
		}
		return m.ID, exitOK, true
	}
	a.printError(fmt.Errorf("model %q not found in available models", model))
	a.print(render.ModelTable(models, client.Config().DefaultModel, a.renderOptions()))
	return "", exitFailure, false
}

func (a *app) readConversation(name string) (ai.ValidatedMessages, error) {
	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(a.stdin)
	} else {
		data, err = os.ReadFile(filepath.Clean(name))
	}
	if err != nil {
		return ai.ValidatedMessages{}, fmt.Errorf("read conversation: %w", err)
	}
	return ai.ParseMessages(data)
}

func (a *app) printReply(reply ai.GeneratedText, fallbackModel string, markdown bool) error {
	if !markdown {
		a.print(render.Response(reply, fallbackModel, a.renderOptions()))
		return nil
	}
	out, err := render.Markdown(reply.Text, a.terminal != nil, a.renderOptions())
	if err != nil {
		return err
	}
	a.print(out)
	return nil
}

func (a *app) setup(ctx context.Context, logger *slog.Logger) int {
	current, err := config.LoadFile(a.userConfigPath)
	if err != nil {
		logger.Warn("Ignoring unreadable config file", "path", a.userConfigPath, "error", err)
		current = config.Values{}
	}

	lister := func(ctx context.Context, baseURL, apiKey string) ([]ai.Model, error) {
		cfg := config.Config{BaseURL: baseURL, APIKey: apiKey}
		opts := append([]ai.Option{ai.WithLogger(logger)}, a.clientOpts...)
		client, err := ai.NewClient(cfg, opts...)
		if err != nil {
			return nil, err
		}
		return client.ListModels(ctx)
	}

	if _, err := a.runSetup(ctx, current, a.userConfigPath, lister); err != nil {
		if errors.Is(err, setup.ErrCancelled) {
			fmt.Fprintln(a.stderr, "Configuration cancelled")
			return exitFailure
		}
		a.printError(err)
		return exitFailure
	}
	lipgloss.Fprint(a.stdout, render.Success("Configuration saved to "+a.userConfigPath))
	fmt.Fprintln(a.stdout, `You can now run: aicorp -p "Your prompt here"`)
	return exitOK
}

func (a *app) renderOptions() render.Options {
	return render.Options{Width: render.TerminalWidth(a.terminal)}
}

// clipboardWriter keeps OSC52 sequences out of piped output.
func (a *app) clipboardWriter() io.Writer {
	if a.terminal != nil {
		return a.terminal
	}
	return a.stderr
}

func (a *app) print(s string) {
	lipgloss.Fprint(a.stdout, s)
}

func (a *app) printError(err error) {
	lipgloss.Fprint(a.stderr, render.Error(err))
}
