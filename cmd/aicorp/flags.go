package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"aicorp_cli/pkg/ai"

	"github.com/tidwall/gjson"
)

// errUsage marks argument errors; main exits with status 2 for them.
var errUsage = errors.New("usage error")

type action int

const (
	actionNone action = iota
	actionListModels
	actionPrompt
	actionChat
	actionSetup
	actionShowConfig
	actionVersion
)

type options struct {
	action    action
	prompt    string
	chatFile  string
	model     string
	params    paramFlag
	verbosity countFlag
	timeout   time.Duration
	copy      bool
	markdown  bool
}

// countFlag counts repeated boolean flags such as -v -v.
type countFlag int

func (c *countFlag) String() string   { return strconv.Itoa(int(*c)) }
func (c *countFlag) IsBoolFlag() bool { return true }

func (c *countFlag) Set(value string) error {
	on, err := strconv.ParseBool(value)
	if err != nil {
		return err
	}
	if on {
		*c++
	}
	return nil
}

// paramFlag collects repeated -P key=value generation parameters. Values
// that parse as JSON keep their JSON type, anything else is a string.
// Numbers stay json.Number so large integers such as seeds are exact.
type paramFlag map[string]any

func (p *paramFlag) String() string {
	if p == nil || len(*p) == 0 {
		return ""
	}
	keys := make([]string, 0, len(*p))
	for k := range *p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}

func (p *paramFlag) Set(raw string) error {
	key, value, ok := strings.Cut(raw, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", raw)
	}
	if *p == nil {
		*p = paramFlag{}
	}
	(*p)[key] = parseParamValue(strings.TrimSpace(value))
	return nil
}

func parseParamValue(value string) any {
	if value == "" || !gjson.Valid(value) {
		return value
	}
	res := gjson.Parse(value)
	if res.Type == gjson.Number {
		return json.Number(res.Raw)
	}
	return res.Value()
}

const usageText = `Usage: aicorp [-l | -p PROMPT | --chat FILE | --setup | --show-config | --version]
              [-m MODEL] [-P key=value ...] [--timeout 30s] [--copy] [--markdown] [-v...]

AI Corp WebUI client for model listing and text generation.

Examples:
  aicorp --list-models                     Show available models
  aicorp --prompt "Hello, world!"          Send a prompt with the default model
  aicorp -m gpt-4o -p "Hi!" -P temperature=0.2
  aicorp --chat conversation.json          Send a JSON conversation ("-" reads stdin)
  aicorp -vvv --list-models                Debug logging on stderr

Flags:
`

func newFlagSet(opts *options, output io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("aicorp", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprint(output, usageText)
		fs.PrintDefaults()
		fmt.Fprintf(output, "\nGeneration parameters: %s\n", strings.Join(ai.SupportedParameters(), ", "))
	}

	var list, setup, showConfig, version bool
	fs.BoolVar(&list, "l", false, "show available models")
	fs.BoolVar(&list, "list-models", false, "show available models")
	fs.StringVar(&opts.prompt, "p", "", "send `PROMPT` to the service")
	fs.StringVar(&opts.prompt, "prompt", "", "send `PROMPT` to the service")
	fs.StringVar(&opts.chatFile, "chat", "", "send the JSON conversation in `FILE` (- for stdin)")
	fs.StringVar(&opts.model, "m", "", "`MODEL` to use instead of DEFAULT_MODEL")
	fs.StringVar(&opts.model, "model", "", "`MODEL` to use instead of DEFAULT_MODEL")
	fs.Var(&opts.params, "P", "generation parameter as `key=value`, repeatable")
	fs.Var(&opts.params, "param", "generation parameter as `key=value`, repeatable")
	fs.Var(&opts.verbosity, "v", "increase log verbosity (-v warn, -vv info, -vvv debug)")
	fs.Var(&opts.verbosity, "verbose", "increase log verbosity")
	fs.DurationVar(&opts.timeout, "timeout", ai.DefaultTimeout, "per-request `timeout`")
	fs.BoolVar(&opts.copy, "copy", false, "copy the first code block of the reply to the clipboard")
	fs.BoolVar(&opts.markdown, "markdown", false, "render the reply as Markdown")
	fs.BoolVar(&setup, "setup", false, "run the interactive configuration wizard")
	fs.BoolVar(&showConfig, "show-config", false, "print the resolved configuration with the key masked")
	fs.BoolVar(&version, "version", false, "print version information")

	return fs
}

// parseArgs parses the command line. Help requests return flag.ErrHelp;
// every other problem wraps errUsage.
func parseArgs(args []string, output io.Writer) (options, error) {
	var opts options
	fs := newFlagSet(&opts, output)
	if err := fs.Parse(expandShortFlags(args)); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, err
		}
		return opts, fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("%w: unexpected argument %q", errUsage, fs.Arg(0))
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	var actions []action
	if set["l"] || set["list-models"] {
		actions = append(actions, actionListModels)
	}
	if set["p"] || set["prompt"] {
		actions = append(actions, actionPrompt)
	}
	if set["chat"] {
		actions = append(actions, actionChat)
	}
	if set["setup"] {
		actions = append(actions, actionSetup)
	}
	if set["show-config"] {
		actions = append(actions, actionShowConfig)
	}
	if set["version"] {
		actions = append(actions, actionVersion)
	}

	switch len(actions) {
	case 0:
		return opts, fmt.Errorf("%w: choose one of --list-models, --prompt, --chat, --setup, --show-config or --version", errUsage)
	case 1:
		opts.action = actions[0]
	default:
		return opts, fmt.Errorf("%w: only one action may be given", errUsage)
	}

	if opts.action == actionPrompt && strings.TrimSpace(opts.prompt) == "" {
		return opts, fmt.Errorf("%w: --prompt needs non-empty text", errUsage)
	}
	if opts.action == actionChat && strings.TrimSpace(opts.chatFile) == "" {
		return opts, fmt.Errorf("%w: --chat needs a file name or -", errUsage)
	}
	generating := opts.action == actionPrompt || opts.action == actionChat
	if !generating && (set["m"] || set["model"]) {
		return opts, fmt.Errorf("%w: --model needs --prompt or --chat", errUsage)
	}
	if !generating && len(opts.params) > 0 {
		return opts, fmt.Errorf("%w: -P needs --prompt or --chat", errUsage)
	}
	if opts.timeout <= 0 {
		return opts, fmt.Errorf("%w: --timeout must be positive", errUsage)
	}
	return opts, nil
}

// valueFlags take the next argument as their value.
var valueFlags = map[string]bool{
	"p": true, "prompt": true,
	"m": true, "model": true,
	"P": true, "param": true,
	"chat": true, "timeout": true,
}

// expandShortFlags rewrites -vv and -vvv into repeated -v flags, which the
// flag package cannot parse on its own. Flag values are left alone.
func expandShortFlags(args []string) []string {
	out := make([]string, 0, len(args))
	for i, arg := range args {
		if arg == "--" {
			return append(out, args[i:]...)
		}
		if i > 0 && takesValue(args[i-1]) {
			out = append(out, arg)
			continue
		}
		if len(arg) > 2 && arg[0] == '-' && arg[1] == 'v' && strings.Trim(arg[1:], "v") == "" {
			for range len(arg) - 1 {
				out = append(out, "-v")
			}
			continue
		}
		out = append(out, arg)
	}
	return out
}

func takesValue(arg string) bool {
	name, ok := strings.CutPrefix(arg, "--")
	if !ok {
		name, ok = strings.CutPrefix(arg, "-")
	}
	if !ok || strings.Contains(name, "=") {
		return false
	}
	return valueFlags[name]
}
