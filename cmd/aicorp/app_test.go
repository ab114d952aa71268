package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"aicorp_cli/pkg/ai"
	"aicorp_cli/pkg/config"
	"aicorp_cli/pkg/ui/setup"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "sk-test-0123456789abcdef"

// fakeWebUI answers the two endpoints the CLI talks to and records the
// decoded completion bodies.
type fakeWebUI struct {
	*httptest.Server

	mu          sync.Mutex
	paths       []string
	completions []map[string]any
	status      int
}

func newFakeWebUI(t *testing.T) *fakeWebUI {
	t.Helper()
	f := &fakeWebUI{status: http.StatusOK}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.paths = append(f.paths, r.Method+" "+r.URL.Path)
		status := f.status
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") != "Bearer "+testAPIKey || status != http.StatusOK {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail":"bad key `+testAPIKey+`"}`)
			return
		}

		switch r.URL.Path {
		case "/api/v1/models":
			_, _ = io.WriteString(w, `{"data":[{"id":"gpt-x","name":"GPT X"},{"id":"llama3"}]}`)
		case "/api/chat/completions":
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			f.mu.Lock()
			f.completions = append(f.completions, body)
			f.mu.Unlock()
			_, _ = io.WriteString(w, `{"model":"gpt-x","choices":[{"index":0,"finish_reason":"stop",`+
				`"message":{"role":"assistant","content":"Try:\n`+"```"+`sh\nls -la\n`+"```"+`"}}],`+
				`"usage":{"prompt_tokens":7,"completion_tokens":5,"total_tokens":12}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeWebUI) Paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}

func (f *fakeWebUI) Completions() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.completions...)
}

type testApp struct {
	*app
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestApp(t *testing.T, env map[string]string) *testApp {
	t.Helper()
	dir := t.TempDir()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	a := &app{
		stdin:          strings.NewReader(""),
		stdout:         stdout,
		stderr:         stderr,
		userConfigPath: filepath.Join(dir, ".azion", ".aicorp.env"),
		logPath:        filepath.Join(dir, ".azion", "logs", "aicorp.log"),
		newResolver: func(logger *slog.Logger) *config.Resolver {
			return config.NewResolver(
				config.WithSources(config.EnvSource{LookupEnv: func(key string) (string, bool) {
					v, ok := env[key]
					return v, ok
				}}),
				config.WithBaseDir(dir),
				config.WithPlatform(func() string { return "TestOS, 1.0, build 1" }),
				config.WithLogger(logger),
			)
		},
	}
	return &testApp{app: a, stdout: stdout, stderr: stderr}
}

func serverEnv(f *fakeWebUI) map[string]string {
	return map[string]string{
		config.KeyBaseURL:      f.URL,
		config.KeyAPIKey:       testAPIKey,
		config.KeyDefaultModel: "gpt-x",
	}
}

func (a *testApp) run(args ...string) int {
	return a.app.run(context.Background(), args)
}

func TestRun_ListModels(t *testing.T) {
	server := newFakeWebUI(t)
	a := newTestApp(t, serverEnv(server))

	code := a.run("-l")
	require.Equal(t, exitOK, code, a.stderr.String())

	out := ansi.Strip(a.stdout.String())
	assert.Contains(t, out, "Available Models (2 total):")
	assert.Contains(t, out, "gpt-x  (GPT X) [default]")
	assert.Contains(t, out, "llama3")
	assert.Equal(t, []string{"GET /api/v1/models"}, server.Paths())
}

func TestRun_Prompt(t *testing.T) {
	server := newFakeWebUI(t)
	a := newTestApp(t, serverEnv(server))

	code := a.run("-p", "list files", "-P", "temperature=0.2", "-P", "top_k=5")
	require.Equal(t, exitOK, code, a.stderr.String())

	out := ansi.Strip(a.stdout.String())
	assert.Contains(t, out, "[gpt-x] 12 tokens")
	assert.Contains(t, out, "ls -la")

	completions := server.Completions()
	require.Len(t, completions, 1)
	body := completions[0]
	assert.Equal(t, "gpt-x", body["model"])
	assert.Equal(t, 0.2, body["temperature"])
	assert.Equal(t, float64(5), body["top_k"])

	messages := body["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	user := messages[1].(map[string]any)
	assert.Equal(t, "user", user["role"])
	assert.Equal(t, "list files", user["content"])
}

func TestRun_PromptWithKnownModel(t *testing.T) {
	server := newFakeWebUI(t)
	a := newTestApp(t, serverEnv(server))

	code := a.run("-m", "llama3", "-p", "hi")
	require.Equal(t, exitOK, code, a.stderr.String())

	assert.Equal(t, []string{"GET /api/v1/models", "POST /api/chat/completions"}, server.Paths())
	assert.Equal(t, "llama3", server.Completions()[0]["model"])
}

func TestRun_PromptWithModelDisplayName(t *testing.T) {
	server := newFakeWebUI(t)
	a := newTestApp(t, serverEnv(server))

	code := a.run("-m", "GPT X", "-p", "hi")
	require.Equal(t, exitOK, code, a.stderr.String())

	completions := server.Completions()
	require.Len(t, completions, 1)
	assert.Equal(t, "gpt-x", completions[0]["model"])
}

func TestRun_PromptWithUnknownModel(t *testing.T) {
	server := newFakeWebUI(t)
	a := newTestApp(t, serverEnv(server))

	code := a.run("-m", "missing", "-p", "hi")
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, ansi.Strip(a.stderr.String()), `model "missing" not found`)
	assert.Contains(t, ansi.Strip(a.stdout.String()), "Available Models (2 total):")
	assert.Empty(t, server.Completions())
}

func TestRun_ChatFromStdin(t *testing.T) {
	server := newFakeWebUI(t)
	a := newTestApp(t, serverEnv(server))
	a.stdin = strings.NewReader(`[
		{"role": "system", "content": "Be brief."},
		{"role": "user", "content": "hi"},
		{"role": "assistant", "content": "hello"},
		{"role": "user", "content": "bye"}
	]`)

	code := a.run("--chat", "-")
	require.Equal(t, exitOK, code, a.stderr.String())

	messages := server.Completions()[0]["messages"].([]any)
	require.Len(t, messages, 4)
	var contents []string
	for _, m := range messages {
		contents = append(contents, m.(map[string]any)["content"].(string))
	}
	assert.Equal(t, []string{"Be brief.", "hi", "hello", "bye"}, contents)
}

func TestRun_ChatFromFile(t *testing.T) {
	server := newFakeWebUI(t)
	a := newTestApp(t, serverEnv(server))
	path := filepath.Join(t.TempDir(), "conv.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"role":"user","content":"hi"}]`), 0600))

	require.Equal(t, exitOK, a.run("--chat", path), a.stderr.String())
	assert.Len(t, server.Completions(), 1)
}

func TestRun_InvalidConversation(t *testing.T) {
	server := newFakeWebUI(t)
	a := newTestApp(t, serverEnv(server))
	a.stdin = strings.NewReader(`[{"role":"robot","content":"hi"}]`)

	assert.Equal(t, exitFailure, a.run("--chat", "-"))
	assert.Contains(t, a.stderr.String(), "robot")
	assert.Empty(t, server.Paths())
}

func TestRun_InvalidParameter(t *testing.T) {
	server := newFakeWebUI(t)
	a := newTestApp(t, serverEnv(server))

	assert.Equal(t, exitUsage, a.run("-p", "hi", "-P", "temperature=9"))
	assert.Contains(t, a.stderr.String(), "temperature")
	assert.Empty(t, server.Paths())

	assert.Equal(t, exitUsage, a.run("-p", "hi", "-P", "mirostat=1"))
	assert.Contains(t, a.stderr.String(), "mirostat")
}

func TestRun_AuthFailureHidesKey(t *testing.T) {
	server := newFakeWebUI(t)
	server.status = http.StatusUnauthorized
	a := newTestApp(t, serverEnv(server))

	assert.Equal(t, exitFailure, a.run("-l"))
	assert.NotEmpty(t, a.stderr.String())
	assert.NotContains(t, a.stderr.String(), testAPIKey)
	assert.NotContains(t, a.stdout.String(), testAPIKey)
}

func TestRun_MissingKey(t *testing.T) {
	a := newTestApp(t, map[string]string{})

	assert.Equal(t, exitFailure, a.run("-l"))
	stderr := ansi.Strip(a.stderr.String())
	assert.Contains(t, stderr, config.KeyAPIKey)
	assert.Contains(t, stderr, "--setup")
}

func TestRun_UsageError(t *testing.T) {
	a := newTestApp(t, nil)
	assert.Equal(t, exitUsage, a.run("-m", "x"))
	assert.Contains(t, a.stderr.String(), "aicorp -h")
}

func TestRun_Version(t *testing.T) {
	a := newTestApp(t, nil)
	assert.Equal(t, exitOK, a.run("--version"))
	assert.True(t, strings.HasPrefix(a.stdout.String(), "aicorp "), a.stdout.String())
}

func TestRun_ShowConfig(t *testing.T) {
	server := newFakeWebUI(t)
	a := newTestApp(t, serverEnv(server))

	require.Equal(t, exitOK, a.run("--show-config"), a.stderr.String())
	out := ansi.Strip(a.stdout.String())
	assert.NotContains(t, out, testAPIKey)
	assert.Contains(t, out, config.MaskSecret(testAPIKey))
	assert.Contains(t, out, server.URL+" (env)")
	assert.Empty(t, server.Paths())
}

func TestRun_CopyWritesOSC52(t *testing.T) {
	server := newFakeWebUI(t)
	a := newTestApp(t, serverEnv(server))
	t.Setenv("TMUX", "")
	t.Setenv("STY", "")

	require.Equal(t, exitOK, a.run("-p", "hi", "--copy"), a.stderr.String())
	// base64("ls -la")
	assert.Contains(t, a.stderr.String(), "\x1b]52;c;bHMgLWxh\x07")
	assert.Contains(t, a.stderr.String(), "Copied to clipboard")
}

func TestRun_Markdown(t *testing.T) {
	server := newFakeWebUI(t)
	a := newTestApp(t, serverEnv(server))

	require.Equal(t, exitOK, a.run("-p", "hi", "--markdown"), a.stderr.String())
	out := ansi.Strip(a.stdout.String())
	assert.Contains(t, out, "ls -la")
	assert.NotContains(t, out, "tokens |")
}

func TestRun_LogFileIsRedacted(t *testing.T) {
	server := newFakeWebUI(t)
	server.status = http.StatusUnauthorized
	a := newTestApp(t, serverEnv(server))

	a.run("-vvv", "-l")

	data, err := os.ReadFile(a.logPath)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.NotContains(t, string(data), testAPIKey)
	assert.NotContains(t, a.stderr.String(), testAPIKey)
}

func TestRun_Setup(t *testing.T) {
	server := newFakeWebUI(t)
	a := newTestApp(t, nil)

	var listed []ai.Model
	a.runSetup = func(ctx context.Context, current config.Values, path string, lister setup.ModelLister) (config.Values, error) {
		assert.Equal(t, a.userConfigPath, path)
		models, err := lister(ctx, server.URL, testAPIKey)
		require.NoError(t, err)
		listed = models

		values := config.Values{
			config.KeyBaseURL:      server.URL,
			config.KeyAPIKey:       testAPIKey,
			config.KeyDefaultModel: models[0].ID,
		}
		return values, config.Save(path, values)
	}

	require.Equal(t, exitOK, a.run("--setup"), a.stderr.String())
	assert.Equal(t, []string{"gpt-x", "llama3"}, ai.ModelIDs(listed))
	assert.Contains(t, ansi.Strip(a.stdout.String()), "Configuration saved to "+a.userConfigPath)

	saved, err := config.LoadFile(a.userConfigPath)
	require.NoError(t, err)
	assert.Equal(t, "gpt-x", saved.Get(config.KeyDefaultModel))
}

func TestRun_SetupCancelled(t *testing.T) {
	a := newTestApp(t, nil)
	a.runSetup = func(context.Context, config.Values, string, setup.ModelLister) (config.Values, error) {
		return nil, setup.ErrCancelled
	}

	assert.Equal(t, exitFailure, a.run("--setup"))
	assert.Contains(t, a.stderr.String(), "Configuration cancelled")
}
