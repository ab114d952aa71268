package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"aicorp_cli/pkg/platform"
)

// Resolver builds a Config from an ordered list of sources.
type Resolver struct {
	sources  []Source
	baseDir  string
	platform func() string
	readFile func(string) ([]byte, error)
	logger   *slog.Logger
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithSources replaces the default sources. They must be given highest
// precedence first.
func WithSources(sources ...Source) Option {
	return func(r *Resolver) { r.sources = sources }
}

// WithBaseDir sets the directory relative prompt paths and the legacy file
// are resolved against. Defaults to the project root of the working directory.
func WithBaseDir(dir string) Option {
	return func(r *Resolver) { r.baseDir = dir }
}

// WithPlatform overrides the platform descriptor provider.
func WithPlatform(fn func() string) Option {
	return func(r *Resolver) { r.platform = fn }
}

// WithFileReader overrides how the system prompt file is read.
func WithFileReader(fn func(string) ([]byte, error)) Option {
	return func(r *Resolver) { r.readFile = fn }
}

// WithLogger sets the logger used for resolution diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// NewResolver returns a Resolver over the default sources.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		platform: platform.Descriptor,
		readFile: os.ReadFile,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			wd = "."
		}
		r.baseDir = ProjectRoot(wd)
	}
	if r.sources == nil {
		r.sources = DefaultSources(r.baseDir)
	}
	return r
}

// Resolve resolves the configuration with the default resolver.
func Resolve() (Config, error) {
	return NewResolver().Resolve()
}

// Resolve reads every source, merges them key by key so higher precedence
// wins, validates the result and loads the system prompt.
func (r *Resolver) Resolve() (Config, error) {
	loaded, err := r.load()
	if err != nil {
		return Config{}, err
	}

	merged, origins := fold(r.sources, loaded)

	cfg := Config{
		BaseURL:          normalizeBaseURL(merged[KeyBaseURL]),
		APIKey:           merged[KeyAPIKey],
		DefaultModel:     merged[KeyDefaultModel],
		SystemPromptFile: merged[KeySystemPromptFile],
		origins:          origins,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
		origins[KeyBaseURL] = OriginDefault
	}

	if err := cfg.Validate(); err != nil {
		r.logger.Debug("Configuration rejected", "error", err)
		return Config{}, err
	}

	cfg.SystemPrompt = r.systemPrompt(cfg.SystemPromptFile)
	r.logger.Debug("Configuration resolved", "config", cfg, "origins", origins)
	return cfg, nil
}

// load reads each source in precedence order. A fallback source is skipped
// when the source above it already supplies every mandatory key.
func (r *Resolver) load() ([]Values, error) {
	loaded := make([]Values, len(r.sources))
	for i, src := range r.sources {
		if i > 0 && isFallback(src) && loaded[i-1].Complete() {
			r.logger.Debug("Skipping fallback config source", "source", src.Name())
			continue
		}

		values, err := src.Load()
		if err != nil {
			if errors.Is(err, ErrInvalidConfiguration) {
				return nil, err
			}
			r.logger.Warn("Config source unreadable, ignoring", "source", src.Name(), "error", err)
			continue
		}
		r.logger.Debug("Loaded config source", "source", src.Name(), "keys", len(values))
		loaded[i] = values
	}
	return loaded, nil
}

// fold merges values from the lowest precedence source up, so each higher
// source overwrites the keys it sets. Empty values never overwrite.
func fold(sources []Source, loaded []Values) (map[string]string, map[string]string) {
	merged := make(map[string]string, len(Keys))
	origins := make(map[string]string, len(Keys))
	for i := len(loaded) - 1; i >= 0; i-- {
		for _, key := range Keys {
			if v := loaded[i].Get(key); v != "" {
				merged[key] = v
				origins[key] = sources[i].Name()
			}
		}
	}
	return merged, origins
}

func (r *Resolver) systemPrompt(path string) string {
	if path == "" {
		return DefaultSystemPrompt
	}

	resolved := r.promptPath(path)
	data, err := r.readFile(resolved)
	if err != nil {
		r.logger.Warn("System prompt file unreadable, using default prompt", "path", resolved, "error", err)
		return DefaultSystemPrompt
	}

	template := strings.TrimSpace(string(data))
	if template == "" {
		r.logger.Warn("System prompt file is empty, using default prompt", "path", resolved)
		return DefaultSystemPrompt
	}
	return RenderSystemPrompt(template, r.platform())
}

func (r *Resolver) promptPath(path string) string {
	path = expandHome(path)
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(r.baseDir, path)
}

// RenderSystemPrompt substitutes the platform descriptor into a prompt
// template.
func RenderSystemPrompt(template, platformInfo string) string {
	return strings.ReplaceAll(template, PlatformPlaceholder, platformInfo)
}
