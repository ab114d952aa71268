// Package config resolves the client configuration from the environment,
// the per-user config file and the legacy project-local .env file.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// Recognized configuration keys.
const (
	KeyBaseURL          = "WEBUI_BASE_URL"
	KeyAPIKey           = "WEBUI_API_KEY"
	KeyDefaultModel     = "DEFAULT_MODEL"
	KeySystemPromptFile = "SYSTEM_PROMPT_FILE"
)

// Keys lists every recognized key in display order.
var Keys = []string{KeyBaseURL, KeyAPIKey, KeyDefaultModel, KeySystemPromptFile}

var mandatoryKeys = []string{KeyBaseURL, KeyAPIKey}

const (
	// DefaultBaseURL is used when no source sets WEBUI_BASE_URL.
	DefaultBaseURL = "https://ai.corp.azion.com"

	// DefaultSystemPrompt is used when no readable prompt file is configured.
	DefaultSystemPrompt = "You are a helpful AI assistant that provides accurate and useful responses."

	// PlatformPlaceholder is replaced by the platform descriptor in prompt files.
	PlatformPlaceholder = "{platform_info}"

	// OriginDefault marks a value that no source supplied.
	OriginDefault = "default"
)

// Config is the resolved, validated client configuration. It is a plain
// value: copies are independent and nothing mutates it after Resolve.
type Config struct {
	BaseURL          string
	APIKey           string
	DefaultModel     string
	SystemPromptFile string
	SystemPrompt     string

	origins map[string]string
}

// Validate checks that the mandatory keys are present and the base URL is
// a usable HTTP(S) URL.
func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.BaseURL) == "" {
		missing = append(missing, KeyBaseURL)
	}
	if strings.TrimSpace(c.APIKey) == "" {
		missing = append(missing, KeyAPIKey)
	}
	if len(missing) > 0 {
		return &MissingError{Keys: missing}
	}

	return ValidateBaseURL(c.BaseURL)
}

// ValidateBaseURL checks that raw is an absolute HTTP(S) URL with a host.
func ValidateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %s is not a valid URL: %v", ErrInvalidConfiguration, KeyBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %s must use http or https, got %q", ErrInvalidConfiguration, KeyBaseURL, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: %s has no host: %q", ErrInvalidConfiguration, KeyBaseURL, raw)
	}
	return nil
}

// Origin reports which source supplied key, or "" if none did.
func (c Config) Origin(key string) string {
	return c.origins[key]
}

// ModelsURL is the model listing endpoint.
func (c Config) ModelsURL() string {
	return c.BaseURL + "/api/v1/models"
}

// ChatCompletionsURL is the completion endpoint.
func (c Config) ChatCompletionsURL() string {
	return c.BaseURL + "/api/chat/completions"
}

// Redactor returns a redactor that masks the configured API key.
func (c Config) Redactor() Redactor {
	return NewRedactor(c.APIKey)
}

// Values returns the configuration as raw key/value pairs, suitable for Save.
func (c Config) Values() Values {
	v := Values{}
	v.Set(KeyBaseURL, c.BaseURL)
	v.Set(KeyAPIKey, c.APIKey)
	v.Set(KeyDefaultModel, c.DefaultModel)
	v.Set(KeySystemPromptFile, c.SystemPromptFile)
	return v
}

// String renders the configuration with the API key masked.
func (c Config) String() string {
	return fmt.Sprintf("Config{BaseURL: %q, APIKey: %q, DefaultModel: %q, SystemPromptFile: %q}",
		c.BaseURL, MaskSecret(c.APIKey), c.DefaultModel, c.SystemPromptFile)
}

// LogValue implements slog.LogValuer so the key never reaches a log line.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("base_url", c.BaseURL),
		slog.String("api_key", MaskSecret(c.APIKey)),
		slog.String("default_model", c.DefaultModel),
		slog.String("system_prompt_file", c.SystemPromptFile),
	)
}

// Values holds raw configuration pairs as read from one source.
type Values map[string]string

// Get returns the trimmed value of key.
func (v Values) Get(key string) string {
	return strings.TrimSpace(v[key])
}

// Set stores the trimmed value, ignoring empty values.
func (v Values) Set(key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		v[key] = value
	}
}

// Complete reports whether every mandatory key has a non-empty value.
func (v Values) Complete() bool {
	for _, key := range mandatoryKeys {
		if v.Get(key) == "" {
			return false
		}
	}
	return true
}

// recognized keeps only the known keys with non-empty values.
func (v Values) recognized() Values {
	out := Values{}
	for _, key := range Keys {
		out.Set(key, v[key])
	}
	return out
}

func normalizeBaseURL(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}
