package ai

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"aicorp_cli/pkg/config"
	"aicorp_cli/pkg/version"

	"github.com/google/uuid"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// DefaultTimeout bounds every call when no timeout is configured.
const DefaultTimeout = 30 * time.Second

const (
	modelsPath      = "v1/models"
	completionsPath = "chat/completions"

	requestIDHeader = "X-Request-ID"
	maxErrorPreview = 200
)

// Client talks to the WebUI HTTP API. Each call is a single round trip;
// nothing is retried.
type Client struct {
	cfg        config.Config
	sdk        openai.Client
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
	redact     config.Redactor
	userAgent  string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.httpClient = client }
}

// WithTimeout bounds each call. Non-positive values keep the default.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithRedactor replaces the redactor applied to error messages and logs.
// The default masks the configured API key.
func WithRedactor(redact config.Redactor) Option {
	return func(c *Client) { c.redact = redact }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient returns a client for cfg. The configuration is validated again
// so an incomplete one never reaches the request layer.
func NewClient(cfg config.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		logger:     slog.Default(),
		redact:     cfg.Redactor(),
		userAgent:  version.UserAgent(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.sdk = openai.NewClient(
		option.WithBaseURL(cfg.BaseURL+"/api/"),
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(c.httpClient),
		option.WithMaxRetries(0),
		option.WithHeader("User-Agent", c.userAgent),
	)
	return c, nil
}

// Config returns the configuration the client was built with.
func (c *Client) Config() config.Config {
	return c.cfg
}

// ListModels returns the models the service advertises, in service order.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	endpoint := http.MethodGet + " " + c.cfg.ModelsURL()
	c.logger.Info("Fetching available models", "url", c.cfg.ModelsURL())

	body, err := c.call(ctx, endpoint, func(ctx context.Context, opts ...option.RequestOption) ([]byte, error) {
		var raw []byte
		err := c.sdk.Get(ctx, modelsPath, nil, &raw, opts...)
		return raw, err
	})
	if err != nil {
		return nil, err
	}

	models, err := parseModels(body)
	if err != nil {
		c.logger.Error("Unexpected models response", "error", err, "body", c.preview(body))
		return nil, c.apiError(ErrAPIResponseFormat, endpoint, 0, err.Error(), nil)
	}
	c.logger.Info("Models fetched", "count", len(models))
	return models, nil
}

// SendPrompt sends a single user prompt, preceded by the configured system
// prompt. An empty model falls back to the configured default model.
func (c *Client) SendPrompt(ctx context.Context, prompt, model string, params ValidatedParameters) (GeneratedText, error) {
	if strings.TrimSpace(prompt) == "" {
		return GeneratedText{}, invalidValue("prompt", prompt, "non-empty text")
	}
	msgs := []ChatMessage{{Role: RoleUser, Content: prompt}}
	if strings.TrimSpace(c.cfg.SystemPrompt) != "" {
		msgs = append([]ChatMessage{{Role: RoleSystem, Content: c.cfg.SystemPrompt}}, msgs...)
	}
	return c.complete(ctx, msgs, model, params)
}

// SendChatPrompt sends the conversation exactly as given.
func (c *Client) SendChatPrompt(ctx context.Context, msgs ValidatedMessages, model string, params ValidatedParameters) (GeneratedText, error) {
	if msgs.Len() == 0 {
		return GeneratedText{}, ErrEmptyConversation
	}
	return c.complete(ctx, msgs.All(), model, params)
}

func (c *Client) selectModel(model string) (string, error) {
	if m := strings.TrimSpace(model); m != "" {
		return m, nil
	}
	if m := strings.TrimSpace(c.cfg.DefaultModel); m != "" {
		return m, nil
	}
	return "", ErrNoModelSelected
}

func (c *Client) complete(ctx context.Context, msgs []ChatMessage, model string, params ValidatedParameters) (GeneratedText, error) {
	if err := params.recheck(); err != nil {
		return GeneratedText{}, err
	}
	model, err := c.selectModel(model)
	if err != nil {
		return GeneratedText{}, err
	}

	body, extra := buildChatParams(msgs, model, params)
	endpoint := http.MethodPost + " " + c.cfg.ChatCompletionsURL()
	c.logger.Info("Sending chat completion", "model", model, "messages", len(msgs), "params", params)

	if stream, _ := params.Bool(ParamStream); stream {
		return c.completeStreaming(ctx, endpoint, body, extra)
	}

	raw, err := c.call(ctx, endpoint, func(ctx context.Context, opts ...option.RequestOption) ([]byte, error) {
		var raw []byte
		err := c.sdk.Post(ctx, completionsPath, body, &raw, append(extra, opts...)...)
		return raw, err
	})
	if err != nil {
		return GeneratedText{}, err
	}

	text, err := parseCompletion(raw)
	if err != nil {
		c.logger.Error("Unexpected completion response", "error", err, "body", c.preview(raw))
		return GeneratedText{}, c.apiError(ErrAPIResponseFormat, endpoint, 0, err.Error(), nil)
	}
	c.logger.Info("Completion received", "model", text.Model, "finish_reason", text.FinishReason,
		"total_tokens", text.Usage.TotalTokens)
	return text, nil
}

func (c *Client) completeStreaming(ctx context.Context, endpoint string, body openai.ChatCompletionNewParams, extra []option.RequestOption) (GeneratedText, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var resp *http.Response
	opts := append(extra, option.WithResponseInto(&resp), option.WithHeader(requestIDHeader, uuid.NewString()))

	stream := c.sdk.Chat.Completions.NewStreaming(ctx, body, opts...)
	defer stream.Close()

	acc := openai.ChatCompletionAccumulator{}
	for stream.Next() {
		acc.AddChunk(stream.Current())
	}
	if err := stream.Err(); err != nil {
		return GeneratedText{}, c.classify(endpoint, resp, err)
	}
	if len(acc.Choices) == 0 {
		return GeneratedText{}, c.apiError(ErrAPIResponseFormat, endpoint, 0, "stream ended without choices", nil)
	}

	return GeneratedText{
		Text:         acc.Choices[0].Message.Content,
		Model:        acc.Model,
		FinishReason: acc.Choices[0].FinishReason,
		Usage: Usage{
			PromptTokens:     acc.Usage.PromptTokens,
			CompletionTokens: acc.Usage.CompletionTokens,
			TotalTokens:      acc.Usage.TotalTokens,
		},
	}, nil
}

type roundTrip func(ctx context.Context, opts ...option.RequestOption) ([]byte, error)

// call runs one request under the client timeout and maps failures onto
// the API error kinds.
func (c *Client) call(ctx context.Context, endpoint string, do roundTrip) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	requestID := uuid.NewString()
	var resp *http.Response
	start := time.Now()

	body, err := do(ctx, option.WithResponseInto(&resp), option.WithHeader(requestIDHeader, requestID))

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	c.logger.Debug("API round trip", "endpoint", endpoint, "request_id", requestID,
		"status", status, "elapsed", time.Since(start))

	if err != nil {
		return nil, c.classify(endpoint, resp, err)
	}
	return body, nil
}

// classify maps a transport or HTTP failure onto an error kind.
func (c *Client) classify(endpoint string, resp *http.Response, err error) error {
	if resp == nil || resp.StatusCode < 400 {
		if isTransportError(err) || resp == nil {
			c.logger.Error("API unreachable", "endpoint", endpoint, "error", c.redact.Redact(err.Error()))
			return c.apiError(ErrAPIUnavailable, endpoint, 0, err.Error(), err)
		}
		return c.apiError(ErrAPIResponseFormat, endpoint, resp.StatusCode, err.Error(), err)
	}

	status := resp.StatusCode
	detail := errorDetail(resp, err)
	c.logger.Error("API request failed", "endpoint", endpoint, "status", status, "detail", c.redact.Redact(detail))

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return c.apiError(ErrAPIAuthentication, endpoint, status, detail, nil)
	case status == http.StatusRequestTimeout || status == http.StatusTooManyRequests || status >= 500:
		return c.apiError(ErrAPIUnavailable, endpoint, status, detail, nil)
	default:
		return c.apiError(ErrAPIRequestRejected, endpoint, status, detail, nil)
	}
}

func (c *Client) apiError(kind error, endpoint string, status int, message string, cause error) error {
	return &APIError{
		Kind:       kind,
		Endpoint:   endpoint,
		StatusCode: status,
		Message:    c.redact.Redact(truncate(message, maxErrorPreview)),
		Err:        cause,
	}
}

func (c *Client) preview(body []byte) string {
	return c.redact.Redact(truncate(string(body), maxErrorPreview))
}

// errorDetail prefers the service's own error message, then the raw body.
func errorDetail(resp *http.Response, err error) string {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if resp.Body != nil {
		if data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorPreview+1)); readErr == nil && len(data) > 0 {
			return strings.TrimSpace(string(data))
		}
	}
	return http.StatusText(resp.StatusCode)
}

func isTransportError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

// buildChatParams maps validated parameters onto the request body. Fields
// the SDK does not model are set with JSON overrides.
func buildChatParams(msgs []ChatMessage, model string, params ValidatedParameters) (openai.ChatCompletionNewParams, []option.RequestOption) {
	body := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs)),
	}
	for _, msg := range msgs {
		body.Messages = append(body.Messages, toMessageParam(msg))
	}

	var extra []option.RequestOption
	for _, key := range params.Keys() {
		switch key {
		case ParamMaxTokens:
			v, _ := params.Int(key)
			body.MaxTokens = openai.Int(v)
		case ParamSeed:
			v, _ := params.Int(key)
			body.Seed = openai.Int(v)
		case ParamTemperature:
			v, _ := params.Float(key)
			body.Temperature = openai.Float(v)
		case ParamTopP:
			v, _ := params.Float(key)
			body.TopP = openai.Float(v)
		case ParamFrequencyPenalty:
			v, _ := params.Float(key)
			body.FrequencyPenalty = openai.Float(v)
		case ParamPresencePenalty:
			v, _ := params.Float(key)
			body.PresencePenalty = openai.Float(v)
		case ParamStop:
			stop, _ := params.Stop()
			if len(stop) == 1 {
				body.Stop = openai.ChatCompletionNewParamsStopUnion{OfString: openai.String(stop[0])}
			} else {
				body.Stop = openai.ChatCompletionNewParamsStopUnion{OfStringArray: stop}
			}
		case ParamTopK:
			v, _ := params.Int(key)
			extra = append(extra, option.WithJSONSet(key, v))
		case ParamRepetitionPenalty:
			v, _ := params.Float(key)
			extra = append(extra, option.WithJSONSet(key, v))
		case ParamStream:
			// the streaming call sets stream=true itself
			if v, _ := params.Bool(key); !v {
				extra = append(extra, option.WithJSONSet(key, false))
			}
		}
	}
	return body, extra
}

func toMessageParam(msg ChatMessage) openai.ChatCompletionMessageParamUnion {
	switch msg.Role {
	case RoleSystem:
		return openai.SystemMessage(msg.Content)
	case RoleAssistant:
		return openai.AssistantMessage(msg.Content)
	default:
		return openai.UserMessage(msg.Content)
	}
}
