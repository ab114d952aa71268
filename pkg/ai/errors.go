package ai

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors, raised before any network call.
var (
	ErrUnsupportedParameter  = errors.New("unsupported parameter")
	ErrInvalidParameterValue = errors.New("invalid parameter value")
	ErrEmptyConversation     = errors.New("conversation has no messages")
	ErrInvalidMessage        = errors.New("invalid message")
	ErrNoModelSelected       = errors.New("no model selected: pass a model or set DEFAULT_MODEL")
)

// Remote call errors.
var (
	ErrAPIUnavailable     = errors.New("api unavailable")
	ErrAPIAuthentication  = errors.New("api authentication failed")
	ErrAPIResponseFormat  = errors.New("unexpected api response format")
	ErrAPIRequestRejected = errors.New("api rejected request")
)

// ParameterError describes a rejected generation parameter.
type ParameterError struct {
	Key        string
	Value      any
	Constraint string
	Err        error // ErrUnsupportedParameter or ErrInvalidParameterValue
}

func (e *ParameterError) Error() string {
	if errors.Is(e.Err, ErrUnsupportedParameter) {
		return fmt.Sprintf("%s: %q", e.Err, e.Key)
	}
	return fmt.Sprintf("%s for %q: got %s (%T), expected %s", e.Err, e.Key, formatValue(e.Value), e.Value, e.Constraint)
}

// formatValue quotes strings, including list items, so empty entries show.
func formatValue(v any) string {
	switch v := v.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case []string:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = fmt.Sprintf("%q", item)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case []any:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = formatValue(item)
		}
		return "[" + strings.Join(items, ", ") + "]"
	}
	return fmt.Sprintf("%v", v)
}

func (e *ParameterError) Unwrap() error {
	return e.Err
}

func unsupported(key string, value any) error {
	return &ParameterError{Key: key, Value: value, Err: ErrUnsupportedParameter}
}

func invalidValue(key string, value any, constraint string) error {
	return &ParameterError{Key: key, Value: value, Constraint: constraint, Err: ErrInvalidParameterValue}
}

// MessageError describes a malformed chat message.
type MessageError struct {
	Index  int
	Field  string
	Reason string
}

func (e *MessageError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s", ErrInvalidMessage, e.Reason)
	}
	return fmt.Sprintf("%s at index %d: %s %s", ErrInvalidMessage, e.Index, e.Field, e.Reason)
}

func (e *MessageError) Unwrap() error {
	return ErrInvalidMessage
}

// APIError describes a failed call to the remote service. It matches both
// its Kind sentinel and the underlying cause with errors.Is.
type APIError struct {
	Kind       error
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Endpoint)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *APIError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
