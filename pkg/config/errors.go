package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingConfiguration is returned when a mandatory key has no value.
	ErrMissingConfiguration = errors.New("missing configuration")

	// ErrInvalidConfiguration is returned for malformed values or files.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// MissingError names the mandatory keys that no source supplied.
type MissingError struct {
	Keys []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%s: %s not set (run `aicorp --setup` or export the variables)",
		ErrMissingConfiguration, strings.Join(e.Keys, ", "))
}

func (e *MissingError) Unwrap() error {
	return ErrMissingConfiguration
}
