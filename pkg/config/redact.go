package config

import (
	"sort"
	"strings"
)

const minRedactLen = 4

// MaskSecret returns a display-safe form of a secret: the first and last
// four characters for long values, a fixed mask otherwise.
func MaskSecret(secret string) string {
	switch {
	case secret == "":
		return ""
	case len(secret) >= 16:
		return secret[:4] + "..." + secret[len(secret)-4:]
	default:
		return "****"
	}
}

// Redactor rewrites text so that no known secret appears in it.
type Redactor func(string) string

// NewRedactor returns a Redactor that masks every occurrence of the given
// secrets. Very short secrets are ignored.
func NewRedactor(secrets ...string) Redactor {
	var known []string
	for _, s := range secrets {
		if len(s) >= minRedactLen {
			known = append(known, s)
		}
	}
	// longest first so a secret containing another is masked whole
	sort.Slice(known, func(i, j int) bool { return len(known[i]) > len(known[j]) })

	return func(text string) string {
		for _, s := range known {
			text = strings.ReplaceAll(text, s, MaskSecret(s))
		}
		return text
	}
}

// Redact applies r to text; a nil Redactor returns text unchanged.
func (r Redactor) Redact(text string) string {
	if r == nil {
		return text
	}
	return r(text)
}
