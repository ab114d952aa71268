// Package platform describes the host operating system for prompt templates
// and diagnostics.
package platform

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
)

// Info contains host platform information.
type Info struct {
	System  string // kernel name as reported by uname: "Linux", "Darwin"
	Release string // "6.5.0-44-generic", "21.0.0"
	Version string // "#44-Ubuntu SMP ...", "Darwin Kernel Version 21.0.0: ..."
	Arch    string // "amd64", "arm64"
	Distro  string // Linux only: "Ubuntu 22.04.3 LTS" (from PRETTY_NAME)
}

var (
	current     Info
	currentOnce sync.Once
)

// Current returns cached platform information.
func Current() Info {
	currentOnce.Do(func() {
		current = detect()
	})
	return current
}

// ResetCache clears the cached platform info (for testing).
func ResetCache() {
	currentOnce = sync.Once{}
	current = Info{}
}

// Descriptor returns the platform descriptor of the current host.
func Descriptor() string {
	return Current().Descriptor()
}

// Descriptor formats the info as "<system>, <release>, <version>", the
// value substituted for {platform_info} in system prompt templates.
// Never returns empty.
func (i Info) Descriptor() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{i.System, i.Release, i.Version} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return runtime.GOOS
	}
	return strings.Join(parts, ", ")
}

// Summary returns a short human-readable description for status output.
func (i Info) Summary() string {
	system := i.System
	if system == "" {
		system = runtime.GOOS
	}
	switch {
	case i.Distro != "" && i.Release != "":
		return fmt.Sprintf("%s (%s %s, %s)", i.Distro, system, i.Release, i.Arch)
	case i.Distro != "":
		return fmt.Sprintf("%s (%s)", i.Distro, i.Arch)
	case i.Release != "":
		return fmt.Sprintf("%s %s (%s)", system, i.Release, i.Arch)
	default:
		return fmt.Sprintf("%s (%s)", system, i.Arch)
	}
}

func detect() Info {
	info := uname()
	info.Arch = runtime.GOARCH
	if info.System == "" {
		info.System = runtime.GOOS
	}
	if runtime.GOOS == "linux" {
		info.Distro = readOsRelease()
	}
	return info
}

// readOsRelease reads and parses /etc/os-release or /usr/lib/os-release.
func readOsRelease() string {
	for _, path := range []string{"/etc/os-release", "/usr/lib/os-release"} {
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		parsed := ParseOsRelease(string(content))
		if name := parsed["PRETTY_NAME"]; name != "" {
			return name
		}
		if name := parsed["NAME"]; name != "" {
			if version := parsed["VERSION"]; version != "" {
				return name + " " + version
			}
			return name
		}
	}
	return ""
}

// ParseOsRelease parses os-release file content into key-value pairs.
// Handles KEY=value, KEY="quoted value" and backslash escapes.
func ParseOsRelease(content string) map[string]string {
	result := make(map[string]string)

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok || key == "" {
			continue
		}
		result[key] = unquote(value)
	}
	return result
}

func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	switch {
	case s[0] == '"' && s[len(s)-1] == '"':
		return unescape(s[1 : len(s)-1])
	case s[0] == '\'' && s[len(s)-1] == '\'':
		return s[1 : len(s)-1]
	}
	return s
}

func unescape(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch next := s[i+1]; next {
			case '"', '\\', '$', '`':
				sb.WriteByte(next)
				i++
				continue
			}
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
