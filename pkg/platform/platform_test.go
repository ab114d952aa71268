package platform

import (
	"runtime"
	"strings"
	"testing"
)

func TestParseOsRelease(t *testing.T) {
	content := `NAME=Ubuntu
VERSION=22.04.3 LTS
# comment
ID=ubuntu
PRETTY_NAME=Ubuntu 22.04.3 LTS
`
	result := ParseOsRelease(content)

	if result["NAME"] != "Ubuntu" {
		t.Errorf("Expected NAME='Ubuntu', got %q", result["NAME"])
	}
	if result["VERSION"] != "22.04.3 LTS" {
		t.Errorf("Expected VERSION='22.04.3 LTS', got %q", result["VERSION"])
	}
	if result["PRETTY_NAME"] != "Ubuntu 22.04.3 LTS" {
		t.Errorf("Expected PRETTY_NAME='Ubuntu 22.04.3 LTS', got %q", result["PRETTY_NAME"])
	}
	if len(result) != 4 {
		t.Errorf("Expected 4 keys, got %d", len(result))
	}
}

func TestParseOsRelease_QuotedAndEscaped(t *testing.T) {
	content := `NAME="Fedora Linux"
ID='fedora'
TITLE="Test \"Distro\""
`
	result := ParseOsRelease(content)

	if result["NAME"] != "Fedora Linux" {
		t.Errorf("Expected NAME='Fedora Linux', got %q", result["NAME"])
	}
	if result["ID"] != "fedora" {
		t.Errorf("Expected ID='fedora', got %q", result["ID"])
	}
	if result["TITLE"] != `Test "Distro"` {
		t.Errorf("Expected escaped quotes, got %q", result["TITLE"])
	}
}

func TestDescriptor(t *testing.T) {
	info := Info{
		System:  "Darwin",
		Release: "21.0.0",
		Version: "Darwin Kernel Version 21.0.0",
		Arch:    "arm64",
	}
	if got := info.Descriptor(); got != "Darwin, 21.0.0, Darwin Kernel Version 21.0.0" {
		t.Errorf("Descriptor() = %q", got)
	}
}

func TestDescriptor_SkipsEmptyParts(t *testing.T) {
	info := Info{System: "Linux", Version: "#1 SMP"}
	if got := info.Descriptor(); got != "Linux, #1 SMP" {
		t.Errorf("Descriptor() = %q", got)
	}
	if got := (Info{}).Descriptor(); got != runtime.GOOS {
		t.Errorf("empty Descriptor() = %q, want %q", got, runtime.GOOS)
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"distro and release", Info{System: "Linux", Release: "6.5.0", Arch: "amd64", Distro: "Ubuntu 22.04"}, "Ubuntu 22.04 (Linux 6.5.0, amd64)"},
		{"distro only", Info{Distro: "Alpine", Arch: "arm64"}, "Alpine (arm64)"},
		{"release only", Info{System: "Darwin", Release: "21.0.0", Arch: "arm64"}, "Darwin 21.0.0 (arm64)"},
		{"bare", Info{System: "Plan9", Arch: "386"}, "Plan9 (386)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.Summary(); got != tt.want {
				t.Errorf("Summary() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCurrentIsCached(t *testing.T) {
	ResetCache()
	defer ResetCache()

	first := Current()
	second := Current()
	if first != second {
		t.Fatalf("Current() not stable: %+v vs %+v", first, second)
	}
	if first.Arch != runtime.GOARCH {
		t.Errorf("Arch = %q, want %q", first.Arch, runtime.GOARCH)
	}
	if strings.TrimSpace(Descriptor()) == "" {
		t.Error("Descriptor() returned empty string")
	}
}
