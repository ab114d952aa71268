package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Source names, highest precedence first.
const (
	SourceEnv        = "env"
	SourceUserFile   = "user-file"
	SourceLegacyFile = "legacy-file"
)

// Precedence is the order in which sources win when they disagree,
// highest first.
var Precedence = []string{SourceEnv, SourceUserFile, SourceLegacyFile}

// Source supplies raw configuration values.
type Source interface {
	Name() string
	Load() (Values, error)
}

// EnvSource reads the recognized keys from the process environment.
type EnvSource struct {
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

func (EnvSource) Name() string { return SourceEnv }

func (s EnvSource) Load() (Values, error) {
	lookup := s.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	values := Values{}
	for _, key := range Keys {
		if v, ok := lookup(key); ok {
			values.Set(key, v)
		}
	}
	return values, nil
}

// FileSource reads KEY=value lines from a dotenv-style file. A missing file
// yields no values.
type FileSource struct {
	Label string
	Path  string

	// Fallback sources are only read when the source ranked directly above
	// them is missing a mandatory key.
	Fallback bool

	// ReadFile defaults to os.ReadFile.
	ReadFile func(string) ([]byte, error)
}

func (s FileSource) Name() string { return s.Label }

func (s FileSource) Load() (Values, error) {
	read := s.ReadFile
	if read == nil {
		read = os.ReadFile
	}
	data, err := read(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}

	parsed, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfiguration, s.Path, err)
	}
	return Values(parsed).recognized(), nil
}

// LoadFile reads the recognized keys from a single config file.
func LoadFile(path string) (Values, error) {
	return FileSource{Label: path, Path: path}.Load()
}

// DefaultSources returns the standard sources in Precedence order for a
// process started in dir.
func DefaultSources(dir string) []Source {
	return []Source{
		EnvSource{},
		FileSource{Label: SourceUserFile, Path: UserConfigPath()},
		FileSource{Label: SourceLegacyFile, Path: LegacyConfigPath(dir), Fallback: true},
	}
}

func isFallback(s Source) bool {
	switch src := s.(type) {
	case FileSource:
		return src.Fallback
	case *FileSource:
		return src.Fallback
	}
	return false
}
