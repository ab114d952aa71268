package config

import (
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
)

const (
	configDirName  = ".azion"
	configFileName = ".aicorp.env"
	legacyFileName = ".env"
	logFileName    = "aicorp.log"
)

// projectIndicators mark a project root when walking up from the working
// directory.
var projectIndicators = []string{"go.mod", "pyproject.toml", "setup.py", "requirements.txt"}

// Dir returns the per-user configuration directory.
func Dir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(homeDir) == "" {
		return configDirName
	}
	return filepath.Join(homeDir, configDirName)
}

// UserConfigPath returns the per-user configuration file path.
func UserConfigPath() string {
	return filepath.Join(Dir(), configFileName)
}

// LogPath returns the default log file path.
func LogPath() string {
	return filepath.Join(Dir(), "logs", logFileName)
}

// LegacyConfigPath returns the project-local .env path for dir.
func LegacyConfigPath(dir string) string {
	return filepath.Join(ProjectRoot(dir), legacyFileName)
}

// ProjectRoot returns the closest ancestor of dir that looks like a project
// root: a directory holding one of the indicator files, or the root of the
// enclosing git worktree. It returns dir itself when neither is found.
func ProjectRoot(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}

	stop := gitRoot(abs)
	for d := abs; ; {
		for _, name := range projectIndicators {
			if _, err := os.Stat(filepath.Join(d, name)); err == nil {
				return d
			}
		}
		if d == stop {
			return d
		}
		parent := filepath.Dir(d)
		if parent == d {
			return abs
		}
		d = parent
	}
}

// gitRoot returns the worktree root of the repository containing dir, or ""
// when dir is not inside a repository.
func gitRoot(dir string) string {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return ""
	}
	wt, err := repo.Worktree()
	if err != nil {
		return ""
	}
	return wt.Filesystem.Root()
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
}
