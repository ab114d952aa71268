package version

import (
	"fmt"
	"runtime"
)

// These variables are set via ldflags during build.
var (
	Version   = "dev"
	Commit    = "none"
	Date      = "unknown"
	GoVersion = runtime.Version()
)

const binaryName = "aicorp"

func Platform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

func Summary() string {
	v := Version
	if v == "" {
		v = "dev"
	}
	if Commit != "" && Commit != "none" {
		short := Commit
		if len(short) > 7 {
			short = short[:7]
		}
		return fmt.Sprintf("%s (%s)", v, short)
	}
	return v
}

// Full returns the multi-line text printed by --version.
func Full() string {
	return fmt.Sprintf("%s %s\nbuilt %s with %s for %s\n", binaryName, Summary(), Date, GoVersion, Platform())
}

// UserAgent identifies the client in HTTP requests.
func UserAgent() string {
	v := Version
	if v == "" {
		v = "dev"
	}
	return fmt.Sprintf("%s/%s (%s)", binaryName, v, Platform())
}
