package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxLogSizeMB  = 5
	maxLogBackups = 5
	maxLogAgeDays = 14
)

// Options controls where logs go and how much is written.
type Options struct {
	// Verbosity is the count of -v flags: 0=error, 1=warn, 2=info, 3+=debug.
	Verbosity int
	// File is the log file path. Empty disables file logging.
	File string
	// Format is "text" (default) or "json".
	Format string
	// Console receives log lines when Verbosity > 0. Defaults to os.Stderr.
	Console io.Writer
	// Redact is applied to the message and every string attribute.
	Redact func(string) string
}

// Init builds the logger described by opts and installs it as the slog
// default. On a file error it still returns a usable console logger.
func Init(opts Options) (*slog.Logger, error) {
	handlerOptions := &slog.HandlerOptions{
		Level:       LevelForVerbosity(opts.Verbosity),
		ReplaceAttr: redactAttr(opts.Redact),
	}

	var writers []io.Writer
	if opts.Verbosity > 0 {
		console := opts.Console
		if console == nil {
			console = os.Stderr
		}
		writers = append(writers, console)
	}

	var fileErr error
	if logPath := strings.TrimSpace(opts.File); logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
			fileErr = err
		} else {
			writers = append(writers, &lumberjack.Logger{
				Filename:   logPath,
				MaxSize:    maxLogSizeMB,
				MaxBackups: maxLogBackups,
				MaxAge:     maxLogAgeDays,
				Compress:   true,
			})
		}
	}

	var out io.Writer
	switch len(writers) {
	case 0:
		out = io.Discard
	case 1:
		out = writers[0]
	default:
		out = io.MultiWriter(writers...)
	}

	logger := slog.New(newHandler(opts.Format, out, handlerOptions))
	slog.SetDefault(logger)
	return logger, fileErr
}

// LevelForVerbosity maps a -v count to a log level.
func LevelForVerbosity(verbosity int) slog.Level {
	switch {
	case verbosity <= 0:
		return slog.LevelError
	case verbosity == 1:
		return slog.LevelWarn
	case verbosity == 2:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

func redactAttr(redact func(string) string) func([]string, slog.Attr) slog.Attr {
	if redact == nil {
		return nil
	}
	return func(_ []string, a slog.Attr) slog.Attr {
		switch a.Value.Kind() {
		case slog.KindString:
			a.Value = slog.StringValue(redact(a.Value.String()))
		case slog.KindAny:
			if err, ok := a.Value.Any().(error); ok {
				a.Value = slog.StringValue(redact(err.Error()))
			}
		}
		return a
	}
}

func newHandler(format string, out io.Writer, opts *slog.HandlerOptions) slog.Handler {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return slog.NewJSONHandler(out, opts)
	default:
		return slog.NewTextHandler(out, opts)
	}
}
