// Package logging sets up structured logs and prints user-facing status lines.
//
// Structured logs go through log/slog, rendered by tint for terminals or as
// JSON with --json. Status lines (UserInfo, UserSuccess, UserWarning,
// UserError) are meant for people and are kept apart from the logs.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

var (
	// Logger is the process logger installed by Setup.
	Logger = slog.Default()
	// Verbose reports whether debug logs are enabled.
	Verbose bool
)

// Setup installs the process logger. A nil writer means stderr.
func Setup(verbose, json bool, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	Verbose = verbose

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			NoColor:    !isTerminal(w),
		})
	}

	Logger = slog.New(handler)
	slog.SetDefault(Logger)
	return Logger
}

// IsDebugLevel reports whether a configured level name asks for debug output.
func IsDebugLevel(name string) bool {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return false
	}
	return level <= slog.LevelDebug
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func Debug(msg string, args ...any) { Logger.Debug(msg, args...) }
func Info(msg string, args ...any)  { Logger.Info(msg, args...) }
func Warn(msg string, args ...any)  { Logger.Warn(msg, args...) }
func Error(msg string, args ...any) { Logger.Error(msg, args...) }

// With returns a child of the process logger.
func With(args ...any) *slog.Logger {
	return Logger.With(args...)
}
