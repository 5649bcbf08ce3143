package logging

import (
	"log/slog"
	"os"
	"strings"
)

// New creates a slog.Logger with the provided level string. Output is a text
// handler when stdout is a terminal and JSON otherwise, so scheduled runs
// produce machine-readable logs.
func New(level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: levelFromString(level)}

	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

func levelFromString(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "info":
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
