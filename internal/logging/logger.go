// Package logging builds the leveled slog.Logger used across codesim.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// ParseLevel maps a level name to a slog.Level. Unknown names map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a logger writing text to w. When file is set, records are also
// appended to it as JSON. The returned cleanup closes the file.
func New(level string, w io.Writer, file string) (*slog.Logger, func() error, error) {
	lvl := ParseLevel(level)
	textHandler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	if file == "" {
		return slog.New(textHandler), func() error { return nil }, nil
	}

	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file %s: %w", file, err)
	}
	return NewWithWriters(lvl, w, f), f.Close, nil
}

// NewWithWriters fans records out to a text handler on stderr and a JSON
// handler on file.
func NewWithWriters(level slog.Level, stderr, file io.Writer) *slog.Logger {
	stderrHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return slog.New(slogmulti.Fanout(stderrHandler, fileHandler))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
