// Package logging builds the zerolog logger. The terminal belongs to the
// TUI, so logs go to a file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// New returns a logger writing to w at level ("debug", "info", ...) in
// format ("json" or "console"). Unknown levels fall back to info. The
// logger also becomes the zerolog global.
func New(w io.Writer, level, format string) zerolog.Logger {
	name := strings.ToLower(strings.TrimSpace(level))
	lvl, err := zerolog.ParseLevel(name)
	if err != nil || name == "" {
		lvl = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if strings.EqualFold(format, "console") {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		}).With().Timestamp().Logger().Level(lvl)
	} else {
		logger = zerolog.New(w).With().Timestamp().Logger().Level(lvl)
	}

	zlog.Logger = logger
	return logger
}

// Open appends to the log file at path, creating it and its directory.
// Close the returned file when done.
func Open(path, level, format string) (zerolog.Logger, *os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log: %w", err)
	}
	return New(f, level, format), f, nil
}
