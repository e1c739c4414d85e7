// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the process logger: human-readable text on
// stderr and, when a log file is configured, JSON lines to that file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	slogmulti "github.com/samber/slog-multi"

	"github.com/pdiddy/research-match/pkg/types"
)

// ParseLevel maps debug|info|warn|error (any case) to a slog level.
// Unknown values give info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Setup creates the logger for cfg writing text to stderr. The returned
// cleanup closes the log file, if any.
func Setup(cfg types.LogConfig, stderr io.Writer) (*slog.Logger, func() error, error) {
	level := ParseLevel(cfg.Level)
	textHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})
	if cfg.File == "" {
		return slog.New(textHandler), func() error { return nil }, nil
	}

	if dir := filepath.Dir(cfg.File); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating log directory: %w", err)
		}
	}
	file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	return NewFanout(stderr, file, level), file.Close, nil
}

// NewFanout returns a logger writing text to stderr and JSON to file.
func NewFanout(stderr, file io.Writer, level slog.Level) *slog.Logger {
	textHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})
	jsonHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return slog.New(slogmulti.Fanout(textHandler, jsonHandler))
}
