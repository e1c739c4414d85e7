// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets reads credentials from a directory of plain-text files,
// one secret per file: the filename is the key, the trimmed contents the value.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Known keys.
const (
	// CozeToken is the agent provider bearer token.
	CozeToken = "coze-token"

	// CozeBotID optionally supplies the default agent id.
	CozeBotID = "coze-bot-id"
)

// DefaultDir is the secrets directory relative to the working directory.
const DefaultDir = ".secrets"

// Store holds loaded secrets by key.
type Store map[string]string

// Get returns the value for key, or "" when absent.
func (s Store) Get(key string) string {
	return s[key]
}

// Load reads every regular, non-hidden file in dir. A missing directory
// yields an empty Store. Unreadable files are logged and skipped.
func Load(dir string, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Store{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	store := make(Store)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("skipping unreadable secret", "key", name, "error", err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			store[name] = value
		}
	}
	logger.Debug("secrets loaded", "dir", dir, "count", len(store))
	return store, nil
}
