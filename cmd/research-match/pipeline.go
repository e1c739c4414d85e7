// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"log/slog"

	"github.com/pdiddy/research-match/internal/classify"
	"github.com/pdiddy/research-match/internal/coze"
	"github.com/pdiddy/research-match/internal/extract"
	"github.com/pdiddy/research-match/internal/ledger"
	"github.com/pdiddy/research-match/internal/orchestrate"
	"github.com/pdiddy/research-match/internal/poller"
	"github.com/pdiddy/research-match/pkg/types"
)

// newExtractor builds the extractor from the configured vocabulary file.
func newExtractor(cfg types.ExtractionConfig, logger *slog.Logger) (*extract.Extractor, error) {
	vocab, err := extract.LoadVocabulary(cfg.VocabularyFile)
	if err != nil {
		return nil, err
	}
	return extract.New(vocab, logger), nil
}

// newOrchestrator wires the provider client, poller and presentation
// pipeline. A nil store disables the ledger.
func newOrchestrator(cfg types.Config, store *ledger.Store, logger *slog.Logger) (*orchestrate.Orchestrator, error) {
	extractor, err := newExtractor(cfg.Extraction, logger)
	if err != nil {
		return nil, fmt.Errorf("building extractor: %w", err)
	}

	client := coze.New(cfg.Agent, logger)
	runner := poller.New(client, cfg.Poll, logger)

	opts := []orchestrate.Option{
		orchestrate.WithDefaults(cfg.Agent.BotID, cfg.Agent.UserID),
		orchestrate.WithCredential(cfg.Agent.Token),
		orchestrate.WithLogger(logger),
	}
	if store != nil {
		opts = append(opts, orchestrate.WithRecorder(store))
	}
	return orchestrate.New(runner, classify.New(logger), extractor, opts...), nil
}

// openLedger opens the configured ledger, or returns nil when disabled.
func openLedger(cfg types.LedgerConfig) (*ledger.Store, error) {
	if cfg.Path == "" {
		return nil, nil
	}
	return ledger.Open(cfg.Path)
}
