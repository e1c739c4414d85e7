// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/research-match/internal/coze"
	"github.com/pdiddy/research-match/internal/secrets"
	"github.com/pdiddy/research-match/pkg/types"
)

const (
	envPrefix        = "RESEARCH_MATCH"
	defaultUserAgent = "research-match/0.1"
	defaultAddr      = ":8080"
	defaultLedger    = "data/jobs.db"
	defaultUserID    = "research_match_user"
)

// configure sets defaults and environment bindings on v.
func configure(v *viper.Viper) {
	poll := types.DefaultPollConfig()

	v.SetDefault("agent.base_url", "https://api.coze.cn")
	v.SetDefault("agent.user_id", defaultUserID)
	v.SetDefault("http.submit_timeout", coze.DefaultSubmitTimeout)
	v.SetDefault("http.poll_timeout", coze.DefaultPollTimeout)
	v.SetDefault("http.user_agent", defaultUserAgent)
	v.SetDefault("poll.max_attempts", poll.MaxAttempts)
	v.SetDefault("server.addr", defaultAddr)
	v.SetDefault("server.rate_limit", 2.0)
	v.SetDefault("server.rate_burst", 5)
	v.SetDefault("ledger.path", defaultLedger)
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("agent.token", envPrefix+"_AGENT_TOKEN", "COZE_TOKEN")
}

func logConfig(v *viper.Viper) types.LogConfig {
	return types.LogConfig{
		Level: v.GetString("log.level"),
		File:  v.GetString("log.file"),
	}
}

// loadConfig reads all settings from v. Credentials missing from the
// config and environment fall back to the secrets store.
func loadConfig(v *viper.Viper, store secrets.Store) types.Config {
	poll := types.DefaultPollConfig()
	if n := v.GetInt("poll.max_attempts"); n > 0 {
		poll.MaxAttempts = n
	}

	cfg := types.Config{
		Agent: types.AgentConfig{
			HTTPConfig: types.HTTPConfig{
				SubmitTimeout: durationOr(v.GetDuration("http.submit_timeout"), coze.DefaultSubmitTimeout),
				PollTimeout:   durationOr(v.GetDuration("http.poll_timeout"), coze.DefaultPollTimeout),
				UserAgent:     v.GetString("http.user_agent"),
			},
			BaseURL: v.GetString("agent.base_url"),
			BotID:   v.GetString("agent.bot_id"),
			UserID:  v.GetString("agent.user_id"),
			Token:   v.GetString("agent.token"),
		},
		Poll: poll,
		Server: types.ServerConfig{
			Addr:      v.GetString("server.addr"),
			RateLimit: v.GetFloat64("server.rate_limit"),
			RateBurst: v.GetInt("server.rate_burst"),
		},
		Ledger:     types.LedgerConfig{Path: v.GetString("ledger.path")},
		Log:        logConfig(v),
		Extraction: types.ExtractionConfig{VocabularyFile: v.GetString("extraction.vocabulary_file")},
	}

	if cfg.Agent.Token == "" {
		cfg.Agent.Token = store.Get(secrets.CozeToken)
	}
	if cfg.Agent.BotID == "" {
		cfg.Agent.BotID = store.Get(secrets.CozeBotID)
	}
	return cfg
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
