// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for provider calls.
type HTTPConfig struct {
	// SubmitTimeout bounds the job-submission call (default 30s).
	SubmitTimeout time.Duration `json:"submit_timeout" yaml:"submit_timeout"`

	// PollTimeout bounds each status check and the transcript fetch (default 15s).
	PollTimeout time.Duration `json:"poll_timeout" yaml:"poll_timeout"`

	// UserAgent is the User-Agent header sent with provider requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AgentConfig identifies the external conversational agent.
type AgentConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the provider API root (e.g. "https://api.coze.cn").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// BotID is the default agent used when a request names none.
	BotID string `json:"bot_id" yaml:"bot_id"`

	// UserID is the default end-user id sent to the provider.
	UserID string `json:"user_id" yaml:"user_id"`

	// Token is the provider bearer token.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`
}

// PollStep is one band of the polling schedule: attempts up to and
// including Through wait Interval before checking.
type PollStep struct {
	Through  int           `json:"through" yaml:"through"`
	Interval time.Duration `json:"interval" yaml:"interval"`
}

// PollConfig holds the completion-polling budget.
type PollConfig struct {
	// MaxAttempts caps the number of status checks (default 20).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// Schedule is the escalating wait, ordered by Through.
	Schedule []PollStep `json:"schedule" yaml:"schedule"`
}

// DefaultPollConfig returns the 20-attempt schedule: 2s for attempts 1-5,
// 3s for 6-10, 4s for 11-20.
func DefaultPollConfig() PollConfig {
	return PollConfig{
		MaxAttempts: 20,
		Schedule: []PollStep{
			{Through: 5, Interval: 2 * time.Second},
			{Through: 10, Interval: 3 * time.Second},
			{Through: 20, Interval: 4 * time.Second},
		},
	}
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`

	// RateLimit is the sustained chat requests per second (0 disables).
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit"`

	// RateBurst is the limiter burst size (default 5).
	RateBurst int `json:"rate_burst" yaml:"rate_burst"`
}

// LedgerConfig holds settings for the job diagnostics ledger.
type LedgerConfig struct {
	// Path is the SQLite database file; empty disables the ledger.
	Path string `json:"path" yaml:"path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `json:"level" yaml:"level"`
	File  string `json:"file,omitempty" yaml:"file,omitempty"`
}

// ExtractionConfig holds settings for the entity extractor.
type ExtractionConfig struct {
	// VocabularyFile is an optional YAML file overriding the built-in
	// institution, department and research-area vocabularies.
	VocabularyFile string `json:"vocabulary_file,omitempty" yaml:"vocabulary_file,omitempty"`
}

// Config groups all settings.
type Config struct {
	Agent      AgentConfig      `json:"agent" yaml:"agent"`
	Poll       PollConfig       `json:"poll" yaml:"poll"`
	Server     ServerConfig     `json:"server" yaml:"server"`
	Ledger     LedgerConfig     `json:"ledger" yaml:"ledger"`
	Log        LogConfig        `json:"log" yaml:"log"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
}
