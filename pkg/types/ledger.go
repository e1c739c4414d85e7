// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// JobRecord is one ledger row: the provider-side diagnostics of a handled
// request. It is never read back into the pipeline.
type JobRecord struct {
	RequestID      string      `json:"request_id" yaml:"request_id"`
	JobID          string      `json:"job_id,omitempty" yaml:"job_id,omitempty"`
	ConversationID string      `json:"conversation_id,omitempty" yaml:"conversation_id,omitempty"`
	Query          string      `json:"query" yaml:"query"`
	Status         JobStatus   `json:"status,omitempty" yaml:"status,omitempty"`
	ErrorCode      int         `json:"error_code,omitempty" yaml:"error_code,omitempty"`
	ErrorMsg       string      `json:"error_msg,omitempty" yaml:"error_msg,omitempty"`
	Attempts       int         `json:"attempts" yaml:"attempts"`
	Professors     int         `json:"professors" yaml:"professors"`
	Intent         QueryIntent `json:"intent,omitempty" yaml:"intent,omitempty"`
	Shape          string      `json:"shape,omitempty" yaml:"shape,omitempty"`
	Code           int         `json:"code" yaml:"code"`
	StartedAt      time.Time   `json:"started_at" yaml:"started_at"`
	FinishedAt     time.Time   `json:"finished_at" yaml:"finished_at"`
}
