// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research-match pipeline:
// the provider job lifecycle, transcripts, extracted professor records, the
// presentation payload, the request/response envelope and configuration.
package types

// JobStatus is the lifecycle state of one asynchronous agent job.
type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobInProgress JobStatus = "in_progress"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
	JobTimedOut   JobStatus = "timed_out"

	// JobRequiresAction is reported by the provider when the bot waits for
	// a plugin response. It is not terminal.
	JobRequiresAction JobStatus = "requires_action"
)

// IsTerminal reports whether no further status transitions are expected.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobCompleted, JobFailed, JobTimedOut:
		return true
	}
	return false
}

// NormalizeStatus maps a provider status string onto the job lifecycle.
// Unknown or empty values are treated as in progress; "canceled" is a
// failure from the caller's point of view.
func NormalizeStatus(s string) JobStatus {
	switch JobStatus(s) {
	case JobQueued, JobInProgress, JobCompleted, JobFailed, JobRequiresAction:
		return JobStatus(s)
	case "created":
		return JobQueued
	case "canceled", "cancelled":
		return JobFailed
	}
	return JobInProgress
}

// LastError is the provider-reported reason for a failed job.
type LastError struct {
	Code int    `json:"code" yaml:"code"`
	Msg  string `json:"msg" yaml:"msg"`
}

// InsufficientBalanceCode is the provider error code for an exhausted
// account balance.
const InsufficientBalanceCode = 4028

// ChatJob is one external agent invocation. It is created on submission
// and mutated only by the poller; it is terminal once Status.IsTerminal().
type ChatJob struct {
	ID             string     `json:"id" yaml:"id"`
	ConversationID string     `json:"conversation_id" yaml:"conversation_id"`
	Status         JobStatus  `json:"status" yaml:"status"`
	LastError      *LastError `json:"last_error,omitempty" yaml:"last_error,omitempty"`
}

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MessageKind is the provider's message type. Kinds other than the three
// listed are kept verbatim and ignored by answer selection.
type MessageKind string

const (
	KindAnswer       MessageKind = "answer"
	KindFunctionCall MessageKind = "function_call"
	KindToolResponse MessageKind = "tool_response"
)

// TranscriptMessage is one immutable message of a job's transcript.
type TranscriptMessage struct {
	Role    Role        `json:"role" yaml:"role"`
	Kind    MessageKind `json:"type" yaml:"type"`
	Content string      `json:"content" yaml:"content"`
}

// IsAssistantOutput reports whether the message is an assistant answer,
// function call or tool response.
func (m TranscriptMessage) IsAssistantOutput() bool {
	if m.Role != RoleAssistant {
		return false
	}
	switch m.Kind {
	case KindAnswer, KindFunctionCall, KindToolResponse:
		return true
	}
	return false
}

// QueryIntent labels the user's original question.
type QueryIntent string

const (
	// IntentSpecific is a request for deep detail about one named professor.
	IntentSpecific QueryIntent = "specific"
	// IntentBroad is a request for a list of candidates.
	IntentBroad QueryIntent = "broad"
)

// Classification is the stateless per-request label set.
type Classification struct {
	Irrelevant bool        `json:"irrelevant" yaml:"irrelevant"`
	Intent     QueryIntent `json:"intent" yaml:"intent"`
}

// JobContext carries the per-request identity sent with a submission.
// A non-empty ConversationID continues an earlier conversation.
type JobContext struct {
	BotID          string `json:"bot_id" yaml:"bot_id"`
	UserID         string `json:"user_id" yaml:"user_id"`
	ConversationID string `json:"conversation_id,omitempty" yaml:"conversation_id,omitempty"`
}
