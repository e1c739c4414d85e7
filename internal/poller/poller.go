// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package poller submits a query to the agent provider and drives the job
// to a terminal status by waiting and checking on an escalating schedule.
// The attempt budget bounds every request: a provider that never finishes
// ends as timed_out after MaxAttempts checks.
package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/pdiddy/research-match/pkg/types"
)

// Provider is the asynchronous chat API the poller drives.
type Provider interface {
	CreateChat(ctx context.Context, query string, jc types.JobContext) (types.ChatJob, json.RawMessage, error)
	RetrieveChat(ctx context.Context, chatID, conversationID string) (types.ChatJob, json.RawMessage, error)
	ListMessages(ctx context.Context, chatID, conversationID string) ([]types.TranscriptMessage, error)
}

// WaitFunc blocks for d or until ctx is done, returning ctx.Err() in the
// latter case.
type WaitFunc func(ctx context.Context, d time.Duration) error

// Sleep is the production WaitFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Outcome is the result of driving one job.
type Outcome struct {
	// Job holds the final status; it is always terminal.
	Job types.ChatJob

	// Transcript is empty when the fetch failed or nothing was produced.
	Transcript []types.TranscriptMessage

	// Attempts is the number of status checks performed.
	Attempts int

	// Waited is the total scheduled wait.
	Waited time.Duration

	// Raw is the last provider status payload.
	Raw json.RawMessage
}

// Poller drives jobs through a Provider.
type Poller struct {
	provider Provider
	cfg      types.PollConfig
	wait     WaitFunc
	logger   *slog.Logger
}

// Option configures a Poller.
type Option func(*Poller)

// WithWait replaces the wait between checks.
func WithWait(w WaitFunc) Option {
	return func(p *Poller) { p.wait = w }
}

// New returns a Poller. A zero cfg takes DefaultPollConfig; a nil logger
// discards output.
func New(provider Provider, cfg types.PollConfig, logger *slog.Logger, opts ...Option) *Poller {
	def := types.DefaultPollConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if len(cfg.Schedule) == 0 {
		cfg.Schedule = def.Schedule
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p := &Poller{provider: provider, cfg: cfg, wait: Sleep, logger: logger}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Interval returns the wait before the given 1-based attempt. Attempts
// past the last step reuse its interval.
func (p *Poller) Interval(attempt int) time.Duration {
	for _, s := range p.cfg.Schedule {
		if attempt <= s.Through {
			return s.Interval
		}
	}
	return p.cfg.Schedule[len(p.cfg.Schedule)-1].Interval
}

// Submit creates the job. A missing job id is fatal for the request.
func (p *Poller) Submit(ctx context.Context, query string, jc types.JobContext) (types.ChatJob, json.RawMessage, error) {
	job, raw, err := p.provider.CreateChat(ctx, query, jc)
	if err != nil {
		return types.ChatJob{}, raw, fmt.Errorf("submitting query: %w", err)
	}
	if job.ID == "" {
		return types.ChatJob{}, raw, &types.ProviderError{Op: "create chat", Msg: "response has no chat id", Body: raw}
	}
	p.logger.Info("job submitted", "chat_id", job.ID, "conversation_id", job.ConversationID, "status", job.Status)
	return job, raw, nil
}

// AwaitCompletion polls job until it is terminal or the attempt budget is
// spent, then fetches the transcript once whatever the final status.
// Check failures consume an attempt and leave the status unchanged.
func (p *Poller) AwaitCompletion(ctx context.Context, job types.ChatJob) Outcome {
	out := Outcome{Job: job}
	log := p.logger.With("chat_id", job.ID, "conversation_id", job.ConversationID)

	for !out.Job.Status.IsTerminal() {
		if out.Attempts >= p.cfg.MaxAttempts {
			log.Warn("polling budget exhausted", "attempts", out.Attempts, "waited", out.Waited)
			out.Job.Status = types.JobTimedOut
			break
		}

		d := p.Interval(out.Attempts + 1)
		if err := p.wait(ctx, d); err != nil {
			log.Warn("polling cancelled", "attempts", out.Attempts, "error", err)
			out.Job.Status = types.JobTimedOut
			break
		}
		out.Waited += d
		out.Attempts++

		checked, raw, err := p.provider.RetrieveChat(ctx, job.ID, job.ConversationID)
		if err != nil {
			log.Warn("status check failed", "attempt", out.Attempts, "kind", types.ErrorKind(err), "error", err)
			continue
		}
		out.Raw = raw
		out.Job.Status = checked.Status
		out.Job.LastError = checked.LastError
		log.Debug("status checked", "attempt", out.Attempts, "status", checked.Status)

		if checked.Status == types.JobFailed {
			p.logFailure(log, checked.LastError)
		}
	}

	if out.Job.Status == types.JobCompleted {
		log.Info("job completed", "attempts", out.Attempts, "waited", out.Waited)
	}

	// The transcript is fetched even after failure or timeout so partial
	// answers are not lost. A cancelled ctx must not block the fetch.
	msgs, err := p.provider.ListMessages(context.WithoutCancel(ctx), job.ID, job.ConversationID)
	if err != nil {
		log.Warn("transcript fetch failed", "kind", types.ErrorKind(err), "error", err)
		msgs = nil
	}
	out.Transcript = msgs
	return out
}

func (p *Poller) logFailure(log *slog.Logger, le *types.LastError) {
	if le == nil {
		log.Warn("job failed")
		return
	}
	if le.Code == types.InsufficientBalanceCode {
		log.Warn("job failed: provider balance insufficient", "code", le.Code, "msg", le.Msg)
		return
	}
	log.Warn("job failed", "code", le.Code, "msg", le.Msg)
}

// Run submits query and awaits completion.
func (p *Poller) Run(ctx context.Context, query string, jc types.JobContext) (Outcome, error) {
	job, raw, err := p.Submit(ctx, query, jc)
	if err != nil {
		return Outcome{Raw: raw}, err
	}
	out := p.AwaitCompletion(ctx, job)
	if out.Raw == nil {
		out.Raw = raw
	}
	return out, nil
}
