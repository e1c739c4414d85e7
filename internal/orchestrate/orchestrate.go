// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package orchestrate runs one chat request end to end: submit and poll
// the agent, select the answer from the transcript, classify, extract,
// and shape the payload. It is the error boundary; every failure,
// including a panic, becomes a response envelope.
package orchestrate

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/research-match/internal/classify"
	"github.com/pdiddy/research-match/internal/extract"
	"github.com/pdiddy/research-match/internal/poller"
	"github.com/pdiddy/research-match/internal/present"
	"github.com/pdiddy/research-match/pkg/types"
)

// Runner submits a query and drives the job to a terminal status.
type Runner interface {
	Run(ctx context.Context, query string, jc types.JobContext) (poller.Outcome, error)
}

// Recorder stores a diagnostics row per handled request.
type Recorder interface {
	Record(ctx context.Context, rec types.JobRecord) error
}

type requestIDKey struct{}

// WithRequestID returns ctx carrying id. Handle uses it instead of
// generating one.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id set by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Orchestrator handles chat requests. It holds no per-request state and
// is safe for concurrent use.
type Orchestrator struct {
	runner     Runner
	classifier *classify.Classifier
	extractor  *extract.Extractor
	recorder   Recorder
	defaults   types.JobContext
	credential string
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRecorder stores a JobRecord for every request.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithDefaults sets the bot and user used when a request names none.
func WithDefaults(botID, userID string) Option {
	return func(o *Orchestrator) {
		o.defaults.BotID = botID
		o.defaults.UserID = userID
	}
}

// WithCredential sets the provider token that must be configured before
// any request is submitted.
func WithCredential(token string) Option {
	return func(o *Orchestrator) { o.credential = token }
}

// WithLogger sets the logger. Nil keeps the discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New returns an Orchestrator.
func New(runner Runner, classifier *classify.Classifier, extractor *extract.Extractor, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		runner:     runner,
		classifier: classifier,
		extractor:  extractor,
		logger:     slog.New(slog.DiscardHandler),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Result is the outcome of the pure presentation pipeline.
type Result struct {
	Payload        types.PresentationPayload `json:"payload" yaml:"payload"`
	Classification types.Classification      `json:"classification" yaml:"classification"`
	Decision       present.Decision          `json:"decision" yaml:"decision"`
	Records        int                       `json:"records" yaml:"records"`
}

// Present classifies answer, extracts records unless it is irrelevant,
// and shapes the payload. It makes no network calls.
func (o *Orchestrator) Present(query, answer string, status types.JobStatus) Result {
	return o.presentAt(query, answer, status, o.now())
}

func (o *Orchestrator) presentAt(query, answer string, status types.JobStatus, submittedAt time.Time) Result {
	cls := o.classifier.Classify(answer, query)

	var records []types.ProfessorRecord
	if !cls.Irrelevant && strings.TrimSpace(answer) != "" {
		records = o.extractor.ExtractAt(answer, submittedAt)
	}

	payload, decision := present.Build(present.Input{
		Answer:         answer,
		Status:         status,
		Classification: cls,
		Records:        records,
	})
	return Result{Payload: payload, Classification: cls, Decision: decision, Records: len(records)}
}

// SelectAnswer picks the text to present from a transcript: the last
// assistant answer with content, or else every assistant output with
// content joined by blank lines in transcript order.
func SelectAnswer(msgs []types.TranscriptMessage) string {
	var outputs []types.TranscriptMessage
	for _, m := range msgs {
		if m.IsAssistantOutput() {
			outputs = append(outputs, m)
		}
	}
	for i := len(outputs) - 1; i >= 0; i-- {
		if outputs[i].Kind == types.KindAnswer && outputs[i].Content != "" {
			return outputs[i].Content
		}
	}
	var parts []string
	for _, m := range outputs {
		if m.Content != "" {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Handle runs req and always returns an envelope.
func (o *Orchestrator) Handle(ctx context.Context, req types.ChatRequest) (resp types.Response) {
	requestID := RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	log := o.logger.With("request_id", requestID)
	rec := types.JobRecord{RequestID: requestID, Query: req.Input, StartedAt: o.now()}

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic handling request", "panic", r, "stack", string(debug.Stack()))
			resp = errorResponse(fmt.Errorf("internal error: %v", r))
		}
		rec.Code = resp.Code
		rec.FinishedAt = o.now()
		o.record(ctx, log, rec)
	}()

	if strings.TrimSpace(req.Input) == "" {
		log.Info("rejected request", "reason", "empty input")
		return errorResponse(&types.InputError{Field: "input"})
	}
	if o.credential == "" {
		log.Error("provider credential not configured")
		return errorResponse(&types.ConfigError{Key: "agent.token"})
	}

	jc := types.JobContext{
		BotID:          firstNonEmpty(req.BotID, o.defaults.BotID),
		UserID:         firstNonEmpty(req.UserID, o.defaults.UserID),
		ConversationID: req.ConversationID,
	}
	submittedAt := o.now()
	out, err := o.runner.Run(ctx, req.Input, jc)
	if err != nil {
		log.Error("request failed", "kind", types.ErrorKind(err), "error", err)
		rec.ErrorMsg = err.Error()
		return errorResponse(err)
	}

	rec.JobID = out.Job.ID
	rec.ConversationID = out.Job.ConversationID
	rec.Status = out.Job.Status
	rec.Attempts = out.Attempts
	if le := out.Job.LastError; le != nil {
		rec.ErrorCode, rec.ErrorMsg = le.Code, le.Msg
	}

	answer := SelectAnswer(out.Transcript)
	res := o.presentAt(req.Input, answer, out.Job.Status, submittedAt)
	rec.Professors = res.Records
	rec.Intent = res.Classification.Intent
	rec.Shape = string(res.Decision.Shape)

	log.Info("request handled",
		"status", out.Job.Status,
		"attempts", out.Attempts,
		"intent", res.Classification.Intent,
		"irrelevant", res.Classification.Irrelevant,
		"rule", res.Decision.Rule,
		"professors", res.Records)

	return types.Response{
		Code: types.CodeOK,
		Data: &types.ResponseData{
			ResponseText:   res.Payload.ResponseText,
			CardData:       res.Payload.CardData,
			ConversationID: firstNonEmpty(out.Job.ConversationID, req.ConversationID),
			Raw:            out.Raw,
		},
	}
}

func (o *Orchestrator) record(ctx context.Context, log *slog.Logger, rec types.JobRecord) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.Record(context.WithoutCancel(ctx), rec); err != nil {
		log.Warn("recording job failed", "error", err)
	}
}

// errorResponse maps err onto the envelope: 400 for input errors, 500
// otherwise.
func errorResponse(err error) types.Response {
	code := types.CodeServerError
	if types.ErrorKind(err) == "InputError" {
		code = types.CodeBadRequest
	}
	return types.Response{Code: code, Message: err.Error(), Error: types.ErrorDetailFor(err)}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
