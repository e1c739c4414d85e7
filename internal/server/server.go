// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the chat pipeline and the job ledger over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/pdiddy/research-match/internal/ledger"
	"github.com/pdiddy/research-match/internal/orchestrate"
	"github.com/pdiddy/research-match/pkg/types"
)

const (
	maxRequestBytes = 64 << 10
	listTimeout     = 10 * time.Second
	defaultBurst    = 5
)

// ChatHandler runs one chat request through the pipeline.
type ChatHandler interface {
	Handle(ctx context.Context, req types.ChatRequest) types.Response
}

// JobStore is the read side of the ledger.
type JobStore interface {
	List(ctx context.Context, f ledger.Filter) ([]types.JobRecord, error)
	Summarize(ctx context.Context) (ledger.Summary, error)
}

// Server holds the dependencies of the HTTP API.
type Server struct {
	chat      ChatHandler
	jobs      JobStore
	limiter   *rate.Limiter
	logger    *slog.Logger
	startTime time.Time
}

// Option configures the Server.
type Option func(*Server)

// WithJobStore enables the /v1/jobs routes.
func WithJobStore(js JobStore) Option {
	return func(s *Server) { s.jobs = js }
}

// WithRateLimit limits POST /v1/chat to perSecond sustained requests.
// Zero or negative disables the limit.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *Server) {
		if perSecond <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = defaultBurst
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New builds a Server around chat.
func New(chat ChatHandler, opts ...Option) *Server {
	s := &Server{
		chat:      chat,
		logger:    slog.New(slog.DiscardHandler),
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the chi router with middleware and routes mounted.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.With(RateLimitMiddleware(s.limiter)).Post("/chat", s.handleChat)
		if s.jobs != nil {
			r.Get("/jobs", s.handleJobs)
			r.Get("/jobs/summary", s.handleJobsSummary)
		}
	})
	return r
}

// ListenAndServe serves Routes on addr until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		s.logger.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, types.Response{
		Code:    status,
		Message: message,
		Error:   &types.ErrorDetail{Type: "InputError", Message: message, Status: status},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(s.startTime).Round(time.Second).String(),
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	if id := middleware.GetReqID(ctx); id != "" {
		ctx = orchestrate.WithRequestID(ctx, id)
	}
	resp := s.chat.Handle(ctx, req)
	writeJSON(w, httpStatus(resp.Code), resp)
}

// httpStatus mirrors the envelope code onto the HTTP status line.
func httpStatus(code int) int {
	switch code {
	case types.CodeOK:
		return http.StatusOK
	case types.CodeBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	f := ledger.Filter{Status: types.JobStatus(r.URL.Query().Get("status"))}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		f.Limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), listTimeout)
	defer cancel()
	recs, err := s.jobs.List(ctx, f)
	if err != nil {
		s.logger.ErrorContext(ctx, "listing jobs", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "listing jobs failed"})
		return
	}
	if recs == nil {
		recs = []types.JobRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": recs, "count": len(recs)})
}

func (s *Server) handleJobsSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), listTimeout)
	defer cancel()
	sum, err := s.jobs.Summarize(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "summarizing jobs", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "summarizing jobs failed"})
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
