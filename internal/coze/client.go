// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package coze is a client for the Coze v3 chat API: submit a
// non-streaming chat, retrieve its status, and list its messages.
package coze

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/research-match/internal/httputil"
	"github.com/pdiddy/research-match/pkg/types"
)

// cozeAPIBase is the provider root used when the config names none.
// Declared as a var so tests can substitute an httptest server.
var cozeAPIBase = "https://api.coze.cn"

// Default timeouts per call.
const (
	DefaultSubmitTimeout = 30 * time.Second
	DefaultPollTimeout   = 15 * time.Second
)

// submitRetries is the 429 backoff budget for submission. Status checks
// are not retried here because the poller's attempt budget covers them.
const submitRetries = 2

// envelope is the provider's common response wrapper.
type envelope struct {
	Code  int             `json:"code"`
	Msg   string          `json:"msg"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (e envelope) message() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Error != nil {
		return e.Error.Message
	}
	return ""
}

// chatObject is the data payload of create and retrieve.
type chatObject struct {
	ID             string           `json:"id"`
	ConversationID string           `json:"conversation_id"`
	Status         string           `json:"status"`
	LastError      *types.LastError `json:"last_error"`
}

// message is one entry of the additional_messages or messages array.
type message struct {
	Content     string `json:"content"`
	ContentType string `json:"content_type"`
	Role        string `json:"role"`
	Type        string `json:"type"`
}

// createChatBody is the POST /v3/chat request. First turns send
// messages; follow-ups send conversation_id plus additional_messages.
type createChatBody struct {
	BotID              string    `json:"bot_id"`
	UserID             string    `json:"user_id"`
	Stream             bool      `json:"stream"`
	AutoSaveHistory    bool      `json:"auto_save_history"`
	ConversationID     string    `json:"conversation_id,omitempty"`
	Messages           []message `json:"messages,omitempty"`
	AdditionalMessages []message `json:"additional_messages,omitempty"`
}

// Client talks to the Coze API with a bearer token.
type Client struct {
	http          *http.Client
	baseURL       string
	token         string
	userAgent     string
	submitTimeout time.Duration
	pollTimeout   time.Duration
	logger        *slog.Logger
}

// New returns a Client for cfg. Zero timeouts take the defaults. A nil
// logger discards output.
func New(cfg types.AgentConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	base := cfg.BaseURL
	if base == "" {
		base = cozeAPIBase
	}
	c := &Client{
		http:          &http.Client{},
		baseURL:       strings.TrimRight(base, "/"),
		token:         cfg.Token,
		userAgent:     cfg.UserAgent,
		submitTimeout: cfg.SubmitTimeout,
		pollTimeout:   cfg.PollTimeout,
		logger:        logger,
	}
	if c.submitTimeout <= 0 {
		c.submitTimeout = DefaultSubmitTimeout
	}
	if c.pollTimeout <= 0 {
		c.pollTimeout = DefaultPollTimeout
	}
	return c
}

func (c *Client) header() http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+c.token)
	if c.userAgent != "" {
		h.Set("User-Agent", c.userAgent)
	}
	return h
}

// CreateChat submits query as a non-streaming chat and returns the new
// job with the raw response body.
func (c *Client) CreateChat(ctx context.Context, query string, jc types.JobContext) (types.ChatJob, json.RawMessage, error) {
	const op = "create chat"
	msg := []message{{Content: query, ContentType: "text", Role: "user", Type: "question"}}
	body := createChatBody{
		BotID:           jc.BotID,
		UserID:          jc.UserID,
		AutoSaveHistory: true,
	}
	if jc.ConversationID != "" {
		body.ConversationID = jc.ConversationID
		body.AdditionalMessages = msg
	} else {
		body.Messages = msg
	}

	res, err := httputil.DoJSON(ctx, c.http, httputil.Request{
		Op:         op,
		Method:     http.MethodPost,
		URL:        c.baseURL + "/v3/chat",
		Header:     c.header(),
		Body:       body,
		Timeout:    c.submitTimeout,
		MaxRetries: submitRetries,
	})
	if err != nil {
		return types.ChatJob{}, nil, err
	}

	chat, err := decodeChat(op, res)
	if err != nil {
		return types.ChatJob{}, res.Body, err
	}
	if chat.ID == "" {
		return types.ChatJob{}, res.Body, &types.ProviderError{Op: op, Status: res.Status, Msg: "response has no chat id", Body: res.Body}
	}

	job := chat.job()
	if job.ConversationID == "" {
		job.ConversationID = jc.ConversationID
	}
	c.logger.Debug("chat submitted", "chat_id", job.ID, "conversation_id", job.ConversationID, "status", job.Status)
	return job, res.Body, nil
}

// RetrieveChat fetches the current status of a job.
func (c *Client) RetrieveChat(ctx context.Context, chatID, conversationID string) (types.ChatJob, json.RawMessage, error) {
	const op = "retrieve chat"
	res, err := httputil.DoJSON(ctx, c.http, httputil.Request{
		Op:      op,
		Method:  http.MethodGet,
		URL:     c.baseURL + "/v3/chat/retrieve?" + chatQuery(chatID, conversationID),
		Header:  c.header(),
		Timeout: c.pollTimeout,
	})
	if err != nil {
		return types.ChatJob{}, nil, err
	}

	chat, err := decodeChat(op, res)
	if err != nil {
		return types.ChatJob{}, res.Body, err
	}
	job := chat.job()
	if job.ID == "" {
		job.ID = chatID
	}
	if job.ConversationID == "" {
		job.ConversationID = conversationID
	}
	return job, res.Body, nil
}

// ListMessages returns the job's transcript in provider order.
func (c *Client) ListMessages(ctx context.Context, chatID, conversationID string) ([]types.TranscriptMessage, error) {
	const op = "list messages"
	res, err := httputil.DoJSON(ctx, c.http, httputil.Request{
		Op:      op,
		Method:  http.MethodGet,
		URL:     c.baseURL + "/v3/chat/message/list?" + chatQuery(chatID, conversationID),
		Header:  c.header(),
		Timeout: c.pollTimeout,
	})
	if err != nil {
		return nil, err
	}

	env, err := decodeEnvelope(op, res)
	if err != nil {
		return nil, err
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, nil
	}
	var msgs []types.TranscriptMessage
	if err := json.Unmarshal(env.Data, &msgs); err != nil {
		return nil, &types.ProviderError{Op: op, Status: res.Status, Msg: fmt.Sprintf("parsing messages: %v", err), Body: res.Body}
	}
	return msgs, nil
}

func chatQuery(chatID, conversationID string) string {
	q := url.Values{}
	q.Set("chat_id", chatID)
	q.Set("conversation_id", conversationID)
	return q.Encode()
}

// decodeEnvelope turns a business response into an envelope, or a
// ProviderError for non-200 statuses, empty bodies and non-zero codes.
func decodeEnvelope(op string, res httputil.Result) (envelope, error) {
	if len(res.Body) == 0 {
		return envelope{}, &types.ProviderError{Op: op, Status: res.Status, Msg: "empty response"}
	}
	var env envelope
	decodeErr := json.Unmarshal(res.Body, &env)
	if !res.OK() {
		msg := env.message()
		if msg == "" {
			msg = http.StatusText(res.Status)
		}
		return envelope{}, &types.ProviderError{Op: op, Status: res.Status, Code: env.Code, Msg: msg, Body: res.Body}
	}
	if decodeErr != nil {
		return envelope{}, &types.ProviderError{Op: op, Status: res.Status, Msg: fmt.Sprintf("parsing response: %v", decodeErr), Body: res.Body}
	}
	if env.Code != 0 {
		return envelope{}, &types.ProviderError{Op: op, Status: res.Status, Code: env.Code, Msg: env.message(), Body: res.Body}
	}
	return env, nil
}

func decodeChat(op string, res httputil.Result) (chatObject, error) {
	env, err := decodeEnvelope(op, res)
	if err != nil {
		return chatObject{}, err
	}
	var chat chatObject
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return chat, &types.ProviderError{Op: op, Status: res.Status, Msg: "response has no data", Body: res.Body}
	}
	if err := json.Unmarshal(env.Data, &chat); err != nil {
		return chat, &types.ProviderError{Op: op, Status: res.Status, Msg: fmt.Sprintf("parsing chat: %v", err), Body: res.Body}
	}
	return chat, nil
}

func (o chatObject) job() types.ChatJob {
	job := types.ChatJob{
		ID:             o.ID,
		ConversationID: o.ConversationID,
		Status:         types.NormalizeStatus(o.Status),
	}
	// The provider reports last_error {code:0,msg:""} on healthy jobs.
	if o.LastError != nil && (o.LastError.Code != 0 || o.LastError.Msg != "") {
		le := *o.LastError
		job.LastError = &le
	}
	return job
}
