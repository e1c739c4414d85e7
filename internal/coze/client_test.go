// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package coze

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-match/pkg/types"
)

// newTestClient points the package base URL at handler and returns a
// client using it.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	old := cozeAPIBase
	cozeAPIBase = ts.URL
	t.Cleanup(func() { cozeAPIBase = old })

	return New(types.AgentConfig{Token: "tok", HTTPConfig: types.HTTPConfig{UserAgent: "research-match-test"}}, nil)
}

func TestCreateChatFirstTurn(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/chat", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "research-match-test", r.Header.Get("User-Agent"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "bot", body["bot_id"])
		assert.Equal(t, "user", body["user_id"])
		assert.Equal(t, false, body["stream"])
		assert.Equal(t, true, body["auto_save_history"])
		assert.NotContains(t, body, "conversation_id")
		assert.NotContains(t, body, "additional_messages")
		msgs := body["messages"].([]any)
		require.Len(t, msgs, 1)
		assert.Equal(t, map[string]any{"content": "推荐3位", "content_type": "text", "role": "user", "type": "question"}, msgs[0])

		w.Write([]byte(`{"code":0,"msg":"","data":{"id":"chat1","conversation_id":"conv1","status":"in_progress","last_error":{"code":0,"msg":""}}}`))
	})

	job, raw, err := c.CreateChat(context.Background(), "推荐3位", types.JobContext{BotID: "bot", UserID: "user"})
	require.NoError(t, err)
	assert.Equal(t, types.ChatJob{ID: "chat1", ConversationID: "conv1", Status: types.JobInProgress}, job)
	assert.Contains(t, string(raw), "chat1")
}

func TestCreateChatFollowUp(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "conv0", body["conversation_id"])
		assert.NotContains(t, body, "messages")
		assert.Len(t, body["additional_messages"], 1)
		w.Write([]byte(`{"code":0,"data":{"id":"chat2","status":"created"}}`))
	})

	job, _, err := c.CreateChat(context.Background(), "再详细一点", types.JobContext{BotID: "b", UserID: "u", ConversationID: "conv0"})
	require.NoError(t, err)
	assert.Equal(t, "conv0", job.ConversationID, "conversation carried over when the provider omits it")
	assert.Equal(t, types.JobQueued, job.Status)
}

func TestCreateChatErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantKind   string
		wantStatus int
		wantCode   int
	}{
		{"missing chat id", 200, `{"code":0,"data":{"status":"in_progress"}}`, "ProviderError", 200, 0},
		{"provider code", 200, `{"code":4100,"msg":"token invalid"}`, "ProviderError", 200, 4100},
		{"business status", 401, `{"code":4101,"msg":"unauthorized"}`, "ProviderError", 401, 4101},
		{"not json", 200, `<html>`, "ProviderError", 200, 0},
		{"server error", 502, `bad gateway`, "TransportError", 502, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, _, err := c.CreateChat(context.Background(), "q", types.JobContext{})
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, types.ErrorKind(err))
			d := types.ErrorDetailFor(err)
			assert.Equal(t, tt.wantStatus, d.Status)

			var provErr *types.ProviderError
			if errors.As(err, &provErr) {
				assert.Equal(t, tt.wantCode, provErr.Code)
			}
		})
	}
}

func TestRetrieveChat(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/chat/retrieve", r.URL.Path)
		assert.Equal(t, "chat1", r.URL.Query().Get("chat_id"))
		assert.Equal(t, "conv1", r.URL.Query().Get("conversation_id"))
		w.Write([]byte(`{"code":0,"data":{"id":"chat1","conversation_id":"conv1","status":"failed","last_error":{"code":4028,"msg":"balance insufficient"}}}`))
	})

	job, raw, err := c.RetrieveChat(context.Background(), "chat1", "conv1")
	require.NoError(t, err)
	assert.Equal(t, types.JobFailed, job.Status)
	require.NotNil(t, job.LastError)
	assert.Equal(t, types.InsufficientBalanceCode, job.LastError.Code)
	assert.True(t, json.Valid(raw))
}

func TestRetrieveChatEmptyBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {})
	_, _, err := c.RetrieveChat(context.Background(), "c", "v")
	var provErr *types.ProviderError
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, "empty response", provErr.Msg)
}

func TestListMessages(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/chat/message/list", r.URL.Path)
		w.Write([]byte(`{"code":0,"data":[
			{"role":"user","type":"question","content":"推荐3位"},
			{"role":"assistant","type":"verbose","content":"{}"},
			{"role":"assistant","type":"answer","content":"为您推荐以下教授"}
		]}`))
	})

	msgs, err := c.ListMessages(context.Background(), "chat1", "conv1")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, types.TranscriptMessage{Role: types.RoleAssistant, Kind: types.KindAnswer, Content: "为您推荐以下教授"}, msgs[2])
	assert.Equal(t, types.MessageKind("verbose"), msgs[1].Kind)
}

func TestListMessagesNullData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"code":0,"data":null}`))
	})
	msgs, err := c.ListMessages(context.Background(), "c", "v")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestNewDefaults(t *testing.T) {
	c := New(types.AgentConfig{BaseURL: "https://example.test/"}, nil)
	assert.Equal(t, "https://example.test", c.baseURL)
	assert.Equal(t, DefaultSubmitTimeout, c.submitTimeout)
	assert.Equal(t, DefaultPollTimeout, c.pollTimeout)
}
