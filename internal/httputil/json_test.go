// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-match/pkg/types"
)

func TestDoJSON_SendsJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var got map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "v", got["k"])
		w.Write([]byte(`{"code":0}`))
	}))
	defer ts.Close()

	res, err := DoJSON(context.Background(), ts.Client(), Request{
		Op:     "test",
		Method: http.MethodPost,
		URL:    ts.URL,
		Header: http.Header{"Authorization": []string{"Bearer tok"}},
		Body:   map[string]string{"k": "v"},
	})
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.JSONEq(t, `{"code":0}`, string(res.Body))
}

func TestDoJSON_BusinessStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":4100,"msg":"bad token"}`))
	}))
	defer ts.Close()

	res, err := DoJSON(context.Background(), ts.Client(), Request{Op: "test", Method: http.MethodGet, URL: ts.URL})
	require.NoError(t, err, "statuses below 500 are business responses")
	assert.False(t, res.OK())
	assert.Equal(t, http.StatusUnauthorized, res.Status)
	assert.Contains(t, string(res.Body), "bad token")
}

func TestDoJSON_ServerErrorIsTransport(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}))
	defer ts.Close()

	_, err := DoJSON(context.Background(), ts.Client(), Request{Op: "retrieve", Method: http.MethodGet, URL: ts.URL})
	var trErr *types.TransportError
	require.True(t, errors.As(err, &trErr))
	assert.Equal(t, http.StatusBadGateway, trErr.Status)
	assert.Equal(t, "upstream down", string(trErr.Body))
	assert.Equal(t, "retrieve", trErr.Op)
}

func TestDoJSON_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()

	_, err := DoJSON(context.Background(), ts.Client(), Request{
		Op: "slow", Method: http.MethodGet, URL: ts.URL, Timeout: 50 * time.Millisecond,
	})
	var trErr *types.TransportError
	require.True(t, errors.As(err, &trErr))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDoJSON_RetriesRateLimit(t *testing.T) {
	ts, calls := limitedServer(t, 1, http.StatusOK)
	res, err := DoJSON(context.Background(), ts.Client(), Request{
		Op: "submit", Method: http.MethodPost, URL: ts.URL, Body: struct{}{}, MaxRetries: 2,
	})
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, int32(2), *calls)
}
