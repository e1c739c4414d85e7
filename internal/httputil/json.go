// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pdiddy/research-match/pkg/types"
)

// MaxBodyBytes caps how much of a response body is read.
const MaxBodyBytes = 4 << 20

// Request describes one JSON call.
type Request struct {
	// Op names the call in errors and logs (e.g. "create chat").
	Op     string
	Method string
	URL    string
	Header http.Header

	// Body is encoded as JSON when non-nil.
	Body any

	// Timeout bounds the whole exchange including the body read; zero
	// leaves only the caller's context.
	Timeout time.Duration

	// MaxRetries enables 429 backoff through DoWithRetry when positive.
	MaxRetries int
}

// Result is a response with a status below 500. The caller decides what
// a non-200 status means.
type Result struct {
	Status int
	Body   []byte
}

// OK reports whether the status is 200.
func (r Result) OK() bool { return r.Status == http.StatusOK }

// DoJSON performs r. Network errors, timeouts and statuses of 500 and
// above return a *types.TransportError; every other status is returned as
// a Result for the caller to interpret as a business response.
func DoJSON(ctx context.Context, client *http.Client, r Request) (Result, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	var body io.Reader
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return Result{}, fmt.Errorf("%s: encoding request: %w", r.Op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		return Result{}, fmt.Errorf("%s: building request: %w", r.Op, err)
	}
	req.Header.Set("Accept", "application/json")
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	var resp *http.Response
	if r.MaxRetries > 0 {
		resp, err = DoWithRetry(ctx, client, req, r.MaxRetries)
	} else {
		resp, err = client.Do(req)
	}
	if err != nil {
		return Result{}, &types.TransportError{Op: r.Op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return Result{}, &types.TransportError{Op: r.Op, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return Result{}, &types.TransportError{Op: r.Op, Status: resp.StatusCode, Body: data}
	}
	return Result{Status: resp.StatusCode, Body: data}, nil
}
