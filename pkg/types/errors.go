// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"errors"
	"fmt"
)

// InputError reports a missing or malformed request field. It is rejected
// before any provider call.
type InputError struct {
	Field string
}

func (e *InputError) Error() string {
	return e.Field + " required"
}

// ConfigError reports a missing credential or setting.
type ConfigError struct {
	Key string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s not configured", e.Key)
}

// TransportError reports a network failure, timeout or 5xx status on a
// provider call.
type TransportError struct {
	Op     string
	Status int
	Body   []byte
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: HTTP %d", e.Op, e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProviderError reports a business failure from the provider: a non-200
// status below 500, a non-zero envelope code, or a response missing a
// required field.
type ProviderError struct {
	Op     string
	Status int
	Code   int
	Msg    string
	Body   []byte
}

func (e *ProviderError) Error() string {
	switch {
	case e.Code != 0:
		return fmt.Sprintf("%s: provider code %d: %s", e.Op, e.Code, e.Msg)
	case e.Status != 0 && e.Status != 200:
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.Status, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

// ErrorKind names the error kind for the response envelope.
func ErrorKind(err error) string {
	var (
		inErr   *InputError
		cfgErr  *ConfigError
		trErr   *TransportError
		provErr *ProviderError
	)
	switch {
	case errors.As(err, &inErr):
		return "InputError"
	case errors.As(err, &cfgErr):
		return "ConfigError"
	case errors.As(err, &trErr):
		return "TransportError"
	case errors.As(err, &provErr):
		return "ProviderError"
	}
	return "Error"
}

// ErrorDetailFor builds the envelope diagnostics for err, preserving the
// HTTP status and response body when the error carries them.
func ErrorDetailFor(err error) *ErrorDetail {
	d := &ErrorDetail{Type: ErrorKind(err), Message: err.Error()}
	var (
		trErr   *TransportError
		provErr *ProviderError
	)
	switch {
	case errors.As(err, &trErr):
		d.Status = trErr.Status
		d.Data = rawJSON(trErr.Body)
	case errors.As(err, &provErr):
		d.Status = provErr.Status
		d.Data = rawJSON(provErr.Body)
	}
	return d
}

// rawJSON returns body when it is valid JSON, or body quoted as a JSON
// string otherwise.
func rawJSON(body []byte) json.RawMessage {
	if len(body) == 0 {
		return nil
	}
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	quoted, err := json.Marshal(string(body))
	if err != nil {
		return nil
	}
	return quoted
}
