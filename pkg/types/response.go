// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "encoding/json"

// Response codes carried in the envelope.
const (
	CodeOK          = 0
	CodeBadRequest  = 400
	CodeServerError = 500
)

// ChatRequest is the inbound request to the pipeline.
type ChatRequest struct {
	Input          string `json:"input" yaml:"input"`
	BotID          string `json:"bot_id,omitempty" yaml:"bot_id,omitempty"`
	ConversationID string `json:"conversation_id,omitempty" yaml:"conversation_id,omitempty"`
	UserID         string `json:"user_id,omitempty" yaml:"user_id,omitempty"`
}

// Response is the envelope returned for every request. Code 0 means the
// pipeline ran; it does not guarantee a non-empty answer.
type Response struct {
	Code    int           `json:"code"`
	Data    *ResponseData `json:"data,omitempty"`
	Message string        `json:"message,omitempty"`
	Error   *ErrorDetail  `json:"error,omitempty"`
}

// ResponseData is the success body.
type ResponseData struct {
	ResponseText   string          `json:"response_text"`
	CardData       *CardData       `json:"card_data"`
	ConversationID string          `json:"conversation_id"`
	Raw            json.RawMessage `json:"raw,omitempty"`
}

// ErrorDetail carries diagnostics for a failed request.
type ErrorDetail struct {
	Type    string          `json:"type"`
	Message string          `json:"message"`
	Status  int             `json:"status,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Payload returns the presentation payload of a successful response.
func (r Response) Payload() PresentationPayload {
	if r.Data == nil {
		return PresentationPayload{}
	}
	return PresentationPayload{ResponseText: r.Data.ResponseText, CardData: r.Data.CardData}
}
