package models

import "encoding/json"

// MaxMessageLength is the largest accepted chat message, in characters.
const MaxMessageLength = 8000

// Part is one text fragment of a conversation turn.
type Part struct {
	Text string `json:"text"`
}

// HistoryEntry is a prior conversation turn in the provider's wire shape.
type HistoryEntry struct {
	Role  string `json:"role"` // "user" or "model"
	Parts []Part `json:"parts"`
}

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	Message string         `json:"message"`
	History []HistoryEntry `json:"history,omitempty"`
}

// InboundChatRequest is ChatRequest as the server decodes it. Both fields stay
// raw so that wrongly typed values can be rejected or dropped one by one.
type InboundChatRequest struct {
	Message json.RawMessage `json:"message"`
	History json.RawMessage `json:"history"`
}

// ChatResponse is the reply from the assistant.
type ChatResponse struct {
	Response string `json:"response"`
}

// HealthResponse is served by the liveness probe.
type HealthResponse struct {
	Status           string `json:"status"`
	Timestamp        string `json:"timestamp"`
	GeminiConfigured bool   `json:"gemini_configured"`
}

// ProviderTestResponse is served by the provider smoke test.
type ProviderTestResponse struct {
	Status       string `json:"status"`
	TestResponse string `json:"test_response,omitempty"`
	Error        string `json:"error,omitempty"`
	Timestamp    string `json:"timestamp"`
}

// WSIncoming is a chat frame sent by a websocket client.
type WSIncoming struct {
	Message json.RawMessage `json:"message"`
}

// WSOutgoing is a chat frame sent to a websocket client.
type WSOutgoing struct {
	Type      string    `json:"type"` // "connected", "response" or "error"
	SessionID string    `json:"session_id,omitempty"`
	Response  string    `json:"response,omitempty"`
	Error     string    `json:"error,omitempty"`
	Code      ErrorCode `json:"code,omitempty"`
}
