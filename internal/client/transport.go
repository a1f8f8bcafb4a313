package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"zen-backend/internal/models"
	"zen-backend/internal/services"
)

// Transport delivers one chat request and returns the raw assistant reply.
type Transport interface {
	Send(ctx context.Context, req models.ChatRequest) (string, error)
}

// Error is a failure reported by the relay. Code is exactly what the relay
// sent and may be empty when the response carried none.
type Error struct {
	Status  int
	Code    models.ErrorCode
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("relay error %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("relay error %d: %s", e.Status, e.Message)
}

// HTTPTransport talks to a deployed relay.
type HTTPTransport struct {
	baseURL string
	http    *http.Client
}

// NewHTTPTransport targets the relay at baseURL. Deadlines come from the
// caller's context, so httpClient normally has no timeout of its own.
func NewHTTPTransport(baseURL string, httpClient *http.Client) *HTTPTransport {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &HTTPTransport{baseURL: baseURL, http: httpClient}
}

func (t *HTTPTransport) Send(ctx context.Context, req models.ChatRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("relay request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp models.ErrorResponse
		json.NewDecoder(resp.Body).Decode(&errResp)
		return "", &Error{Status: resp.StatusCode, Code: errResp.Code, Message: errResp.Error}
	}

	var chatResp models.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode relay response: %w", err)
	}
	return chatResp.Response, nil
}

// HealthCheck calls the relay's liveness probe.
func (t *HTTPTransport) HealthCheck(ctx context.Context) (*models.HealthResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/api/health", nil)
	if err != nil {
		return nil, err
	}
	resp, err := t.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("relay request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Status: resp.StatusCode}
	}
	var health models.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("failed to decode health response: %w", err)
	}
	return &health, nil
}

type relaySender interface {
	Send(ctx context.Context, req models.ChatRequest) (string, error)
}

// DirectTransport runs the relay in-process with a locally configured
// provider. It is the fallback for environments without a deployed relay.
type DirectTransport struct {
	relay relaySender
}

func NewDirectTransport(relay relaySender) *DirectTransport {
	return &DirectTransport{relay: relay}
}

func (t *DirectTransport) Send(ctx context.Context, req models.ChatRequest) (string, error) {
	reply, err := t.relay.Send(ctx, req)
	if err != nil {
		var relayErr *services.RelayError
		if errors.As(err, &relayErr) {
			return "", &Error{Status: relayErr.Status(), Code: relayErr.Code, Message: relayErr.Message}
		}
		return "", err
	}
	return reply, nil
}
