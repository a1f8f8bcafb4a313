package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"zen-backend/internal/models"
	"zen-backend/internal/services"
)

type chatRelay interface {
	Chat(ctx context.Context, req models.InboundChatRequest) (string, error)
	Ping(ctx context.Context) (string, error)
	Configured() bool
}

type ChatHandler struct {
	relay  chatRelay
	logger *zap.Logger
	now    func() time.Time
}

func NewChatHandler(relay chatRelay, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{relay: relay, logger: logger, now: time.Now}
}

// Chat relays one message to the assistant.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.InboundChatRequest
	if err := decodeJSON(r, &req); err != nil {
		if isTooLarge(err) {
			writeError(w, models.CodePayloadTooLarge, "Requisição muito grande.")
			return
		}
		handleServiceError(w, h.logger, services.NewRelayError(models.CodeInvalidMessage, err))
		return
	}

	reply, err := h.relay.Chat(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{Response: reply})
}

// Health is the liveness probe. It never calls the provider.
func (h *ChatHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:           "OK",
		Timestamp:        h.timestamp(),
		GeminiConfigured: h.relay.Configured(),
	})
}

// Test sends a fixed prompt to the provider and reports whether it answered.
func (h *ChatHandler) Test(w http.ResponseWriter, r *http.Request) {
	reply, err := h.relay.Ping(r.Context())
	if err != nil {
		h.logger.Error("provider smoke test failed", zap.Error(err))
		relayErr, ok := err.(*services.RelayError)
		if !ok {
			relayErr = services.NewRelayError(services.Classify(err), err)
		}
		writeJSON(w, http.StatusInternalServerError, models.ProviderTestResponse{
			Status:    "API_ERROR",
			Error:     relayErr.Message,
			Timestamp: h.timestamp(),
		})
		return
	}

	writeJSON(w, http.StatusOK, models.ProviderTestResponse{
		Status:       "API_OK",
		TestResponse: reply,
		Timestamp:    h.timestamp(),
	})
}

func (h *ChatHandler) timestamp() string {
	return h.now().UTC().Format(time.RFC3339Nano)
}
