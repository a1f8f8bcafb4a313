package services

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"zen-backend/internal/logging"
	"zen-backend/internal/models"
	"zen-backend/internal/sanitize"
)

// DefaultChatTimeout bounds every upstream call.
const DefaultChatTimeout = 30 * time.Second

var replyPrefixes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*\[neura\]\s*:?\s*`),
	regexp.MustCompile(`(?i)^\s*\**neura\**\s*:\s*\**\s*`),
	regexp.MustCompile(`^\s*-\s*`),
}

// RelayService validates chat requests, forwards them to the provider and
// maps the outcome onto the client-facing taxonomy. It keeps no record of
// any exchange.
type RelayService struct {
	provider   ChatProvider
	timeout    time.Duration
	production bool
	logger     *zap.Logger
}

// NewRelayService builds a relay. provider may be nil when no credential is
// configured; every chat then fails with API_CONFIG_ERROR.
func NewRelayService(provider ChatProvider, timeout time.Duration, production bool, logger *zap.Logger) *RelayService {
	if timeout <= 0 {
		timeout = DefaultChatTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RelayService{
		provider:   provider,
		timeout:    timeout,
		production: production,
		logger:     logger,
	}
}

// Configured reports whether a provider is available.
func (s *RelayService) Configured() bool {
	return s.provider != nil
}

// Timeout is the upstream deadline applied to each chat.
func (s *RelayService) Timeout() time.Duration {
	return s.timeout
}

// Send relays a typed request, as built by in-process callers.
func (s *RelayService) Send(ctx context.Context, req models.ChatRequest) (string, error) {
	message, err := json.Marshal(req.Message)
	if err != nil {
		return "", NewRelayError(models.CodeInvalidMessage, err)
	}
	inbound := models.InboundChatRequest{Message: message}
	if len(req.History) > 0 {
		if inbound.History, err = json.Marshal(req.History); err != nil {
			return "", NewRelayError(models.CodeInvalidMessage, err)
		}
	}
	return s.Chat(ctx, inbound)
}

// Chat relays one decoded request. Every returned error is a *RelayError.
func (s *RelayService) Chat(ctx context.Context, req models.InboundChatRequest) (string, error) {
	message, relayErr := ValidateMessage(req.Message)
	if relayErr != nil {
		return "", relayErr
	}

	if s.provider == nil {
		s.logger.Error("chat relay called without a provider credential")
		return "", &RelayError{
			Code:    models.CodeAPIConfig,
			Message: "Servidor não configurado corretamente (API KEY ausente).",
		}
	}

	prior := NormalizeHistory(req.History)
	history := AssembleHistory(prior)

	s.logger.Info("sending message to Gemini",
		zap.String("message_preview", logging.Preview(message, 50)),
		zap.Int("history_turns", len(prior)),
	)

	reply, err := s.callWithTimeout(ctx, history, message)
	if err != nil {
		return "", s.fail(err)
	}

	cleaned := CleanReply(reply)
	if cleaned == "" {
		return "", s.fail(errors.New("IA retornou resposta vazia ou inválida"))
	}

	s.logger.Info("Gemini reply relayed", zap.Int("reply_length", len(cleaned)))
	return cleaned, nil
}

// Ping runs the provider smoke test under the relay deadline.
func (s *RelayService) Ping(ctx context.Context) (string, error) {
	if s.provider == nil {
		return "", NewRelayError(models.CodeAPIConfig, errors.New("GEMINI_API_KEY is not configured"))
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.provider.Ping(ctx)
}

type chatResult struct {
	text string
	err  error
}

// callWithTimeout returns as soon as the deadline passes, even if the
// provider call has not come back yet.
func (s *RelayService) callWithTimeout(ctx context.Context, history []models.HistoryEntry, message string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan chatResult, 1)
	go func() {
		text, err := s.provider.SendChat(ctx, history, message)
		done <- chatResult{text: text, err: err}
	}()

	select {
	case res := <-done:
		return res.text, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *RelayService) fail(err error) *RelayError {
	code := Classify(err)
	relayErr := NewRelayError(code, err)
	if code == models.CodeInternal && !s.production {
		relayErr.Details = err.Error()
	}

	s.logger.Error("chat relay failed",
		zap.String("code", string(code)),
		zap.Int("status", code.Status()),
		zap.Error(err),
	)
	return relayErr
}

// ValidateMessage decodes and checks the raw message field. The returned
// text is trimmed and stripped of markup.
func ValidateMessage(raw json.RawMessage) (string, *RelayError) {
	var message string
	if len(raw) == 0 || json.Unmarshal(raw, &message) != nil {
		return "", NewRelayError(models.CodeInvalidMessage, nil)
	}
	if strings.TrimSpace(message) == "" {
		return "", NewRelayError(models.CodeInvalidMessage, nil)
	}
	if sanitize.Length(message) > models.MaxMessageLength {
		return "", NewRelayError(models.CodeMessageTooLong, nil)
	}

	cleaned := sanitize.Text(message)
	if cleaned == "" {
		return "", NewRelayError(models.CodeInvalidMessage, nil)
	}
	return cleaned, nil
}

type rawHistoryEntry struct {
	Role  string `json:"role"`
	Parts []struct {
		Text string `json:"text"`
	} `json:"parts"`
}

// NormalizeHistory parses caller-supplied prior turns. Entries that are not
// objects, lack a role, lack parts or have an empty first part are dropped;
// the rest are reduced to a single sanitized text part with role "user" or
// "model".
func NormalizeHistory(raw json.RawMessage) []models.HistoryEntry {
	if len(raw) == 0 {
		return nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}

	history := make([]models.HistoryEntry, 0, len(entries))
	for _, rawEntry := range entries {
		var entry rawHistoryEntry
		if err := json.Unmarshal(rawEntry, &entry); err != nil {
			continue
		}
		if entry.Role == "" || len(entry.Parts) == 0 {
			continue
		}
		text := sanitize.Message(entry.Parts[0].Text, models.MaxMessageLength)
		if text == "" {
			continue
		}

		role := "model"
		if entry.Role == "user" {
			role = "user"
		}
		history = append(history, models.HistoryEntry{Role: role, Parts: []models.Part{{Text: text}}})
	}
	return history
}

// CleanReply removes persona labels the model sometimes echoes before its
// answer.
func CleanReply(text string) string {
	for _, re := range replyPrefixes {
		text = re.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(text)
}
