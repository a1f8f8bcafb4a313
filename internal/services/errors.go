package services

import (
	"fmt"

	"zen-backend/internal/models"
)

// RelayError is a chat failure already mapped onto the client-facing taxonomy.
type RelayError struct {
	Code    models.ErrorCode
	Message string // user-facing copy
	Details string // raw cause; only exposed outside production
	Err     error
}

func (e *RelayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return string(e.Code)
}

func (e *RelayError) Unwrap() error { return e.Err }

// Status is the HTTP status the error is reported with.
func (e *RelayError) Status() int { return e.Code.Status() }

// Response renders the error body sent to clients.
func (e *RelayError) Response() models.ErrorResponse {
	return models.ErrorResponse{Error: e.Message, Code: e.Code, Details: e.Details}
}

var relayMessages = map[models.ErrorCode]string{
	models.CodeInvalidMessage:    "A mensagem é obrigatória e deve ser um texto válido.",
	models.CodeMessageTooLong:    fmt.Sprintf("Mensagem muito longa. Máximo %d caracteres.", models.MaxMessageLength),
	models.CodeContentFiltered:   "Conteúdo não permitido. Reformule sua mensagem.",
	models.CodeRateLimitExceeded: "Limite de uso da IA atingido. Tente novamente mais tarde.",
	models.CodeTimeout:           "Tempo limite excedido. Tente novamente.",
	models.CodeNetwork:           "Problema de conectividade. Tente novamente.",
	models.CodeAPIConfig:         "Erro de configuração do servidor.",
	models.CodeInternal:          "Ocorreu um erro interno no servidor ao se comunicar com a IA.",
}

// NewRelayError wraps err with the standard user-facing copy for code.
func NewRelayError(code models.ErrorCode, err error) *RelayError {
	return &RelayError{Code: code, Message: relayMessages[code], Err: err}
}

// Profile service errors

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }
