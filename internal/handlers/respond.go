package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"zen-backend/internal/models"
	"zen-backend/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code models.ErrorCode, message string) models.ErrorResponse {
	return models.ErrorResponse{Error: message, Code: code}
}

func writeError(w http.ResponseWriter, code models.ErrorCode, message string) {
	writeJSON(w, code.Status(), errorResp(code, message))
}

// decodeJSON reads one JSON document from the request body.
func decodeJSON(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// isTooLarge reports whether err came from an exhausted body limit.
func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func handleServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var relayErr *services.RelayError
	var validationErr *services.ValidationError
	var notFoundErr *services.NotFoundError

	switch {
	case errors.As(err, &relayErr):
		writeJSON(w, relayErr.Status(), relayErr.Response())
	case errors.As(err, &validationErr):
		resp := errorResp(models.CodeValidation, "Dados inválidos.")
		resp.Fields = validationErr.Fields
		writeJSON(w, http.StatusBadRequest, resp)
	case errors.As(err, &notFoundErr):
		writeError(w, models.CodeNotFound, notFoundErr.Message)
	default:
		logger.Error("unhandled service error", zap.Error(err))
		writeError(w, models.CodeInternal, "Erro interno do servidor.")
	}
}
