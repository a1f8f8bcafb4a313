package middleware

import (
	"encoding/json"
	"net/http"

	"zen-backend/internal/models"
)

func writeError(w http.ResponseWriter, code models.ErrorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code.Status())
	json.NewEncoder(w).Encode(models.ErrorResponse{Error: message, Code: code})
}
