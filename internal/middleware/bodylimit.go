package middleware

import (
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"zen-backend/internal/models"
)

// BodyLimit caps request bodies at maxBytes. Oversized bodies with a known
// length are rejected up front; the rest fail while being read.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	limit := chimiddleware.RequestSize(maxBytes)
	return func(next http.Handler) http.Handler {
		limited := limit(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				writeError(w, models.CodePayloadTooLarge, "Requisição muito grande.")
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}
