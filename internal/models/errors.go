package models

import "net/http"

// ErrorCode is the stable, client-facing error taxonomy.
type ErrorCode string

const (
	CodeInvalidMessage    ErrorCode = "INVALID_MESSAGE"
	CodeMessageTooLong    ErrorCode = "MESSAGE_TOO_LONG"
	CodeContentFiltered   ErrorCode = "CONTENT_FILTERED"
	CodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	CodeTimeout           ErrorCode = "TIMEOUT_ERROR"
	CodeNetwork           ErrorCode = "NETWORK_ERROR"
	CodeAPIConfig         ErrorCode = "API_CONFIG_ERROR"
	CodeInternal          ErrorCode = "INTERNAL_ERROR"

	// Profile API
	CodeValidation      ErrorCode = "VALIDATION_ERROR"
	CodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodePayloadTooLarge ErrorCode = "PAYLOAD_TOO_LARGE"
)

// Status returns the HTTP status that accompanies the code.
func (c ErrorCode) Status() int {
	switch c {
	case CodeInvalidMessage, CodeMessageTooLong, CodeContentFiltered, CodeValidation:
		return http.StatusBadRequest
	case CodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case CodeTimeout:
		return http.StatusRequestTimeout
	case CodeNetwork:
		return http.StatusServiceUnavailable
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    ErrorCode         `json:"code,omitempty"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}
