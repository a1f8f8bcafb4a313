package services

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"

	"zen-backend/internal/models"
)

// classifyOrder is the priority in which provider failures are matched.
// Earlier entries win when an error fits more than one family.
var classifyOrder = []models.ErrorCode{
	models.CodeAPIConfig,
	models.CodeRateLimitExceeded,
	models.CodeContentFiltered,
	models.CodeTimeout,
	models.CodeNetwork,
}

var classifyKeywords = map[models.ErrorCode][]string{
	models.CodeAPIConfig:         {"api_key", "api key", "authentication", "unauthenticated"},
	models.CodeRateLimitExceeded: {"quota", "limit", "resource_exhausted", "resource exhausted"},
	models.CodeContentFiltered:   {"safety", "blocked"},
	models.CodeTimeout:           {"timeout", "timed out", "deadline exceeded"},
	models.CodeNetwork:           {"network", "fetch", "connection refused", "connection reset", "no such host", "dial tcp"},
}

// Classify maps a provider failure onto the error taxonomy. Structured error
// types are inspected first; the error text is matched against keyword
// families only when no structured signal is present. The result depends on
// the error alone, so the same failure always yields the same code.
func Classify(err error) models.ErrorCode {
	if err == nil {
		return ""
	}
	signals := structuredSignals(err)
	for _, code := range classifyOrder {
		if signals[code] {
			return code
		}
	}
	return ClassifyMessage(err.Error())
}

// ClassifyMessage is the keyword fallback, first match in priority order.
func ClassifyMessage(msg string) models.ErrorCode {
	lower := strings.ToLower(msg)
	for _, code := range classifyOrder {
		if containsAny(lower, classifyKeywords[code]...) {
			return code
		}
	}
	return models.CodeInternal
}

func structuredSignals(err error) map[models.ErrorCode]bool {
	signals := make(map[models.ErrorCode]bool)

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		if code, ok := codeForReason(apiErr.Reason()); ok {
			signals[code] = true
		}
		if code, ok := codeForHTTPStatus(apiErr.HTTPCode()); ok {
			signals[code] = true
		}
		if code, ok := codeForGRPC(apiErr.GRPCStatus().Code()); ok {
			signals[code] = true
		}
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		if code, ok := codeForHTTPStatus(gErr.Code); ok {
			signals[code] = true
		}
	}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		signals[models.CodeContentFiltered] = true
	}

	if errors.Is(err, context.DeadlineExceeded) {
		signals[models.CodeTimeout] = true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			signals[models.CodeTimeout] = true
		} else {
			signals[models.CodeNetwork] = true
		}
	}

	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		if !signals[models.CodeTimeout] {
			signals[models.CodeNetwork] = true
		}
	}

	return signals
}

func codeForReason(reason string) (models.ErrorCode, bool) {
	switch reason {
	case "API_KEY_INVALID", "API_KEY_SERVICE_BLOCKED", "API_KEY_HTTP_REFERRER_BLOCKED":
		return models.CodeAPIConfig, true
	case "RATE_LIMIT_EXCEEDED", "RESOURCE_EXHAUSTED":
		return models.CodeRateLimitExceeded, true
	}
	return "", false
}

func codeForHTTPStatus(status int) (models.ErrorCode, bool) {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return models.CodeAPIConfig, true
	case http.StatusTooManyRequests:
		return models.CodeRateLimitExceeded, true
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return models.CodeTimeout, true
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return models.CodeNetwork, true
	}
	return "", false
}

func codeForGRPC(code codes.Code) (models.ErrorCode, bool) {
	switch code {
	case codes.Unauthenticated, codes.PermissionDenied:
		return models.CodeAPIConfig, true
	case codes.ResourceExhausted:
		return models.CodeRateLimitExceeded, true
	case codes.DeadlineExceeded:
		return models.CodeTimeout, true
	case codes.Unavailable:
		return models.CodeNetwork, true
	}
	return "", false
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
