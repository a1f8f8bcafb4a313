package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"

	"zen-backend/internal/models"
)

func TestClassifyMessage(t *testing.T) {
	tests := []struct {
		msg  string
		want models.ErrorCode
	}{
		{"API key not valid. Please pass a valid API key.", models.CodeAPIConfig},
		{"request had invalid authentication credentials", models.CodeAPIConfig},
		{"You exceeded your current quota", models.CodeRateLimitExceeded},
		{"RESOURCE_EXHAUSTED", models.CodeRateLimitExceeded},
		{"candidate blocked: SAFETY", models.CodeContentFiltered},
		{"request timeout", models.CodeTimeout},
		{"context deadline exceeded", models.CodeTimeout},
		{"fetch failed", models.CodeNetwork},
		{"dial tcp: connection refused", models.CodeNetwork},
		{"unexpected end of JSON input", models.CodeInternal},
		{"", models.CodeInternal},

		// Overlapping families resolve by priority.
		{"API key quota exceeded", models.CodeAPIConfig},
		{"quota exceeded, request blocked", models.CodeRateLimitExceeded},
		{"blocked after timeout", models.CodeContentFiltered},
		{"network timeout", models.CodeTimeout},
	}

	for _, tc := range tests {
		t.Run(tc.msg, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyMessage(tc.msg))
		})
	}
}

func TestClassify_Structured(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want models.ErrorCode
	}{
		{"googleapi 401", &googleapi.Error{Code: 401}, models.CodeAPIConfig},
		{"googleapi 429", &googleapi.Error{Code: 429}, models.CodeRateLimitExceeded},
		{"googleapi 503", &googleapi.Error{Code: 503}, models.CodeNetwork},
		{"googleapi 400 falls back to text", &googleapi.Error{Code: 400, Message: "API key not valid"}, models.CodeAPIConfig},
		{"blocked", &genai.BlockedError{}, models.CodeContentFiltered},
		{"deadline", context.DeadlineExceeded, models.CodeTimeout},
		{"wrapped deadline", fmt.Errorf("Gemini API error: %w", context.DeadlineExceeded), models.CodeTimeout},
		{"dial", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("refused")}, models.CodeNetwork},
		{"dns", &net.DNSError{Err: "no such host", Name: "generativelanguage.googleapis.com"}, models.CodeNetwork},
		{"nil", nil, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.err))
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	errs := []error{
		errors.New("quota exceeded, request blocked"),
		&googleapi.Error{Code: 429, Message: "safety"},
		errors.New("something odd"),
	}
	for _, err := range errs {
		first := Classify(err)
		for i := 0; i < 50; i++ {
			assert.Equal(t, first, Classify(err))
		}
	}
}

func TestErrorCodeStatus(t *testing.T) {
	assert.Equal(t, 400, models.CodeInvalidMessage.Status())
	assert.Equal(t, 400, models.CodeMessageTooLong.Status())
	assert.Equal(t, 400, models.CodeContentFiltered.Status())
	assert.Equal(t, 429, models.CodeRateLimitExceeded.Status())
	assert.Equal(t, 408, models.CodeTimeout.Status())
	assert.Equal(t, 503, models.CodeNetwork.Status())
	assert.Equal(t, 500, models.CodeAPIConfig.Status())
	assert.Equal(t, 500, models.CodeInternal.Status())
}
