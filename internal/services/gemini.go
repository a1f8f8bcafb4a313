package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"zen-backend/internal/models"
)

// ChatProvider is the generative model the relay forwards conversations to.
type ChatProvider interface {
	// SendChat sends message on top of history and returns the raw reply text.
	SendChat(ctx context.Context, history []models.HistoryEntry, message string) (string, error)
	// Ping runs a minimal generation to verify the credential and model.
	Ping(ctx context.Context) (string, error)
}

type GeminiProvider struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
	logger    *zap.Logger
	rateChan  chan struct{} // Token bucket
}

func NewGeminiProvider(ctx context.Context, apiKey, modelName string, concurrentReqs int, logger *zap.Logger) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not configured")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.7)
	model.SetTopP(0.95)

	if concurrentReqs <= 0 {
		concurrentReqs = 1
	}
	// Token bucket for concurrent upstream calls
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiProvider{
		client:    client,
		model:     model,
		modelName: modelName,
		logger:    logger,
		rateChan:  rateChan,
	}, nil
}

func (p *GeminiProvider) Close() {
	p.client.Close()
}

// acquireRate blocks until a rate slot is available
func (p *GeminiProvider) acquireRate(ctx context.Context) error {
	select {
	case <-p.rateChan:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for Gemini rate slot: %w", ctx.Err())
	}
}

func (p *GeminiProvider) releaseRate() {
	p.rateChan <- struct{}{}
}

func (p *GeminiProvider) SendChat(ctx context.Context, history []models.HistoryEntry, message string) (string, error) {
	if err := p.acquireRate(ctx); err != nil {
		return "", err
	}
	defer p.releaseRate()

	cs := p.model.StartChat()
	cs.History = toContents(history)

	start := time.Now()
	resp, err := cs.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			p.logger.Warn("Gemini candidate stopped early",
				zap.Int("candidate", i),
				zap.String("finish_reason", cand.FinishReason.String()),
			)
		}
	}
	p.logger.Debug("Gemini reply received",
		zap.String("model", p.modelName),
		zap.Int("candidates", len(resp.Candidates)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return extractText(resp), nil
}

func (p *GeminiProvider) Ping(ctx context.Context) (string, error) {
	if err := p.acquireRate(ctx); err != nil {
		return "", err
	}
	defer p.releaseRate()

	resp, err := p.model.GenerateContent(ctx, genai.Text(`Responda apenas: "Teste OK"`))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	return strings.TrimSpace(extractText(resp)), nil
}

// Helper functions

func toContents(history []models.HistoryEntry) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, entry := range history {
		parts := make([]genai.Part, 0, len(entry.Parts))
		for _, part := range entry.Parts {
			parts = append(parts, genai.Text(part.Text))
		}
		contents = append(contents, &genai.Content{Role: entry.Role, Parts: parts})
	}
	return contents
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
