package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/heartmarshall/cardgen/internal/domain"
	"github.com/heartmarshall/cardgen/internal/provider"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o"

	temperature    = 0.7
	maxTokens      = 1500
	requestTimeout = 60 * time.Second
)

// Provider generates card HTML through the OpenAI chat-completions API.
type Provider struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	log        *slog.Logger
}

var _ provider.Generator = (*Provider)(nil)

// NewProvider creates a Provider with the default OpenAI API URL.
// An empty model falls back to the default model.
func NewProvider(apiKey, model string, logger *slog.Logger) *Provider {
	return NewProviderWithURL(defaultBaseURL, apiKey, model, logger)
}

// NewProviderWithURL creates a Provider with a custom base URL (for testing).
func NewProviderWithURL(baseURL, apiKey, model string, logger *slog.Logger) *Provider {
	if model == "" {
		model = defaultModel
	}
	return &Provider{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: requestTimeout},
		log:        logger.With("adapter", "openai"),
	}
}

// Generate asks the model for study-card HTML for the given front text.
// The markdown fence cleanup is applied before returning.
func (p *Provider) Generate(ctx context.Context, systemPrompt, front string) (string, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("openai: API key not set: %w", domain.ErrNotConfigured)
	}

	payload, err := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: front},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai: encode request: %w", err)
	}

	p.log.DebugContext(ctx, "openai request", slog.String("model", p.model), slog.String("front", front))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("openai: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.log.ErrorContext(ctx, "openai request failed", slog.String("error", err.Error()))
		return "", fmt.Errorf("openai: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("openai: read body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("openai: API error %d: %s", resp.StatusCode, string(body))
	}

	var envelope chatResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("openai: unexpected response format: %w", err)
	}
	if len(envelope.Choices) == 0 {
		return "", fmt.Errorf("openai: unexpected response format: no choices in response")
	}

	p.log.DebugContext(ctx, "openai response",
		slog.String("front", front),
		slog.Int("status", resp.StatusCode),
		slog.Int("content_len", len(envelope.Choices[0].Message.Content)),
	)

	return provider.Clean(envelope.Choices[0].Message.Content), nil
}
