package anthropic

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
	defaultBaseURL = "https://api.anthropic.com/v1"
	defaultModel   = "claude-sonnet-4-6"
	apiVersion     = "2023-06-01"

	maxTokens      = 1500
	requestTimeout = 60 * time.Second
)

// Provider generates card HTML through the Anthropic messages API.
type Provider struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	log        *slog.Logger
}

var _ provider.Generator = (*Provider)(nil)

// NewProvider creates a Provider with the default Anthropic API URL.
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
		log:        logger.With("adapter", "anthropic"),
	}
}

// Generate asks the model for study-card HTML for the given front text.
// The markdown fence cleanup is applied before returning.
func (p *Provider) Generate(ctx context.Context, systemPrompt, front string) (string, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("anthropic: API key not set: %w", domain.ErrNotConfigured)
	}

	payload, err := json.Marshal(messagesRequest{
		Model:     p.model,
		MaxTokens: maxTokens,
		System:    systemPrompt,
		Messages: []message{
			{Role: "user", Content: front},
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: encode request: %w", err)
	}

	p.log.DebugContext(ctx, "anthropic request", slog.String("model", p.model), slog.String("front", front))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("anthropic: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.log.ErrorContext(ctx, "anthropic request failed", slog.String("error", err.Error()))
		return "", fmt.Errorf("anthropic: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("anthropic: read body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("anthropic: API error %d: %s", resp.StatusCode, string(body))
	}

	var envelope messagesResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("anthropic: unexpected response format: %w", err)
	}
	if len(envelope.Content) == 0 {
		return "", fmt.Errorf("anthropic: unexpected response format: no content blocks in response")
	}

	p.log.DebugContext(ctx, "anthropic response",
		slog.String("front", front),
		slog.Int("status", resp.StatusCode),
		slog.Int("content_len", len(envelope.Content[0].Text)),
	)

	return provider.Clean(envelope.Content[0].Text), nil
}
