package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/knowbot/knowbot/internal/config"
)

const (
	defaultGeminiRetries = 3
	defaultGeminiDelay   = 2 * time.Second
)

// geminiProvider talks to the Gemini API for completions. It has no
// embedding endpoint of its own; embeddings are delegated to an OpenAI
// embedder when one is configured.
type geminiProvider struct {
	client     *genai.Client
	model      string
	maxRetries int
	retryDelay time.Duration
	embedder   *openAIEmbedder
	log        *slog.Logger
}

func newGeminiProvider(ctx context.Context, cfg config.GeminiConfig, embedder *openAIEmbedder, log *slog.Logger) (*geminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("gemini model is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultGeminiRetries
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultGeminiDelay
	}

	return &geminiProvider{
		client:     client,
		model:      cfg.Model,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		embedder:   embedder,
		log:        log.With("component", "ai.gemini"),
	}, nil
}

func (p *geminiProvider) Complete(ctx context.Context, req CompleteRequest) (string, error) {
	temperature := req.Temperature
	genCfg := &genai.GenerateContentConfig{
		Temperature: &temperature,
	}
	if req.MaxTokens > 0 {
		genCfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.JSONObject {
		genCfg.ResponseMIMEType = "application/json"
	}

	contents := []*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)}

	resp, err := p.generateWithRetries(ctx, contents, genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini completion failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("gemini completion returned no text")
	}
	return text, nil
}

// generateWithRetries retries transient server errors (500/503) with a
// fixed delay between attempts.
func (p *geminiProvider) generateWithRetries(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			p.log.WarnContext(ctx, "Retrying gemini request",
				"attempt", attempt, "max_retries", p.maxRetries, "error", lastErr)
			select {
			case <-time.After(p.retryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, cfg)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var apiErr *genai.APIError
		if !errors.As(err, &apiErr) || (apiErr.Code != 500 && apiErr.Code != 503) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("gemini request failed after %d retries: %w", p.maxRetries, lastErr)
}

func (p *geminiProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if p.embedder == nil {
		return nil, ErrEmbeddingsUnsupported
	}
	return p.embedder.Embed(ctx, text)
}
