package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/knowbot/knowbot/internal/config"
)

const defaultOpenAITimeout = 2 * time.Minute

// openAIProvider talks to an OpenAI-compatible API for both completions
// and embeddings.
type openAIProvider struct {
	client *openai.Client
	model  string
	log    *slog.Logger

	embedder *openAIEmbedder
}

func newOpenAIProvider(cfg config.OpenAIConfig, log *slog.Logger) (*openAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("openai model is required")
	}

	return &openAIProvider{
		client:   newOpenAIClient(cfg.APIKey, cfg.BaseURL, cfg.Timeout),
		model:    cfg.Model,
		log:      log.With("component", "ai.openai"),
		embedder: newOpenAIEmbedder(cfg),
	}, nil
}

func newOpenAIClient(apiKey, baseURL string, timeout time.Duration) *openai.Client {
	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	if timeout <= 0 {
		timeout = defaultOpenAITimeout
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}
	return openai.NewClientWithConfig(clientCfg)
}

func (p *openAIProvider) Complete(ctx context.Context, req CompleteRequest) (string, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONObject {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *openAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	return p.embedder.Embed(ctx, text)
}

// openAIEmbedder is the embedding half of the OpenAI API. It is a
// separate client because the embedding endpoint may live on a different
// server with its own key, and because a Gemini-selected deployment can
// still borrow it for embeddings.
type openAIEmbedder struct {
	client *openai.Client
	model  string
}

func newOpenAIEmbedder(cfg config.OpenAIConfig) *openAIEmbedder {
	apiKey := cfg.EmbeddingAPIKey
	if apiKey == "" {
		apiKey = cfg.APIKey
	}
	baseURL := cfg.EmbeddingBaseURL
	if baseURL == "" {
		baseURL = cfg.BaseURL
	}

	return &openAIEmbedder{
		client: newOpenAIClient(apiKey, baseURL, cfg.Timeout),
		model:  cfg.EmbeddingModel,
	}
}

func (e *openAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embedding failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("openai embedding returned no data")
	}
	return resp.Data[0].Embedding, nil
}
