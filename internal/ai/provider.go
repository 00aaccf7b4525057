// Package ai wraps the AI providers behind one interface and implements
// the enrichment operations: summarization, classification, keyword
// extraction and embeddings.
package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/knowbot/knowbot/internal/config"
)

// ErrEmbeddingsUnsupported is returned by providers that have no
// embedding endpoint configured.
var ErrEmbeddingsUnsupported = errors.New("embeddings not supported by this provider")

// CompleteRequest is one text completion call.
type CompleteRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature float32

	// JSONObject requests a JSON-formatted response from providers that
	// support structured output.
	JSONObject bool
}

// Provider is a text completion and embedding backend.
type Provider interface {
	Complete(ctx context.Context, req CompleteRequest) (string, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}

// NewProvider builds the provider selected by cfg.Provider. An unknown
// selection is a construction-time error. The Gemini provider embeds
// through the OpenAI embedding endpoint when one is configured.
func NewProvider(ctx context.Context, cfg config.AIConfig, log *slog.Logger) (Provider, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	switch cfg.Provider {
	case "openai":
		return newOpenAIProvider(cfg.OpenAI, log)
	case "gemini":
		var embedder *openAIEmbedder
		if embeddingConfigured(cfg.OpenAI) {
			embedder = newOpenAIEmbedder(cfg.OpenAI)
		}
		return newGeminiProvider(ctx, cfg.Gemini, embedder, log)
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}

func embeddingConfigured(cfg config.OpenAIConfig) bool {
	return cfg.EmbeddingAPIKey != "" || cfg.APIKey != ""
}
