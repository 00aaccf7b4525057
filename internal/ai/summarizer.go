package ai

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// DefaultSummaryLength is the summary character budget when none is given.
const DefaultSummaryLength = 300

// Summarizer produces summaries and embedding vectors through a Provider.
type Summarizer struct {
	provider Provider
	log      *slog.Logger
}

// NewSummarizer creates a summarizer on top of the given provider.
func NewSummarizer(provider Provider, log *slog.Logger) *Summarizer {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Summarizer{provider: provider, log: log.With("component", "ai.summarizer")}
}

// Summarize condenses text to approximately maxLength characters. Text
// already within the budget is returned unchanged without calling the
// provider.
func (s *Summarizer) Summarize(ctx context.Context, text string, maxLength int) (string, error) {
	if maxLength <= 0 {
		maxLength = DefaultSummaryLength
	}
	if utf8.RuneCountInString(text) <= maxLength {
		return text, nil
	}

	prompt := fmt.Sprintf(summarizePromptTemplate, maxLength, text)
	out, err := s.provider.Complete(ctx, CompleteRequest{
		Prompt:      prompt,
		MaxTokens:   200,
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("summarization failed: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Embed generates the embedding vector for text.
func (s *Summarizer) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.provider.Embed(ctx, text)
}
