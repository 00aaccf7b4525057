package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeProvider struct {
	response  string
	err       error
	embedding []float32
	embedErr  error
	calls     int
	lastReq   CompleteRequest
}

func (f *fakeProvider) Complete(_ context.Context, req CompleteRequest) (string, error) {
	f.calls++
	f.lastReq = req
	return f.response, f.err
}

func (f *fakeProvider) Embed(context.Context, string) ([]float32, error) {
	return f.embedding, f.embedErr
}

func TestSummarizeShortCircuit(t *testing.T) {
	provider := &fakeProvider{response: "should not be used"}
	s := NewSummarizer(provider, nil)

	text := "short text with ünïcödé"
	got, err := s.Summarize(context.Background(), text, 300)
	if err != nil {
		t.Fatalf("Summarize() error: %v", err)
	}
	if got != text {
		t.Errorf("Summarize() = %q, want input unchanged", got)
	}
	if provider.calls != 0 {
		t.Errorf("provider called %d times for short text, want 0", provider.calls)
	}
}

func TestSummarizeShortCircuitCountsRunes(t *testing.T) {
	provider := &fakeProvider{response: "summary"}
	s := NewSummarizer(provider, nil)

	// 300 runes but more than 300 bytes.
	text := strings.Repeat("é", 300)
	got, err := s.Summarize(context.Background(), text, 300)
	if err != nil {
		t.Fatalf("Summarize() error: %v", err)
	}
	if got != text || provider.calls != 0 {
		t.Errorf("multi-byte text within the budget was summarized")
	}
}

func TestSummarizeLongText(t *testing.T) {
	provider := &fakeProvider{response: "  a concise summary \n"}
	s := NewSummarizer(provider, nil)

	got, err := s.Summarize(context.Background(), strings.Repeat("w ", 400), 300)
	if err != nil {
		t.Fatalf("Summarize() error: %v", err)
	}
	if got != "a concise summary" {
		t.Errorf("Summarize() = %q, want trimmed provider response", got)
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1", provider.calls)
	}
	if provider.lastReq.MaxTokens != 200 {
		t.Errorf("MaxTokens = %d, want 200", provider.lastReq.MaxTokens)
	}
}

func TestSummarizeDefaultLength(t *testing.T) {
	provider := &fakeProvider{response: "summary"}
	s := NewSummarizer(provider, nil)

	short := strings.Repeat("a", DefaultSummaryLength)
	if got, _ := s.Summarize(context.Background(), short, 0); got != short {
		t.Errorf("default budget not applied: %q", got)
	}
	if provider.calls != 0 {
		t.Errorf("provider called for text at the default budget")
	}
}

func TestSummarizeProviderError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("quota exceeded")}
	s := NewSummarizer(provider, nil)

	_, err := s.Summarize(context.Background(), strings.Repeat("a", 400), 300)
	if err == nil {
		t.Fatal("Summarize() did not propagate provider error")
	}
}

func TestEmbedDelegates(t *testing.T) {
	provider := &fakeProvider{embedding: []float32{0.1, 0.2}}
	s := NewSummarizer(provider, nil)

	vec, err := s.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	if len(vec) != 2 {
		t.Errorf("Embed() = %v", vec)
	}
}
