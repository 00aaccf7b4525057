package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Categories is the fixed classification taxonomy.
var Categories = []string{
	"Technology/Programming",
	"Learning Notes",
	"Ideas/Inspiration",
	"To-Do Items",
	"Article Summary",
	"Link Collection",
	"Meeting Notes",
	"Project Planning",
	"Personal Journal",
}

const (
	// FallbackCategory is used whenever classification cannot produce a
	// valid category.
	FallbackCategory = "Learning Notes"

	// DefaultKeywordCount bounds keyword extraction when no count is given.
	DefaultKeywordCount = 5
)

// Classifier assigns a category and tags to content. It never fails:
// provider errors and malformed responses fall back to the default
// classification.
type Classifier struct {
	provider Provider
	log      *slog.Logger
}

// NewClassifier creates a classifier on top of the given provider.
func NewClassifier(provider Provider, log *slog.Logger) *Classifier {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Classifier{provider: provider, log: log.With("component", "ai.classifier")}
}

// Classify returns a category from the taxonomy plus deduplicated tags.
func (c *Classifier) Classify(ctx context.Context, text string) (string, []string) {
	prompt := fmt.Sprintf(classifyPromptTemplate, strings.Join(Categories, ", "), text)

	resp, err := c.provider.Complete(ctx, CompleteRequest{
		Prompt:      prompt,
		MaxTokens:   200,
		Temperature: 0.3,
		JSONObject:  true,
	})
	if err != nil {
		c.log.WarnContext(ctx, "Classification request failed, using fallback", "error", err)
		return FallbackCategory, []string{"general"}
	}

	var parsed struct {
		Category string          `json:"category"`
		Tags     json.RawMessage `json:"tags"`
	}
	if err := json.Unmarshal([]byte(resp), &parsed); err != nil {
		c.log.WarnContext(ctx, "Classification response is not valid JSON, using fallback", "error", err)
		return FallbackCategory, []string{"general"}
	}

	category := parsed.Category
	if category == "" {
		category = FallbackCategory
	} else if !isKnownCategory(category) {
		category = bestCategory(category)
	}

	return category, dedupe(parseTags(parsed.Tags))
}

// parseTags accepts either a JSON array of strings or a single string.
func parseTags(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}
	}
	return nil
}

func isKnownCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// bestCategory maps a free-form prediction onto the taxonomy by substring
// containment in either direction, falling back to the default.
func bestCategory(predicted string) string {
	lower := strings.ToLower(predicted)
	for _, category := range Categories {
		categoryLower := strings.ToLower(category)
		if strings.Contains(lower, categoryLower) || strings.Contains(categoryLower, lower) {
			return category
		}
	}
	return FallbackCategory
}

func dedupe(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// ExtractKeywords pulls up to topK key terms from text. Failures yield an
// empty list, never an error.
func (c *Classifier) ExtractKeywords(ctx context.Context, text string, topK int) []string {
	if topK <= 0 {
		topK = DefaultKeywordCount
	}

	prompt := fmt.Sprintf(keywordsPromptTemplate, topK, text)
	resp, err := c.provider.Complete(ctx, CompleteRequest{
		Prompt:      prompt,
		MaxTokens:   200,
		Temperature: 0.3,
		JSONObject:  true,
	})
	if err != nil {
		c.log.WarnContext(ctx, "Keyword extraction failed", "error", err)
		return nil
	}

	var parsed struct {
		Keywords []string `json:"keywords"`
	}
	if err := json.Unmarshal([]byte(resp), &parsed); err != nil {
		c.log.WarnContext(ctx, "Keyword response is not valid JSON", "error", err)
		return nil
	}

	if len(parsed.Keywords) > topK {
		return parsed.Keywords[:topK]
	}
	return parsed.Keywords
}
