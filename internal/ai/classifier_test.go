package ai

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestClassifyValidResponse(t *testing.T) {
	provider := &fakeProvider{response: `{"category": "Technology/Programming", "tags": ["go", "testing"]}`}
	c := NewClassifier(provider, nil)

	category, tags := c.Classify(context.Background(), "some go code")
	if category != "Technology/Programming" {
		t.Errorf("category = %q", category)
	}
	if !reflect.DeepEqual(tags, []string{"go", "testing"}) {
		t.Errorf("tags = %v", tags)
	}
	if !provider.lastReq.JSONObject {
		t.Error("classification request did not ask for JSON output")
	}
}

func TestClassifyMalformedJSON(t *testing.T) {
	provider := &fakeProvider{response: `certainly! here is the json: {"category":`}
	c := NewClassifier(provider, nil)

	category, tags := c.Classify(context.Background(), "text")
	if category != FallbackCategory {
		t.Errorf("category = %q, want %q", category, FallbackCategory)
	}
	if !reflect.DeepEqual(tags, []string{"general"}) {
		t.Errorf("tags = %v, want [general]", tags)
	}
}

func TestClassifyProviderError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("timeout")}
	c := NewClassifier(provider, nil)

	category, tags := c.Classify(context.Background(), "text")
	if category != FallbackCategory || !reflect.DeepEqual(tags, []string{"general"}) {
		t.Errorf("Classify() = %q, %v, want fallback pair", category, tags)
	}
}

func TestClassifyUnknownCategorySubstringMatch(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{
			name:     "prediction contains a known category",
			response: `{"category": "Some Learning Notes About Go", "tags": []}`,
			want:     "Learning Notes",
		},
		{
			name:     "prediction contained in a known category",
			response: `{"category": "programming", "tags": []}`,
			want:     "Technology/Programming",
		},
		{
			name:     "no match falls back",
			response: `{"category": "Recipes", "tags": []}`,
			want:     FallbackCategory,
		},
		{
			name:     "missing category falls back",
			response: `{"tags": ["a"]}`,
			want:     FallbackCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(&fakeProvider{response: tt.response}, nil)
			category, _ := c.Classify(context.Background(), "text")
			if category != tt.want {
				t.Errorf("category = %q, want %q", category, tt.want)
			}
		})
	}
}

func TestClassifyDeduplicatesTags(t *testing.T) {
	provider := &fakeProvider{response: `{"category": "Learning Notes", "tags": ["go", "go", "ai", "go", "ai"]}`}
	c := NewClassifier(provider, nil)

	_, tags := c.Classify(context.Background(), "text")
	if !reflect.DeepEqual(tags, []string{"go", "ai"}) {
		t.Errorf("tags = %v, want [go ai]", tags)
	}
}

func TestClassifySingleStringTag(t *testing.T) {
	provider := &fakeProvider{response: `{"category": "Learning Notes", "tags": "solo"}`}
	c := NewClassifier(provider, nil)

	_, tags := c.Classify(context.Background(), "text")
	if !reflect.DeepEqual(tags, []string{"solo"}) {
		t.Errorf("tags = %v, want [solo]", tags)
	}
}

func TestExtractKeywords(t *testing.T) {
	provider := &fakeProvider{response: `{"keywords": ["a", "b", "c", "d", "e", "f", "g"]}`}
	c := NewClassifier(provider, nil)

	got := c.ExtractKeywords(context.Background(), "text", 5)
	if !reflect.DeepEqual(got, []string{"a", "b", "c", "d", "e"}) {
		t.Errorf("ExtractKeywords() = %v", got)
	}
}

func TestExtractKeywordsFailuresReturnEmpty(t *testing.T) {
	for name, provider := range map[string]*fakeProvider{
		"provider error": {err: errors.New("boom")},
		"malformed json": {response: "not json"},
	} {
		t.Run(name, func(t *testing.T) {
			c := NewClassifier(provider, nil)
			if got := c.ExtractKeywords(context.Background(), "text", 5); len(got) != 0 {
				t.Errorf("ExtractKeywords() = %v, want empty", got)
			}
		})
	}
}
