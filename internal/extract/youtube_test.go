package extract

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestIsYouTubeURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ", true},
		{"https://m.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"https://example.com/page", false},
		{"https://vimeo.com/12345", false},
	}

	for _, tt := range tests {
		if got := isYouTubeURL(tt.url); got != tt.want {
			t.Errorf("isYouTubeURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/feed/library", ""},
	}

	for _, tt := range tests {
		if got := extractVideoID(tt.url); got != tt.want {
			t.Errorf("extractVideoID(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func newTranscriptFetcher(t *testing.T, handler http.HandlerFunc) *WebFetcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	f := NewWebFetcher(testLogger())
	f.transcriptURL = srv.URL
	return f
}

func TestFetchYouTubeTranscript(t *testing.T) {
	f := newTranscriptFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("v") != "dQw4w9WgXcQ" {
			t.Errorf("transcript requested for video %q", r.URL.Query().Get("v"))
		}
		fmt.Fprint(w, `<transcript><text start="0" dur="2">Never gonna</text><text start="2" dur="2">give &amp;you up</text></transcript>`)
	})

	res := f.fetchYouTube(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	if res.Degraded {
		t.Fatalf("fetchYouTube() degraded: %v", res.Cause)
	}
	want := "YouTube Video Transcript:\nNever gonna give &you up..."
	if res.Text != want {
		t.Errorf("fetchYouTube() = %q, want %q", res.Text, want)
	}
}

func TestFetchYouTubeEntryCap(t *testing.T) {
	f := newTranscriptFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		var sb strings.Builder
		sb.WriteString("<transcript>")
		for i := 0; i < transcriptMaxEntry+25; i++ {
			fmt.Fprintf(&sb, `<text start="%d" dur="1">e%d</text>`, i, i)
		}
		sb.WriteString("</transcript>")
		fmt.Fprint(w, sb.String())
	})

	res := f.fetchYouTube(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	if strings.Contains(res.Text, fmt.Sprintf("e%d ", transcriptMaxEntry)) {
		t.Errorf("entry beyond the cap included: %q", res.Text)
	}
	if !strings.Contains(res.Text, fmt.Sprintf("e%d", transcriptMaxEntry-1)) {
		t.Errorf("last entry inside the cap missing: %q", res.Text)
	}
}

func TestFetchYouTubeNoTranscript(t *testing.T) {
	f := newTranscriptFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<transcript></transcript>`)
	})

	url := "https://youtu.be/dQw4w9WgXcQ"
	res := f.fetchYouTube(context.Background(), url)
	if !res.Degraded {
		t.Fatal("missing transcript did not degrade")
	}
	want := fmt.Sprintf("YouTube video: %s (transcript not available)", url)
	if res.Text != want {
		t.Errorf("placeholder = %q, want %q", res.Text, want)
	}
}

func TestFetchYouTubeNoVideoID(t *testing.T) {
	f := NewWebFetcher(testLogger())

	res := f.fetchYouTube(context.Background(), "https://www.youtube.com/feed/library")
	if res.Degraded {
		t.Fatal("missing video ID should not degrade")
	}
	if res.Text != "Could not extract YouTube video ID" {
		t.Errorf("fetchYouTube() = %q", res.Text)
	}
}
