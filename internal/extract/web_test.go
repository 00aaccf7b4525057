package extract

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetchPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head>
			<title> Example Page </title>
			<meta name="description" content="A test page">
			<script>var x = "noise";</script>
		</head><body>
			<nav>menu items</nav>
			<article>The main article body.</article>
			<footer>footer junk</footer>
		</body></html>`)
	}))
	defer srv.Close()

	f := NewWebFetcher(testLogger())
	res := f.Fetch(context.Background(), srv.URL)

	if res.Degraded {
		t.Fatalf("Fetch() degraded: %v", res.Cause)
	}
	want := "Title: Example Page\n\nDescription: A test page\n\nContent: The main article body."
	if res.Text != want {
		t.Errorf("Fetch() = %q, want %q", res.Text, want)
	}
}

func TestFetchPageFallbackToBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><div>loose   body
			text</div></body></html>`)
	}))
	defer srv.Close()

	f := NewWebFetcher(testLogger())
	res := f.Fetch(context.Background(), srv.URL)

	if res.Degraded {
		t.Fatalf("Fetch() degraded: %v", res.Cause)
	}
	if !strings.Contains(res.Text, "Title: No title") {
		t.Errorf("missing title fallback: %q", res.Text)
	}
	if !strings.Contains(res.Text, "Content: loose body text") {
		t.Errorf("whitespace not normalized: %q", res.Text)
	}
}

func TestFetchPageTruncation(t *testing.T) {
	long := strings.Repeat("word ", 1000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><head><title>t</title></head><body><main>%s</main></body></html>`, long)
	}))
	defer srv.Close()

	f := NewWebFetcher(testLogger())
	res := f.Fetch(context.Background(), srv.URL)

	if !strings.HasSuffix(res.Text, "...") {
		t.Errorf("long content not truncated: %q", res.Text[len(res.Text)-30:])
	}
	content := res.Text[strings.Index(res.Text, "Content: ")+len("Content: "):]
	if got := len([]rune(strings.TrimSuffix(content, "..."))); got != webContentLimit {
		t.Errorf("content length = %d runes, want %d", got, webContentLimit)
	}
}

func TestFetchPageHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewWebFetcher(testLogger())
	res := f.Fetch(context.Background(), srv.URL)

	if !res.Degraded {
		t.Fatal("404 response did not degrade")
	}
	want := "Failed to fetch content from " + srv.URL
	if res.Text != want {
		t.Errorf("placeholder = %q, want %q", res.Text, want)
	}
}

func TestFetchPageConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	f := NewWebFetcher(testLogger())
	res := f.Fetch(context.Background(), url)

	if !res.Degraded {
		t.Fatal("unreachable server did not degrade")
	}
	if res.Cause == nil {
		t.Error("degraded result has no cause")
	}
}
