package extract

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	webFetchTimeout  = 10 * time.Second
	webContentLimit  = 2000
	webUserAgent     = "Mozilla/5.0 (compatible; KnowBot/1.0)"
	webMaxBodyLength = 5 * 1024 * 1024
)

// contentSelectors are tried in order; the first match wins. The full
// document text is the fallback.
var contentSelectors = []string{"main", "article", ".content", ".post", ".entry"}

// WebFetcher extracts readable text from web pages and YouTube links.
type WebFetcher struct {
	client        *http.Client
	transcriptURL string
	log           *slog.Logger
}

// NewWebFetcher creates a fetcher with a bounded request timeout.
func NewWebFetcher(log *slog.Logger) *WebFetcher {
	return &WebFetcher{
		client:        &http.Client{Timeout: webFetchTimeout},
		transcriptURL: transcriptEndpoint,
		log:           log.With("component", "extract.web"),
	}
}

// Fetch extracts text for a URL. YouTube links are routed to the
// transcript fetcher; everything else gets title, meta description and
// main content scraped from the page.
func (f *WebFetcher) Fetch(ctx context.Context, url string) Result {
	if isYouTubeURL(url) {
		return f.fetchYouTube(ctx, url)
	}
	return f.fetchPage(ctx, url)
}

func (f *WebFetcher) fetchPage(ctx context.Context, url string) Result {
	failure := func(err error) Result {
		return degraded(fmt.Sprintf("Failed to fetch content from %s", url), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return failure(err)
	}
	req.Header.Set("User-Agent", webUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return failure(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return failure(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(http.MaxBytesReader(nil, resp.Body, webMaxBodyLength))
	if err != nil {
		return failure(err)
	}

	doc.Find("script, style, nav, footer, header").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = "No title"
	}

	description, _ := doc.Find(`meta[name="description"]`).Attr("content")
	description = strings.TrimSpace(description)

	var content string
	for _, sel := range contentSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			content = normalizeSpace(s.Text())
			break
		}
	}
	if content == "" {
		content = normalizeSpace(doc.Find("body").Text())
	}
	content = truncateRunes(content, webContentLimit, "...")

	return ok(fmt.Sprintf("Title: %s\n\nDescription: %s\n\nContent: %s", title, description, content))
}

// normalizeSpace collapses all whitespace runs into single spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateRunes limits s to max runes, appending suffix when truncated.
func truncateRunes(s string, max int, suffix string) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + suffix
}
