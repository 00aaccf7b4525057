package extract

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

const (
	transcriptEndpoint  = "https://video.google.com/timedtext"
	transcriptMaxEntry  = 50
	transcriptCharLimit = 2000
)

var youtubeHosts = []string{"youtube.com", "youtu.be"}

// videoIDPatterns are tried in order; YouTube IDs are 11 URL-safe chars.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:v=)([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`(?:embed/)([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`(?:youtu\.be/)([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`(?:shorts/)([0-9A-Za-z_-]{11})`),
}

func isYouTubeURL(raw string) bool {
	for _, host := range youtubeHosts {
		if strings.Contains(raw, host) {
			return true
		}
	}
	return false
}

func extractVideoID(raw string) string {
	for _, pattern := range videoIDPatterns {
		if m := pattern.FindStringSubmatch(raw); m != nil {
			return m[1]
		}
	}
	return ""
}

type timedText struct {
	Entries []timedTextEntry `xml:"text"`
}

type timedTextEntry struct {
	Body string `xml:",chardata"`
}

func (f *WebFetcher) fetchYouTube(ctx context.Context, raw string) Result {
	videoID := extractVideoID(raw)
	if videoID == "" {
		return ok("Could not extract YouTube video ID")
	}

	unavailable := func(err error) Result {
		return degraded(fmt.Sprintf("YouTube video: %s (transcript not available)", raw), err)
	}

	entries, err := f.fetchTranscript(ctx, videoID)
	if err != nil {
		return unavailable(err)
	}
	if len(entries) == 0 {
		return unavailable(fmt.Errorf("no transcript entries for video %s", videoID))
	}

	if len(entries) > transcriptMaxEntry {
		entries = entries[:transcriptMaxEntry]
	}
	text := truncateRunes(strings.Join(entries, " "), transcriptCharLimit, "")

	return ok(fmt.Sprintf("YouTube Video Transcript:\n%s...", text))
}

func (f *WebFetcher) fetchTranscript(ctx context.Context, videoID string) ([]string, error) {
	q := url.Values{}
	q.Set("lang", "en")
	q.Set("v", videoID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.transcriptURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcript fetch status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, webMaxBodyLength))
	if err != nil {
		return nil, err
	}

	var parsed timedText
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse transcript: %w", err)
	}

	entries := make([]string, 0, len(parsed.Entries))
	for _, e := range parsed.Entries {
		if t := strings.TrimSpace(html.UnescapeString(e.Body)); t != "" {
			entries = append(entries, t)
		}
	}
	return entries, nil
}
