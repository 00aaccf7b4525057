// Package extract turns Telegram messages into plain text. It collects
// URLs, downloads documents and images, and runs the per-source extractors.
// Extractors never fail the pipeline: every source yields either extracted
// text or a descriptive placeholder.
package extract

import "context"

// Content is the aggregate extraction output for one message.
type Content struct {
	// Text is the message text followed by one provenance-tagged section
	// per extracted source.
	Text string

	URLs     []string
	Files    []FileRef
	Images   []ImageRef
	Entities []Entity
	Metadata map[string]any
}

// Entity is a flattened Telegram message entity with its covered text.
type Entity struct {
	Type   string
	Offset int
	Length int
	Text   string

	// URL carries the link target for text_link entities, where the
	// covered text is the anchor rather than the address.
	URL string
}

// FileRef identifies a processed document attachment.
type FileRef struct {
	ID       string
	Name     string
	MIMEType string
	Size     int64
}

// ImageRef identifies a processed photo.
type ImageRef struct {
	ID     string
	Width  int
	Height int
}

// Result is the outcome of a single extractor. Degraded results carry a
// human-readable placeholder in Text and the underlying cause for logging.
type Result struct {
	Text     string
	Degraded bool
	Cause    error
}

func ok(text string) Result {
	return Result{Text: text}
}

func degraded(placeholder string, cause error) Result {
	return Result{Text: placeholder, Degraded: true, Cause: cause}
}

// Downloader fetches Telegram file contents by file ID.
type Downloader interface {
	Download(ctx context.Context, fileID string) ([]byte, error)
}
