package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/go-telegram/bot/models"
)

// maxFileSize is the ceiling for downloaded attachments. Anything larger
// is replaced by a placeholder without being extracted.
const maxFileSize = 10 * 1024 * 1024

// urlPattern matches bare URLs in message text. Deliberately permissive:
// non-ASCII and percent-encoded path bytes are part of the match.
var urlPattern = regexp.MustCompile(`https?://[^\s<>"']+`)

// URLFetcher extracts text from a web address.
type URLFetcher interface {
	Fetch(ctx context.Context, url string) Result
}

// FileReader extracts text from a downloaded document.
type FileReader interface {
	Extract(data []byte, mimeType, fileName string) Result
}

// Recognizer extracts text from an image. The boolean reports whether any
// text was found.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (string, bool)
}

// Pipeline aggregates the per-source extractors.
type Pipeline struct {
	log   *slog.Logger
	urls  URLFetcher
	files FileReader
	ocr   Recognizer
}

// NewPipeline builds a pipeline with the default extractors. OCR support
// is probed at construction time when enabled.
func NewPipeline(log *slog.Logger, ocrEnabled bool) *Pipeline {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{
		log:   log.With("component", "extract"),
		urls:  NewWebFetcher(log),
		files: NewFileReader(log),
		ocr:   NewOCR(ocrEnabled, log),
	}
}

// NewPipelineWith builds a pipeline from explicit extractors.
func NewPipelineWith(log *slog.Logger, urls URLFetcher, files FileReader, ocr Recognizer) *Pipeline {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{log: log.With("component", "extract"), urls: urls, files: files, ocr: ocr}
}

// Process extracts all content from a message. The returned Text starts
// with the message's own text (or caption) and appends one tagged section
// per URL, document and image; sources that cannot be extracted contribute
// placeholders instead of failing.
func (p *Pipeline) Process(ctx context.Context, msg *models.Message, dl Downloader) *Content {
	base := msg.Text
	entitySource := msg.Entities
	if base == "" && msg.Caption != "" {
		base = msg.Caption
	}

	content := &Content{
		Entities: flattenEntities(msg.Text, entitySource, msg.Caption, msg.CaptionEntities),
		Metadata: map[string]any{},
	}

	var b strings.Builder
	b.WriteString(base)

	content.URLs = collectURLs(base, content.Entities)
	for _, u := range content.URLs {
		res := p.urls.Fetch(ctx, u)
		if res.Degraded {
			p.log.WarnContext(ctx, "URL extraction degraded", "url", u, "error", res.Cause)
		}
		text := res.Text
		if text == "" {
			text = "Failed to extract content"
		}
		fmt.Fprintf(&b, "\n\n[From URL: %s]\n%s", u, text)
	}

	if doc := msg.Document; doc != nil {
		p.processDocument(ctx, doc, dl, content, &b)
	}

	if len(msg.Photo) > 0 {
		p.processPhoto(ctx, msg.Photo, dl, content, &b)
	}

	if msg.Voice != nil || msg.Audio != nil {
		p.log.InfoContext(ctx, "Voice/audio message received, transcription not implemented",
			"message_id", msg.ID)
	}

	content.Text = b.String()

	content.Metadata["chat_type"] = string(msg.Chat.Type)
	content.Metadata["chat_id"] = msg.Chat.ID
	content.Metadata["has_entities"] = len(content.Entities) > 0
	content.Metadata["is_forwarded"] = msg.ForwardOrigin != nil
	content.Metadata["extracted_urls"] = len(content.URLs)
	content.Metadata["extracted_files"] = len(content.Files)
	content.Metadata["extracted_images"] = len(content.Images)

	return content
}

func (p *Pipeline) processDocument(ctx context.Context, doc *models.Document, dl Downloader, content *Content, b *strings.Builder) {
	name := doc.FileName
	if name == "" {
		name = "document"
	}

	var res Result
	if doc.FileSize > maxFileSize {
		res = degraded("File too large to process: "+name, errFileTooLarge)
	} else {
		data, err := dl.Download(ctx, doc.FileID)
		if err != nil {
			p.log.ErrorContext(ctx, "Document download failed",
				"file_id", doc.FileID, "file_name", name, "error", err)
			return
		}
		res = p.files.Extract(data, doc.MimeType, name)
	}

	if res.Degraded {
		p.log.WarnContext(ctx, "Document extraction degraded",
			"file_name", name, "error", res.Cause)
	}

	fmt.Fprintf(b, "\n\n[Document Content: %s]\n%s", name, res.Text)
	content.Files = append(content.Files, FileRef{
		ID:       doc.FileID,
		Name:     name,
		MIMEType: doc.MimeType,
		Size:     doc.FileSize,
	})
}

func (p *Pipeline) processPhoto(ctx context.Context, photos []models.PhotoSize, dl Downloader, content *Content, b *strings.Builder) {
	best := photos[0]
	for _, ph := range photos[1:] {
		if ph.Width*ph.Height > best.Width*best.Height {
			best = ph
		}
	}

	data, err := dl.Download(ctx, best.FileID)
	if err != nil {
		p.log.ErrorContext(ctx, "Photo download failed", "file_id", best.FileID, "error", err)
		return
	}

	text, found := p.ocr.Recognize(ctx, data)
	if !found {
		return
	}

	fmt.Fprintf(b, "\n\n[OCR from Image]\n%s", text)
	content.Images = append(content.Images, ImageRef{
		ID:     best.FileID,
		Width:  best.Width,
		Height: best.Height,
	})
}

// flattenEntities merges text and caption entities into one list, slicing
// each entity's covered text out of the string it refers to.
func flattenEntities(text string, textEntities []models.MessageEntity, caption string, captionEntities []models.MessageEntity) []Entity {
	var out []Entity
	out = appendEntities(out, text, textEntities)
	out = appendEntities(out, caption, captionEntities)
	return out
}

func appendEntities(out []Entity, source string, entities []models.MessageEntity) []Entity {
	if len(entities) == 0 {
		return out
	}
	runes := []rune(source)
	for _, ent := range entities {
		start, end := ent.Offset, ent.Offset+ent.Length
		if start < 0 || end > len(runes) || start > end {
			continue
		}
		out = append(out, Entity{
			Type:   string(ent.Type),
			Offset: ent.Offset,
			Length: ent.Length,
			Text:   string(runes[start:end]),
			URL:    ent.URL,
		})
	}
	return out
}

// collectURLs gathers unique URLs from url entities, text_link targets and
// a regex sweep over the base text. Order is unspecified.
func collectURLs(base string, entities []Entity) []string {
	seen := make(map[string]struct{})
	for _, ent := range entities {
		switch ent.Type {
		case "url":
			seen[ent.Text] = struct{}{}
		case "text_link":
			if ent.URL != "" {
				seen[ent.URL] = struct{}{}
			}
		}
	}
	for _, m := range urlPattern.FindAllString(base, -1) {
		seen[m] = struct{}{}
	}

	if len(seen) == 0 {
		return nil
	}
	urls := make([]string, 0, len(seen))
	for u := range seen {
		urls = append(urls, u)
	}
	return urls
}
