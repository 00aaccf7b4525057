package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jomei/notionapi"

	"github.com/knowbot/knowbot/internal/config"
)

const (
	notionTitleLimit  = 100
	notionOptionLimit = 20
	notionChunkAt     = 2000
	notionChunkSize   = 1900
)

// NotionBackend stores records as pages in a Notion database. Delete
// archives the page rather than removing it, and Update only rewrites the
// page properties, never the body blocks.
type NotionBackend struct {
	client     *notionapi.Client
	databaseID notionapi.DatabaseID
	log        *slog.Logger
}

// NewNotionBackend creates the Notion back end. Missing credentials are a
// construction-time error.
func NewNotionBackend(cfg config.NotionConfig, log *slog.Logger) (*NotionBackend, error) {
	if !cfg.Enabled() {
		return nil, errors.New("notion api key and database id are required")
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &NotionBackend{
		client:     notionapi.NewClient(notionapi.Token(cfg.APIKey)),
		databaseID: notionapi.DatabaseID(cfg.DatabaseID),
		log:        log.With("component", "storage.notion"),
	}, nil
}

func (n *NotionBackend) Name() string { return "notion" }

func (n *NotionBackend) Capabilities() Capabilities {
	return Capabilities{HardDelete: false, UpdatesContent: false}
}

// Save creates a database page with the record's properties and content
// blocks, returning the page ID.
func (n *NotionBackend) Save(ctx context.Context, rec *Record) (string, error) {
	page, err := n.client.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: n.databaseID,
		},
		Properties: buildNotionProperties(rec),
		Children:   buildNotionBlocks(rec),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create notion page: %w", err)
	}

	n.log.InfoContext(ctx, "Saved record to Notion",
		"page_id", page.ID.String(), "message_id", rec.MessageID, "category", rec.Category)
	return page.ID.String(), nil
}

// Get retrieves page properties for a handle. The page body is not
// fetched; Content stays empty.
func (n *NotionBackend) Get(ctx context.Context, handle string) (*Record, error) {
	page, err := n.client.Page.Get(ctx, notionapi.PageID(handle))
	if err != nil {
		return nil, fmt.Errorf("failed to get notion page %s: %w", handle, err)
	}
	return notionPageToRecord(page), nil
}

// Update rewrites the page properties from rec. Body blocks are left as
// they were written by Save.
func (n *NotionBackend) Update(ctx context.Context, handle string, rec *Record) error {
	_, err := n.client.Page.Update(ctx, notionapi.PageID(handle), &notionapi.PageUpdateRequest{
		Properties: buildNotionProperties(rec),
	})
	if err != nil {
		return fmt.Errorf("failed to update notion page %s: %w", handle, err)
	}
	return nil
}

// Delete archives the page. Notion has no hard delete through the API.
func (n *NotionBackend) Delete(ctx context.Context, handle string) error {
	_, err := n.client.Page.Update(ctx, notionapi.PageID(handle), &notionapi.PageUpdateRequest{
		Properties: notionapi.Properties{},
		Archived:   true,
	})
	if err != nil {
		return fmt.Errorf("failed to archive notion page %s: %w", handle, err)
	}
	n.log.InfoContext(ctx, "Archived Notion page", "page_id", handle)
	return nil
}

func notionRichText(content string) []notionapi.RichText {
	return []notionapi.RichText{{Text: &notionapi.Text{Content: content}}}
}

// buildNotionProperties maps a record onto the database schema. Title is
// capped at 100 characters, multi-selects at 20 options.
func buildNotionProperties(rec *Record) notionapi.Properties {
	props := notionapi.Properties{
		"Title": notionapi.TitleProperty{
			Title: notionRichText(capRunes(rec.Summary, notionTitleLimit)),
		},
		"Category": notionapi.SelectProperty{
			Select: notionapi.Option{Name: rec.Category},
		},
		"User ID": notionapi.NumberProperty{
			Number: float64(rec.UserID),
		},
		"Message ID": notionapi.NumberProperty{
			Number: float64(rec.MessageID),
		},
	}

	if ts, err := time.Parse(time.RFC3339, rec.Timestamp); err == nil {
		start := notionapi.Date(ts)
		props["Date"] = notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: &start},
		}
	}

	if len(rec.Tags) > 0 {
		props["Tags"] = notionapi.MultiSelectProperty{
			MultiSelect: notionOptions(rec.Tags),
		}
	}
	if len(rec.Keywords) > 0 {
		props["Keywords"] = notionapi.MultiSelectProperty{
			MultiSelect: notionOptions(rec.Keywords),
		}
	}

	return props
}

func notionOptions(values []string) []notionapi.Option {
	if len(values) > notionOptionLimit {
		values = values[:notionOptionLimit]
	}
	options := make([]notionapi.Option, 0, len(values))
	for _, v := range values {
		options = append(options, notionapi.Option{Name: capRunes(v, notionTitleLimit)})
	}
	return options
}

// buildNotionBlocks renders the page body: summary, full content (chunked
// to respect the per-block size limit) and a metadata footer.
func buildNotionBlocks(rec *Record) []notionapi.Block {
	heading := func(text string) notionapi.Block {
		return &notionapi.Heading2Block{
			BasicBlock: notionapi.BasicBlock{
				Object: notionapi.ObjectTypeBlock,
				Type:   notionapi.BlockTypeHeading2,
			},
			Heading2: notionapi.Heading{RichText: notionRichText(text)},
		}
	}
	paragraph := func(text string) notionapi.Block {
		return &notionapi.ParagraphBlock{
			BasicBlock: notionapi.BasicBlock{
				Object: notionapi.ObjectTypeBlock,
				Type:   notionapi.BlockTypeParagraph,
			},
			Paragraph: notionapi.Paragraph{RichText: notionRichText(text)},
		}
	}

	blocks := []notionapi.Block{
		heading("Summary"),
		paragraph(rec.Summary),
		heading("Full Content"),
	}

	content := []rune(rec.Content)
	if len(content) > notionChunkAt {
		for i := 0; i < len(content); i += notionChunkSize {
			end := i + notionChunkSize
			if end > len(content) {
				end = len(content)
			}
			blocks = append(blocks, paragraph(string(content[i:end])))
		}
	} else {
		blocks = append(blocks, paragraph(rec.Content))
	}

	user := rec.Username
	if user == "" {
		user = fmt.Sprintf("%d", rec.UserID)
	}
	metadataText := fmt.Sprintf(
		"User: %s\nMessage ID: %d\nTimestamp: %s\nChat Type: %v\nHas Media: %v\nURLs Extracted: %v\nFiles Processed: %v",
		user, rec.MessageID, rec.Timestamp,
		metaValue(rec.Metadata, "chat_type", "Unknown"),
		metaValue(rec.Metadata, "has_media", false),
		metaValue(rec.Metadata, "extracted_urls", 0),
		metaValue(rec.Metadata, "extracted_files", 0),
	)

	blocks = append(blocks, heading("Metadata"), paragraph(metadataText))
	return blocks
}

func metaValue(metadata map[string]any, key string, fallback any) any {
	if v, found := metadata[key]; found {
		return v
	}
	return fallback
}

func capRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func notionPageToRecord(page *notionapi.Page) *Record {
	rec := &Record{}

	for name, prop := range page.Properties {
		switch p := prop.(type) {
		case *notionapi.TitleProperty:
			if name == "Title" && len(p.Title) > 0 {
				rec.Summary = richTextContent(p.Title)
			}
		case *notionapi.SelectProperty:
			if name == "Category" {
				rec.Category = p.Select.Name
			}
		case *notionapi.MultiSelectProperty:
			values := make([]string, 0, len(p.MultiSelect))
			for _, opt := range p.MultiSelect {
				values = append(values, opt.Name)
			}
			switch name {
			case "Tags":
				rec.Tags = values
			case "Keywords":
				rec.Keywords = values
			}
		case *notionapi.NumberProperty:
			switch name {
			case "User ID":
				rec.UserID = int64(p.Number)
			case "Message ID":
				rec.MessageID = int(p.Number)
			}
		case *notionapi.DateProperty:
			if p.Date != nil && p.Date.Start != nil {
				rec.Timestamp = time.Time(*p.Date.Start).Format(time.RFC3339)
			}
		}
	}

	return rec
}

func richTextContent(parts []notionapi.RichText) string {
	var out string
	for _, part := range parts {
		if part.PlainText != "" {
			out += part.PlainText
		} else if part.Text != nil {
			out += part.Text.Content
		}
	}
	return out
}
