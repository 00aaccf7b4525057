package storage

import (
	"reflect"
	"strings"
	"testing"

	"github.com/jomei/notionapi"
)

func sampleRecord() *Record {
	return &Record{
		UserID:    12345,
		Username:  "alice",
		MessageID: 42,
		Timestamp: "2026-08-30T14:05:00Z",
		Content:   "full message content",
		Summary:   "a summary",
		Category:  "Technology/Programming",
		Tags:      []string{"go", "bots"},
		Keywords:  []string{"telegram", "storage"},
		Metadata: map[string]any{
			"chat_type":      "private",
			"has_media":      true,
			"extracted_urls": 2,
		},
	}
}

func TestBuildNotionPropertiesIdempotent(t *testing.T) {
	rec := sampleRecord()

	first := buildNotionProperties(rec)
	second := buildNotionProperties(rec)

	if !reflect.DeepEqual(first, second) {
		t.Error("building properties twice from the same record differs")
	}
}

func TestBuildNotionPropertiesTitleCap(t *testing.T) {
	rec := sampleRecord()
	rec.Summary = strings.Repeat("x", 150)

	props := buildNotionProperties(rec)
	title := props["Title"].(notionapi.TitleProperty)
	if got := len([]rune(title.Title[0].Text.Content)); got != notionTitleLimit {
		t.Errorf("title length = %d, want %d", got, notionTitleLimit)
	}
}

func TestBuildNotionPropertiesOptionCap(t *testing.T) {
	rec := sampleRecord()
	rec.Tags = make([]string, notionOptionLimit+10)
	for i := range rec.Tags {
		rec.Tags[i] = strings.Repeat("t", i+1)
	}

	props := buildNotionProperties(rec)
	tags := props["Tags"].(notionapi.MultiSelectProperty)
	if len(tags.MultiSelect) != notionOptionLimit {
		t.Errorf("tag options = %d, want %d", len(tags.MultiSelect), notionOptionLimit)
	}
}

func TestBuildNotionPropertiesOmitsEmptyMultiSelects(t *testing.T) {
	rec := sampleRecord()
	rec.Tags = nil
	rec.Keywords = nil

	props := buildNotionProperties(rec)
	if _, found := props["Tags"]; found {
		t.Error("empty tags produced a Tags property")
	}
	if _, found := props["Keywords"]; found {
		t.Error("empty keywords produced a Keywords property")
	}
}

func TestBuildNotionBlocksShortContent(t *testing.T) {
	rec := sampleRecord()

	blocks := buildNotionBlocks(rec)
	// Summary heading + paragraph, content heading + one paragraph,
	// metadata heading + paragraph.
	if len(blocks) != 6 {
		t.Fatalf("len(blocks) = %d, want 6", len(blocks))
	}
}

func TestBuildNotionBlocksMetadataFooter(t *testing.T) {
	blocks := buildNotionBlocks(sampleRecord())

	footer := blocks[len(blocks)-1].(*notionapi.ParagraphBlock)
	text := footer.Paragraph.RichText[0].Text.Content

	for _, want := range []string{
		"User: alice",
		"Message ID: 42",
		"Timestamp: 2026-08-30T14:05:00Z",
		"Chat Type: private",
		"Has Media: true",
		"URLs Extracted: 2",
		"Files Processed: 0",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metadata footer missing %q:\n%s", want, text)
		}
	}
}

func TestBuildNotionBlocksMetadataDefaults(t *testing.T) {
	rec := sampleRecord()
	rec.Metadata = nil

	blocks := buildNotionBlocks(rec)
	footer := blocks[len(blocks)-1].(*notionapi.ParagraphBlock)
	text := footer.Paragraph.RichText[0].Text.Content

	if !strings.Contains(text, "Has Media: false") || !strings.Contains(text, "Chat Type: Unknown") {
		t.Errorf("metadata defaults missing:\n%s", text)
	}
}

func TestBuildNotionBlocksChunksLongContent(t *testing.T) {
	rec := sampleRecord()
	rec.Content = strings.Repeat("a", notionChunkSize*2+100)

	blocks := buildNotionBlocks(rec)

	var chunks []int
	for _, block := range blocks {
		if p, isPara := block.(*notionapi.ParagraphBlock); isPara {
			text := p.Paragraph.RichText[0].Text.Content
			if strings.HasPrefix(text, "a") {
				chunks = append(chunks, len([]rune(text)))
			}
		}
	}

	if !reflect.DeepEqual(chunks, []int{notionChunkSize, notionChunkSize, 100}) {
		t.Errorf("chunk sizes = %v, want [%d %d 100]", chunks, notionChunkSize, notionChunkSize)
	}
}

func TestNotionCapabilities(t *testing.T) {
	n := &NotionBackend{}
	caps := n.Capabilities()
	if caps.HardDelete {
		t.Error("notion reports hard delete, but archives")
	}
	if caps.UpdatesContent {
		t.Error("notion reports content updates, but only rewrites properties")
	}
}

func TestNotionPageToRecordRoundTripsProperties(t *testing.T) {
	page := &notionapi.Page{
		Properties: notionapi.Properties{
			"Title": &notionapi.TitleProperty{
				Title: []notionapi.RichText{{PlainText: "a summary"}},
			},
			"Category": &notionapi.SelectProperty{
				Select: notionapi.Option{Name: "Learning Notes"},
			},
			"Tags": &notionapi.MultiSelectProperty{
				MultiSelect: []notionapi.Option{{Name: "go"}, {Name: "bots"}},
			},
			"User ID":    &notionapi.NumberProperty{Number: 12345},
			"Message ID": &notionapi.NumberProperty{Number: 42},
		},
	}

	rec := notionPageToRecord(page)
	if rec.Summary != "a summary" || rec.Category != "Learning Notes" {
		t.Errorf("record = %+v", rec)
	}
	if rec.UserID != 12345 || rec.MessageID != 42 {
		t.Errorf("ids = %d/%d", rec.UserID, rec.MessageID)
	}
	if !reflect.DeepEqual(rec.Tags, []string{"go", "bots"}) {
		t.Errorf("tags = %v", rec.Tags)
	}
}
