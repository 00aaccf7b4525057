package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/knowbot/knowbot/internal/config"
)

// ObsidianBackend stores records as markdown files in a vault. In daily
// mode records are appended as sections to one note per day; otherwise
// each record becomes a standalone note with YAML front matter.
type ObsidianBackend struct {
	vaultPath       string
	dailyNotes      bool
	folderStructure string
	log             *slog.Logger
}

// NewObsidianBackend creates the vault back end. A missing or unreadable
// vault directory is a construction-time error.
func NewObsidianBackend(cfg config.ObsidianConfig, log *slog.Logger) (*ObsidianBackend, error) {
	if cfg.VaultPath == "" {
		return nil, errors.New("obsidian vault path is required")
	}
	info, err := os.Stat(cfg.VaultPath)
	if err != nil {
		return nil, fmt.Errorf("obsidian vault not found at %s: %w", cfg.VaultPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("obsidian vault path %s is not a directory", cfg.VaultPath)
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	folderStructure := cfg.FolderStructure
	if folderStructure == "" {
		folderStructure = "Telegram/{category}"
	}

	return &ObsidianBackend{
		vaultPath:       cfg.VaultPath,
		dailyNotes:      cfg.DailyNotes,
		folderStructure: folderStructure,
		log:             log.With("component", "storage.obsidian"),
	}, nil
}

func (o *ObsidianBackend) Name() string { return "obsidian" }

func (o *ObsidianBackend) Capabilities() Capabilities {
	return Capabilities{HardDelete: true, UpdatesContent: false}
}

// Save writes the record into the vault and returns the file path. The
// write is verified with a stat so silent failures surface as errors.
func (o *ObsidianBackend) Save(ctx context.Context, rec *Record) (string, error) {
	ts, err := time.Parse(time.RFC3339, rec.Timestamp)
	if err != nil {
		return "", fmt.Errorf("record timestamp %q is not RFC 3339: %w", rec.Timestamp, err)
	}

	path := o.filePath(rec, ts)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create vault folder: %w", err)
	}

	if o.dailyNotes {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return "", fmt.Errorf("failed to open daily note: %w", err)
		}
		_, writeErr := f.WriteString(buildDailySection(rec, ts))
		if closeErr := f.Close(); writeErr == nil {
			writeErr = closeErr
		}
		if writeErr != nil {
			return "", fmt.Errorf("failed to append to daily note: %w", writeErr)
		}
	} else {
		content, err := buildStandaloneNote(rec)
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return "", fmt.Errorf("failed to write note: %w", err)
		}
	}

	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("note missing after write: %w", err)
	}

	o.log.InfoContext(ctx, "Saved record to Obsidian",
		"path", path, "message_id", rec.MessageID, "category", rec.Category)
	return path, nil
}

// filePath renders the folder template and picks the note name. Path
// separators inside the rendered category are sanitized so a category
// like "Technology/Programming" cannot escape or split the folder;
// separators written into the template itself are respected.
func (o *ObsidianBackend) filePath(rec *Record, ts time.Time) string {
	category := rec.Category
	if category == "" {
		category = "General"
	}
	category = strings.NewReplacer("/", "_", "\\", "_").Replace(category)

	folder := strings.NewReplacer(
		"{category}", category,
		"{year}", strconv.Itoa(ts.Year()),
		"{month}", strconv.Itoa(int(ts.Month())),
		"{day}", strconv.Itoa(ts.Day()),
		"{user_id}", strconv.FormatInt(rec.UserID, 10),
	).Replace(o.folderStructure)

	var filename string
	if o.dailyNotes {
		filename = ts.Format("2006-01-02") + ".md"
	} else {
		filename = fmt.Sprintf("%s-%d.md", ts.Format("2006-01-02-1504"), rec.MessageID)
	}

	return filepath.Join(o.vaultPath, folder, filename)
}

// noteFrontMatter is the YAML header of a standalone note.
type noteFrontMatter struct {
	Title     string   `yaml:"title"`
	Category  string   `yaml:"category"`
	Tags      []string `yaml:"tags"`
	Keywords  []string `yaml:"keywords"`
	MessageID int      `yaml:"message_id"`
	UserID    int64    `yaml:"user_id"`
	Username  string   `yaml:"user_username,omitempty"`
	CreatedAt string   `yaml:"created_at"`
	AISummary string   `yaml:"ai_summary"`
}

func buildStandaloneNote(rec *Record) (string, error) {
	fm := noteFrontMatter{
		Title:     capRunes(rec.Summary, notionTitleLimit),
		Category:  rec.Category,
		Tags:      rec.Tags,
		Keywords:  rec.Keywords,
		MessageID: rec.MessageID,
		UserID:    rec.UserID,
		Username:  rec.Username,
		CreatedAt: rec.Timestamp,
		AISummary: rec.Summary,
	}

	header, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("failed to marshal front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(header)
	b.WriteString("---\n\n")

	fmt.Fprintf(&b, "> [!AI Summary] %s\n\n", rec.Summary)
	b.WriteString("## Content\n\n")
	b.WriteString(rec.Content)
	b.WriteString("\n\n## Metadata\n\n")
	fmt.Fprintf(&b, "- **Chat Type:** %v\n", metaValue(rec.Metadata, "chat_type", "Unknown"))
	fmt.Fprintf(&b, "- **Message ID:** %d\n", rec.MessageID)
	fmt.Fprintf(&b, "- **Timestamp:** %s\n", rec.Timestamp)

	if n, _ := rec.Metadata["extracted_urls"].(int); n > 0 {
		fmt.Fprintf(&b, "- **URLs Extracted:** %d\n", n)
	}
	if n, _ := rec.Metadata["extracted_files"].(int); n > 0 {
		fmt.Fprintf(&b, "- **Files Processed:** %d\n", n)
	}
	if n, _ := rec.Metadata["extracted_images"].(int); n > 0 {
		fmt.Fprintf(&b, "- **Images Processed:** %d\n", n)
	}

	return b.String(), nil
}

func buildDailySection(rec *Record, ts time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n## Message at %s\n\n", ts.Format("15:04"))
	fmt.Fprintf(&b, "**Category:** %s\n", rec.Category)
	fmt.Fprintf(&b, "**Tags:** %s\n\n", strings.Join(rec.Tags, ", "))
	fmt.Fprintf(&b, "> [!Summary] %s\n\n", rec.Summary)
	b.WriteString("### Content\n\n")
	b.WriteString(rec.Content)
	b.WriteString("\n")
	return b.String()
}

// Get reads a note back. For standalone notes the front matter fields are
// restored; daily notes have no front matter, so only Content is set.
func (o *ObsidianBackend) Get(ctx context.Context, handle string) (*Record, error) {
	data, err := os.ReadFile(handle)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, handle)
		}
		return nil, fmt.Errorf("failed to read note %s: %w", handle, err)
	}

	fm, body, err := splitFrontMatter(string(data))
	if err != nil {
		return nil, err
	}

	rec := &Record{Content: body}
	if fm != nil {
		rec.Summary = fm.AISummary
		rec.Category = fm.Category
		rec.Tags = fm.Tags
		rec.Keywords = fm.Keywords
		rec.MessageID = fm.MessageID
		rec.UserID = fm.UserID
		rec.Username = fm.Username
		rec.Timestamp = fm.CreatedAt
	}
	return rec, nil
}

// Update rewrites a standalone note's front matter from rec, preserving
// the body.
func (o *ObsidianBackend) Update(ctx context.Context, handle string, rec *Record) error {
	data, err := os.ReadFile(handle)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, handle)
		}
		return fmt.Errorf("failed to read note %s: %w", handle, err)
	}

	_, body, err := splitFrontMatter(string(data))
	if err != nil {
		return err
	}

	header, err := yaml.Marshal(noteFrontMatter{
		Title:     capRunes(rec.Summary, notionTitleLimit),
		Category:  rec.Category,
		Tags:      rec.Tags,
		Keywords:  rec.Keywords,
		MessageID: rec.MessageID,
		UserID:    rec.UserID,
		Username:  rec.Username,
		CreatedAt: rec.Timestamp,
		AISummary: rec.Summary,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal front matter: %w", err)
	}

	content := "---\n" + string(header) + "---\n\n" + body
	if err := os.WriteFile(handle, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to update note %s: %w", handle, err)
	}

	o.log.InfoContext(ctx, "Updated Obsidian note", "path", handle)
	return nil
}

// Delete removes the note file.
func (o *ObsidianBackend) Delete(ctx context.Context, handle string) error {
	if err := os.Remove(handle); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, handle)
		}
		return fmt.Errorf("failed to delete note %s: %w", handle, err)
	}
	o.log.InfoContext(ctx, "Deleted Obsidian note", "path", handle)
	return nil
}

// splitFrontMatter separates the YAML header from the body. Notes without
// a header (daily notes) return a nil front matter.
func splitFrontMatter(content string) (*noteFrontMatter, string, error) {
	if !strings.HasPrefix(content, "---\n") {
		return nil, content, nil
	}

	rest := content[len("---\n"):]
	end := strings.Index(rest, "\n---\n")
	if end < 0 {
		return nil, content, nil
	}

	var fm noteFrontMatter
	if err := yaml.Unmarshal([]byte(rest[:end+1]), &fm); err != nil {
		return nil, "", fmt.Errorf("failed to parse front matter: %w", err)
	}

	body := strings.TrimPrefix(rest[end+len("\n---\n"):], "\n")
	return &fm, body, nil
}
