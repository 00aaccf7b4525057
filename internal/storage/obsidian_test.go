package storage

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/knowbot/knowbot/internal/config"
)

func newVaultBackend(t *testing.T, daily bool, folderStructure string) *ObsidianBackend {
	t.Helper()

	cfg := config.ObsidianConfig{
		VaultPath:       t.TempDir(),
		DailyNotes:      daily,
		FolderStructure: folderStructure,
	}
	b, err := NewObsidianBackend(cfg, nil)
	if err != nil {
		t.Fatalf("NewObsidianBackend() error: %v", err)
	}
	return b
}

func TestObsidianStandaloneRoundTrip(t *testing.T) {
	b := newVaultBackend(t, false, "{category}")
	rec := sampleRecord()

	handle, err := b.Save(context.Background(), rec)
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := b.Get(context.Background(), handle)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}

	if got.Summary != rec.Summary {
		t.Errorf("summary = %q, want %q", got.Summary, rec.Summary)
	}
	if got.Category != rec.Category {
		t.Errorf("category = %q, want %q", got.Category, rec.Category)
	}
	if !reflect.DeepEqual(got.Tags, rec.Tags) {
		t.Errorf("tags = %v, want %v", got.Tags, rec.Tags)
	}
	if !reflect.DeepEqual(got.Keywords, rec.Keywords) {
		t.Errorf("keywords = %v, want %v", got.Keywords, rec.Keywords)
	}
	if got.UserID != rec.UserID || got.MessageID != rec.MessageID {
		t.Errorf("ids = %d/%d", got.UserID, got.MessageID)
	}
	if got.Timestamp != rec.Timestamp {
		t.Errorf("timestamp = %q, want %q", got.Timestamp, rec.Timestamp)
	}
	if !strings.Contains(got.Content, rec.Content) {
		t.Errorf("body does not contain original content: %q", got.Content)
	}
}

func TestObsidianCategorySanitizedInPath(t *testing.T) {
	b := newVaultBackend(t, false, "Telegram/{category}")
	rec := sampleRecord()
	rec.Category = "Technology/Programming"

	handle, err := b.Save(context.Background(), rec)
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	rel, err := filepath.Rel(b.vaultPath, handle)
	if err != nil {
		t.Fatalf("Rel() error: %v", err)
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) != 3 {
		t.Fatalf("path depth = %d (%q), want Telegram/<category>/<file>", len(parts), rel)
	}
	if parts[1] != "Technology_Programming" {
		t.Errorf("category folder = %q, want Technology_Programming", parts[1])
	}
}

func TestObsidianFolderTemplateSubstitution(t *testing.T) {
	b := newVaultBackend(t, false, "{year}/{month}/{day}/{user_id}")
	rec := sampleRecord() // 2026-08-30

	handle, err := b.Save(context.Background(), rec)
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	want := filepath.Join(b.vaultPath, "2026", "8", "30", "12345")
	if filepath.Dir(handle) != want {
		t.Errorf("folder = %q, want %q", filepath.Dir(handle), want)
	}
}

func TestObsidianStandaloneFilename(t *testing.T) {
	b := newVaultBackend(t, false, "notes")

	handle, err := b.Save(context.Background(), sampleRecord())
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if got := filepath.Base(handle); got != "2026-08-30-1405-42.md" {
		t.Errorf("filename = %q", got)
	}
}

func TestObsidianDailyNoteAppends(t *testing.T) {
	b := newVaultBackend(t, true, "daily")

	first := sampleRecord()
	second := sampleRecord()
	second.MessageID = 43
	second.Summary = "second summary"

	h1, err := b.Save(context.Background(), first)
	if err != nil {
		t.Fatalf("Save() first error: %v", err)
	}
	h2, err := b.Save(context.Background(), second)
	if err != nil {
		t.Fatalf("Save() second error: %v", err)
	}

	if h1 != h2 {
		t.Errorf("daily notes produced two files: %q vs %q", h1, h2)
	}
	if got := filepath.Base(h1); got != "2026-08-30.md" {
		t.Errorf("daily filename = %q", got)
	}

	data, err := os.ReadFile(h1)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	text := string(data)
	if strings.Count(text, "## Message at 14:05") != 2 {
		t.Errorf("daily note sections = %d, want 2:\n%s", strings.Count(text, "## Message at"), text)
	}
	if !strings.Contains(text, "second summary") {
		t.Errorf("second record missing from daily note")
	}
}

func TestObsidianUpdatePreservesBody(t *testing.T) {
	b := newVaultBackend(t, false, "notes")
	rec := sampleRecord()

	handle, err := b.Save(context.Background(), rec)
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	updated := sampleRecord()
	updated.Category = "Ideas/Inspiration"
	updated.Tags = []string{"new"}
	if err := b.Update(context.Background(), handle, updated); err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	got, err := b.Get(context.Background(), handle)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Category != "Ideas/Inspiration" {
		t.Errorf("category after update = %q", got.Category)
	}
	if !reflect.DeepEqual(got.Tags, []string{"new"}) {
		t.Errorf("tags after update = %v", got.Tags)
	}
	if !strings.Contains(got.Content, rec.Content) {
		t.Errorf("update lost the note body: %q", got.Content)
	}
}

func TestObsidianDelete(t *testing.T) {
	b := newVaultBackend(t, false, "notes")

	handle, err := b.Save(context.Background(), sampleRecord())
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	if err := b.Delete(context.Background(), handle); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := os.Stat(handle); !os.IsNotExist(err) {
		t.Error("note still exists after delete")
	}

	if err := b.Delete(context.Background(), handle); err == nil {
		t.Error("deleting a missing note did not fail")
	}
}

func TestObsidianMissingVaultFailsConstruction(t *testing.T) {
	cfg := config.ObsidianConfig{VaultPath: filepath.Join(t.TempDir(), "missing")}
	if _, err := NewObsidianBackend(cfg, nil); err == nil {
		t.Error("missing vault did not fail construction")
	}
}

func TestObsidianCapabilities(t *testing.T) {
	b := &ObsidianBackend{}
	if caps := b.Capabilities(); !caps.HardDelete {
		t.Error("obsidian delete is a real file removal, capability disagrees")
	}
}
