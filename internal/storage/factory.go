package storage

import (
	"fmt"
	"log/slog"

	"github.com/knowbot/knowbot/internal/config"
)

// NewPrimary builds the back end selected by cfg.Primary. An unknown or
// misconfigured selection fails here, before any message is processed.
func NewPrimary(cfg config.StorageConfig, log *slog.Logger) (Backend, error) {
	switch cfg.Primary {
	case "notion":
		return NewNotionBackend(cfg.Notion, log)
	case "obsidian":
		return NewObsidianBackend(cfg.Obsidian, log)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Primary)
	}
}

// NewSecondary builds the non-primary back end when it is configured,
// returning nil when there is none. Secondary failures never affect the
// primary write.
func NewSecondary(cfg config.StorageConfig, log *slog.Logger) (Backend, error) {
	switch cfg.Primary {
	case "notion":
		if cfg.Obsidian.Enabled() {
			return NewObsidianBackend(cfg.Obsidian, log)
		}
	case "obsidian":
		if cfg.Notion.Enabled() {
			return NewNotionBackend(cfg.Notion, log)
		}
	}
	return nil, nil
}
