// Package config loads and validates the bot configuration from a YAML file
// and BOT_-prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-telegram/bot/models"
)

// Config holds the full application configuration.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	AI        AIConfig        `mapstructure:"ai"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Features  FeaturesConfig  `mapstructure:"features"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LoggerConfig controls slog output.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds bot transport settings.
type TelegramConfig struct {
	Token string `mapstructure:"token" validate:"required"`

	// AdminChatID receives operator error reports when set.
	AdminChatID int64 `mapstructure:"admin_chat_id"`

	// AllowedChats restricts processing to the listed chat IDs.
	// Empty means every chat is accepted.
	AllowedChats []int64 `mapstructure:"allowed_chats"`

	// BotInfo is populated at startup via GetMe, not from the config file.
	BotInfo *models.User `mapstructure:"-"`
}

// AIConfig selects and configures the AI provider.
type AIConfig struct {
	Provider string       `mapstructure:"provider" validate:"required,oneof=openai gemini"`
	OpenAI   OpenAIConfig `mapstructure:"openai"`
	Gemini   GeminiConfig `mapstructure:"gemini"`
}

// OpenAIConfig configures the OpenAI-compatible chat and embedding
// endpoints. The embedding endpoint may point at a different server and
// key, so a Gemini-selected deployment can still embed through it.
type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float32       `mapstructure:"temperature" validate:"omitempty,min=0,max=2"`
	Timeout     time.Duration `mapstructure:"timeout"`

	EmbeddingAPIKey  string `mapstructure:"embedding_api_key"`
	EmbeddingBaseURL string `mapstructure:"embedding_base_url"`
	EmbeddingModel   string `mapstructure:"embedding_model"`
}

// GeminiConfig configures the Gemini provider.
type GeminiConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float32       `mapstructure:"temperature" validate:"omitempty,min=0,max=2"`
	MaxRetries  int           `mapstructure:"max_retries" validate:"omitempty,min=0,max=10"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
}

// StorageConfig selects the primary storage back end. When the other
// back end is also configured it receives a secondary copy of each save.
type StorageConfig struct {
	Primary  string         `mapstructure:"primary" validate:"required,oneof=notion obsidian"`
	Notion   NotionConfig   `mapstructure:"notion"`
	Obsidian ObsidianConfig `mapstructure:"obsidian"`
}

// NotionConfig holds the Notion integration credentials.
type NotionConfig struct {
	APIKey     string `mapstructure:"api_key"`
	DatabaseID string `mapstructure:"database_id"`
}

// Enabled reports whether the Notion back end has usable credentials.
func (c NotionConfig) Enabled() bool {
	return c.APIKey != "" && c.DatabaseID != ""
}

// ObsidianConfig holds the markdown vault settings.
type ObsidianConfig struct {
	VaultPath string `mapstructure:"vault_path"`

	// DailyNotes appends records to one note per day instead of creating
	// a standalone note per record.
	DailyNotes bool `mapstructure:"daily_notes"`

	// FolderStructure is a path template; {category}, {year}, {month},
	// {day} and {user_id} are substituted per record.
	FolderStructure string `mapstructure:"folder_structure"`
}

// Enabled reports whether the Obsidian back end is configured.
func (c ObsidianConfig) Enabled() bool {
	return c.VaultPath != ""
}

// DatabaseConfig holds the local record index settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig configures a single scheduled task.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// FeaturesConfig toggles optional capabilities.
type FeaturesConfig struct {
	OCR bool `mapstructure:"ocr"`
}

// MessagesConfig holds user-facing reply texts.
type MessagesConfig struct {
	Processing   string `mapstructure:"processing"`
	NoContent    string `mapstructure:"no_content"`
	GeneralError string `mapstructure:"general_error"`
	Welcome      string `mapstructure:"welcome"`
	Help         string `mapstructure:"help"`
}

// Validate checks struct tags plus the cross-field rules the tags cannot
// express: the selected AI provider and the selected primary storage back
// end must be fully configured, and a configured vault must exist.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	switch c.AI.Provider {
	case "openai":
		if c.AI.OpenAI.APIKey == "" {
			return fmt.Errorf("ai provider %q selected but ai.openai.api_key is empty", c.AI.Provider)
		}
	case "gemini":
		if c.AI.Gemini.APIKey == "" {
			return fmt.Errorf("ai provider %q selected but ai.gemini.api_key is empty", c.AI.Provider)
		}
	}

	switch c.Storage.Primary {
	case "notion":
		if !c.Storage.Notion.Enabled() {
			return fmt.Errorf("storage primary %q selected but notion credentials are incomplete", c.Storage.Primary)
		}
	case "obsidian":
		if !c.Storage.Obsidian.Enabled() {
			return fmt.Errorf("storage primary %q selected but obsidian.vault_path is empty", c.Storage.Primary)
		}
	}

	if c.Storage.Obsidian.Enabled() {
		info, err := os.Stat(c.Storage.Obsidian.VaultPath)
		if err != nil {
			return fmt.Errorf("obsidian vault path %q: %w", c.Storage.Obsidian.VaultPath, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("obsidian vault path %q is not a directory", c.Storage.Obsidian.VaultPath)
		}
	}

	return nil
}
