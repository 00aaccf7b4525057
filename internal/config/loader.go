package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig reads configuration in precedence order: defaults, then the
// YAML file at path (optional), then BOT_* environment variables.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing default config file is fine; an explicit path is not.
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.json", true)

	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("ai.openai.model", "gpt-4o-mini")
	v.SetDefault("ai.openai.temperature", 0.3)
	v.SetDefault("ai.openai.timeout", "2m")
	v.SetDefault("ai.openai.embedding_model", "text-embedding-3-small")
	v.SetDefault("ai.gemini.model", "gemini-2.0-flash")
	v.SetDefault("ai.gemini.temperature", 0.3)
	v.SetDefault("ai.gemini.max_retries", 3)
	v.SetDefault("ai.gemini.retry_delay", "2s")

	v.SetDefault("storage.primary", "notion")
	v.SetDefault("storage.obsidian.daily_notes", true)
	v.SetDefault("storage.obsidian.folder_structure", "Telegram/{category}")

	v.SetDefault("database.path", "knowbot.db")

	v.SetDefault("features.ocr", true)

	v.SetDefault("scheduler.tasks.db_maintenance.enabled", true)
	v.SetDefault("scheduler.tasks.db_maintenance.schedule", "0 4 * * *")

	v.SetDefault("messages.processing", "Processing your message...")
	v.SetDefault("messages.no_content", "No content found in message.")
	v.SetDefault("messages.general_error", "Sorry, something went wrong while processing your message.")
	v.SetDefault("messages.welcome",
		"Hi! Send me any message, link, document or image and I will summarize it, "+
			"classify it and save it to your knowledge base.\n\nUse /help to see what I can do.")
	v.SetDefault("messages.help",
		"Send me content and I will enrich and store it:\n\n"+
			"- Text and links: fetched and summarized\n"+
			"- Documents (PDF, Word, text): text extracted\n"+
			"- Images: text recognized when OCR is available\n\n"+
			"Commands:\n"+
			"/start - welcome message\n"+
			"/help - this message\n"+
			"/stats - your saved records by category\n"+
			"/export - digest of your recent records")
}
