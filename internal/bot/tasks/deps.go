// Package tasks implements the bot's scheduled tasks: definitions,
// dependencies, and registration.
package tasks

import (
	"log/slog"

	"github.com/knowbot/knowbot/internal/config"
	"github.com/knowbot/knowbot/internal/database"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Config *config.Config
}
