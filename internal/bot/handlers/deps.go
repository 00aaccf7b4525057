package handlers

import (
	"log/slog"

	"github.com/knowbot/knowbot/internal/ai"
	"github.com/knowbot/knowbot/internal/config"
	"github.com/knowbot/knowbot/internal/database"
	"github.com/knowbot/knowbot/internal/extract"
	"github.com/knowbot/knowbot/internal/queue"
)

// HandlerDeps provides dependencies for Telegram command and message handlers.
type HandlerDeps struct {
	Logger     *slog.Logger
	Config     *config.Config
	Store      database.Store
	Pipeline   *extract.Pipeline
	Summarizer *ai.Summarizer
	Classifier *ai.Classifier
	Queue      *queue.Queue
}
