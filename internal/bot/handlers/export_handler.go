package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/knowbot/knowbot/internal/database"
)

const exportLimit = 20

// NewExportHandler returns a handler for the /export command. It replies
// with a markdown digest of the sender's most recent records from the
// local record index.
func NewExportHandler(deps HandlerDeps) bot.HandlerFunc {
	return exportHandler{deps}.Handle
}

type exportHandler struct {
	deps HandlerDeps
}

func (h exportHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "export")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Export handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID
	log.InfoContext(ctx, "Handling /export command", "chat_id", chatID, "user_id", userID)

	records, err := h.deps.Store.RecentRecords(ctx, userID, exportLimit)
	if err != nil {
		log.ErrorContext(ctx, "Failed to query recent records", "error", err, "user_id", userID)
		sendText(ctx, b, h.deps, chatID, h.deps.Config.Messages.GeneralError)
		return
	}

	sendText(ctx, b, h.deps, chatID, formatExport(records))
}

// formatExport renders index rows, newest first, as a markdown digest.
func formatExport(records []database.RecordIndex) string {
	if len(records) == 0 {
		return "No records to export yet. Send me a message to get started!"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Your %d most recent records:\n", len(records))
	for _, rec := range records {
		summary := rec.Summary
		if summary == "" {
			summary = "(no summary)"
		}
		fmt.Fprintf(&b, "\n- %s [%s] %s (%s)",
			rec.CreatedAt.Format("2006-01-02"), rec.Category, summary, rec.Backend)
	}
	return b.String()
}
