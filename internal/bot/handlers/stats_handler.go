package handlers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewStatsHandler returns a handler for the /stats command. It reports the
// sender's per-category record counts from the local record index.
func NewStatsHandler(deps HandlerDeps) bot.HandlerFunc {
	return statsHandler{deps}.Handle
}

type statsHandler struct {
	deps HandlerDeps
}

func (h statsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "stats")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Stats handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID
	log.InfoContext(ctx, "Handling /stats command", "chat_id", chatID, "user_id", userID)

	counts, err := h.deps.Store.CountByCategory(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to query record counts", "error", err, "user_id", userID)
		sendText(ctx, b, h.deps, chatID, h.deps.Config.Messages.GeneralError)
		return
	}

	sendText(ctx, b, h.deps, chatID, formatStats(counts))
}

// formatStats renders per-category counts ordered by count descending,
// then by category name for equal counts.
func formatStats(counts map[string]int) string {
	if len(counts) == 0 {
		return "No records saved yet. Send me a message to get started!"
	}

	categories := make([]string, 0, len(counts))
	for category := range counts {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool {
		if counts[categories[i]] != counts[categories[j]] {
			return counts[categories[i]] > counts[categories[j]]
		}
		return categories[i] < categories[j]
	})

	total := 0
	var b strings.Builder
	b.WriteString("Your saved records by category:\n")
	for _, category := range categories {
		fmt.Fprintf(&b, "\n- %s: %d", category, counts[category])
		total += counts[category]
	}
	fmt.Fprintf(&b, "\n\nTotal: %d", total)
	return b.String()
}
