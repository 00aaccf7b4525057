package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// ReportError notifies the configured admin chat about a handler failure.
// The report carries enough update context to locate the failing message.
// When no admin chat is configured the error is only logged.
func ReportError(ctx context.Context, b *bot.Bot, deps HandlerDeps, update *models.Update, stage string, handlerErr error) {
	log := deps.Logger.With("component", "error_report")
	log.ErrorContext(ctx, "Handler error", "stage", stage, "error", handlerErr)

	adminChatID := deps.Config.Telegram.AdminChatID
	if adminChatID == 0 || b == nil {
		return
	}

	var chatID int64
	var userID int64
	var messageID int
	if update != nil && update.Message != nil {
		chatID = update.Message.Chat.ID
		messageID = update.Message.ID
		if update.Message.From != nil {
			userID = update.Message.From.ID
		}
	}

	report := fmt.Sprintf(
		"An error was raised while handling an update\n\nstage: %s\nchat_id: %d\nuser_id: %d\nmessage_id: %d\nerror: %v",
		stage, chatID, userID, messageID, handlerErr,
	)

	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()
	if _, err := b.SendMessage(sendCtx, &bot.SendMessageParams{ChatID: adminChatID, Text: report}); err != nil {
		log.ErrorContext(ctx, "Failed to send error report to admin chat", "error", err, "admin_chat_id", adminChatID)
	}
}
