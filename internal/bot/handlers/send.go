package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// sendText sends a plain text message with the standard send timeout.
func sendText(ctx context.Context, b *bot.Bot, deps HandlerDeps, chatID int64, text string) {
	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()

	if _, err := b.SendMessage(sendCtx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		deps.Logger.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", chatID)
	}
}

// sendReply sends a text message replying to the given message and returns
// the sent message, or nil when sending failed.
func sendReply(ctx context.Context, b *bot.Bot, deps HandlerDeps, chatID int64, replyTo int, text string) *models.Message {
	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()

	sent, err := b.SendMessage(sendCtx, &bot.SendMessageParams{
		ChatID:          chatID,
		Text:            text,
		ReplyParameters: &models.ReplyParameters{MessageID: replyTo},
	})
	if err != nil {
		deps.Logger.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chatID, "reply_to", replyTo)
		return nil
	}
	return sent
}

// editText replaces the text of an already sent message. Markdown is tried
// first so the result card renders formatted; messages Telegram rejects as
// malformed markup are retried as plain text.
func editText(ctx context.Context, b *bot.Bot, deps HandlerDeps, chatID int64, messageID int, text string) {
	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()

	_, err := b.EditMessageText(sendCtx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
		ParseMode: models.ParseModeMarkdown,
	})
	if err == nil {
		return
	}

	_, retryErr := b.EditMessageText(sendCtx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
	})
	if retryErr != nil {
		deps.Logger.ErrorContext(ctx, "Failed to edit message", "error", retryErr, "chat_id", chatID, "message_id", messageID)
	}
}
