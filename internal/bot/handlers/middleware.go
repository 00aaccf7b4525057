// Package handlers contains Telegram bot command and message handlers,
// along with their registration logic and middleware.
package handlers

import (
	"context"
	"fmt"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Recover creates a middleware that converts handler panics into operator
// error reports instead of tearing down the update loop.
func Recover(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			defer func() {
				if r := recover(); r != nil {
					ReportError(ctx, bot, deps, update, "panic", fmt.Errorf("%v", r))
				}
			}()
			next(ctx, bot, update)
		}
	}
}

// ChatAllowed creates a middleware that drops message updates from chats
// not present in the configured allow-list. An empty allow-list accepts
// every chat.
func ChatAllowed(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			allowed := deps.Config.Telegram.AllowedChats
			if len(allowed) == 0 || update.Message == nil {
				next(ctx, bot, update)
				return
			}

			chatID := update.Message.Chat.ID
			for _, id := range allowed {
				if id == chatID {
					next(ctx, bot, update)
					return
				}
			}

			deps.Logger.With("middleware", "ChatAllowed").DebugContext(ctx,
				"Ignoring message from chat outside allow-list", "chat_id", chatID)
		}
	}
}
