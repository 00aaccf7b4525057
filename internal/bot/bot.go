// Package bot implements lifecycle management and component
// orchestration for the knowledge-capture Telegram bot.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/knowbot/knowbot/internal/config"
	"github.com/knowbot/knowbot/internal/database"
	"github.com/knowbot/knowbot/internal/queue"
)

// Bot is the application root. It owns the Telegram listener, the
// storage consumer and the scheduler, and ties their lifetimes together.
type Bot struct {
	logger    *slog.Logger
	cfg       *config.Config
	db        *sqlx.DB
	store     database.Store
	tgBot     *tgbot.Bot
	queue     *queue.Queue
	consumer  *queue.Consumer
	scheduler *Scheduler
}

// NewBot creates the application root with all required dependencies.
func NewBot(
	logger *slog.Logger,
	cfg *config.Config,
	db *sqlx.DB,
	store database.Store,
	tgBot *tgbot.Bot,
	q *queue.Queue,
	consumer *queue.Consumer,
	scheduler *Scheduler,
) *Bot {
	return &Bot{
		logger:    logger.With("component", "bot_orchestrator"),
		cfg:       cfg,
		db:        db,
		store:     store,
		tgBot:     tgBot,
		queue:     q,
		consumer:  consumer,
		scheduler: scheduler,
	}
}

// Run starts all components and blocks until the context is canceled or
// a component fails. Shutdown stops the listener first; records still in
// the queue at that point are abandoned.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Starting Telegram bot listener...")

		b.tgBot.Start(gCtx)
		b.logger.Info("Telegram bot listener stopped.")

		if gCtx.Err() == nil {
			b.logger.Warn("Telegram bot listener stopped unexpectedly without context cancellation.")
			return fmt.Errorf("telegram listener stopped unexpectedly")
		}
		return nil
	})

	g.Go(func() error {
		if err := b.consumer.Run(gCtx); err != nil && !errors.Is(err, context.Canceled) {
			b.logger.Error("Storage consumer stopped with error", "error", err)
			return fmt.Errorf("storage consumer failed: %w", err)
		}
		if backlog := b.queue.Len(); backlog > 0 {
			b.logger.Warn("Shutting down with unsaved records in queue", "backlog", backlog)
		}
		return nil
	})

	g.Go(func() error {
		b.logger.Info("Starting scheduler...")
		if err := b.scheduler.Start(); err != nil {
			b.logger.Error("Failed to start scheduler", "error", err)
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler...")

		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	b.logger.Info("Bot orchestrator running. Waiting for shutdown signal or error...")
	err := g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}
