// Package main contains the entrypoint for the knowledge-capture bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/knowbot/knowbot/internal/ai"
	"github.com/knowbot/knowbot/internal/bot"
	"github.com/knowbot/knowbot/internal/bot/handlers"
	"github.com/knowbot/knowbot/internal/bot/tasks"
	"github.com/knowbot/knowbot/internal/config"
	"github.com/knowbot/knowbot/internal/database"
	"github.com/knowbot/knowbot/internal/extract"
	"github.com/knowbot/knowbot/internal/logger"
	"github.com/knowbot/knowbot/internal/queue"
	"github.com/knowbot/knowbot/internal/storage"
	"github.com/knowbot/knowbot/internal/telegram"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop() // Ensure context cancellation is signaled before exit
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger, db,
// AI provider, storage back ends, queue, bot, scheduler), handles graceful
// shutdown, and returns an exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	provider, err := ai.NewProvider(ctx, cfg.AI, log)
	if err != nil {
		log.Error("Failed to initialize AI provider", "provider", cfg.AI.Provider, "error", err)
		return 1
	}
	summarizer := ai.NewSummarizer(provider, log)
	classifier := ai.NewClassifier(provider, log)

	pipeline := extract.NewPipeline(log, cfg.Features.OCR)

	primary, err := storage.NewPrimary(cfg.Storage, log)
	if err != nil {
		log.Error("Failed to initialize primary storage", "primary", cfg.Storage.Primary, "error", err)
		return 1
	}
	secondary, err := storage.NewSecondary(cfg.Storage, log)
	if err != nil {
		log.Error("Failed to initialize secondary storage", "error", err)
		return 1
	}
	log.Info("Storage initialized", "primary", primary.Name(), "secondary_enabled", secondary != nil)

	q := queue.New()
	consumer := queue.NewConsumer(q, primary, secondary, store, log)

	hDeps := handlers.HandlerDeps{
		Logger:     log,
		Config:     cfg,
		Store:      store,
		Pipeline:   pipeline,
		Summarizer: summarizer,
		Classifier: classifier,
		Queue:      q,
	}
	tDeps := tasks.TaskDeps{
		Logger: log,
		Store:  store,
		Config: cfg,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log), handlers.Recover(hDeps), handlers.ChatAllowed(hDeps)),
		tgbot.WithDefaultHandler(handlers.NewMessageHandler(hDeps)),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	// Retrieve bot info and store it in the config for runtime use
	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	cmdHandlers := handlers.RegisterAllCommands(hDeps)
	if err := telegram.RegisterHandlers(tg, log, cmdHandlers); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}
	if err := telegram.SetupCommands(ctx, tg, log, cmdHandlers); err != nil {
		log.Error("Failed to publish bot commands", "error", err)
		return 1
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}
	app := bot.NewBot(log, cfg, db, store, tg, q, consumer, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx) // Run blocks until context is cancelled or an error occurs
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		// Allow logs to flush before exiting on error
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
