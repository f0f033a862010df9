package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lembas/internal/api"
	"lembas/internal/app"
	"lembas/internal/config"
	"lembas/internal/database"
	"lembas/internal/logger"
	"lembas/internal/metrics"
	"lembas/internal/reminder"
	"lembas/internal/shopping"
	"lembas/internal/telegram"
)

func main() {
	// 1. Load Configuration
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.TelegramBotToken == "" {
		log.Fatalf("TELEGRAM_BOT_TOKEN environment variable not set")
	}

	l := logger.New(cfg.LogLevel)
	l.Info("Starting Lembas Telegram bot...")

	// 2. Local storage for exports and reminder bookkeeping
	db, err := database.NewDB(cfg.DatabasePath, l)
	if err != nil {
		l.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// 3. Backend client
	recorder := metrics.NewRecorder()
	tokens, err := api.TokenSourceFromConfig(cfg)
	if err != nil {
		l.Fatalf("Failed to create token source: %v", err)
	}
	client := api.NewClient(cfg, tokens, api.WithLogger(l), api.WithObserver(recorder))

	a := app.NewApp(client, l,
		app.WithWeekStart(cfg.WeekStart),
		app.WithExportStore(shopping.NewRepository(db.SQL)),
		app.WithExportRecorder(recorder),
	)

	// 4. Telegram Bot
	bot, err := telegram.NewBot(cfg, a, recorder, l)
	if err != nil {
		l.Fatalf("Failed to initialize Telegram Bot: %v", err)
	}

	mux := http.NewServeMux()
	bot.RegisterHandlers(mux)
	mux.Handle("/metrics", recorder.Handler())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 5. Reminders read the schedule directly so they never supersede a user's request.
	if cfg.TelegramChatID != 0 {
		scheduler := reminder.NewScheduler(client.Schedule, reminder.NewRepository(db.SQL), cfg.ReminderInterval, l).
			WithCounter(recorder)
		go scheduler.Start(ctx, bot.Notify)
	} else {
		l.Warn("TELEGRAM_CHAT_ID not set, reminders disabled")
	}

	// 6. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: mux,
	}

	go func() {
		l.Infof("Telegram Bot Server listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	l.Info("Shutting down server...")
	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		l.Fatalf("Server forced to shutdown: %v", err)
	}

	l.Info("Server exiting")
}
