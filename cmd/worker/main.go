package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/voicebill/internal/app"
	"github.com/MrJamesThe3rd/voicebill/internal/config"
	"github.com/MrJamesThe3rd/voicebill/internal/delivery"
	"github.com/MrJamesThe3rd/voicebill/internal/logging"
)

// The worker sends queued invoice emails. It is only needed with DELIVERY_MODE=queue.
func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logging.New(cfg.App.LogLevel, cfg.App.LogFormat))

	if cfg.Delivery.Mode != config.DeliveryQueue {
		slog.Warn("delivery mode is not queue, nothing will be enqueued", "mode", cfg.Delivery.Mode)
	}

	handler := delivery.NewTaskHandler(delivery.NewSMTPSender(app.SMTPConfig(cfg)))
	worker := delivery.NewWorker(app.RedisOpt(cfg), handler, cfg.Delivery.Concurrency)

	slog.Info("starting delivery worker", "concurrency", cfg.Delivery.Concurrency)

	if err := worker.Run(ctx); err != nil {
		slog.Error("worker failed", "error", err)
		os.Exit(1)
	}

	slog.Info("delivery worker stopped")
}
