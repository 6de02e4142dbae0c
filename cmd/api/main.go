package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/voicebill/internal/app"
	"github.com/MrJamesThe3rd/voicebill/internal/auth"
	"github.com/MrJamesThe3rd/voicebill/internal/config"
	"github.com/MrJamesThe3rd/voicebill/internal/database"
	voicebillHttp "github.com/MrJamesThe3rd/voicebill/internal/http"
	accountHandler "github.com/MrJamesThe3rd/voicebill/internal/http/account"
	customerHandler "github.com/MrJamesThe3rd/voicebill/internal/http/customer"
	exportHandler "github.com/MrJamesThe3rd/voicebill/internal/http/export"
	"github.com/MrJamesThe3rd/voicebill/internal/http/httperr"
	invoiceHandler "github.com/MrJamesThe3rd/voicebill/internal/http/invoice"
	matchingHandler "github.com/MrJamesThe3rd/voicebill/internal/http/matching"
	paymentsHandler "github.com/MrJamesThe3rd/voicebill/internal/http/payments"
	sequenceHandler "github.com/MrJamesThe3rd/voicebill/internal/http/sequence"
	"github.com/MrJamesThe3rd/voicebill/internal/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("api stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	slog.SetDefault(logging.New(cfg.App.LogLevel, cfg.App.LogFormat))

	issuer, err := auth.NewIssuer(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("configuring authentication: %w", err)
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := database.Migrate(ctx, a.DB); err != nil {
		return err
	}

	router := voicebillHttp.New(voicebillHttp.Handlers{
		Invoices: invoiceHandler.NewHandler(a.Pipeline, a.Invoices,
			invoiceHandler.WithExtractionLimit(voicebillHttp.ExtractionLimiter(cfg.RateLimit.ExtractionPerMinute)),
			invoiceHandler.WithMaxUploadBytes(cfg.Server.MaxUploadBytes),
		),
		Customers: customerHandler.NewHandler(a.Customers),
		Account:   accountHandler.NewHandler(a.Accounts),
		Sequence:  sequenceHandler.NewHandler(a.Allocator),
		Matching:  matchingHandler.NewHandler(a.Matching),
		Payments:  paymentsHandler.NewHandler(a.Payments, cfg.Server.MaxUploadBytes),
		Export:    exportHandler.NewHandler(a.Export),
	}, voicebillHttp.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Authenticate:   issuer.Middleware(httperr.Write),
		Metrics:        a.Metrics,
		Health:         a.Health,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "addr", server.Addr,
			"sequence_backend", cfg.Sequence.Backend,
			"delivery_mode", cfg.Delivery.Mode,
		)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		slog.Info("shutting down server")

		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
