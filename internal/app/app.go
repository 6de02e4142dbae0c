// Package app wires the services shared by the voicebill binaries.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/MrJamesThe3rd/voicebill/internal/account"
	accountStore "github.com/MrJamesThe3rd/voicebill/internal/account/store"
	"github.com/MrJamesThe3rd/voicebill/internal/cache"
	"github.com/MrJamesThe3rd/voicebill/internal/config"
	"github.com/MrJamesThe3rd/voicebill/internal/customer"
	customerStore "github.com/MrJamesThe3rd/voicebill/internal/customer/store"
	"github.com/MrJamesThe3rd/voicebill/internal/database"
	"github.com/MrJamesThe3rd/voicebill/internal/delivery"
	"github.com/MrJamesThe3rd/voicebill/internal/document"
	"github.com/MrJamesThe3rd/voicebill/internal/export"
	"github.com/MrJamesThe3rd/voicebill/internal/extraction"
	"github.com/MrJamesThe3rd/voicebill/internal/idempotency"
	"github.com/MrJamesThe3rd/voicebill/internal/invoice"
	invoiceStore "github.com/MrJamesThe3rd/voicebill/internal/invoice/store"
	"github.com/MrJamesThe3rd/voicebill/internal/llm"
	"github.com/MrJamesThe3rd/voicebill/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/voicebill/internal/matching/store"
	"github.com/MrJamesThe3rd/voicebill/internal/metrics"
	"github.com/MrJamesThe3rd/voicebill/internal/payments"
	"github.com/MrJamesThe3rd/voicebill/internal/pipeline"
	"github.com/MrJamesThe3rd/voicebill/internal/sequence"
	"github.com/MrJamesThe3rd/voicebill/internal/sequence/redisstore"
	sequenceStore "github.com/MrJamesThe3rd/voicebill/internal/sequence/store"
)

// App holds the connections and services of one process.
type App struct {
	Config  *config.Config
	DB      *sql.DB
	Redis   *redis.Client
	Metrics *metrics.Metrics

	Invoices  *invoice.Service
	Customers *customer.Service
	Accounts  *account.Service
	Matching  *matching.Service
	Allocator *sequence.Allocator
	Pipeline  *pipeline.Pipeline
	Payments  *payments.Service
	Export    *export.Service

	queue *asynq.Client
}

// New connects to Postgres and Redis and builds every service.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	rdb, err := cache.New(ctx, cache.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	a := &App{
		Config:  cfg,
		DB:      db,
		Redis:   rdb,
		Metrics: metrics.New(),
	}

	var seqStore sequence.Store = sequenceStore.New(db)
	if cfg.Sequence.Backend == config.SequenceRedis {
		seqStore = redisstore.New(rdb)
	}

	a.Allocator = sequence.NewAllocator(seqStore)
	a.Invoices = invoice.NewService(invoiceStore.New(db), invoice.WithPaymentTermDays(cfg.Invoice.PaymentTermDays))
	a.Customers = customer.NewService(customerStore.New(db))
	a.Accounts = account.NewService(accountStore.New(db), a.Customers, a.Invoices)
	a.Matching = matching.NewService(matchingStore.New(db))

	client := llm.New(llm.Config{
		APIKey:             cfg.OpenAI.APIKey,
		BaseURL:            cfg.OpenAI.BaseURL,
		Model:              cfg.OpenAI.Model,
		TranscriptionModel: cfg.OpenAI.TranscriptionModel,
		Temperature:        cfg.OpenAI.Temperature,
		MaxTokens:          cfg.OpenAI.MaxTokens,
		Timeout:            cfg.OpenAI.Timeout,
	})

	deps := pipeline.Deps{
		Extractor:   extraction.NewExtractor(client),
		Allocator:   a.Allocator,
		Invoices:    a.Invoices,
		Customers:   a.Customers,
		Suggester:   a.Matching,
		Profiles:    a.Accounts,
		Renderer:    document.NewRenderer(),
		Sender:      a.sender(cfg),
		Idempotency: idempotency.New(rdb, cfg.Idempotency.TTL),
	}

	// An empty transcription model turns audio dictation off.
	if cfg.OpenAI.TranscriptionModel != "" {
		deps.Transcriber = client
	}

	a.Pipeline = pipeline.New(deps, pipeline.WithMetrics(a.Metrics))
	a.Payments = payments.NewService(a.Invoices, a.Pipeline)
	a.Export = export.NewService(a.Invoices, a.Pipeline)

	return a, nil
}

func (a *App) sender(cfg *config.Config) delivery.Sender {
	if cfg.Delivery.Mode == config.DeliveryQueue {
		a.queue = asynq.NewClient(RedisOpt(cfg))
		return delivery.NewQueue(a.queue, cfg.Delivery.MaxRetry)
	}

	return delivery.NewSMTPSender(SMTPConfig(cfg))
}

// RedisOpt is the connection used by the delivery queue and its worker.
func RedisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
}

func SMTPConfig(cfg *config.Config) delivery.SMTPConfig {
	return delivery.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}
}

// Health pings the database and Redis.
func (a *App) Health(ctx context.Context) error {
	if err := a.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}

	if err := a.Redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("pinging redis: %w", err)
	}

	return nil
}

func (a *App) Close() {
	var errs []error

	if a.queue != nil {
		errs = append(errs, a.queue.Close())
	}

	errs = append(errs, a.Redis.Close(), a.DB.Close())

	if err := errors.Join(errs...); err != nil {
		slog.Warn("closing connections", "error", err)
	}
}
