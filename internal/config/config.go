package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	SequencePostgres = "postgres"
	SequenceRedis    = "redis"

	DeliveryQueue  = "queue"
	DeliveryDirect = "direct"
)

type Config struct {
	App struct {
		Name      string `envconfig:"APP_NAME" default:"voicebill"`
		Port      int    `envconfig:"PORT" default:"8080"`
		LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
		LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"voicebill"`
		SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	}

	Server struct {
		Timeout         time.Duration `envconfig:"SERVER_TIMEOUT" default:"60s"`
		ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
		MaxUploadBytes  int64         `envconfig:"SERVER_MAX_UPLOAD_BYTES" default:"26214400"`
	}

	Auth struct {
		Secret   string        `envconfig:"AUTH_SECRET"`
		Issuer   string        `envconfig:"AUTH_ISSUER" default:"voicebill"`
		TokenTTL time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"720h"`
	}

	OpenAI struct {
		APIKey             string        `envconfig:"OPENAI_API_KEY"`
		BaseURL            string        `envconfig:"OPENAI_BASE_URL"`
		Model              string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
		TranscriptionModel string        `envconfig:"OPENAI_TRANSCRIPTION_MODEL" default:"whisper-1"`
		Temperature        float32       `envconfig:"OPENAI_TEMPERATURE" default:"0"`
		MaxTokens          int           `envconfig:"OPENAI_MAX_TOKENS" default:"512"`
		Timeout            time.Duration `envconfig:"OPENAI_TIMEOUT" default:"30s"`
	}

	Redis struct {
		Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
		Password string `envconfig:"REDIS_PASSWORD"`
		DB       int    `envconfig:"REDIS_DB" default:"0"`
	}

	Sequence struct {
		Backend string `envconfig:"SEQUENCE_BACKEND" default:"postgres"`
	}

	Delivery struct {
		Mode        string `envconfig:"DELIVERY_MODE" default:"queue"`
		MaxRetry    int    `envconfig:"DELIVERY_MAX_RETRY" default:"5"`
		Concurrency int    `envconfig:"DELIVERY_CONCURRENCY" default:"4"`
	}

	SMTP struct {
		Host     string `envconfig:"SMTP_HOST" default:"localhost"`
		Port     int    `envconfig:"SMTP_PORT" default:"587"`
		Username string `envconfig:"SMTP_USERNAME"`
		Password string `envconfig:"SMTP_PASSWORD"`
		From     string `envconfig:"SMTP_FROM"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	}

	RateLimit struct {
		ExtractionPerMinute int `envconfig:"RATE_LIMIT_EXTRACTION_PER_MINUTE" default:"20"`
	}

	Idempotency struct {
		TTL time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`
	}

	Invoice struct {
		PaymentTermDays int `envconfig:"INVOICE_PAYMENT_TERM_DAYS" default:"14"`
	}

	TUI struct {
		AccountID string `envconfig:"TUI_ACCOUNT_ID"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, c.DB.SSLMode)
}

// Validate checks settings whose valid values envconfig cannot express.
func (c *Config) Validate() error {
	var errs []error

	switch c.Sequence.Backend {
	case SequencePostgres, SequenceRedis:
	default:
		errs = append(errs, fmt.Errorf("SEQUENCE_BACKEND must be %q or %q, got %q",
			SequencePostgres, SequenceRedis, c.Sequence.Backend))
	}

	switch c.Delivery.Mode {
	case DeliveryQueue, DeliveryDirect:
	default:
		errs = append(errs, fmt.Errorf("DELIVERY_MODE must be %q or %q, got %q",
			DeliveryQueue, DeliveryDirect, c.Delivery.Mode))
	}

	if c.Invoice.PaymentTermDays < 0 {
		errs = append(errs, errors.New("INVOICE_PAYMENT_TERM_DAYS must not be negative"))
	}

	if c.RateLimit.ExtractionPerMinute <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_EXTRACTION_PER_MINUTE must be positive"))
	}

	return errors.Join(errs...)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
