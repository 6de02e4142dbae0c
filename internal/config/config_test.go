package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/voicebill/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, config.SequencePostgres, cfg.Sequence.Backend)
	assert.Equal(t, config.DeliveryQueue, cfg.Delivery.Mode)
	assert.Equal(t, 14, cfg.Invoice.PaymentTermDays)
	assert.Equal(t, "postgres://postgres:@localhost:5432/voicebill?sslmode=disable", cfg.ConnectionString())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SEQUENCE_BACKEND", "redis")
	t.Setenv("DELIVERY_MODE", "direct")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("INVOICE_PAYMENT_TERM_DAYS", "30")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.SequenceRedis, cfg.Sequence.Backend)
	assert.Equal(t, config.DeliveryDirect, cfg.Delivery.Mode)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 30, cfg.Invoice.PaymentTermDays)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "SequenceBackend", key: "SEQUENCE_BACKEND", val: "memory"},
		{name: "DeliveryMode", key: "DELIVERY_MODE", val: "carrier-pigeon"},
		{name: "RateLimit", key: "RATE_LIMIT_EXTRACTION_PER_MINUTE", val: "0"},
		{name: "NotANumber", key: "PORT", val: "eighty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			_, err := config.Load()
			assert.ErrorContains(t, err, tt.key)
		})
	}
}
