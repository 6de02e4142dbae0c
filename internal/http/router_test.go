package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/voicebill/internal/auth"
	voicebillhttp "github.com/MrJamesThe3rd/voicebill/internal/http"
	"github.com/MrJamesThe3rd/voicebill/internal/http/account"
	"github.com/MrJamesThe3rd/voicebill/internal/http/customer"
	"github.com/MrJamesThe3rd/voicebill/internal/http/export"
	"github.com/MrJamesThe3rd/voicebill/internal/http/httperr"
	"github.com/MrJamesThe3rd/voicebill/internal/http/invoice"
	"github.com/MrJamesThe3rd/voicebill/internal/http/matching"
	"github.com/MrJamesThe3rd/voicebill/internal/http/payments"
	"github.com/MrJamesThe3rd/voicebill/internal/http/sequence"
	"github.com/MrJamesThe3rd/voicebill/internal/metrics"
)

func newRouter(t *testing.T, health func(context.Context) error) http.Handler {
	t.Helper()

	issuer, err := auth.NewIssuer("test-secret-test-secret-test-secret", "voicebill", time.Hour)
	require.NoError(t, err)

	return voicebillhttp.New(voicebillhttp.Handlers{
		Invoices:  invoice.NewHandler(nil, nil),
		Customers: customer.NewHandler(nil),
		Account:   account.NewHandler(nil),
		Sequence:  sequence.NewHandler(nil),
		Matching:  matching.NewHandler(nil),
		Payments:  payments.NewHandler(nil, 1<<20),
		Export:    export.NewHandler(nil),
	}, voicebillhttp.Options{
		AllowedOrigins: []string{"http://localhost:3000"},
		Authenticate:   issuer.Middleware(httperr.Write),
		Metrics:        metrics.New(),
		Health:         health,
	})
}

func TestRouter_Healthz(t *testing.T) {
	type testCase struct {
		name       string
		health     func(context.Context) error
		wantStatus int
	}

	tests := []testCase{
		{name: "NoCheck", wantStatus: http.StatusOK},
		{name: "Healthy", health: func(context.Context) error { return nil }, wantStatus: http.StatusOK},
		{name: "DatabaseDown", health: func(context.Context) error { return errors.New("ping failed") }, wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newRouter(t, tt.health).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
			assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
		})
	}
}

func TestRouter_RequiresToken(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/invoices/", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var p httperr.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, httperr.CodeUnauthorized, p.Code)
}

func TestRouter_Metrics(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExtractionLimiter(t *testing.T) {
	limited := voicebillhttp.ExtractionLimiter(1)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	call := func(account string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/from-text", nil)
		req = req.WithContext(auth.WithAccountID(req.Context(), account))

		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)

		return rec.Code
	}

	assert.Equal(t, http.StatusCreated, call("acct-1"))
	assert.Equal(t, http.StatusTooManyRequests, call("acct-1"))
	assert.Equal(t, http.StatusCreated, call("acct-2"))
}
