package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/MrJamesThe3rd/voicebill/internal/auth"
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

type Handlers struct {
	Invoices  *invoice.Handler
	Customers *customer.Handler
	Account   *account.Handler
	Sequence  *sequence.Handler
	Matching  *matching.Handler
	Payments  *payments.Handler
	Export    *export.Handler
}

type Options struct {
	AllowedOrigins []string
	// Authenticate rejects requests without a valid bearer token and stores
	// the account in the request context.
	Authenticate func(http.Handler) http.Handler
	Metrics      *metrics.Metrics
	// Health reports whether the service's dependencies are reachable.
	Health func(ctx context.Context) error
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(secureHeaders().Handler)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(opts.Metrics.Middleware)

	router.Get("/healthz", health(opts.Health))
	router.Handle("/metrics", opts.Metrics.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		if opts.Authenticate != nil {
			r.Use(opts.Authenticate)
		}

		r.Route("/invoices", h.Invoices.Routes)

		r.Route("/customers", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Customers.Routes(r)
		})

		r.Route("/account", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Account.Routes(r)
		})

		r.Route("/sequence", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Sequence.Routes(r)
		})

		r.Route("/matching", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Matching.Routes(r)
		})

		r.Route("/payments", h.Payments.Routes)

		r.Route("/export", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Export.Routes(r)
		})
	})

	return router
}

// ExtractionLimiter caps language model calls per account and minute.
func ExtractionLimiter(perMinute int) func(http.Handler) http.Handler {
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(httperr.RateLimited),
	)
}

func rateLimitKey(r *http.Request) (string, error) {
	if id, ok := auth.AccountID(r.Context()); ok {
		return "account:" + id, nil
	}

	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}

	return "ip:" + key, nil
}

func secureHeaders() *secure.Secure {
	return secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
	})
}

func health(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			if err := check(ctx); err != nil {
				httperr.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}

		httperr.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
