// Package pipeline turns dictations into numbered draft invoices and drives
// the invoice through the steps that need more than one collaborator.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/voicebill/internal/account"
	"github.com/MrJamesThe3rd/voicebill/internal/customer"
	"github.com/MrJamesThe3rd/voicebill/internal/delivery"
	"github.com/MrJamesThe3rd/voicebill/internal/extraction"
	"github.com/MrJamesThe3rd/voicebill/internal/invoice"
	"github.com/MrJamesThe3rd/voicebill/internal/metrics"
	"github.com/MrJamesThe3rd/voicebill/internal/sequence"
)

//go:generate mockgen -source=pipeline.go -destination=pipeline_mock.go -package=pipeline
type Extractor interface {
	Extract(ctx context.Context, text string, now time.Time) (*extraction.Fields, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename, language string) (string, error)
}

type Allocator interface {
	Next(ctx context.Context, accountID string) (sequence.Number, error)
}

type Invoices interface {
	Create(ctx context.Context, params invoice.CreateParams) (*invoice.Invoice, error)
	Get(ctx context.Context, accountID string, id uuid.UUID) (*invoice.Invoice, error)
	Transition(ctx context.Context, req invoice.TransitionRequest) (*invoice.Invoice, error)
	EditItems(ctx context.Context, accountID string, id uuid.UUID, items []invoice.LineItem) (*invoice.Invoice, error)
}

type Customers interface {
	Get(ctx context.Context, accountID string, id uuid.UUID) (*customer.Customer, error)
	Resolve(ctx context.Context, accountID, name string) (*customer.Customer, error)
}

type Suggester interface {
	Suggest(ctx context.Context, accountID, spokenService string) (string, error)
}

type Profiles interface {
	Get(ctx context.Context, accountID string) (*account.Profile, error)
}

type Renderer interface {
	Render(inv *invoice.Invoice, profile *account.Profile, cust *customer.Customer) ([]byte, error)
}

type Idempotency interface {
	Reserve(ctx context.Context, scope, key string) (string, error)
	Complete(ctx context.Context, scope, key, result string) error
	Release(ctx context.Context, scope, key string) error
}

// Deps are the collaborators of a Pipeline. Transcriber, Suggester and
// Idempotency are optional.
type Deps struct {
	Extractor   Extractor
	Transcriber Transcriber
	Allocator   Allocator
	Invoices    Invoices
	Customers   Customers
	Suggester   Suggester
	Profiles    Profiles
	Renderer    Renderer
	Sender      delivery.Sender
	Idempotency Idempotency
}

type Pipeline struct {
	Deps

	now     func() time.Time
	metrics *metrics.Metrics
}

type Option func(*Pipeline)

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

func New(deps Deps, opts ...Option) *Pipeline {
	p := &Pipeline{Deps: deps, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}

	return p
}
