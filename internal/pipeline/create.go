package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/voicebill/internal/extraction"
	"github.com/MrJamesThe3rd/voicebill/internal/invoice"
)

// ErrTranscriptionDisabled is returned for audio input when no transcriber is configured.
var ErrTranscriptionDisabled = errors.New("audio transcription is not configured")

type CreateRequest struct {
	AccountID  string
	CustomerID *uuid.UUID
	Text       string
	// IdempotencyKey makes retries of the same request return the first invoice.
	IdempotencyKey string
}

type AudioRequest struct {
	AccountID      string
	CustomerID     *uuid.UUID
	Audio          []byte
	Filename       string
	IdempotencyKey string
}

// CreateFromText extracts invoice fields from text, computes the totals,
// allocates the next number and persists the result as a draft.
// Nothing is allocated unless extraction and computation succeeded.
func (p *Pipeline) CreateFromText(ctx context.Context, req CreateRequest) (*invoice.Invoice, error) {
	return p.idempotent(ctx, req.AccountID, req.IdempotencyKey, func() (*invoice.Invoice, error) {
		return p.create(ctx, req)
	})
}

// CreateFromAudio transcribes the recording and continues like CreateFromText.
// A replayed idempotency key returns the stored invoice without transcribing again.
func (p *Pipeline) CreateFromAudio(ctx context.Context, req AudioRequest) (*invoice.Invoice, error) {
	if p.Transcriber == nil {
		return nil, ErrTranscriptionDisabled
	}

	return p.idempotent(ctx, req.AccountID, req.IdempotencyKey, func() (*invoice.Invoice, error) {
		text, err := p.Transcriber.Transcribe(ctx, req.Audio, req.Filename, "de")
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("transcribing audio: %w", ctxErr)
			}

			p.metrics.ExtractionFailed(string(extraction.ReasonUpstream))

			return nil, &extraction.Error{Reason: extraction.ReasonUpstream, Err: err}
		}

		return p.create(ctx, CreateRequest{
			AccountID:  req.AccountID,
			CustomerID: req.CustomerID,
			Text:       text,
		})
	})
}

// idempotent runs fn once per key. A key that already produced an invoice
// replays it; a failed run releases the key so the client may retry.
func (p *Pipeline) idempotent(
	ctx context.Context,
	accountID, key string,
	fn func() (*invoice.Invoice, error),
) (inv *invoice.Invoice, err error) {
	if key == "" || p.Idempotency == nil {
		return fn()
	}

	existing, err := p.Idempotency.Reserve(ctx, accountID, key)
	if err != nil {
		return nil, err
	}

	if existing != "" {
		return p.replay(ctx, accountID, existing)
	}

	defer func() {
		p.settleIdempotency(accountID, key, inv, err)
	}()

	return fn()
}

// Preview runs extraction only. Nothing is allocated or stored.
func (p *Pipeline) Preview(ctx context.Context, text string) (*extraction.Fields, error) {
	return p.extract(ctx, text, p.now())
}

func (p *Pipeline) create(ctx context.Context, req CreateRequest) (*invoice.Invoice, error) {
	now := p.now()

	fields, err := p.extract(ctx, req.Text, now)
	if err != nil {
		return nil, err
	}

	items := []invoice.LineItem{{
		Service:   p.serviceLabel(ctx, req.AccountID, fields.Service),
		Quantity:  fields.Quantity,
		UnitPrice: fields.UnitPrice,
		TaxRate:   fields.TaxRate,
	}}

	if _, err := invoice.Compute(items); err != nil {
		return nil, err
	}

	customerID, err := p.resolveCustomer(ctx, req.AccountID, req.CustomerID, fields.ClientName)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("creating invoice: %w", err)
	}

	number, err := p.Allocator.Next(ctx, req.AccountID)
	if err != nil {
		p.metrics.AllocationFailed()
		return nil, err
	}

	inv, err := p.Invoices.Create(ctx, invoice.CreateParams{
		AccountID:  req.AccountID,
		CustomerID: customerID,
		ClientName: fields.ClientName,
		Sequence:   number.Value,
		Number:     number.Display(),
		Items:      items,
		Currency:   fields.Currency,
		Language:   fields.Language,
		IssueDate:  fields.InvoiceDate,
	})
	if err != nil {
		slog.Warn("invoice number left unused",
			"account_id", req.AccountID,
			"number", number.Display(),
			"error", err,
		)

		return nil, err
	}

	p.metrics.InvoiceCreated()

	slog.Info("invoice created",
		"account_id", req.AccountID,
		"invoice_id", inv.ID,
		"number", inv.Number,
	)

	return inv, nil
}

func (p *Pipeline) extract(ctx context.Context, text string, now time.Time) (*extraction.Fields, error) {
	start := time.Now()
	fields, err := p.Extractor.Extract(ctx, text, now)
	p.metrics.ObserveExtraction(time.Since(start))

	if err != nil {
		var extErr *extraction.Error
		if errors.As(err, &extErr) {
			p.metrics.ExtractionFailed(string(extErr.Reason))
		}

		return nil, err
	}

	return fields, nil
}

// serviceLabel applies the account's learned label for the spoken service.
// Lookup failures fall back to the spoken service.
func (p *Pipeline) serviceLabel(ctx context.Context, accountID, spoken string) string {
	if p.Suggester == nil {
		return spoken
	}

	label, err := p.Suggester.Suggest(ctx, accountID, spoken)
	if err != nil {
		slog.Warn("service label lookup failed", "account_id", accountID, "error", err)
		return spoken
	}

	if label == "" {
		return spoken
	}

	return label
}

func (p *Pipeline) resolveCustomer(ctx context.Context, accountID string, id *uuid.UUID, name string) (*uuid.UUID, error) {
	if p.Customers == nil {
		return id, nil
	}

	if id != nil {
		if _, err := p.Customers.Get(ctx, accountID, *id); err != nil {
			return nil, err
		}

		return id, nil
	}

	c, err := p.Customers.Resolve(ctx, accountID, name)
	if err != nil {
		slog.Warn("customer lookup failed", "account_id", accountID, "error", err)
		return nil, nil
	}

	if c == nil {
		return nil, nil
	}

	return &c.ID, nil
}

func (p *Pipeline) replay(ctx context.Context, accountID, stored string) (*invoice.Invoice, error) {
	id, err := uuid.Parse(stored)
	if err != nil {
		return nil, fmt.Errorf("parsing stored invoice id: %w", err)
	}

	return p.Invoices.Get(ctx, accountID, id)
}

// settleIdempotency records the created invoice or frees the key after a failure.
// It uses a fresh context so a cancelled request still releases its key.
func (p *Pipeline) settleIdempotency(accountID, key string, inv *invoice.Invoice, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err != nil || inv == nil {
		if relErr := p.Idempotency.Release(ctx, accountID, key); relErr != nil {
			slog.Warn("releasing idempotency key failed", "account_id", accountID, "error", relErr)
		}

		return
	}

	if compErr := p.Idempotency.Complete(ctx, accountID, key, inv.ID.String()); compErr != nil {
		slog.Warn("recording idempotency key failed", "account_id", accountID, "error", compErr)
	}
}
