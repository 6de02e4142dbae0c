package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/voicebill/internal/account"
	"github.com/MrJamesThe3rd/voicebill/internal/customer"
	"github.com/MrJamesThe3rd/voicebill/internal/delivery"
	"github.com/MrJamesThe3rd/voicebill/internal/document"
	"github.com/MrJamesThe3rd/voicebill/internal/invoice"
	"github.com/MrJamesThe3rd/voicebill/internal/scalar"
)

// Rendered is an invoice PDF ready for download or delivery.
type Rendered struct {
	Filename string
	Data     []byte
}

// TransitionInvoice moves an invoice to target. Sending renders the PDF and
// hands the email to the delivery service before the new status is stored.
func (p *Pipeline) TransitionInvoice(ctx context.Context, accountID string, id uuid.UUID, target invoice.Status) (*invoice.Invoice, error) {
	req := invoice.TransitionRequest{AccountID: accountID, ID: id, To: target}

	if target == invoice.StatusSent {
		req.Prepare = p.deliver
	}

	inv, err := p.Invoices.Transition(ctx, req)
	if err != nil {
		return nil, err
	}

	p.metrics.Transitioned(string(target))

	slog.Info("invoice transitioned",
		"account_id", accountID,
		"invoice_id", inv.ID,
		"number", inv.Number,
		"status", inv.Status,
	)

	return inv, nil
}

// EditLineItems replaces the items of a draft invoice.
func (p *Pipeline) EditLineItems(ctx context.Context, accountID string, id uuid.UUID, items []invoice.LineItem) (*invoice.Invoice, error) {
	return p.Invoices.EditItems(ctx, accountID, id, items)
}

// Document renders the PDF of a stored invoice.
func (p *Pipeline) Document(ctx context.Context, accountID string, id uuid.UUID) (*Rendered, error) {
	inv, err := p.Invoices.Get(ctx, accountID, id)
	if err != nil {
		return nil, err
	}

	data, _, _, err := p.render(ctx, inv)
	if err != nil {
		return nil, err
	}

	return &Rendered{Filename: document.Filename(inv), Data: data}, nil
}

func (p *Pipeline) deliver(ctx context.Context, inv *invoice.Invoice) error {
	data, cust, profile, err := p.render(ctx, inv)
	if err != nil {
		return err
	}

	if cust == nil || strings.TrimSpace(cust.Email) == "" {
		return &scalar.ValidationError{Field: "email", Reason: "the customer has no email address"}
	}

	msg := delivery.Message{
		To:      cust.Email,
		Subject: document.EmailSubject(inv),
		Body:    document.EmailBody(inv, profile),
		Attachments: []delivery.Attachment{{
			Filename:    document.Filename(inv),
			ContentType: "application/pdf",
			Data:        data,
		}},
	}

	if err := p.Sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("delivering invoice: %w", err)
	}

	return nil
}

func (p *Pipeline) render(ctx context.Context, inv *invoice.Invoice) ([]byte, *customer.Customer, *account.Profile, error) {
	profile, err := p.profile(ctx, inv.AccountID)
	if err != nil {
		return nil, nil, nil, err
	}

	var cust *customer.Customer

	if inv.CustomerID != nil && p.Customers != nil {
		cust, err = p.Customers.Get(ctx, inv.AccountID, *inv.CustomerID)
		if err != nil && !errors.Is(err, customer.ErrNotFound) {
			return nil, nil, nil, fmt.Errorf("loading customer: %w", err)
		}
	}

	data, err := p.Renderer.Render(inv, profile, cust)
	if err != nil {
		return nil, nil, nil, err
	}

	return data, cust, profile, nil
}

// profile returns the issuer profile, or nil when the account has none yet.
func (p *Pipeline) profile(ctx context.Context, accountID string) (*account.Profile, error) {
	profile, err := p.Profiles.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("loading account profile: %w", err)
	}

	return profile, nil
}
