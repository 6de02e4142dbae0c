package invoice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/voicebill/internal/scalar"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=invoice
type Repository interface {
	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoice(ctx context.Context, accountID string, id uuid.UUID) (*Invoice, error)
	ListInvoices(ctx context.Context, accountID string, filter ListFilter) ([]*Invoice, error)
	// UpdateItems persists items and totals of a draft. ErrConflict if it is no longer a draft.
	UpdateItems(ctx context.Context, inv *Invoice) error
	// UpdateStatus persists the status fields only if the stored status still equals from.
	UpdateStatus(ctx context.Context, inv *Invoice, from Status) error
	DeleteInvoice(ctx context.Context, accountID string, id uuid.UUID) error
	Summarize(ctx context.Context, accountID string, filter SummaryFilter) ([]PeriodSummary, error)
}

type Service struct {
	repo        Repository
	now         func() time.Time
	paymentTerm int
}

type Option func(*Service)

// WithClock replaces time.Now as the source of transition timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithPaymentTermDays sets the number of calendar days between issue and due date of new invoices.
func WithPaymentTermDays(days int) Option {
	return func(s *Service) { s.paymentTerm = days }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now, paymentTerm: DefaultPaymentTermDays}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

type CreateParams struct {
	AccountID  string
	CustomerID *uuid.UUID
	ClientName string
	Sequence   int64
	Number     string
	Items      []LineItem
	Currency   string
	Language   string
	IssueDate  time.Time
	DueDate    *time.Time
	Notes      string
}

type ListFilter struct {
	Status     *Status
	CustomerID *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
	// OverdueAt selects invoices that are overdue at the given instant.
	OverdueAt *time.Time
}

type Granularity string

const (
	GranularityMonth Granularity = "month"
	GranularityYear  Granularity = "year"
)

type SummaryFilter struct {
	Granularity Granularity
	StartDate   *time.Time
	EndDate     *time.Time
}

// PeriodSummary aggregates the non-cancelled invoices issued in one period.
type PeriodSummary struct {
	Period time.Time
	Count  int
	Total  decimal.Decimal
	Paid   decimal.Decimal
	Unpaid decimal.Decimal
}

// TransitionRequest describes a status change. Prepare runs after the move was
// validated and before it is persisted; an error from it aborts the transition.
type TransitionRequest struct {
	AccountID string
	ID        uuid.UUID
	To        Status
	Prepare   func(ctx context.Context, inv *Invoice) error
}

// Create builds a draft from params, deriving its totals from the items.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Invoice, error) {
	totals, err := Compute(params.Items)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(params.ClientName) == "" {
		return nil, &scalar.ValidationError{Field: "client", Reason: "must not be empty"}
	}

	due := params.IssueDate.AddDate(0, 0, s.paymentTerm)
	if params.DueDate != nil {
		due = *params.DueDate
	}

	if due.Before(params.IssueDate) {
		return nil, &scalar.ValidationError{Field: "due_date", Reason: "must not be before the issue date"}
	}

	currency := params.Currency
	if currency == "" {
		currency = scalar.CurrencyEUR
	}

	inv := &Invoice{
		AccountID:  params.AccountID,
		CustomerID: params.CustomerID,
		ClientName: strings.TrimSpace(params.ClientName),
		Sequence:   params.Sequence,
		Number:     params.Number,
		Items:      params.Items,
		Totals:     totals,
		Currency:   currency,
		Language:   params.Language,
		Status:     StatusDraft,
		IssueDate:  params.IssueDate,
		DueDate:    due,
		Notes:      params.Notes,
	}

	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}

	return inv, nil
}

func (s *Service) Get(ctx context.Context, accountID string, id uuid.UUID) (*Invoice, error) {
	return s.repo.GetInvoice(ctx, accountID, id)
}

func (s *Service) List(ctx context.Context, accountID string, filter ListFilter) ([]*Invoice, error) {
	return s.repo.ListInvoices(ctx, accountID, filter)
}

// Transition moves an invoice along the lifecycle. The stored invoice is only
// changed if it still has the status it was read with.
func (s *Service) Transition(ctx context.Context, req TransitionRequest) (*Invoice, error) {
	inv, err := s.repo.GetInvoice(ctx, req.AccountID, req.ID)
	if err != nil {
		return nil, err
	}

	from := inv.Status

	if err := inv.Transition(req.To, s.now()); err != nil {
		return nil, err
	}

	if req.Prepare != nil {
		if err := req.Prepare(ctx, inv); err != nil {
			return nil, fmt.Errorf("prepare %s transition: %w", req.To, err)
		}
	}

	if err := s.repo.UpdateStatus(ctx, inv, from); err != nil {
		return nil, fmt.Errorf("update invoice status: %w", err)
	}

	return inv, nil
}

// EditItems replaces the line items of a draft and recomputes its totals.
func (s *Service) EditItems(ctx context.Context, accountID string, id uuid.UUID, items []LineItem) (*Invoice, error) {
	inv, err := s.repo.GetInvoice(ctx, accountID, id)
	if err != nil {
		return nil, err
	}

	if err := inv.ReplaceItems(items, s.now()); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateItems(ctx, inv); err != nil {
		return nil, fmt.Errorf("update invoice items: %w", err)
	}

	return inv, nil
}

// Delete removes a draft. Its number is not handed out again.
func (s *Service) Delete(ctx context.Context, accountID string, id uuid.UUID) error {
	inv, err := s.repo.GetInvoice(ctx, accountID, id)
	if err != nil {
		return err
	}

	if inv.Status != StatusDraft {
		return &InvalidTransitionError{From: inv.Status, To: inv.Status, Reason: "only drafts can be deleted"}
	}

	return s.repo.DeleteInvoice(ctx, accountID, id)
}

func (s *Service) Summary(ctx context.Context, accountID string, filter SummaryFilter) ([]PeriodSummary, error) {
	switch filter.Granularity {
	case "":
		filter.Granularity = GranularityMonth
	case GranularityMonth, GranularityYear:
	default:
		return nil, &scalar.ValidationError{Field: "granularity", Reason: "must be month or year"}
	}

	return s.repo.Summarize(ctx, accountID, filter)
}
