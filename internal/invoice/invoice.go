package invoice

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("invoice not found")
	// ErrConflict is returned when the stored invoice changed between read and write.
	ErrConflict = errors.New("invoice was modified concurrently")
)

// Status represents the lifecycle state of an invoice.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

// DefaultPaymentTermDays is added to the issue date when no due date is given.
const DefaultPaymentTermDays = 14

// LineItem is a single billed position.
type LineItem struct {
	Service     string          `json:"service"`
	Description string          `json:"description,omitempty"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
}

// Invoice is a numbered bill owned by one account.
type Invoice struct {
	ID          uuid.UUID
	AccountID   string
	CustomerID  *uuid.UUID
	ClientName  string
	Sequence    int64
	Number      string
	Items       []LineItem
	Totals      Totals
	Currency    string
	Language    string
	Status      Status
	IssueDate   time.Time
	DueDate     time.Time
	Notes       string
	SentAt      *time.Time
	PaidAt      *time.Time
	CancelledAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsOverdue reports whether a sent invoice is past its due date at now.
func (inv *Invoice) IsOverdue(now time.Time) bool {
	if inv.Status == StatusOverdue {
		return true
	}

	if inv.Status != StatusSent {
		return false
	}

	due := time.Date(inv.DueDate.Year(), inv.DueDate.Month(), inv.DueDate.Day(), 0, 0, 0, 0, now.Location())

	return now.After(due.AddDate(0, 0, 1))
}

// EffectiveStatus is the status as presented to readers: sent invoices past
// their due date are reported as overdue without being stored that way.
func (inv *Invoice) EffectiveStatus(now time.Time) Status {
	if inv.IsOverdue(now) {
		return StatusOverdue
	}

	return inv.Status
}
