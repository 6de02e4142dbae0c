// Package payments reconciles bank statements with open invoices.
package payments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/voicebill/internal/invoice"
	"github.com/MrJamesThe3rd/voicebill/internal/payments/bankcsv"
	"github.com/MrJamesThe3rd/voicebill/internal/scalar"
)

//go:generate mockgen -source=payments.go -destination=payments_mock.go -package=payments
type Importer interface {
	Parse(r io.Reader) ([]bankcsv.Transaction, error)
}

type Invoices interface {
	List(ctx context.Context, accountID string, filter invoice.ListFilter) ([]*invoice.Invoice, error)
}

type Transitioner interface {
	TransitionInvoice(ctx context.Context, accountID string, id uuid.UUID, target invoice.Status) (*invoice.Invoice, error)
}

type Match struct {
	Transaction bankcsv.Transaction `json:"transaction"`
	InvoiceID   uuid.UUID           `json:"invoice_id"`
	Number      string              `json:"number"`
}

type Failure struct {
	Match
	Reason string `json:"reason"`
}

// Report summarizes one import. Debits are ignored and not listed.
type Report struct {
	Matched   []Match               `json:"matched"`
	Unmatched []bankcsv.Transaction `json:"unmatched"`
	Failed    []Failure             `json:"failed"`
}

type Service struct {
	parser      Importer
	invoices    Invoices
	transitions Transitioner
}

func NewService(invoices Invoices, transitions Transitioner) *Service {
	return &Service{
		parser:      bankcsv.NewParser(),
		invoices:    invoices,
		transitions: transitions,
	}
}

// WithImporter replaces the bank statement parser.
func (s *Service) WithImporter(parser Importer) *Service {
	s.parser = parser
	return s
}

// Reconcile marks every open invoice as paid whose number appears in the
// reference of a credit and whose rounded total equals the credited amount.
// Each invoice is matched at most once per import.
func (s *Service) Reconcile(ctx context.Context, accountID string, r io.Reader) (*Report, error) {
	txs, err := s.parser.Parse(r)
	if err != nil {
		if errors.Is(err, bankcsv.ErrUnknownFormat) {
			return nil, &scalar.ValidationError{Field: "file", Reason: "not a supported bank export"}
		}

		return nil, fmt.Errorf("parse bank export: %w", err)
	}

	open, err := s.openInvoices(ctx, accountID)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	settled := make(map[uuid.UUID]bool)

	for _, tx := range txs {
		if !tx.Credit {
			continue
		}

		inv := findInvoice(open, settled, tx)
		if inv == nil {
			report.Unmatched = append(report.Unmatched, tx)
			continue
		}

		settled[inv.ID] = true
		match := Match{Transaction: tx, InvoiceID: inv.ID, Number: inv.Number}

		if _, err := s.transitions.TransitionInvoice(ctx, accountID, inv.ID, invoice.StatusPaid); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("reconcile payments: %w", ctxErr)
			}

			slog.Warn("marking invoice paid failed",
				"account_id", accountID,
				"invoice_id", inv.ID,
				"error", err,
			)

			report.Failed = append(report.Failed, Failure{Match: match, Reason: failureReason(err)})

			continue
		}

		report.Matched = append(report.Matched, match)
	}

	slog.Info("payments reconciled",
		"account_id", accountID,
		"matched", len(report.Matched),
		"unmatched", len(report.Unmatched),
		"failed", len(report.Failed),
	)

	return report, nil
}

// failureReason is shown to the user in place of the underlying error.
func failureReason(err error) string {
	var transitionErr *invoice.InvalidTransitionError
	if errors.As(err, &transitionErr) || errors.Is(err, invoice.ErrConflict) {
		return "invoice is no longer open"
	}

	return "invoice could not be marked as paid"
}

func (s *Service) openInvoices(ctx context.Context, accountID string) ([]*invoice.Invoice, error) {
	var open []*invoice.Invoice

	for _, status := range []invoice.Status{invoice.StatusSent, invoice.StatusOverdue} {
		invs, err := s.invoices.List(ctx, accountID, invoice.ListFilter{Status: &status})
		if err != nil {
			return nil, fmt.Errorf("list %s invoices: %w", status, err)
		}

		open = append(open, invs...)
	}

	return open, nil
}

func findInvoice(open []*invoice.Invoice, settled map[uuid.UUID]bool, tx bankcsv.Transaction) *invoice.Invoice {
	for _, inv := range open {
		if settled[inv.ID] || inv.Number == "" {
			continue
		}

		if !inv.Totals.Rounded().Total.Equal(tx.Amount) {
			continue
		}

		if containsNumber(tx.Reference, inv.Number) {
			return inv
		}
	}

	return nil
}

// containsNumber reports whether number occurs in reference as a whole token,
// so "0004" does not match "00041" or "RE-0004" inside "XRE-0004".
func containsNumber(reference, number string) bool {
	ref := []rune(strings.ToUpper(reference))
	num := []rune(strings.ToUpper(number))

	for i := 0; i+len(num) <= len(ref); i++ {
		if string(ref[i:i+len(num)]) != string(num) {
			continue
		}

		before := i == 0 || !isAlnum(ref[i-1])
		after := i+len(num) == len(ref) || !isAlnum(ref[i+len(num)])

		if before && after {
			return true
		}
	}

	return false
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
