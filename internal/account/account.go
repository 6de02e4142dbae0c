// Package account holds the issuer profile printed on every invoice and the
// privacy operations over an account's data.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/voicebill/internal/customer"
	"github.com/MrJamesThe3rd/voicebill/internal/invoice"
	"github.com/MrJamesThe3rd/voicebill/internal/scalar"
)

var ErrNotFound = errors.New("account profile not found")

const DefaultCountry = "Deutschland"

// Profile describes the invoice issuer.
type Profile struct {
	AccountID     string
	CompanyName   string
	Street        string
	Zip           string
	City          string
	Country       string
	TaxID         string
	Email         string
	AccountHolder string
	IBAN          string
	BIC           string
	UpdatedAt     time.Time
}

// DataExport is everything stored for one account.
type DataExport struct {
	Profile    *Profile
	Customers  []*customer.Customer
	Invoices   []*invoice.Invoice
	ExportedAt time.Time
}

//go:generate mockgen -source=account.go -destination=repository_mock.go -package=account
type Repository interface {
	GetProfile(ctx context.Context, accountID string) (*Profile, error)
	UpsertProfile(ctx context.Context, p *Profile) error
	// EraseAccount removes every record of the account except its invoice sequence.
	EraseAccount(ctx context.Context, accountID string) error
}

type CustomerLister interface {
	List(ctx context.Context, accountID string) ([]*customer.Customer, error)
}

type InvoiceLister interface {
	List(ctx context.Context, accountID string, filter invoice.ListFilter) ([]*invoice.Invoice, error)
}

type Service struct {
	repo      Repository
	customers CustomerLister
	invoices  InvoiceLister
}

func NewService(repo Repository, customers CustomerLister, invoices InvoiceLister) *Service {
	return &Service{repo: repo, customers: customers, invoices: invoices}
}

func (s *Service) Get(ctx context.Context, accountID string) (*Profile, error) {
	return s.repo.GetProfile(ctx, accountID)
}

// Save validates and stores the profile.
func (s *Service) Save(ctx context.Context, p *Profile) error {
	if _, err := scalar.Text("company_name", p.CompanyName); err != nil {
		return err
	}

	if p.Country == "" {
		p.Country = DefaultCountry
	}

	p.IBAN = strings.ToUpper(strings.ReplaceAll(p.IBAN, " ", ""))
	p.BIC = strings.ToUpper(strings.TrimSpace(p.BIC))

	if err := s.repo.UpsertProfile(ctx, p); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	return nil
}

// Export collects all data held for the account.
func (s *Service) Export(ctx context.Context, accountID string, now time.Time) (*DataExport, error) {
	profile, err := s.repo.GetProfile(ctx, accountID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	customers, err := s.customers.List(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}

	invoices, err := s.invoices.List(ctx, accountID, invoice.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}

	return &DataExport{
		Profile:    profile,
		Customers:  customers,
		Invoices:   invoices,
		ExportedAt: now,
	}, nil
}

// Erase deletes the account's data. Invoice numbers already issued stay reserved.
func (s *Service) Erase(ctx context.Context, accountID string) error {
	if err := s.repo.EraseAccount(ctx, accountID); err != nil {
		return fmt.Errorf("erase account: %w", err)
	}

	return nil
}
