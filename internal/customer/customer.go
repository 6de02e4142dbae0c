package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/voicebill/internal/scalar"
)

var ErrNotFound = errors.New("customer not found")

// Customer is a billed party of one account.
type Customer struct {
	ID        uuid.UUID
	AccountID string
	Name      string
	Email     string
	Address   string
	TaxID     string
	CreatedAt time.Time
}

//go:generate mockgen -source=customer.go -destination=repository_mock.go -package=customer
type Repository interface {
	CreateCustomer(ctx context.Context, c *Customer) error
	GetCustomer(ctx context.Context, accountID string, id uuid.UUID) (*Customer, error)
	ListCustomers(ctx context.Context, accountID string) ([]*Customer, error)
	FindByName(ctx context.Context, accountID, name string) (*Customer, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	AccountID string
	Name      string
	Email     string
	Address   string
	TaxID     string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Customer, error) {
	name, err := scalar.Text("name", params.Name)
	if err != nil {
		return nil, err
	}

	c := &Customer{
		AccountID: params.AccountID,
		Name:      name,
		Email:     strings.TrimSpace(params.Email),
		Address:   strings.TrimSpace(params.Address),
		TaxID:     strings.TrimSpace(params.TaxID),
	}

	if err := s.repo.CreateCustomer(ctx, c); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, accountID string, id uuid.UUID) (*Customer, error) {
	return s.repo.GetCustomer(ctx, accountID, id)
}

func (s *Service) List(ctx context.Context, accountID string) ([]*Customer, error) {
	return s.repo.ListCustomers(ctx, accountID)
}

// Resolve looks up a customer by case-insensitive name. A nil customer and nil
// error mean the name is not known yet.
func (s *Service) Resolve(ctx context.Context, accountID, name string) (*Customer, error) {
	c, err := s.repo.FindByName(ctx, accountID, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return c, nil
}
