// Package matching learns how an account prefers spoken service names to
// appear on its invoices, e.g. "massage" becomes "Klassische Massage (60 min)".
package matching

import (
	"context"
	"strings"

	"github.com/MrJamesThe3rd/voicebill/internal/scalar"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	FindLabel(ctx context.Context, accountID, spokenService string) (string, error)
	CreateMapping(ctx context.Context, accountID, pattern, label string) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns the preferred label for spokenService, or "" when the account
// has not taught one.
func (s *Service) Suggest(ctx context.Context, accountID, spokenService string) (string, error) {
	spokenService = strings.TrimSpace(spokenService)
	if spokenService == "" {
		return "", nil
	}

	return s.repo.FindLabel(ctx, accountID, spokenService)
}

// Learn stores a mapping from a spoken pattern to the label printed on invoices.
func (s *Service) Learn(ctx context.Context, accountID, pattern, label string) error {
	pattern, err := scalar.Text("pattern", pattern)
	if err != nil {
		return err
	}

	label, err = scalar.Text("label", label)
	if err != nil {
		return err
	}

	return s.repo.CreateMapping(ctx, accountID, pattern, label)
}
