package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// FindLabel picks the longest learned pattern contained in the spoken service.
func (s *Store) FindLabel(ctx context.Context, accountID, spokenService string) (string, error) {
	query := `
		SELECT label
		FROM service_mappings
		WHERE account_id = $1 AND $2 ILIKE '%' || pattern || '%'
		ORDER BY LENGTH(pattern) DESC, created_at DESC
		LIMIT 1
	`

	var label string

	err := s.db.QueryRowContext(ctx, query, accountID, spokenService).Scan(&label)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}

		return "", fmt.Errorf("finding service label: %w", err)
	}

	return label, nil
}

func (s *Store) CreateMapping(ctx context.Context, accountID, pattern, label string) error {
	query := `
		INSERT INTO service_mappings (account_id, pattern, label, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (account_id, pattern) DO UPDATE SET label = EXCLUDED.label, created_at = NOW()
	`

	if _, err := s.db.ExecContext(ctx, query, accountID, pattern, label); err != nil {
		return fmt.Errorf("creating service mapping: %w", err)
	}

	return nil
}
