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

// Increment advances the counter in a single upsert. Concurrent callers for the
// same account serialize on the row lock; other accounts touch other rows.
func (s *Store) Increment(ctx context.Context, accountID string) (int64, string, error) {
	query := `
		INSERT INTO invoice_sequences (account_id, current_value, updated_at)
		VALUES ($1, 1, NOW())
		ON CONFLICT (account_id) DO UPDATE
		SET current_value = invoice_sequences.current_value + 1, updated_at = NOW()
		RETURNING current_value, prefix
	`

	var (
		value  int64
		prefix string
	)

	if err := s.db.QueryRowContext(ctx, query, accountID).Scan(&value, &prefix); err != nil {
		return 0, "", fmt.Errorf("incrementing sequence: %w", err)
	}

	return value, prefix, nil
}

func (s *Store) Current(ctx context.Context, accountID string) (int64, string, error) {
	query := `SELECT current_value, prefix FROM invoice_sequences WHERE account_id = $1`

	var (
		value  int64
		prefix string
	)

	err := s.db.QueryRowContext(ctx, query, accountID).Scan(&value, &prefix)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", nil
		}

		return 0, "", fmt.Errorf("getting sequence: %w", err)
	}

	return value, prefix, nil
}

func (s *Store) SetPrefix(ctx context.Context, accountID, prefix string) error {
	query := `
		INSERT INTO invoice_sequences (account_id, current_value, prefix, updated_at)
		VALUES ($1, 0, $2, NOW())
		ON CONFLICT (account_id) DO UPDATE
		SET prefix = EXCLUDED.prefix, updated_at = NOW()
	`

	if _, err := s.db.ExecContext(ctx, query, accountID, prefix); err != nil {
		return fmt.Errorf("setting sequence prefix: %w", err)
	}

	return nil
}
