package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/voicebill/internal/account"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetProfile(ctx context.Context, accountID string) (*account.Profile, error) {
	query := `
		SELECT account_id, company_name, street, zip, city, country, tax_id, email,
			account_holder, iban, bic, updated_at
		FROM account_profiles
		WHERE account_id = $1
	`

	var p account.Profile

	err := s.db.QueryRowContext(ctx, query, accountID).Scan(
		&p.AccountID, &p.CompanyName, &p.Street, &p.Zip, &p.City, &p.Country, &p.TaxID, &p.Email,
		&p.AccountHolder, &p.IBAN, &p.BIC, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, account.ErrNotFound
		}

		return nil, fmt.Errorf("getting profile: %w", err)
	}

	return &p, nil
}

func (s *Store) UpsertProfile(ctx context.Context, p *account.Profile) error {
	query := `
		INSERT INTO account_profiles (
			account_id, company_name, street, zip, city, country, tax_id, email,
			account_holder, iban, bic, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		ON CONFLICT (account_id) DO UPDATE SET
			company_name = EXCLUDED.company_name,
			street = EXCLUDED.street,
			zip = EXCLUDED.zip,
			city = EXCLUDED.city,
			country = EXCLUDED.country,
			tax_id = EXCLUDED.tax_id,
			email = EXCLUDED.email,
			account_holder = EXCLUDED.account_holder,
			iban = EXCLUDED.iban,
			bic = EXCLUDED.bic,
			updated_at = NOW()
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		p.AccountID, p.CompanyName, p.Street, p.Zip, p.City, p.Country, p.TaxID, p.Email,
		p.AccountHolder, p.IBAN, p.BIC,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting profile: %w", err)
	}

	return nil
}

// EraseAccount deletes all rows owned by the account in one transaction.
// invoice_sequences is kept so numbers are never issued twice.
func (s *Store) EraseAccount(ctx context.Context, accountID string) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	for _, table := range []string{"invoices", "customers", "service_mappings", "account_profiles"} {
		if _, err := dbTx.ExecContext(ctx, "DELETE FROM "+table+" WHERE account_id = $1", accountID); err != nil {
			return fmt.Errorf("erasing %s: %w", table, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}
