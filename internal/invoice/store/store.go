package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/voicebill/internal/invoice"
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectInvoiceColumns = `
	id, account_id, customer_id, client_name, sequence, number, items,
	subtotal, tax_amount, total, currency, language, status, issue_date, due_date, notes,
	sent_at, paid_at, cancelled_at, created_at, updated_at
`

func scanInvoice(s scanner) (*invoice.Invoice, error) {
	var inv invoice.Invoice

	var items []byte

	var statusStr string

	if err := s.Scan(
		&inv.ID, &inv.AccountID, &inv.CustomerID, &inv.ClientName, &inv.Sequence, &inv.Number, &items,
		&inv.Totals.Subtotal, &inv.Totals.TaxAmount, &inv.Totals.Total,
		&inv.Currency, &inv.Language, &statusStr, &inv.IssueDate, &inv.DueDate, &inv.Notes,
		&inv.SentAt, &inv.PaidAt, &inv.CancelledAt, &inv.CreatedAt, &inv.UpdatedAt,
	); err != nil {
		return nil, err
	}

	inv.Status = invoice.Status(statusStr)

	if err := json.Unmarshal(items, &inv.Items); err != nil {
		return nil, fmt.Errorf("decoding line items: %w", err)
	}

	return &inv, nil
}

func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	items, err := json.Marshal(inv.Items)
	if err != nil {
		return fmt.Errorf("encoding line items: %w", err)
	}

	query := `
		INSERT INTO invoices (
			account_id, customer_id, client_name, sequence, number, items,
			subtotal, tax_amount, total, currency, language, status, issue_date, due_date, notes,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err = s.db.QueryRowContext(ctx, query,
		inv.AccountID,
		inv.CustomerID,
		inv.ClientName,
		inv.Sequence,
		inv.Number,
		items,
		inv.Totals.Subtotal,
		inv.Totals.TaxAmount,
		inv.Totals.Total,
		inv.Currency,
		inv.Language,
		inv.Status,
		inv.IssueDate,
		inv.DueDate,
		inv.Notes,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: number %s already issued", invoice.ErrConflict, inv.Number)
		}

		return fmt.Errorf("creating invoice: %w", err)
	}

	return nil
}

func (s *Store) GetInvoice(ctx context.Context, accountID string, id uuid.UUID) (*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + `
		FROM invoices
		WHERE account_id = $1 AND id = $2`

	inv, err := scanInvoice(s.db.QueryRowContext(ctx, query, accountID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invoice.ErrNotFound
		}

		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	return inv, nil
}

func (s *Store) ListInvoices(ctx context.Context, accountID string, filter invoice.ListFilter) ([]*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + `
		FROM invoices
		WHERE account_id = $1`

	args := []any{accountID}

	argIdx := 2

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.CustomerID != nil {
		query += fmt.Sprintf(" AND customer_id = $%d", argIdx)

		args = append(args, *filter.CustomerID)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND issue_date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND issue_date <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	if filter.OverdueAt != nil {
		query += fmt.Sprintf(" AND (status = 'overdue' OR (status = 'sent' AND due_date < $%d::date))", argIdx)

		args = append(args, *filter.OverdueAt)
	}

	query += " ORDER BY issue_date ASC, sequence ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*invoice.Invoice

	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		invoices = append(invoices, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoice rows: %w", err)
	}

	return invoices, nil
}

func (s *Store) UpdateItems(ctx context.Context, inv *invoice.Invoice) error {
	items, err := json.Marshal(inv.Items)
	if err != nil {
		return fmt.Errorf("encoding line items: %w", err)
	}

	query := `
		UPDATE invoices
		SET items = $1, subtotal = $2, tax_amount = $3, total = $4, updated_at = NOW()
		WHERE account_id = $5 AND id = $6 AND status = 'draft'
		RETURNING updated_at
	`

	err = s.db.QueryRowContext(ctx, query,
		items,
		inv.Totals.Subtotal,
		inv.Totals.TaxAmount,
		inv.Totals.Total,
		inv.AccountID,
		inv.ID,
	).Scan(&inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return invoice.ErrConflict
		}

		return fmt.Errorf("updating invoice items: %w", err)
	}

	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, inv *invoice.Invoice, from invoice.Status) error {
	query := `
		UPDATE invoices
		SET status = $1, sent_at = $2, paid_at = $3, cancelled_at = $4, updated_at = NOW()
		WHERE account_id = $5 AND id = $6 AND status = $7
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		inv.Status,
		inv.SentAt,
		inv.PaidAt,
		inv.CancelledAt,
		inv.AccountID,
		inv.ID,
		from,
	).Scan(&inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return invoice.ErrConflict
		}

		return fmt.Errorf("updating status: %w", err)
	}

	return nil
}

func (s *Store) DeleteInvoice(ctx context.Context, accountID string, id uuid.UUID) error {
	query := `
		DELETE FROM invoices
		WHERE account_id = $1 AND id = $2 AND status = 'draft'
	`

	res, err := s.db.ExecContext(ctx, query, accountID, id)
	if err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}

	if n == 0 {
		return invoice.ErrConflict
	}

	return nil
}

func (s *Store) Summarize(ctx context.Context, accountID string, filter invoice.SummaryFilter) ([]invoice.PeriodSummary, error) {
	query := `
		SELECT date_trunc($1, issue_date)::date AS period,
			COUNT(*),
			COALESCE(SUM(total), 0),
			COALESCE(SUM(total) FILTER (WHERE status = 'paid'), 0),
			COALESCE(SUM(total) FILTER (WHERE status IN ('sent', 'overdue')), 0)
		FROM invoices
		WHERE account_id = $2 AND status <> 'cancelled'`

	args := []any{string(filter.Granularity), accountID}

	argIdx := 3

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND issue_date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND issue_date <= $%d", argIdx)

		args = append(args, *filter.EndDate)
	}

	query += " GROUP BY period ORDER BY period ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("summarizing invoices: %w", err)
	}
	defer rows.Close()

	var summaries []invoice.PeriodSummary

	for rows.Next() {
		var ps invoice.PeriodSummary

		if err := rows.Scan(&ps.Period, &ps.Count, &ps.Total, &ps.Paid, &ps.Unpaid); err != nil {
			return nil, fmt.Errorf("scanning summary: %w", err)
		}

		summaries = append(summaries, ps)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating summary rows: %w", err)
	}

	return summaries, nil
}
