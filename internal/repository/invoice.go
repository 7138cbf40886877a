package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Finanzas-Grupo-6/finanzas-backend/internal/model"
)

type InvoiceRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewInvoiceRepository(db *sql.DB, logger *logrus.Logger) *InvoiceRepository {
	return &InvoiceRepository{db: db, logger: logger}
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	query := `
		INSERT INTO invoices (id, client, invoice_number, amount, currency, maturity_date, portfolio_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		invoice.ID,
		invoice.Client,
		invoice.InvoiceNumber,
		invoice.Amount,
		invoice.Currency,
		invoice.MaturityDate,
		invoice.PortfolioID,
	)

	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	return nil
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	query := `
		SELECT id, client, invoice_number, amount, currency, maturity_date, portfolio_id
		FROM invoices
		WHERE id = $1
	`

	var invoice model.Invoice
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&invoice.ID,
		&invoice.Client,
		&invoice.InvoiceNumber,
		&invoice.Amount,
		&invoice.Currency,
		&invoice.MaturityDate,
		&invoice.PortfolioID,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	return &invoice, nil
}

func (r *InvoiceRepository) GetAll(ctx context.Context) ([]model.Invoice, error) {
	query := `
		SELECT id, client, invoice_number, amount, currency, maturity_date, portfolio_id
		FROM invoices
		ORDER BY maturity_date
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	return scanInvoices(rows)
}

func (r *InvoiceRepository) GetByPortfolioID(ctx context.Context, portfolioID uuid.UUID) ([]model.Invoice, error) {
	query := `
		SELECT id, client, invoice_number, amount, currency, maturity_date, portfolio_id
		FROM invoices
		WHERE portfolio_id = $1
		ORDER BY maturity_date
	`

	rows, err := r.db.QueryContext(ctx, query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio invoices: %w", err)
	}
	defer rows.Close()

	return scanInvoices(rows)
}

func (r *InvoiceRepository) CountByPortfolioID(ctx context.Context, portfolioID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM invoices WHERE portfolio_id = $1`, portfolioID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count portfolio invoices: %w", err)
	}
	return count, nil
}

func (r *InvoiceRepository) Update(ctx context.Context, invoice *model.Invoice) error {
	query := `
		UPDATE invoices
		SET client = $1,
		    invoice_number = $2,
		    amount = $3,
		    currency = $4,
		    maturity_date = $5
		WHERE id = $6
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		invoice.Client,
		invoice.InvoiceNumber,
		invoice.Amount,
		invoice.Currency,
		invoice.MaturityDate,
		invoice.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrInvoiceNotFound
	}

	return nil
}

func (r *InvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrInvoiceNotFound
	}

	return nil
}

// GroupByMaturityMonth agrupa todas las facturas por el mes calendario UTC de
// su fecha de vencimiento. Solo devuelve filas para los meses con facturas.
func (r *InvoiceRepository) GroupByMaturityMonth(ctx context.Context) ([]model.MonthBucketRow, error) {
	query := `
		SELECT EXTRACT(MONTH FROM maturity_date AT TIME ZONE 'UTC')::int AS month,
		       COUNT(*) AS total,
		       COALESCE(SUM(amount), 0) AS total_amount
		FROM invoices
		GROUP BY month
		ORDER BY month
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to group invoices by month: %w", err)
	}
	defer rows.Close()

	var buckets []model.MonthBucketRow
	for rows.Next() {
		var bucket model.MonthBucketRow
		if err := rows.Scan(&bucket.Month, &bucket.Count, &bucket.TotalAmount); err != nil {
			return nil, fmt.Errorf("failed to scan month bucket: %w", err)
		}
		buckets = append(buckets, bucket)
	}

	return buckets, rows.Err()
}

func scanInvoices(rows *sql.Rows) ([]model.Invoice, error) {
	var invoices []model.Invoice
	for rows.Next() {
		var invoice model.Invoice
		if err := rows.Scan(
			&invoice.ID,
			&invoice.Client,
			&invoice.InvoiceNumber,
			&invoice.Amount,
			&invoice.Currency,
			&invoice.MaturityDate,
			&invoice.PortfolioID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, invoice)
	}

	return invoices, rows.Err()
}
