package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Finanzas-Grupo-6/finanzas-backend/internal/model"
)

type PortfolioRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewPortfolioRepository(db *sql.DB, logger *logrus.Logger) *PortfolioRepository {
	return &PortfolioRepository{db: db, logger: logger}
}

func (r *PortfolioRepository) Create(ctx context.Context, portfolio *model.Portfolio) error {
	query := `
		INSERT INTO portfolios (id, name, creation_date, discount_date, nominal_annual_rate, effective_cost_rate, state, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		portfolio.ID,
		portfolio.Name,
		portfolio.CreationDate,
		portfolio.DiscountDate,
		portfolio.NominalAnnualRate,
		portfolio.EffectiveCostRate,
		portfolio.State,
		portfolio.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create portfolio: %w", err)
	}

	return nil
}

func (r *PortfolioRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Portfolio, error) {
	query := `
		SELECT id, name, creation_date, discount_date, nominal_annual_rate, effective_cost_rate, state, updated_at
		FROM portfolios
		WHERE id = $1
	`

	var portfolio model.Portfolio
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&portfolio.ID,
		&portfolio.Name,
		&portfolio.CreationDate,
		&portfolio.DiscountDate,
		&portfolio.NominalAnnualRate,
		&portfolio.EffectiveCostRate,
		&portfolio.State,
		&portfolio.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPortfolioNotFound
		}
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}

	return &portfolio, nil
}

func (r *PortfolioRepository) GetAll(ctx context.Context) ([]model.Portfolio, error) {
	query := `
		SELECT id, name, creation_date, discount_date, nominal_annual_rate, effective_cost_rate, state, updated_at
		FROM portfolios
		ORDER BY creation_date
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolios: %w", err)
	}
	defer rows.Close()

	var portfolios []model.Portfolio
	for rows.Next() {
		var portfolio model.Portfolio
		if err := rows.Scan(
			&portfolio.ID,
			&portfolio.Name,
			&portfolio.CreationDate,
			&portfolio.DiscountDate,
			&portfolio.NominalAnnualRate,
			&portfolio.EffectiveCostRate,
			&portfolio.State,
			&portfolio.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio: %w", err)
		}
		portfolios = append(portfolios, portfolio)
	}

	return portfolios, rows.Err()
}

func (r *PortfolioRepository) GetAllActive(ctx context.Context) ([]model.Portfolio, error) {
	query := `
		SELECT id, name, creation_date, discount_date, nominal_annual_rate, effective_cost_rate, state, updated_at
		FROM portfolios
		WHERE state = $1
		ORDER BY creation_date
	`

	rows, err := r.db.QueryContext(ctx, query, model.PortfolioStateActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query active portfolios: %w", err)
	}
	defer rows.Close()

	var portfolios []model.Portfolio
	for rows.Next() {
		var portfolio model.Portfolio
		if err := rows.Scan(
			&portfolio.ID,
			&portfolio.Name,
			&portfolio.CreationDate,
			&portfolio.DiscountDate,
			&portfolio.NominalAnnualRate,
			&portfolio.EffectiveCostRate,
			&portfolio.State,
			&portfolio.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio: %w", err)
		}
		portfolios = append(portfolios, portfolio)
	}

	return portfolios, rows.Err()
}

// Update modifica los campos editables de la cartera. La fecha de creación
// y el estado no se tocan por esta vía.
func (r *PortfolioRepository) Update(ctx context.Context, portfolio *model.Portfolio) error {
	query := `
		UPDATE portfolios
		SET name = $1,
		    discount_date = $2,
		    nominal_annual_rate = $3,
		    updated_at = NOW()
		WHERE id = $4
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		portfolio.Name,
		portfolio.DiscountDate,
		portfolio.NominalAnnualRate,
		portfolio.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update portfolio: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrPortfolioNotFound
	}

	return nil
}

// UpdateEffectiveCostRate persiste la última TCEA calculada como instantánea
func (r *PortfolioRepository) UpdateEffectiveCostRate(ctx context.Context, id uuid.UUID, rate float64) error {
	query := `
		UPDATE portfolios
		SET effective_cost_rate = $1,
		    updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.db.ExecContext(ctx, query, rate, id)
	if err != nil {
		return fmt.Errorf("failed to update effective cost rate: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrPortfolioNotFound
	}

	return nil
}

// CloseTx marca la cartera como inactiva dentro de una transacción y guarda
// la TCEA con la que se desembolsó. La condición sobre el estado garantiza
// que la transición ocurra una sola vez.
func (r *PortfolioRepository) CloseTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, effectiveCostRate float64) error {
	query := `
		UPDATE portfolios
		SET state = $1,
		    effective_cost_rate = $2,
		    updated_at = NOW()
		WHERE id = $3 AND state = $4
	`

	result, err := tx.ExecContext(ctx, query, model.PortfolioStateInactive, effectiveCostRate, id, model.PortfolioStateActive)
	if err != nil {
		return fmt.Errorf("failed to close portfolio: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrPortfolioNotFound
	}

	return nil
}

// Close es la variante sin transacción de CloseTx (modo secuencial)
func (r *PortfolioRepository) Close(ctx context.Context, id uuid.UUID, effectiveCostRate float64) error {
	query := `
		UPDATE portfolios
		SET state = $1,
		    effective_cost_rate = $2,
		    updated_at = NOW()
		WHERE id = $3 AND state = $4
	`

	result, err := r.db.ExecContext(ctx, query, model.PortfolioStateInactive, effectiveCostRate, id, model.PortfolioStateActive)
	if err != nil {
		return fmt.Errorf("failed to close portfolio: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrPortfolioNotFound
	}

	return nil
}

func (r *PortfolioRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM portfolios WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete portfolio: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrPortfolioNotFound
	}

	return nil
}

func (r *PortfolioRepository) GetDB() *sql.DB {
	return r.db
}
