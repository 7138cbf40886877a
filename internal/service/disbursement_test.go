package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Finanzas-Grupo-6/finanzas-backend/internal/model"
	"github.com/Finanzas-Grupo-6/finanzas-backend/internal/repository"
)

// newDisbursementService arma el servicio de descuento sobre una base de
// datos simulada
func newDisbursementService(t *testing.T, atomic bool) (*DiscountService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := testLogger()
	userRepo := repository.NewUserRepository(db, logger)
	portfolioRepo := repository.NewPortfolioRepository(db, logger)
	invoiceRepo := repository.NewInvoiceRepository(db, logger)
	emailSender := NewEmailSender(logger) // deshabilitado sin EMAIL_SENDER_ENABLED

	return NewDiscountService(userRepo, portfolioRepo, invoiceRepo, emailSender, atomic, logger), mock
}

func portfolioColumns() []string {
	return []string{"id", "name", "creation_date", "discount_date", "nominal_annual_rate", "effective_cost_rate", "state", "updated_at"}
}

func invoiceColumns() []string {
	return []string{"id", "client", "invoice_number", "amount", "currency", "maturity_date", "portfolio_id"}
}

func userColumns() []string {
	return []string{"id", "username", "email", "password", "balance", "created_at", "updated_at"}
}

func expectFetches(mock sqlmock.Sqlmock, userID, portfolioID uuid.UUID, discountDate time.Time) {
	now := time.Now()

	mock.ExpectQuery("FROM portfolios").
		WithArgs(portfolioID).
		WillReturnRows(sqlmock.NewRows(portfolioColumns()).
			AddRow(portfolioID.String(), "Cartera Q3", now, discountDate, 18.0, 0.0, model.PortfolioStateActive, now))

	mock.ExpectQuery("FROM invoices").
		WithArgs(portfolioID).
		WillReturnRows(sqlmock.NewRows(invoiceColumns()).
			AddRow(uuid.NewString(), "ACME S.A.C.", "F001-001", 1000.0, "PEN", discountDate.AddDate(0, 0, 91), portfolioID.String()).
			AddRow(uuid.NewString(), "Textiles SAC", "F001-002", 2500.0, "PEN", discountDate.AddDate(0, 0, 45), portfolioID.String()))

	mock.ExpectQuery("FROM users").
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(userID.String(), "erick", "", "hash", 100.0, now, now))
}

func TestExecuteDisbursementAtomicCommit(t *testing.T) {
	s, mock := newDisbursementService(t, true)
	userID := uuid.New()
	portfolioID := uuid.New()
	discountDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	expectFetches(mock, userID, portfolioID, discountDate)

	// Ambas escrituras dentro de la misma transacción
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users").
		WithArgs(sqlmock.AnyArg(), userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE portfolios").
		WithArgs(model.PortfolioStateInactive, sqlmock.AnyArg(), portfolioID, model.PortfolioStateActive).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := s.ExecuteDisbursement(context.Background(), userID, portfolioID)
	require.NoError(t, err)

	assert.Equal(t, model.PortfolioStateInactive, result.PortfolioState)
	assert.Greater(t, result.TotalDisbursed, 0.0)
	assert.InDelta(t, 100.0+result.TotalDisbursed, result.UpdatedBalance, 0.01)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteDisbursementAtomicRollsBackOnSecondWriteFailure(t *testing.T) {
	s, mock := newDisbursementService(t, true)
	userID := uuid.New()
	portfolioID := uuid.New()
	discountDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	expectFetches(mock, userID, portfolioID, discountDate)

	// El cierre de la cartera falla después de acreditar el saldo: la
	// transacción debe revertirse y no puede quedar estado a medias
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users").
		WithArgs(sqlmock.AnyArg(), userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE portfolios").
		WillReturnError(fmt.Errorf("connection reset"))
	mock.ExpectRollback()

	_, err := s.ExecuteDisbursement(context.Background(), userID, portfolioID)
	require.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteDisbursementSequentialLeavesDocumentedGap(t *testing.T) {
	s, mock := newDisbursementService(t, false)
	userID := uuid.New()
	portfolioID := uuid.New()
	discountDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	expectFetches(mock, userID, portfolioID, discountDate)

	// En modo secuencial las escrituras van sueltas: el saldo ya quedó
	// acreditado cuando falla el cierre de la cartera
	mock.ExpectExec("UPDATE users").
		WithArgs(sqlmock.AnyArg(), userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE portfolios").
		WillReturnError(fmt.Errorf("connection reset"))

	_, err := s.ExecuteDisbursement(context.Background(), userID, portfolioID)
	require.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteDisbursementRejectsInactivePortfolio(t *testing.T) {
	s, mock := newDisbursementService(t, true)
	userID := uuid.New()
	portfolioID := uuid.New()
	now := time.Now()

	mock.ExpectQuery("FROM portfolios").
		WithArgs(portfolioID).
		WillReturnRows(sqlmock.NewRows(portfolioColumns()).
			AddRow(portfolioID.String(), "Cartera cerrada", now, now, 18.0, 19.2, model.PortfolioStateInactive, now))

	_, err := s.ExecuteDisbursement(context.Background(), userID, portfolioID)
	assert.ErrorIs(t, err, ErrPortfolioClosed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteDisbursementPortfolioNotFound(t *testing.T) {
	s, mock := newDisbursementService(t, true)
	userID := uuid.New()
	portfolioID := uuid.New()

	mock.ExpectQuery("FROM portfolios").
		WithArgs(portfolioID).
		WillReturnRows(sqlmock.NewRows(portfolioColumns()))

	_, err := s.ExecuteDisbursement(context.Background(), userID, portfolioID)
	assert.ErrorIs(t, err, repository.ErrPortfolioNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteDisbursementEmptyInvoiceSet(t *testing.T) {
	s, mock := newDisbursementService(t, true)
	userID := uuid.New()
	portfolioID := uuid.New()
	now := time.Now()

	mock.ExpectQuery("FROM portfolios").
		WithArgs(portfolioID).
		WillReturnRows(sqlmock.NewRows(portfolioColumns()).
			AddRow(portfolioID.String(), "Cartera vacía", now, now, 18.0, 0.0, model.PortfolioStateActive, now))

	mock.ExpectQuery("FROM invoices").
		WithArgs(portfolioID).
		WillReturnRows(sqlmock.NewRows(invoiceColumns()))

	mock.ExpectQuery("FROM users").
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(userID.String(), "erick", "", "hash", 100.0, now, now))

	_, err := s.ExecuteDisbursement(context.Background(), userID, portfolioID)
	assert.ErrorIs(t, err, ErrEmptyInvoiceSet)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreviewDisbursementIsReadOnly(t *testing.T) {
	s, mock := newDisbursementService(t, true)
	portfolioID := uuid.New()
	discountDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now()

	mock.ExpectQuery("FROM portfolios").
		WithArgs(portfolioID).
		WillReturnRows(sqlmock.NewRows(portfolioColumns()).
			AddRow(portfolioID.String(), "Cartera Q3", now, discountDate, 18.0, 0.0, model.PortfolioStateActive, now))

	mock.ExpectQuery("FROM invoices").
		WithArgs(portfolioID).
		WillReturnRows(sqlmock.NewRows(invoiceColumns()).
			AddRow(uuid.NewString(), "ACME S.A.C.", "F001-001", 1000.0, "PEN", discountDate.AddDate(0, 0, 91), portfolioID.String()))

	result, err := s.PreviewDisbursement(context.Background(), portfolioID)
	require.NoError(t, err)
	require.Len(t, result.Invoices, 1)
	assert.InDelta(t, 959.57, result.Invoices[0].DiscountedAmount, 0.01)

	// Sin escrituras: la vista previa no muta la persistencia
	assert.NoError(t, mock.ExpectationsWereMet())
}
