package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Finanzas-Grupo-6/finanzas-backend/internal/model"
	"github.com/Finanzas-Grupo-6/finanzas-backend/internal/repository"
)

func TestCountsPerMonthIsSparse(t *testing.T) {
	// Solo aparecen los meses con facturas, sin rellenar los vacíos
	rows := []model.MonthBucketRow{
		{Month: 3, Count: 4, TotalAmount: 1200},
		{Month: 8, Count: 1, TotalAmount: 300},
	}

	counts := countsPerMonth(rows)
	require.Len(t, counts, 2)
	assert.Equal(t, model.MonthCount{Month: "Marzo", Total: 4}, counts[0])
	assert.Equal(t, model.MonthCount{Month: "Agosto", Total: 1}, counts[1])
}

func TestAmountsPerMonthIsSparse(t *testing.T) {
	rows := []model.MonthBucketRow{
		{Month: 1, Count: 2, TotalAmount: 5500.50},
		{Month: 12, Count: 3, TotalAmount: 980},
	}

	amounts := amountsPerMonth(rows)
	require.Len(t, amounts, 2)
	assert.Equal(t, model.MonthAmount{Month: "Enero", TotalAmount: 5500.50}, amounts[0])
	assert.Equal(t, model.MonthAmount{Month: "Diciembre", TotalAmount: 980}, amounts[1])
}

func TestMonthNameRejectsOutOfRange(t *testing.T) {
	for _, month := range []int{0, 13, -1} {
		_, ok := monthName(month)
		assert.Falsef(t, ok, "el mes %d no debería tener nombre", month)
	}

	name, ok := monthName(6)
	assert.True(t, ok)
	assert.Equal(t, "Junio", name)
}

func TestGetInvoicesPerMonthEmptyResult(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	invoiceRepo := repository.NewInvoiceRepository(db, testLogger())
	s := NewAnalyticService(invoiceRepo, testLogger())

	mock.ExpectQuery("FROM invoices").
		WillReturnRows(sqlmock.NewRows([]string{"month", "count", "total_amount"}))

	counts, err := s.GetInvoicesPerMonth(context.Background())
	require.NoError(t, err)
	assert.Empty(t, counts)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAmountPerMonthFromRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	invoiceRepo := repository.NewInvoiceRepository(db, testLogger())
	s := NewAnalyticService(invoiceRepo, testLogger())

	mock.ExpectQuery("FROM invoices").
		WillReturnRows(sqlmock.NewRows([]string{"month", "count", "total_amount"}).
			AddRow(2, 5, 15000.0).
			AddRow(7, 2, 800.0))

	amounts, err := s.GetAmountPerMonth(context.Background())
	require.NoError(t, err)
	require.Len(t, amounts, 2)
	assert.Equal(t, "Febrero", amounts[0].Month)
	assert.InDelta(t, 15000.0, amounts[0].TotalAmount, 1e-9)
	assert.Equal(t, "Julio", amounts[1].Month)

	assert.NoError(t, mock.ExpectationsWereMet())
}
