package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Finanzas-Grupo-6/finanzas-backend/internal/model"
	"github.com/Finanzas-Grupo-6/finanzas-backend/internal/repository"
)

// monthNames son los nombres de los doce meses, empezando en enero, tal como
// los muestra el frontend
var monthNames = [12]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

type AnalyticService struct {
	invoiceRepo *repository.InvoiceRepository
	logger      *logrus.Logger
}

func NewAnalyticService(invoiceRepo *repository.InvoiceRepository, logger *logrus.Logger) *AnalyticService {
	return &AnalyticService{
		invoiceRepo: invoiceRepo,
		logger:      logger,
	}
}

// GetInvoicesPerMonth devuelve cuántas facturas vencen en cada mes calendario
// UTC. Los meses sin facturas no aparecen en el resultado.
func (s *AnalyticService) GetInvoicesPerMonth(ctx context.Context) ([]model.MonthCount, error) {
	s.logger.Info("Consulta de facturas por mes de vencimiento")

	rows, err := s.invoiceRepo.GroupByMaturityMonth(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Error agrupando las facturas por mes")
		return nil, fmt.Errorf("error agrupando las facturas por mes: %w", err)
	}

	return countsPerMonth(rows), nil
}

// GetAmountPerMonth devuelve la suma de montos de las facturas que vencen en
// cada mes calendario UTC, también sin meses vacíos
func (s *AnalyticService) GetAmountPerMonth(ctx context.Context) ([]model.MonthAmount, error) {
	s.logger.Info("Consulta de monto total por mes de vencimiento")

	rows, err := s.invoiceRepo.GroupByMaturityMonth(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Error agrupando los montos por mes")
		return nil, fmt.Errorf("error agrupando los montos por mes: %w", err)
	}

	return amountsPerMonth(rows), nil
}

func countsPerMonth(rows []model.MonthBucketRow) []model.MonthCount {
	counts := make([]model.MonthCount, 0, len(rows))
	for _, row := range rows {
		name, ok := monthName(row.Month)
		if !ok {
			continue
		}
		counts = append(counts, model.MonthCount{Month: name, Total: row.Count})
	}
	return counts
}

func amountsPerMonth(rows []model.MonthBucketRow) []model.MonthAmount {
	amounts := make([]model.MonthAmount, 0, len(rows))
	for _, row := range rows {
		name, ok := monthName(row.Month)
		if !ok {
			continue
		}
		amounts = append(amounts, model.MonthAmount{Month: name, TotalAmount: row.TotalAmount})
	}
	return amounts
}

func monthName(month int) (string, bool) {
	if month < 1 || month > 12 {
		return "", false
	}
	return monthNames[month-1], true
}
