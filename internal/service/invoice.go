package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Finanzas-Grupo-6/finanzas-backend/internal/model"
	"github.com/Finanzas-Grupo-6/finanzas-backend/internal/repository"
)

type InvoiceService struct {
	invoiceRepo   *repository.InvoiceRepository
	portfolioRepo *repository.PortfolioRepository
	logger        *logrus.Logger
}

func NewInvoiceService(
	invoiceRepo *repository.InvoiceRepository,
	portfolioRepo *repository.PortfolioRepository,
	logger *logrus.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:   invoiceRepo,
		portfolioRepo: portfolioRepo,
		logger:        logger,
	}
}

// Create registra una factura en una cartera existente. La aritmética del
// motor ignora la moneda, así que por decisión de diseño todas las facturas
// de una cartera deben compartirla; la primera factura la fija.
func (s *InvoiceService) Create(ctx context.Context, req model.CreateInvoiceRequest) (*model.Invoice, error) {
	s.logger.WithFields(logrus.Fields{
		"portfolio_id":   req.PortfolioID,
		"invoice_number": req.InvoiceNumber,
	}).Info("Creación de factura")

	// La cartera debe existir
	if _, err := s.portfolioRepo.GetByID(ctx, req.PortfolioID); err != nil {
		s.logger.WithError(err).Errorf("Error obteniendo la cartera %s", req.PortfolioID)
		return nil, err
	}

	if err := s.checkCurrency(ctx, req.PortfolioID, req.Currency); err != nil {
		return nil, err
	}

	invoice := &model.Invoice{
		ID:            uuid.New(),
		Client:        req.Client,
		InvoiceNumber: req.InvoiceNumber,
		Amount:        req.Amount,
		Currency:      req.Currency,
		MaturityDate:  req.MaturityDate,
		PortfolioID:   req.PortfolioID,
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		s.logger.WithError(err).Error("Error creando la factura")
		return nil, fmt.Errorf("error creando la factura: %w", err)
	}

	s.logger.WithField("invoice_id", invoice.ID).Info("Factura creada con éxito")
	return invoice, nil
}

func (s *InvoiceService) GetAll(ctx context.Context) ([]model.Invoice, error) {
	invoices, err := s.invoiceRepo.GetAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Error obteniendo las facturas")
		return nil, fmt.Errorf("error obteniendo las facturas: %w", err)
	}
	return invoices, nil
}

func (s *InvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.WithError(err).Errorf("Error obteniendo la factura %s", id)
		return nil, err
	}
	return invoice, nil
}

func (s *InvoiceService) Update(ctx context.Context, id uuid.UUID, req model.UpdateInvoiceRequest) (*model.Invoice, error) {
	s.logger.WithField("invoice_id", id).Info("Actualización de factura")

	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Client != nil {
		invoice.Client = *req.Client
	}
	if req.InvoiceNumber != nil {
		invoice.InvoiceNumber = *req.InvoiceNumber
	}
	if req.Amount != nil {
		invoice.Amount = *req.Amount
	}
	if req.Currency != nil && *req.Currency != invoice.Currency {
		if err := s.checkCurrency(ctx, invoice.PortfolioID, *req.Currency); err != nil {
			return nil, err
		}
		invoice.Currency = *req.Currency
	}
	if req.MaturityDate != nil {
		invoice.MaturityDate = *req.MaturityDate
	}

	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		s.logger.WithError(err).Errorf("Error actualizando la factura %s", id)
		return nil, fmt.Errorf("error actualizando la factura: %w", err)
	}

	return invoice, nil
}

func (s *InvoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	s.logger.WithField("invoice_id", id).Info("Eliminación de factura")
	return s.invoiceRepo.Delete(ctx, id)
}

// checkCurrency rechaza una moneda distinta a la del resto de facturas de la
// cartera. Con la cartera vacía cualquier moneda es válida.
func (s *InvoiceService) checkCurrency(ctx context.Context, portfolioID uuid.UUID, currency string) error {
	invoices, err := s.invoiceRepo.GetByPortfolioID(ctx, portfolioID)
	if err != nil {
		s.logger.WithError(err).Errorf("Error obteniendo las facturas de la cartera %s", portfolioID)
		return fmt.Errorf("error obteniendo las facturas: %w", err)
	}

	for _, existing := range invoices {
		if existing.Currency != currency {
			s.logger.WithFields(logrus.Fields{
				"portfolio_id": portfolioID,
				"currency":     currency,
				"expected":     existing.Currency,
			}).Warn("Moneda de la factura distinta a la de la cartera")
			return ErrCurrencyMismatch
		}
	}

	return nil
}
