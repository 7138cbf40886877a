package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Finanzas-Grupo-6/finanzas-backend/internal/model"
	"github.com/Finanzas-Grupo-6/finanzas-backend/internal/repository"
)

type PortfolioService struct {
	portfolioRepo *repository.PortfolioRepository
	invoiceRepo   *repository.InvoiceRepository
	discount      *DiscountService
	rateClient    *BCRPClient
	useBCRPRate   bool
	logger        *logrus.Logger
}

func NewPortfolioService(
	portfolioRepo *repository.PortfolioRepository,
	invoiceRepo *repository.InvoiceRepository,
	discount *DiscountService,
	rateClient *BCRPClient,
	useBCRPRate bool,
	logger *logrus.Logger,
) *PortfolioService {
	return &PortfolioService{
		portfolioRepo: portfolioRepo,
		invoiceRepo:   invoiceRepo,
		discount:      discount,
		rateClient:    rateClient,
		useBCRPRate:   useBCRPRate,
		logger:        logger,
	}
}

// Create registra una cartera nueva en estado activa. Si el llamador no envía
// la TEA y la integración con el BCRP está habilitada, se toma la tasa de
// referencia publicada como valor inicial.
func (s *PortfolioService) Create(ctx context.Context, req model.CreatePortfolioRequest) (*model.Portfolio, error) {
	s.logger.WithField("name", req.Name).Info("Creación de cartera")

	rate := 0.0
	if req.NominalAnnualRate != nil {
		rate = *req.NominalAnnualRate
	} else if s.useBCRPRate {
		referenceRate, err := s.rateClient.GetReferenceRate()
		if err != nil {
			s.logger.WithError(err).Warn("No se pudo obtener la tasa de referencia del BCRP, se usa 0")
		} else {
			rate = referenceRate
			s.logger.WithField("rate", rate).Info("TEA inicial tomada de la tasa de referencia del BCRP")
		}
	}

	now := time.Now()
	portfolio := &model.Portfolio{
		ID:                uuid.New(),
		Name:              req.Name,
		CreationDate:      now,
		DiscountDate:      req.DiscountDate,
		NominalAnnualRate: rate,
		EffectiveCostRate: 0,
		State:             model.PortfolioStateActive,
		UpdatedAt:         now,
	}

	if err := s.portfolioRepo.Create(ctx, portfolio); err != nil {
		s.logger.WithError(err).Error("Error creando la cartera")
		return nil, fmt.Errorf("error creando la cartera: %w", err)
	}

	s.logger.WithField("portfolio_id", portfolio.ID).Info("Cartera creada con éxito")
	return portfolio, nil
}

// ListWithComputedFields devuelve todas las carteras decoradas con sus
// facturas, el valor descontado de cada una y la TCEA calculada al momento.
// La TCEA persistida es solo una instantánea; aquí siempre se recalcula.
func (s *PortfolioService) ListWithComputedFields(ctx context.Context) ([]model.PortfolioView, error) {
	portfolios, err := s.portfolioRepo.GetAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Error obteniendo las carteras")
		return nil, fmt.Errorf("error obteniendo las carteras: %w", err)
	}

	views := make([]model.PortfolioView, 0, len(portfolios))
	for _, portfolio := range portfolios {
		invoices, err := s.invoiceRepo.GetByPortfolioID(ctx, portfolio.ID)
		if err != nil {
			s.logger.WithError(err).Errorf("Error obteniendo las facturas de la cartera %s", portfolio.ID)
			return nil, fmt.Errorf("error obteniendo las facturas: %w", err)
		}

		view := model.PortfolioView{
			Portfolio:    portfolio,
			Invoices:     make([]model.InvoiceWithDiscount, 0, len(invoices)),
			InvoiceCount: len(invoices),
		}

		result, err := s.discount.ComputeDiscountedSet(&portfolio, invoices)
		switch {
		case err == nil:
			// Los resúmenes vienen en el mismo orden que las facturas
			// descontadas; las saltadas por malformación no aparecen
			byID := make(map[uuid.UUID]model.DiscountedInvoice, len(result.Invoices))
			for _, summary := range result.Invoices {
				byID[summary.ID] = summary
			}
			for _, invoice := range invoices {
				item := model.InvoiceWithDiscount{Invoice: invoice}
				if summary, ok := byID[invoice.ID]; ok {
					item.DiscountedAmount = summary.DiscountedAmount
				}
				view.Invoices = append(view.Invoices, item)
			}
			view.ComputedCostRate = round2(result.EffectiveCostRate)
			view.TotalPresentValue = round2(result.TotalPresentValue)
		case errors.Is(err, ErrEmptyInvoiceSet):
			// Una cartera sin facturas se lista con TCEA 0
			view.ComputedCostRate = 0
		default:
			return nil, err
		}

		views = append(views, view)
	}

	return views, nil
}

// GetWithInvoices devuelve una cartera junto con sus facturas, sin decorar
func (s *PortfolioService) GetWithInvoices(ctx context.Context, id uuid.UUID) (*model.Portfolio, []model.Invoice, error) {
	portfolio, err := s.portfolioRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	invoices, err := s.invoiceRepo.GetByPortfolioID(ctx, id)
	if err != nil {
		s.logger.WithError(err).Errorf("Error obteniendo las facturas de la cartera %s", id)
		return nil, nil, fmt.Errorf("error obteniendo las facturas: %w", err)
	}

	return portfolio, invoices, nil
}

// ListWithTotals devuelve todas las carteras con la suma de los montos
// nominales de sus facturas, sin aplicar descuento
func (s *PortfolioService) ListWithTotals(ctx context.Context) ([]model.PortfolioTotals, error) {
	portfolios, err := s.portfolioRepo.GetAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Error obteniendo las carteras")
		return nil, fmt.Errorf("error obteniendo las carteras: %w", err)
	}

	totals := make([]model.PortfolioTotals, 0, len(portfolios))
	for _, portfolio := range portfolios {
		invoices, err := s.invoiceRepo.GetByPortfolioID(ctx, portfolio.ID)
		if err != nil {
			s.logger.WithError(err).Errorf("Error obteniendo las facturas de la cartera %s", portfolio.ID)
			return nil, fmt.Errorf("error obteniendo las facturas: %w", err)
		}

		var total float64
		for _, invoice := range invoices {
			total += invoice.Amount
		}

		totals = append(totals, model.PortfolioTotals{
			Portfolio:       portfolio,
			TotalFaceAmount: round2(total),
		})
	}

	return totals, nil
}

func (s *PortfolioService) Update(ctx context.Context, id uuid.UUID, req model.UpdatePortfolioRequest) (*model.Portfolio, error) {
	s.logger.WithField("portfolio_id", id).Info("Actualización de cartera")

	portfolio, err := s.portfolioRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		portfolio.Name = *req.Name
	}
	if req.DiscountDate != nil {
		portfolio.DiscountDate = *req.DiscountDate
	}
	if req.NominalAnnualRate != nil {
		portfolio.NominalAnnualRate = *req.NominalAnnualRate
	}

	if err := s.portfolioRepo.Update(ctx, portfolio); err != nil {
		s.logger.WithError(err).Errorf("Error actualizando la cartera %s", id)
		return nil, fmt.Errorf("error actualizando la cartera: %w", err)
	}

	return portfolio, nil
}

// Delete elimina una cartera. Por decisión de diseño la eliminación se
// rechaza mientras la cartera tenga facturas asociadas: el sistema original
// las dejaba huérfanas.
func (s *PortfolioService) Delete(ctx context.Context, id uuid.UUID) error {
	s.logger.WithField("portfolio_id", id).Info("Eliminación de cartera")

	count, err := s.invoiceRepo.CountByPortfolioID(ctx, id)
	if err != nil {
		s.logger.WithError(err).Errorf("Error contando las facturas de la cartera %s", id)
		return fmt.Errorf("error contando las facturas: %w", err)
	}
	if count > 0 {
		s.logger.WithFields(logrus.Fields{
			"portfolio_id": id,
			"invoices":     count,
		}).Warn("Intento de eliminar una cartera con facturas asociadas")
		return ErrPortfolioHasInvoices
	}

	return s.portfolioRepo.Delete(ctx, id)
}

// RefreshEffectiveCostRates recalcula y persiste la instantánea de TCEA de
// cada cartera activa. Lo invoca el planificador; las carteras sin facturas
// se saltan.
func (s *PortfolioService) RefreshEffectiveCostRates(ctx context.Context) error {
	portfolios, err := s.portfolioRepo.GetAllActive(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Error obteniendo las carteras activas")
		return fmt.Errorf("error obteniendo las carteras activas: %w", err)
	}

	s.logger.WithField("portfolios", len(portfolios)).Info("Actualización de instantáneas de TCEA")

	for _, portfolio := range portfolios {
		invoices, err := s.invoiceRepo.GetByPortfolioID(ctx, portfolio.ID)
		if err != nil {
			s.logger.WithError(err).Errorf("Error obteniendo las facturas de la cartera %s", portfolio.ID)
			continue
		}

		result, err := s.discount.ComputeDiscountedSet(&portfolio, invoices)
		if err != nil {
			if !errors.Is(err, ErrEmptyInvoiceSet) {
				s.logger.WithError(err).Warnf("No se pudo recalcular la TCEA de la cartera %s", portfolio.ID)
			}
			continue
		}

		if err := s.portfolioRepo.UpdateEffectiveCostRate(ctx, portfolio.ID, result.EffectiveCostRate); err != nil {
			s.logger.WithError(err).Errorf("Error guardando la TCEA de la cartera %s", portfolio.ID)
			continue
		}
	}

	return nil
}
