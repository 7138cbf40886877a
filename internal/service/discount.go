package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Finanzas-Grupo-6/finanzas-backend/internal/model"
	"github.com/Finanzas-Grupo-6/finanzas-backend/internal/repository"
)

const daysInYear = 365.0

// DiscountService implementa el motor de descuento: valor presente por
// factura, TCEA ponderada de la cartera y el desembolso contra el saldo
// del usuario.
type DiscountService struct {
	userRepo      *repository.UserRepository
	portfolioRepo *repository.PortfolioRepository
	invoiceRepo   *repository.InvoiceRepository
	emailSender   *EmailSender
	atomic        bool
	logger        *logrus.Logger
}

func NewDiscountService(
	userRepo *repository.UserRepository,
	portfolioRepo *repository.PortfolioRepository,
	invoiceRepo *repository.InvoiceRepository,
	emailSender *EmailSender,
	atomic bool,
	logger *logrus.Logger,
) *DiscountService {
	return &DiscountService{
		userRepo:      userRepo,
		portfolioRepo: portfolioRepo,
		invoiceRepo:   invoiceRepo,
		emailSender:   emailSender,
		atomic:        atomic,
		logger:        logger,
	}
}

// truncateToUTCDay normaliza un instante al inicio de su día calendario UTC.
// Las diferencias de hora del día se eliminan aquí, no redondeando el
// conteo final de días.
func truncateToUTCDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysRemaining cuenta los días completos entre la fecha de descuento y el
// vencimiento, ambos ya normalizados a medianoche UTC
func daysRemaining(discountDate, maturityDate time.Time) int {
	diff := truncateToUTCDay(maturityDate).Sub(truncateToUTCDay(discountDate))
	return int(math.Ceil(diff.Hours() / 24))
}

// periodRate calcula la TEP: la TEA compuesta sobre la fracción de año que
// representa el conteo de días
func periodRate(tea float64, days int) float64 {
	return math.Pow(1+tea, float64(days)/daysInYear) - 1
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}

// ComputeDiscountedSet descuenta cada factura de la cartera contra su fecha
// de descuento y agrega la TCEA ponderada. Es una función pura: no toca la
// persistencia.
//
// Las facturas con monto o fecha inutilizables se saltan con un warning y el
// cálculo continúa; la TEA inválida, la cartera sin facturas y el total
// degenerado abortan la operación completa.
//
// El denominador de los pesos es el total descontado, no la suma de montos
// nominales. Es el comportamiento observado del sistema original y se
// conserva tal cual; ver DESIGN.md.
func (s *DiscountService) ComputeDiscountedSet(portfolio *model.Portfolio, invoices []model.Invoice) (*model.DiscountResult, error) {
	tea := portfolio.NominalAnnualRate / 100 // TEA en formato decimal
	if math.IsNaN(tea) || math.IsInf(tea, 0) {
		s.logger.WithField("portfolio_id", portfolio.ID).Error("La TEA de la cartera no es un número válido")
		return nil, ErrInvalidRate
	}

	if len(invoices) == 0 {
		return nil, ErrEmptyInvoiceSet
	}

	var totalPresentValue float64
	summaries := make([]model.DiscountedInvoice, 0, len(invoices))
	discounted := make([]model.Invoice, 0, len(invoices))

	for _, invoice := range invoices {
		if math.IsNaN(invoice.Amount) || math.IsInf(invoice.Amount, 0) || invoice.Amount <= 0 {
			s.logger.WithField("invoice_id", invoice.ID).Warnf("Monto no válido en la factura: %v", invoice.Amount)
			continue
		}
		if invoice.MaturityDate.IsZero() {
			s.logger.WithField("invoice_id", invoice.ID).Warn("Fecha de vencimiento no válida en la factura")
			continue
		}

		days := daysRemaining(portfolio.DiscountDate, invoice.MaturityDate)

		var discountRate float64
		presentValue := invoice.Amount
		if days > 0 {
			tep := periodRate(tea, days)
			discountRate = tep / (1 + tep)                    // Tasa Descontada (TD)
			presentValue = invoice.Amount * (1 - discountRate) // Valor Descontado
		}
		// Si la factura ya venció se incluye el monto completo sin descuento

		totalPresentValue += presentValue

		displayDays := days
		if displayDays < 0 {
			displayDays = 0
		}

		summaries = append(summaries, model.DiscountedInvoice{
			ID:               invoice.ID,
			InvoiceNumber:    invoice.InvoiceNumber,
			OriginalAmount:   round2(invoice.Amount),
			MaturityDate:     truncateToUTCDay(invoice.MaturityDate).Format("2006-01-02"),
			DaysRemaining:    displayDays,
			DiscountRate:     round4(discountRate),
			DiscountedAmount: round2(presentValue),
		})
		discounted = append(discounted, invoice)
	}

	// Un total cero o no finito hace indefinida la TCEA ponderada. Se
	// reporta explícitamente en lugar de devolver NaN al llamador.
	if totalPresentValue == 0 || math.IsNaN(totalPresentValue) || math.IsInf(totalPresentValue, 0) {
		s.logger.WithFields(logrus.Fields{
			"portfolio_id": portfolio.ID,
			"total":        totalPresentValue,
		}).Error("Valor presente total degenerado")
		return nil, ErrDegenerateTotal
	}

	// Peso de cada factura sobre el total descontado
	var weightSum float64
	for _, invoice := range discounted {
		weightSum += invoice.Amount / totalPresentValue
	}

	effectiveCostRate := tea * weightSum * 100 // TCEA en porcentaje
	if math.IsNaN(effectiveCostRate) || math.IsInf(effectiveCostRate, 0) {
		return nil, ErrDegenerateTotal
	}

	return &model.DiscountResult{
		Invoices:          summaries,
		TotalPresentValue: totalPresentValue,
		WeightSum:         weightSum,
		EffectiveCostRate: effectiveCostRate,
	}, nil
}

// PreviewDisbursement calcula cuánto recibiría hoy el usuario por la cartera,
// sin efectos sobre la persistencia
func (s *DiscountService) PreviewDisbursement(ctx context.Context, portfolioID uuid.UUID) (*model.DiscountResult, error) {
	s.logger.WithField("portfolio_id", portfolioID).Info("Cálculo del monto a recibir por la cartera")

	portfolio, err := s.portfolioRepo.GetByID(ctx, portfolioID)
	if err != nil {
		s.logger.WithError(err).Errorf("Error obteniendo la cartera %s", portfolioID)
		return nil, err
	}

	invoices, err := s.invoiceRepo.GetByPortfolioID(ctx, portfolioID)
	if err != nil {
		s.logger.WithError(err).Errorf("Error obteniendo las facturas de la cartera %s", portfolioID)
		return nil, fmt.Errorf("error obteniendo las facturas: %w", err)
	}

	result, err := s.ComputeDiscountedSet(portfolio, invoices)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"portfolio_id": portfolioID,
		"total":        result.TotalPresentValue,
		"tcea":         result.EffectiveCostRate,
	}).Info("Monto a recibir calculado")

	return result, nil
}

// ExecuteDisbursement acredita el valor presente total de la cartera al saldo
// del usuario y pasa la cartera a inactiva. Con el modo atómico activado ambas
// escrituras van en una sola transacción SQL; en modo secuencial se reproducen
// las dos escrituras separadas del sistema original, con la brecha de
// consistencia que eso implica si la segunda falla.
func (s *DiscountService) ExecuteDisbursement(ctx context.Context, userID, portfolioID uuid.UUID) (*model.DisbursementResult, error) {
	s.logger.WithFields(logrus.Fields{
		"user_id":      userID,
		"portfolio_id": portfolioID,
	}).Info("Ejecución del desembolso de la cartera")

	portfolio, err := s.portfolioRepo.GetByID(ctx, portfolioID)
	if err != nil {
		s.logger.WithError(err).Errorf("Error obteniendo la cartera %s", portfolioID)
		return nil, err
	}

	if portfolio.State != model.PortfolioStateActive {
		s.logger.WithField("portfolio_id", portfolioID).Warn("Intento de desembolsar una cartera inactiva")
		return nil, ErrPortfolioClosed
	}

	invoices, err := s.invoiceRepo.GetByPortfolioID(ctx, portfolioID)
	if err != nil {
		s.logger.WithError(err).Errorf("Error obteniendo las facturas de la cartera %s", portfolioID)
		return nil, fmt.Errorf("error obteniendo las facturas: %w", err)
	}

	// Verificamos al usuario antes de cualquier escritura: si falta, no se
	// muta nada
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.WithError(err).Errorf("Error obteniendo el usuario %s", userID)
		return nil, err
	}

	result, err := s.ComputeDiscountedSet(portfolio, invoices)
	if err != nil {
		return nil, err
	}

	if s.atomic {
		if err := s.applyDisbursementTx(ctx, userID, portfolioID, result); err != nil {
			return nil, err
		}
	} else {
		if err := s.applyDisbursementSequential(ctx, userID, portfolioID, result); err != nil {
			return nil, err
		}
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":      userID,
		"portfolio_id": portfolioID,
		"amount":       result.TotalPresentValue,
	}).Info("Desembolso aplicado con éxito")

	// Notificación por email, sin bloquear la respuesta
	if user.Email != "" {
		go func() {
			if err := s.emailSender.SendDisbursementNotification(user.Email, result.TotalPresentValue, portfolio.Name); err != nil {
				s.logger.WithError(err).Warn("No se pudo enviar la notificación por email")
			}
		}()
	}

	return &model.DisbursementResult{
		TotalDisbursed:    round2(result.TotalPresentValue),
		UpdatedBalance:    user.Balance + result.TotalPresentValue,
		PortfolioState:    model.PortfolioStateInactive,
		EffectiveCostRate: result.EffectiveCostRate,
	}, nil
}

// applyDisbursementTx aplica las dos escrituras del desembolso en una sola
// transacción: o se acredita el saldo y se cierra la cartera, o no ocurre
// ninguna de las dos.
func (s *DiscountService) applyDisbursementTx(ctx context.Context, userID, portfolioID uuid.UUID, result *model.DiscountResult) error {
	db := s.userRepo.GetDB()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.WithError(err).Error("Error iniciando la transacción de desembolso")
		return fmt.Errorf("error iniciando la transacción: %w", err)
	}
	defer tx.Rollback()

	if err := s.userRepo.CreditBalanceTx(ctx, tx, userID, result.TotalPresentValue); err != nil {
		s.logger.WithError(err).Error("Error acreditando el saldo del usuario")
		return fmt.Errorf("error acreditando el saldo: %w", err)
	}

	if err := s.portfolioRepo.CloseTx(ctx, tx, portfolioID, result.EffectiveCostRate); err != nil {
		s.logger.WithError(err).Error("Error cerrando la cartera")
		return fmt.Errorf("error cerrando la cartera: %w", err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.WithError(err).Error("Error confirmando la transacción de desembolso")
		return fmt.Errorf("error confirmando la operación: %w", err)
	}

	return nil
}

// applyDisbursementSequential reproduce el comportamiento original: dos
// escrituras sueltas sin compensación. Si el cierre de la cartera falla
// después de acreditar el saldo, el sistema queda con el saldo acreditado y
// la cartera aún activa. Brecha de consistencia documentada; usar el modo
// atómico salvo que la capa de persistencia no soporte transacciones.
func (s *DiscountService) applyDisbursementSequential(ctx context.Context, userID, portfolioID uuid.UUID, result *model.DiscountResult) error {
	if err := s.userRepo.CreditBalance(ctx, userID, result.TotalPresentValue); err != nil {
		s.logger.WithError(err).Error("Error acreditando el saldo del usuario")
		return fmt.Errorf("error acreditando el saldo: %w", err)
	}

	if err := s.portfolioRepo.Close(ctx, portfolioID, result.EffectiveCostRate); err != nil {
		s.logger.WithError(err).Error("Error cerrando la cartera; el saldo ya fue acreditado")
		return fmt.Errorf("error cerrando la cartera: %w", err)
	}

	return nil
}
