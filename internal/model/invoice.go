package model

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Invoice representa una factura perteneciente a una cartera
type Invoice struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Client        string    `json:"client" db:"client"`
	InvoiceNumber string    `json:"invoiceNumber" db:"invoice_number"`
	Amount        float64   `json:"amount" db:"amount"`
	Currency      string    `json:"currency" db:"currency"` // informativa, nunca interviene en la aritmética
	MaturityDate  time.Time `json:"maturityDate" db:"maturity_date"`
	PortfolioID   uuid.UUID `json:"portfolioId" db:"portfolio_id"`
}

type CreateInvoiceRequest struct {
	Client        string    `json:"client" validate:"required"`
	InvoiceNumber string    `json:"invoiceNumber" validate:"required"`
	Amount        float64   `json:"amount" validate:"required,gt=0"`
	Currency      string    `json:"currency" validate:"required"`
	MaturityDate  time.Time `json:"maturityDate" validate:"required"`
	PortfolioID   uuid.UUID `json:"portfolioId" validate:"required"`
}

type UpdateInvoiceRequest struct {
	Client        *string    `json:"client"`
	InvoiceNumber *string    `json:"invoiceNumber"`
	Amount        *float64   `json:"amount"`
	Currency      *string    `json:"currency"`
	MaturityDate  *time.Time `json:"maturityDate"`
}

func (r *CreateInvoiceRequest) Validate() error {
	if r.Client == "" {
		return fmt.Errorf("el cliente es obligatorio")
	}
	if r.InvoiceNumber == "" {
		return fmt.Errorf("el número de factura es obligatorio")
	}
	if !isValidAmount(r.Amount) {
		return fmt.Errorf("el monto debe ser un número finito mayor que cero")
	}
	if r.Currency == "" {
		return fmt.Errorf("la moneda es obligatoria")
	}
	if r.MaturityDate.IsZero() {
		return fmt.Errorf("la fecha de vencimiento es obligatoria")
	}
	if r.PortfolioID == uuid.Nil {
		return fmt.Errorf("la cartera es obligatoria")
	}
	return nil
}

func (r *UpdateInvoiceRequest) Validate() error {
	if r.Client != nil && *r.Client == "" {
		return fmt.Errorf("el cliente no puede estar vacío")
	}
	if r.InvoiceNumber != nil && *r.InvoiceNumber == "" {
		return fmt.Errorf("el número de factura no puede estar vacío")
	}
	if r.Amount != nil && !isValidAmount(*r.Amount) {
		return fmt.Errorf("el monto debe ser un número finito mayor que cero")
	}
	if r.Currency != nil && *r.Currency == "" {
		return fmt.Errorf("la moneda no puede estar vacía")
	}
	if r.MaturityDate != nil && r.MaturityDate.IsZero() {
		return fmt.Errorf("la fecha de vencimiento no puede estar vacía")
	}
	return nil
}

func isValidAmount(amount float64) bool {
	return !math.IsNaN(amount) && !math.IsInf(amount, 0) && amount > 0
}
