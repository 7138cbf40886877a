package model

import (
	"github.com/google/uuid"
)

// DiscountedInvoice es el resumen de una factura ya descontada.
// Los montos se reportan con 2 decimales y la tasa con 4, como en los
// estados de cuenta que consume el frontend.
type DiscountedInvoice struct {
	ID               uuid.UUID `json:"id"`
	InvoiceNumber    string    `json:"invoiceNumber"`
	OriginalAmount   float64   `json:"originalAmount"`
	MaturityDate     string    `json:"maturityDate"` // solo fecha calendario, YYYY-MM-DD en UTC
	DaysRemaining    int       `json:"daysRemaining"`
	DiscountRate     float64   `json:"discountRate"`
	DiscountedAmount float64   `json:"discountedAmount"`
}

// DiscountResult agrupa el resultado del descuento de una cartera completa
type DiscountResult struct {
	Invoices          []DiscountedInvoice `json:"invoices"`
	TotalPresentValue float64             `json:"totalPresentValue"`
	WeightSum         float64             `json:"-"`
	EffectiveCostRate float64             `json:"effectiveCostRate"` // TCEA en porcentaje
}

// DisbursementResult es la respuesta de la ejecución del desembolso
type DisbursementResult struct {
	TotalDisbursed    float64 `json:"totalDisbursed"`
	UpdatedBalance    float64 `json:"updatedBalance"`
	PortfolioState    string  `json:"portfolioState"`
	EffectiveCostRate float64 `json:"effectiveCostRate"`
}

// PortfolioView es una cartera decorada con sus facturas descontadas
type PortfolioView struct {
	Portfolio
	Invoices          []InvoiceWithDiscount `json:"invoices"`
	InvoiceCount      int                   `json:"invoiceCount"`
	ComputedCostRate  float64               `json:"tcea"`
	TotalPresentValue float64               `json:"totalPresentValue"`
}

// InvoiceWithDiscount es una factura junto a su valor descontado
type InvoiceWithDiscount struct {
	Invoice
	DiscountedAmount float64 `json:"discountedAmount"`
}

// PortfolioTotals es una cartera con la suma de los montos nominales de sus facturas
type PortfolioTotals struct {
	Portfolio
	TotalFaceAmount float64 `json:"totalFaceAmount"`
}
