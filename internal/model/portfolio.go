package model

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Estados posibles de una cartera. El paso a inactiva ocurre una sola
// vez, al ejecutar el desembolso, y es terminal.
const (
	PortfolioStateActive   = "active"
	PortfolioStateInactive = "inactive"
)

// Portfolio representa una cartera de facturas por descontar
type Portfolio struct {
	ID                uuid.UUID `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	CreationDate      time.Time `json:"creationDate" db:"creation_date"`
	DiscountDate      time.Time `json:"discountDate" db:"discount_date"`
	NominalAnnualRate float64   `json:"nominalAnnualRate" db:"nominal_annual_rate"` // TEA en porcentaje (18 = 18%)
	EffectiveCostRate float64   `json:"effectiveCostRate" db:"effective_cost_rate"` // TCEA, último valor calculado
	State             string    `json:"state" db:"state"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

type CreatePortfolioRequest struct {
	Name              string    `json:"name" validate:"required"`
	DiscountDate      time.Time `json:"discountDate" validate:"required"`
	NominalAnnualRate *float64  `json:"nominalAnnualRate"` // opcional: si falta puede tomarse la tasa del BCRP
}

type UpdatePortfolioRequest struct {
	Name              *string    `json:"name"`
	DiscountDate      *time.Time `json:"discountDate"`
	NominalAnnualRate *float64   `json:"nominalAnnualRate"`
}

func (r *CreatePortfolioRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("el nombre de la cartera es obligatorio")
	}
	if r.DiscountDate.IsZero() {
		return fmt.Errorf("la fecha de descuento es obligatoria")
	}
	// La TEA se rechaza en el ingreso si no es un número finito
	if r.NominalAnnualRate != nil && !IsFiniteRate(*r.NominalAnnualRate) {
		return fmt.Errorf("la TEA debe ser un número finito no negativo")
	}
	return nil
}

func (r *UpdatePortfolioRequest) Validate() error {
	if r.Name != nil && *r.Name == "" {
		return fmt.Errorf("el nombre de la cartera no puede estar vacío")
	}
	if r.DiscountDate != nil && r.DiscountDate.IsZero() {
		return fmt.Errorf("la fecha de descuento no puede estar vacía")
	}
	if r.NominalAnnualRate != nil && !IsFiniteRate(*r.NominalAnnualRate) {
		return fmt.Errorf("la TEA debe ser un número finito no negativo")
	}
	return nil
}

// IsFiniteRate indica si un porcentaje es utilizable en los cálculos de descuento
func IsFiniteRate(rate float64) bool {
	return !math.IsNaN(rate) && !math.IsInf(rate, 0) && rate >= 0
}
