package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsFiniteRate(t *testing.T) {
	assert.True(t, IsFiniteRate(0))
	assert.True(t, IsFiniteRate(18))
	assert.True(t, IsFiniteRate(99.99))

	assert.False(t, IsFiniteRate(math.NaN()))
	assert.False(t, IsFiniteRate(math.Inf(1)))
	assert.False(t, IsFiniteRate(math.Inf(-1)))
	assert.False(t, IsFiniteRate(-0.01))
}

func TestCreatePortfolioRequestValidate(t *testing.T) {
	rate := 18.0
	valid := CreatePortfolioRequest{
		Name:              "Cartera Q3",
		DiscountDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		NominalAnnualRate: &rate,
	}
	assert.NoError(t, valid.Validate())

	// La TEA es opcional: sin ella puede tomarse la tasa de referencia
	noRate := valid
	noRate.NominalAnnualRate = nil
	assert.NoError(t, noRate.Validate())

	noName := valid
	noName.Name = ""
	assert.Error(t, noName.Validate())

	noDate := valid
	noDate.DiscountDate = time.Time{}
	assert.Error(t, noDate.Validate())

	badRate := math.NaN()
	invalid := valid
	invalid.NominalAnnualRate = &badRate
	assert.Error(t, invalid.Validate())
}

func TestUpdatePortfolioRequestValidate(t *testing.T) {
	name := "Cartera renombrada"
	rate := 22.5
	valid := UpdatePortfolioRequest{Name: &name, NominalAnnualRate: &rate}
	assert.NoError(t, valid.Validate())

	// Los campos ausentes no se validan
	assert.NoError(t, (&UpdatePortfolioRequest{}).Validate())

	empty := ""
	assert.Error(t, (&UpdatePortfolioRequest{Name: &empty}).Validate())

	negative := -5.0
	assert.Error(t, (&UpdatePortfolioRequest{NominalAnnualRate: &negative}).Validate())
}
