package service

import "errors"

// Errores del motor de descuento. Todos abortan la operación completa;
// el único caso de continuar-a-pesar-del-error es el salto por factura
// malformada dentro de ComputeDiscountedSet.
var (
	// ErrInvalidRate indica que la TEA de la cartera no es un número finito
	ErrInvalidRate = errors.New("la TEA de la cartera no es un número válido")

	// ErrEmptyInvoiceSet indica que la cartera no tiene facturas asociadas
	ErrEmptyInvoiceSet = errors.New("no hay facturas asociadas a esta cartera")

	// ErrDegenerateTotal indica que el valor presente total es cero o no finito,
	// por lo que la TCEA ponderada no está definida
	ErrDegenerateTotal = errors.New("el valor presente total no permite calcular la TCEA")

	// ErrPortfolioClosed indica que la cartera ya fue desembolsada
	ErrPortfolioClosed = errors.New("la cartera ya se encuentra inactiva")

	// ErrPortfolioHasInvoices indica que la cartera no puede eliminarse
	// mientras tenga facturas asociadas
	ErrPortfolioHasInvoices = errors.New("la cartera tiene facturas asociadas y no puede eliminarse")

	// ErrCurrencyMismatch indica que la moneda de la factura no coincide con
	// la del resto de la cartera
	ErrCurrencyMismatch = errors.New("la moneda de la factura no coincide con la moneda de la cartera")
)
