package repository

import "errors"

// Errores centinela para que los servicios puedan distinguir qué entidad faltó
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrPortfolioNotFound = errors.New("portfolio not found")
	ErrInvoiceNotFound   = errors.New("invoice not found")
)
