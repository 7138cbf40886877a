package handler

import (
	"errors"
	"net/http"

	"github.com/Finanzas-Grupo-6/finanzas-backend/internal/repository"
	"github.com/Finanzas-Grupo-6/finanzas-backend/internal/service"
)

// statusForError traduce los errores de dominio a códigos HTTP
func statusForError(err error) int {
	switch {
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrPortfolioNotFound),
		errors.Is(err, repository.ErrInvoiceNotFound),
		errors.Is(err, service.ErrEmptyInvoiceSet):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidRate),
		errors.Is(err, service.ErrDegenerateTotal):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrPortfolioClosed),
		errors.Is(err, service.ErrPortfolioHasInvoices),
		errors.Is(err, service.ErrCurrencyMismatch):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), statusForError(err))
}
