package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Finanzas-Grupo-6/finanzas-backend/internal/model"
	"github.com/Finanzas-Grupo-6/finanzas-backend/internal/service"
)

type PortfolioHandler struct {
	portfolioService *service.PortfolioService
	discountService  *service.DiscountService
	analyticService  *service.AnalyticService
	logger           *logrus.Logger
}

func NewPortfolioHandler(
	portfolioService *service.PortfolioService,
	discountService *service.DiscountService,
	analyticService *service.AnalyticService,
	logger *logrus.Logger,
) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
		discountService:  discountService,
		analyticService:  analyticService,
		logger:           logger,
	}
}

func (h *PortfolioHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/amount-per-month", h.GetAmountPerMonth).Methods("GET")
	router.HandleFunc("/totals", h.GetTotals).Methods("GET")
	router.HandleFunc("", h.Create).Methods("POST")
	router.HandleFunc("", h.List).Methods("GET")
	router.HandleFunc("/disburse/{userId}/{portfolioId}", h.ExecuteDisbursement).Methods("POST")
	router.HandleFunc("/{id}", h.GetByID).Methods("GET")
	router.HandleFunc("/{id}", h.Update).Methods("PUT")
	router.HandleFunc("/{id}", h.Delete).Methods("DELETE")
	router.HandleFunc("/{id}/preview-disbursement", h.PreviewDisbursement).Methods("GET")
}

func (h *PortfolioHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreatePortfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("No se pudo decodificar la petición de creación de cartera")
		http.Error(w, "Formato de petición incorrecto", http.StatusBadRequest)
		return
	}

	if err := req.Validate(); err != nil {
		h.logger.WithError(err).Error("Error de validación en la creación de cartera")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	portfolio, err := h.portfolioService.Create(r.Context(), req)
	if err != nil {
		h.logger.WithError(err).Error("No se pudo crear la cartera")
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(portfolio)
}

// List devuelve todas las carteras con sus facturas descontadas y la TCEA
// recalculada
func (h *PortfolioHandler) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.portfolioService.ListWithComputedFields(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("No se pudieron obtener las carteras")
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(views)
}

func (h *PortfolioHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de cartera incorrecto", http.StatusBadRequest)
		return
	}

	portfolio, invoices, err := h.portfolioService.GetWithInvoices(r.Context(), id)
	if err != nil {
		h.logger.WithError(err).Error("No se pudo obtener la cartera")
		writeError(w, err)
		return
	}

	// La cartera se devuelve junto con sus facturas
	response := map[string]interface{}{
		"id":                portfolio.ID,
		"name":              portfolio.Name,
		"creationDate":      portfolio.CreationDate,
		"discountDate":      portfolio.DiscountDate,
		"nominalAnnualRate": portfolio.NominalAnnualRate,
		"effectiveCostRate": portfolio.EffectiveCostRate,
		"state":             portfolio.State,
		"invoices":          invoices,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

func (h *PortfolioHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de cartera incorrecto", http.StatusBadRequest)
		return
	}

	var req model.UpdatePortfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("No se pudo decodificar la petición de actualización de cartera")
		http.Error(w, "Formato de petición incorrecto", http.StatusBadRequest)
		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	portfolio, err := h.portfolioService.Update(r.Context(), id, req)
	if err != nil {
		h.logger.WithError(err).Error("No se pudo actualizar la cartera")
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(portfolio)
}

func (h *PortfolioHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de cartera incorrecto", http.StatusBadRequest)
		return
	}

	if err := h.portfolioService.Delete(r.Context(), id); err != nil {
		h.logger.WithError(err).Error("No se pudo eliminar la cartera")
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "Cartera eliminada con éxito"})
}

// GetTotals devuelve todas las carteras con la suma nominal de sus facturas
func (h *PortfolioHandler) GetTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.portfolioService.ListWithTotals(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("No se pudieron obtener las carteras con montos")
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(totals)
}

// GetAmountPerMonth devuelve el monto total de facturas por mes de vencimiento
func (h *PortfolioHandler) GetAmountPerMonth(w http.ResponseWriter, r *http.Request) {
	amounts, err := h.analyticService.GetAmountPerMonth(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("No se pudo obtener el monto total por mes")
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(amounts)
}

// PreviewDisbursement calcula el monto a recibir hoy por la cartera, sin
// efectos secundarios
func (h *PortfolioHandler) PreviewDisbursement(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de cartera incorrecto", http.StatusBadRequest)
		return
	}

	result, err := h.discountService.PreviewDisbursement(r.Context(), id)
	if err != nil {
		h.logger.WithError(err).Error("No se pudo calcular el monto a recibir")
		writeError(w, err)
		return
	}

	response := map[string]interface{}{
		"effectiveCostRate": result.EffectiveCostRate,
		"totalPresentValue": fmt.Sprintf("%.2f", result.TotalPresentValue),
		"invoices":          result.Invoices,
		"message":           fmt.Sprintf("El monto total a recibir hoy es de %.2f", result.TotalPresentValue),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// ExecuteDisbursement acredita el desembolso al usuario y cierra la cartera
func (h *PortfolioHandler) ExecuteDisbursement(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	userID, err := uuid.Parse(vars["userId"])
	if err != nil {
		http.Error(w, "ID de usuario incorrecto", http.StatusBadRequest)
		return
	}

	portfolioID, err := uuid.Parse(vars["portfolioId"])
	if err != nil {
		http.Error(w, "ID de cartera incorrecto", http.StatusBadRequest)
		return
	}

	result, err := h.discountService.ExecuteDisbursement(r.Context(), userID, portfolioID)
	if err != nil {
		h.logger.WithError(err).Error("No se pudo ejecutar el desembolso")
		writeError(w, err)
		return
	}

	response := map[string]interface{}{
		"message": fmt.Sprintf("Saldo actualizado con éxito. El monto de %.2f fue añadido al saldo del usuario.",
			result.TotalDisbursed),
		"updatedBalance": result.UpdatedBalance,
		"portfolioState": result.PortfolioState,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
