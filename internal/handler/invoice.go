package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Finanzas-Grupo-6/finanzas-backend/internal/model"
	"github.com/Finanzas-Grupo-6/finanzas-backend/internal/service"
)

type InvoiceHandler struct {
	invoiceService  *service.InvoiceService
	analyticService *service.AnalyticService
	logger          *logrus.Logger
}

func NewInvoiceHandler(
	invoiceService *service.InvoiceService,
	analyticService *service.AnalyticService,
	logger *logrus.Logger,
) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService:  invoiceService,
		analyticService: analyticService,
		logger:          logger,
	}
}

func (h *InvoiceHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/per-month", h.GetPerMonth).Methods("GET")
	router.HandleFunc("", h.Create).Methods("POST")
	router.HandleFunc("", h.List).Methods("GET")
	router.HandleFunc("/{id}", h.GetByID).Methods("GET")
	router.HandleFunc("/{id}", h.Update).Methods("PUT")
	router.HandleFunc("/{id}", h.Delete).Methods("DELETE")
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("No se pudo decodificar la petición de creación de factura")
		http.Error(w, "Formato de petición incorrecto", http.StatusBadRequest)
		return
	}

	if err := req.Validate(); err != nil {
		h.logger.WithError(err).Error("Error de validación en la creación de factura")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	invoice, err := h.invoiceService.Create(r.Context(), req)
	if err != nil {
		h.logger.WithError(err).Error("No se pudo crear la factura")
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(invoice)
}

func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.invoiceService.GetAll(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("No se pudieron obtener las facturas")
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(invoices)
}

func (h *InvoiceHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de factura incorrecto", http.StatusBadRequest)
		return
	}

	invoice, err := h.invoiceService.GetByID(r.Context(), id)
	if err != nil {
		h.logger.WithError(err).Error("No se pudo obtener la factura")
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(invoice)
}

func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de factura incorrecto", http.StatusBadRequest)
		return
	}

	var req model.UpdateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("No se pudo decodificar la petición de actualización de factura")
		http.Error(w, "Formato de petición incorrecto", http.StatusBadRequest)
		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	invoice, err := h.invoiceService.Update(r.Context(), id, req)
	if err != nil {
		h.logger.WithError(err).Error("No se pudo actualizar la factura")
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(invoice)
}

func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de factura incorrecto", http.StatusBadRequest)
		return
	}

	if err := h.invoiceService.Delete(r.Context(), id); err != nil {
		h.logger.WithError(err).Error("No se pudo eliminar la factura")
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "Factura eliminada con éxito"})
}

// GetPerMonth devuelve cuántas facturas vencen en cada mes
func (h *InvoiceHandler) GetPerMonth(w http.ResponseWriter, r *http.Request) {
	counts, err := h.analyticService.GetInvoicesPerMonth(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("No se pudieron obtener las facturas por mes")
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(counts)
}
