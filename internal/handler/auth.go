package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Finanzas-Grupo-6/finanzas-backend/internal/model"
	"github.com/Finanzas-Grupo-6/finanzas-backend/internal/service"
)

// AuthHandler atiende las peticiones de autenticación
type AuthHandler struct {
	authService *service.AuthService // Servicio de autenticación
	logger      *logrus.Logger       // Logger
}

// NewAuthHandler crea un AuthHandler nuevo
func NewAuthHandler(authService *service.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// RegisterRoutes registra las rutas de autenticación
func (h *AuthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/signup", h.SignUp).Methods("POST") // Ruta de registro
	router.HandleFunc("/signin", h.SignIn).Methods("POST") // Ruta de inicio de sesión
}

// SignUp atiende el registro de un usuario nuevo
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var input model.SignUpInput

	// Decodificamos los datos de entrada
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.WithError(err).Error("No se pudieron decodificar los datos de registro")
		http.Error(w, "Formato de petición incorrecto", http.StatusBadRequest)
		return
	}

	// Validamos los datos de entrada
	if err := input.Validate(); err != nil {
		h.logger.WithError(err).Error("Error de validación en los datos de registro")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Registramos al usuario
	user, err := h.authService.SignUp(r.Context(), input)
	if err != nil {
		h.logger.WithError(err).Error("No se pudo registrar al usuario")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Armamos la respuesta
	response := map[string]interface{}{
		"id":         user.ID,
		"username":   user.Username,
		"balance":    user.Balance,
		"created_at": user.CreatedAt.Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}

// SignIn atiende el inicio de sesión
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var input model.SignInInput

	// Decodificamos los datos de entrada
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.WithError(err).Error("No se pudieron decodificar los datos de inicio de sesión")
		http.Error(w, "Formato de petición incorrecto", http.StatusBadRequest)
		return
	}

	// Validamos las credenciales y generamos el token
	token, user, userCount, err := h.authService.SignIn(r.Context(), input)
	if err != nil {
		h.logger.WithError(err).Error("No se pudo iniciar sesión")
		http.Error(w, "Credenciales incorrectas", http.StatusUnauthorized)
		return
	}

	// Respuesta con el token, el usuario y el total de usuarios registrados
	response := map[string]interface{}{
		"token":     token,
		"user":      user,
		"userCount": userCount,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
