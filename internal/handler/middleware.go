package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Finanzas-Grupo-6/finanzas-backend/internal/service"
)

// AuthMiddleware verifica la presencia y validez del token JWT en la
// cabecera Authorization
func AuthMiddleware(authService *service.AuthService, logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Obtenemos la cabecera Authorization
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Error("Falta la cabecera Authorization")
				http.Error(w, "La cabecera Authorization es obligatoria", http.StatusUnauthorized)
				return
			}

			// Verificamos el formato de la cabecera
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				logger.Error("Formato incorrecto de la cabecera Authorization")
				http.Error(w, "Formato incorrecto de la cabecera Authorization", http.StatusUnauthorized)
				return
			}

			token := parts[1]
			// Parseamos el token y verificamos su validez
			userID, err := authService.ParseToken(token)
			if err != nil {
				logger.WithError(err).Error("Token incorrecto")
				http.Error(w, "Token incorrecto", http.StatusUnauthorized)
				return
			}

			// Agregamos el userID al contexto
			ctx := context.WithValue(r.Context(), "userID", userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
