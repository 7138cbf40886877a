package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/Finanzas-Grupo-6/finanzas-backend/internal/model"
	"github.com/Finanzas-Grupo-6/finanzas-backend/internal/repository"
)

type AuthService struct {
	userRepo    *repository.UserRepository
	jwtSecret   string
	tokenExpiry time.Duration
	logger      *logrus.Logger
}

func NewAuthService(userRepo *repository.UserRepository, jwtSecret string, tokenExpiry time.Duration, logger *logrus.Logger) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		jwtSecret:   jwtSecret,
		tokenExpiry: tokenExpiry,
		logger:      logger,
	}
}

// SignUp registra un usuario nuevo con el saldo inicial por defecto
func (s *AuthService) SignUp(ctx context.Context, input model.SignUpInput) (*model.User, error) {
	s.logger.WithField("username", input.Username).Info("Intento de registro de usuario nuevo")

	// Verificación de existencia previa
	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		s.logger.WithError(err).Error("No se pudo verificar la existencia del usuario")
		return nil, fmt.Errorf("error verificando la existencia del usuario: %w", err)
	}
	if exists {
		s.logger.Warn("Ya existe un usuario con ese nombre")
		return nil, fmt.Errorf("ya existe un usuario con ese nombre")
	}

	// Hash de la contraseña
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.WithError(err).Error("No se pudo hashear la contraseña")
		return nil, fmt.Errorf("error hasheando la contraseña: %w", err)
	}

	// Creación del usuario
	now := time.Now()
	user := &model.User{
		ID:        uuid.New(),
		Username:  input.Username,
		Email:     input.Email,
		Password:  string(hashedPassword),
		Balance:   model.DefaultBalance,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.WithError(err).Error("No se pudo crear el usuario en la base de datos")
		return nil, fmt.Errorf("error creando el usuario: %w", err)
	}

	s.logger.WithField("user_id", user.ID).Info("Usuario registrado con éxito")
	return user, nil
}

// SignIn valida las credenciales y genera el token JWT. Devuelve también el
// usuario (sin contraseña) y el total de usuarios registrados, que el
// frontend muestra tras el login.
func (s *AuthService) SignIn(ctx context.Context, input model.SignInInput) (string, *model.User, int64, error) {
	s.logger.WithField("username", input.Username).Info("Intento de inicio de sesión")

	// Búsqueda del usuario por nombre
	user, err := s.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		s.logger.WithError(err).Warn("Usuario no encontrado o credenciales incorrectas")
		return "", nil, 0, fmt.Errorf("credenciales incorrectas")
	}

	// Verificación de la contraseña
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		s.logger.Warn("Contraseña incorrecta en el intento de inicio de sesión")
		return "", nil, 0, fmt.Errorf("credenciales incorrectas")
	}

	// Generación del token JWT
	token, err := s.GenerateJWTToken(user.ID.String())
	if err != nil {
		s.logger.WithError(err).Error("No se pudo generar el token JWT")
		return "", nil, 0, fmt.Errorf("error generando el token: %w", err)
	}

	userCount, err := s.userRepo.Count(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("No se pudo contar los usuarios registrados")
		userCount = 0
	}

	s.logger.WithField("user_id", user.ID).Info("Inicio de sesión exitoso")
	user.Password = ""
	return token, user, userCount, nil
}

// GenerateJWTToken genera el token JWT firmado con vigencia fija
func (s *AuthService) GenerateJWTToken(userID string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenExpiry)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ParseToken valida el token JWT y extrae el identificador del usuario
func (s *AuthService) ParseToken(tokenString string) (string, error) {
	s.logger.Debug("Intento de parseo del token JWT")

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verificación del método de firma
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil || !token.Valid {
		s.logger.WithError(err).Warn("Token JWT inválido")
		return "", fmt.Errorf("token inválido: %w", err)
	}

	// Extracción del ID del usuario
	userID := claims.Subject
	if userID == "" {
		s.logger.Error("No se pudo extraer el identificador del usuario del token")
		return "", fmt.Errorf("claims del token incorrectos")
	}

	s.logger.WithField("user_id", userID).Debug("Token JWT validado")
	return userID, nil
}
