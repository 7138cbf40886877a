package model

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Email     string    `json:"email,omitempty" db:"email"`
	Password  string    `json:"-" db:"password"`
	Balance   float64   `json:"balance" db:"balance"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DefaultBalance es el saldo inicial asignado a cada usuario nuevo
const DefaultBalance = 100.0

type SignUpInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required,min=8,max=64"`
}

type SignInInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (u *SignUpInput) Validate() error {
	// Verificación del nombre de usuario
	if len(u.Username) < 3 || len(u.Username) > 50 {
		return fmt.Errorf("el nombre de usuario debe tener entre 3 y 50 caracteres")
	}

	// El email es opcional, pero si viene debe ser válido
	if u.Email != "" && !isValidEmail(u.Email) {
		return fmt.Errorf("formato de email inválido")
	}

	// Verificación de la contraseña
	if len(u.Password) < 8 {
		return fmt.Errorf("la contraseña debe tener al menos 8 caracteres")
	}

	return nil
}

func isValidEmail(email string) bool {
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return emailRegex.MatchString(email)
}
