package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Finanzas-Grupo-6/finanzas-backend/internal/model"
	"github.com/Finanzas-Grupo-6/finanzas-backend/internal/repository"
)

func newAuthService(t *testing.T, expiry time.Duration) (*AuthService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	userRepo := repository.NewUserRepository(db, testLogger())
	return NewAuthService(userRepo, "secreto-de-prueba", expiry, testLogger()), mock
}

func TestGenerateAndParseToken(t *testing.T) {
	s, _ := newAuthService(t, time.Hour)
	userID := uuid.NewString()

	token, err := s.GenerateJWTToken(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsedID, err := s.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, parsedID)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	s, _ := newAuthService(t, -time.Minute)

	token, err := s.GenerateJWTToken(uuid.NewString())
	require.NoError(t, err)

	_, err = s.ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	s, _ := newAuthService(t, time.Hour)
	other, _ := newAuthService(t, time.Hour)
	other.jwtSecret = "otro-secreto"

	token, err := other.GenerateJWTToken(uuid.NewString())
	require.NoError(t, err)

	_, err = s.ParseToken(token)
	assert.Error(t, err)
}

func TestSignUpAssignsDefaultBalance(t *testing.T) {
	s, mock := newAuthService(t, time.Hour)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("erick").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(0, 1))

	user, err := s.SignUp(context.Background(), model.SignUpInput{
		Username: "erick",
		Password: "contraseña-segura",
	})
	require.NoError(t, err)

	assert.Equal(t, "erick", user.Username)
	assert.Equal(t, model.DefaultBalance, user.Balance)
	// La contraseña se guarda hasheada, nunca en claro
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("contraseña-segura")))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignUpRejectsDuplicateUsername(t *testing.T) {
	s, mock := newAuthService(t, time.Hour)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("erick").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := s.SignUp(context.Background(), model.SignUpInput{
		Username: "erick",
		Password: "contraseña-segura",
	})
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignInReturnsTokenAndUserCount(t *testing.T) {
	s, mock := newAuthService(t, time.Hour)
	userID := uuid.New()
	now := time.Now()

	hashed, err := bcrypt.GenerateFromPassword([]byte("contraseña-segura"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery("FROM users").
		WithArgs("erick").
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(userID.String(), "erick", "erick@example.com", string(hashed), 100.0, now, now))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	token, user, userCount, err := s.SignIn(context.Background(), model.SignInInput{
		Username: "erick",
		Password: "contraseña-segura",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, token)
	assert.Equal(t, int64(7), userCount)
	// El usuario devuelto no expone la contraseña
	assert.Empty(t, user.Password)

	parsedID, err := s.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), parsedID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignInRejectsWrongPassword(t *testing.T) {
	s, mock := newAuthService(t, time.Hour)
	userID := uuid.New()
	now := time.Now()

	hashed, err := bcrypt.GenerateFromPassword([]byte("contraseña-segura"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery("FROM users").
		WithArgs("erick").
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(userID.String(), "erick", "", string(hashed), 100.0, now, now))

	_, _, _, err = s.SignIn(context.Background(), model.SignInInput{
		Username: "erick",
		Password: "otra-contraseña",
	})
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
