package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignUpInputValidate(t *testing.T) {
	valid := SignUpInput{Username: "erick", Password: "contraseña-segura"}
	assert.NoError(t, valid.Validate())

	// El email es opcional, pero si viene debe tener formato válido
	withEmail := valid
	withEmail.Email = "erick@example.com"
	assert.NoError(t, withEmail.Validate())

	badEmail := valid
	badEmail.Email = "no-es-un-email"
	assert.Error(t, badEmail.Validate())

	shortName := valid
	shortName.Username = "ab"
	assert.Error(t, shortName.Validate())

	shortPassword := valid
	shortPassword.Password = "corta"
	assert.Error(t, shortPassword.Validate())
}
