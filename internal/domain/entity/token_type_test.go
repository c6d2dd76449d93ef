package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenType_IsValid(t *testing.T) {
	for _, tokenType := range []TokenType{TokenTypeAccess, TokenTypeRefresh, TokenTypeConfirmation, TokenTypeResetPassword} {
		assert.True(t, tokenType.IsValid(), tokenType.String())
	}

	assert.False(t, TokenType("session").IsValid())
	assert.False(t, TokenType("").IsValid())
}

func TestTokenType_CarriesVersion(t *testing.T) {
	assert.False(t, TokenTypeAccess.CarriesVersion())
	assert.True(t, TokenTypeRefresh.CarriesVersion())
	assert.True(t, TokenTypeConfirmation.CarriesVersion())
	assert.True(t, TokenTypeResetPassword.CarriesVersion())
}
