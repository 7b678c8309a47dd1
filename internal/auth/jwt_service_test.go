package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateAccessToken(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, err := svc.GenerateAccessToken(7, "maria")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "maria", claims.Username)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a").GenerateAccessToken(7, "maria")
	require.NoError(t, err)

	_, err = NewJWTService("secret-b").ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := NewJWTService("test-secret").ValidateToken("not-a-jwt")
	assert.Error(t, err)
}

func TestExtractTokenID(t *testing.T) {
	svc := NewJWTService("test-secret")

	tokenID, refreshToken, err := svc.GenerateRefreshToken(7, "maria")
	require.NoError(t, err)
	require.NotEmpty(t, tokenID)

	extracted, err := svc.ExtractTokenID(refreshToken)
	require.NoError(t, err)
	assert.Equal(t, tokenID, extracted)
}

func TestExtractTokenID_AccessTokenHasNoID(t *testing.T) {
	svc := NewJWTService("test-secret")

	accessToken, err := svc.GenerateAccessToken(7, "maria")
	require.NoError(t, err)

	_, err = svc.ExtractTokenID(accessToken)
	assert.Error(t, err)
}
