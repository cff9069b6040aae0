package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantum/internal/models"
)

func signToken(t *testing.T, secret string, claims providerClaims) string {
	t.Helper()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestTokenProviderMapsClaims(t *testing.T) {
	token := signToken(t, "secret", providerClaims{
		ID:        42,
		Username:  "Dana",
		FirstName: "Dana",
		LastName:  "Smith",
		PhotoURL:  "https://example.com/dana.png",
	})

	user, err := NewTokenProvider(token, "secret", "clanffys").CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, "@dana", user.Username)
	assert.Equal(t, "Dana Smith", user.DisplayName)
	assert.Equal(t, "https://example.com/dana.png", user.Avatar)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.False(t, user.IsVerified)
}

func TestTokenProviderElevatesCreator(t *testing.T) {
	token := signToken(t, "secret", providerClaims{
		ID:       1,
		Username: "clanffys",
	})

	user, err := NewTokenProvider(token, "secret", "clanffys").CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, "@clanffys", user.Username)
	assert.Equal(t, models.RoleCreator, user.Role)
	assert.True(t, user.IsVerified)
}

func TestTokenProviderRejectsBadSignature(t *testing.T) {
	token := signToken(t, "wrong-secret", providerClaims{Username: "dana"})

	_, err := NewTokenProvider(token, "secret", "clanffys").CurrentUser()
	assert.Error(t, err)
}

func TestTokenProviderRejectsMissingUsername(t *testing.T) {
	token := signToken(t, "secret", providerClaims{ID: 7})

	_, err := NewTokenProvider(token, "secret", "clanffys").CurrentUser()
	assert.Error(t, err)
}
