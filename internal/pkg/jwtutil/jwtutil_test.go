package jwtutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParseRoundTrip(t *testing.T) {
	age := 12
	token, err := GenerateToken("secret", time.Hour, "kid@example.com", "Asha", &age)
	require.NoError(t, err)

	claims, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "kid@example.com", claims.Email)
	assert.Equal(t, "Asha", claims.Name)
	require.NotNil(t, claims.Age)
	assert.Equal(t, 12, *claims.Age)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret", time.Hour, "a@b.c", "A", nil)
	require.NoError(t, err)

	_, err = ParseToken("other-secret", token)
	assert.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	token, err := GenerateToken("secret", -time.Minute, "a@b.c", "A", nil)
	require.NoError(t, err)

	_, err = ParseToken("secret", token)
	assert.Error(t, err)
}

func TestParseTokenRejectsMissingEmail(t *testing.T) {
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"name": "noemail"})
	token, err := raw.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ParseToken("secret", token)
	assert.Error(t, err)
}

func TestDecodeUnverified(t *testing.T) {
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "g@example.com",
		"name":  "G User",
	})
	token, err := raw.SignedString([]byte("someone-elses-secret"))
	require.NoError(t, err)

	claims, err := DecodeUnverified(token)
	require.NoError(t, err)
	assert.Equal(t, "g@example.com", claims["email"])
	assert.Equal(t, "G User", claims["name"])
}

func TestDecodeUnverifiedGarbage(t *testing.T) {
	_, err := DecodeUnverified("not-a-token")
	assert.Error(t, err)
}
