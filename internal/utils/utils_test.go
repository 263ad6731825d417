package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestJWTRoundTrip(t *testing.T) {
	tok, err := GenerateJWT(secret, "u1", "doctor", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateJWT(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "doctor", claims.Role)
}

func TestJWTRejects(t *testing.T) {
	expired, err := GenerateJWT(secret, "u1", "patient", -time.Minute)
	require.NoError(t, err)
	_, err = ValidateJWT(secret, expired)
	assert.Error(t, err, "expired")

	tok, err := GenerateJWT(secret, "u1", "patient", time.Hour)
	require.NoError(t, err)
	_, err = ValidateJWT([]byte("other"), tok)
	assert.Error(t, err, "wrong secret")

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u1", Role: "admin"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ValidateJWT(secret, none)
	assert.Error(t, err, "alg none")

	_, err = GenerateJWT(nil, "u1", "patient", time.Hour)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestPasswordHash(t *testing.T) {
	h, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("correct horse", h))
	assert.False(t, CheckPasswordHash("wrong", h))
}
