package jwthelper

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("test-signing-key")

func TestSessionTokenRoundTrip(t *testing.T) {
	token, err := GenerateSessionToken(testKey, 42, "admin")
	require.NoError(t, err)

	claims, err := ParseSessionToken(testKey, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestParseSessionToken_WrongKey(t *testing.T) {
	token, err := GenerateSessionToken(testKey, 1, "user")
	require.NoError(t, err)

	_, err = ParseSessionToken([]byte("another-key"), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseSessionToken_Garbage(t *testing.T) {
	_, err := ParseSessionToken(testKey, "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseSessionToken_Expired(t *testing.T) {
	claims := SessionClaims{
		UserID: 7,
		Role:   "user",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testKey)
	require.NoError(t, err)

	_, err = ParseSessionToken(testKey, token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestResetTokenRoundTrip(t *testing.T) {
	token, err := GenerateResetToken(testKey, 9, "runner@example.com")
	require.NoError(t, err)

	claims, err := ParseResetToken(testKey, token)
	require.NoError(t, err)
	assert.Equal(t, uint(9), claims.UserID)
	assert.Equal(t, "runner@example.com", claims.Email)
}

func TestParseResetToken_RejectsSessionToken(t *testing.T) {
	// A session token is structurally valid but lacks the reset purpose.
	token, err := GenerateSessionToken(testKey, 9, "user")
	require.NoError(t, err)

	_, err = ParseResetToken(testKey, token)
	assert.ErrorIs(t, err, ErrInvalidPurpose)
}

func TestParseResetToken_RejectsWrongPurpose(t *testing.T) {
	claims := ResetClaims{
		UserID:  3,
		Email:   "runner@example.com",
		Purpose: "email-verification",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testKey)
	require.NoError(t, err)

	_, err = ParseResetToken(testKey, token)
	assert.ErrorIs(t, err, ErrInvalidPurpose)
}
