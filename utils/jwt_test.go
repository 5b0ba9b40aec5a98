package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	ConfigureJWT("test-secret", time.Hour)

	token, err := GenerateToken("64b7f0c2a1b2c3d4e5f60718", "ana@x.com", "admin")
	require.NoError(t, err)

	claims, err := VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", claims.UserID)
	assert.Equal(t, "ana@x.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestVerifyTokenRejectsForeignSignature(t *testing.T) {
	ConfigureJWT("test-secret", time.Hour)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: "x", Role: "admin"}).
		SignedString([]byte("other-secret"))
	require.NoError(t, err)

	_, err = VerifyToken(forged)
	assert.EqualError(t, err, "invalid token")
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	ConfigureJWT("test-secret", time.Hour)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: "x",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = VerifyToken(expired)
	assert.EqualError(t, err, "token has expired")
}
