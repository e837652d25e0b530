package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arturoeanton/go-novelty-analyzer-ollama/internal/port"
)

var testCfg = JWTConfig{Secret: "test-secret", Issuer: "idealens"}

func TestSignAndValidateRoundTrip(t *testing.T) {
	token := SignToken(Claims{
		Subject: "user-42",
		Email:   "student@example.edu",
		Role:    "user",
	}, testCfg, time.Hour)

	claims, err := validateJWT(token, testCfg.Secret, testCfg.Issuer)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.Subject)
	assert.Equal(t, "student@example.edu", claims.Email)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, "idealens", claims.Issuer)
	assert.Greater(t, claims.ExpiresAt, time.Now().Unix())
}

func TestValidateRejectsExpired(t *testing.T) {
	token := SignToken(Claims{
		Subject:   "user-42",
		IssuedAt:  time.Now().Add(-2 * time.Hour).Unix(),
		ExpiresAt: time.Now().Add(-time.Hour).Unix(),
	}, testCfg, 0)

	_, err := validateJWT(token, testCfg.Secret, testCfg.Issuer)
	assert.ErrorIs(t, err, port.ErrTokenExpired)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token := SignToken(Claims{Subject: "user-42"}, testCfg, time.Hour)

	_, err := validateJWT(token, "other-secret", testCfg.Issuer)
	assert.ErrorIs(t, err, port.ErrTokenInvalid)
}

func TestValidateRejectsWrongIssuer(t *testing.T) {
	token := SignToken(Claims{Subject: "user-42", Issuer: "someone-else"}, testCfg, time.Hour)

	_, err := validateJWT(token, testCfg.Secret, testCfg.Issuer)
	assert.ErrorIs(t, err, port.ErrTokenInvalid)
}

func TestValidateRejectsGarbage(t *testing.T) {
	for _, tok := range []string{"", "abc", "a.b", "a.b.c.d", "!!!.???.###"} {
		_, err := validateJWT(tok, testCfg.Secret, testCfg.Issuer)
		assert.ErrorIs(t, err, port.ErrTokenInvalid, "token %q", tok)
	}
}
