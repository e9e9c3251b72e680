package jwtinfra

import (
	"errors"
	"testing"
	"time"

	"github.com/go-auth-api/internal/config"
	"github.com/go-auth-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProvider(t *testing.T, secret string) *Provider {
	t.Helper()
	p, err := NewProvider(&config.Config{
		JWTSecret:     secret,
		JWTIssuer:     "auth-api",
		SessionExpiry: 4 * 24 * time.Hour,
	})
	require.NoError(t, err)
	return p
}

func TestNewProvider_RequiresSecret(t *testing.T) {
	_, err := NewProvider(&config.Config{JWTIssuer: "auth-api"})
	require.Error(t, err)
}

func TestSignVerify_RoundTrip(t *testing.T) {
	p := testProvider(t, "test-secret")

	token, err := p.Sign("alice@example.com")
	require.NoError(t, err)

	subject, err := p.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", subject)
}

func TestVerify_WrongKey(t *testing.T) {
	signer := testProvider(t, "secret-a")
	verifier := testProvider(t, "secret-b")

	token, err := signer.Sign("alice@example.com")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidToken))
}

func TestVerify_Expired(t *testing.T) {
	p := testProvider(t, "test-secret")

	token, err := p.Sign("alice@example.com")
	require.NoError(t, err)

	p.now = func() time.Time { return time.Now().Add(5 * 24 * time.Hour) }

	_, err = p.Verify(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidToken))
}

func TestVerify_WrongIssuer(t *testing.T) {
	p := testProvider(t, "test-secret")

	claims := jwt.RegisteredClaims{
		Issuer:    "someone-else",
		Subject:   "alice@example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = p.Verify(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidToken))
}

func TestVerify_UnsignedTokenRejected(t *testing.T) {
	p := testProvider(t, "test-secret")

	claims := jwt.RegisteredClaims{
		Issuer:    "auth-api",
		Subject:   "alice@example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = p.Verify(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidToken))
}

func TestVerify_Garbage(t *testing.T) {
	p := testProvider(t, "test-secret")

	_, err := p.Verify("not-a-jwt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidToken))
}
