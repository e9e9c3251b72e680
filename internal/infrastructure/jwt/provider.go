package jwtinfra

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-auth-api/internal/config"
	"github.com/go-auth-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Provider signs and verifies HS256 session assertions. Assertions are
// stateless: three claims (issuer, subject = login email, expiry) bound by an
// HMAC over a symmetric key held only by the service. There is no server-side
// store and no revocation; expiry is the only bound on lifetime.
type Provider struct {
	secret []byte
	issuer string
	expiry time.Duration
	now    func() time.Time
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET not set")
	}
	return &Provider{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.JWTIssuer,
		expiry: cfg.SessionExpiry,
		now:    time.Now,
	}, nil
}

// Sign issues a session assertion for the given login identifier.
// A signing failure is an internal fault: logged with detail, surfaced as
// domain.ErrTokenCreation with none.
func (p *Provider) Sign(subject string) (string, error) {
	now := p.now()
	claims := jwt.RegisteredClaims{
		Issuer:    p.issuer,
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		slog.Error("failed to sign session assertion", "err", err)
		return "", domain.ErrTokenCreation
	}
	return signed, nil
}

// Verify checks signature and issuer, then expiry, and returns the subject.
// Every failure collapses to domain.ErrInvalidToken so callers cannot
// distinguish a bad signature from an expired assertion.
func (p *Provider) Verify(tokenStr string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return p.secret, nil
	}, jwt.WithIssuer(p.issuer), jwt.WithTimeFunc(p.now))
	if err != nil {
		return "", domain.ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", domain.ErrInvalidToken
	}
	return claims.Subject, nil
}
