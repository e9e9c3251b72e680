package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-auth-api/internal/domain"
	"github.com/go-auth-api/internal/infrastructure/smtp"
	"github.com/go-auth-api/internal/pkg/password"
	pkgtoken "github.com/go-auth-api/internal/pkg/token"
)

// Service owns the ephemeral single-use token flows: email verification and
// password reset. Tokens are opaque 256-bit strings delivered out-of-band;
// consumption is atomic with deletion, so a token can never be replayed.
type Service interface {
	RequestEmailVerification(ctx context.Context, accountID string) error
	VerifyEmail(ctx context.Context, token string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type tokenStore interface {
	Put(ctx context.Context, t *domain.EphemeralToken) error
	Consume(ctx context.Context, token, purpose string) (*domain.EphemeralToken, error)
	DeleteByAccountPurpose(ctx context.Context, accountID, purpose string) error
}

type accountStore interface {
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	Update(ctx context.Context, accountID string, updates map[string]interface{}) error
}

type service struct {
	tokens          tokenStore
	accounts        accountStore
	mailer          smtp.Mailer
	hasher          password.Hasher
	verifyEmailTTL  time.Duration
	resetTTL        time.Duration
	frontendBaseURL string
	now             func() time.Time
}

type ServiceDeps struct {
	TokenRepo        tokenStore
	AccountRepo      accountStore
	Mailer           smtp.Mailer
	Hasher           password.Hasher
	VerifyEmailTTL   time.Duration
	PasswordResetTTL time.Duration
	FrontendBaseURL  string
	Now              func() time.Time // defaults to time.Now
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		tokens:          deps.TokenRepo,
		accounts:        deps.AccountRepo,
		mailer:          deps.Mailer,
		hasher:          deps.Hasher,
		verifyEmailTTL:  deps.VerifyEmailTTL,
		resetTTL:        deps.PasswordResetTTL,
		frontendBaseURL: deps.FrontendBaseURL,
		now:             now,
	}
}

// RequestEmailVerification issues a fresh verification token for the account
// and mails the activation link. Any prior verification token is superseded.
// Mail failure after the token is persisted is not fatal.
func (s *service) RequestEmailVerification(ctx context.Context, accountID string) error {
	acct, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return err
	}
	if acct.EmailVerified {
		return fmt.Errorf("email already verified: %w", domain.ErrConflict)
	}
	tok, err := s.issue(ctx, acct.AccountID, domain.PurposeEmailVerification, s.verifyEmailTTL)
	if err != nil {
		return err
	}
	body := "Click on the link to validate your email: " + s.frontendBaseURL + "/validate-email?token=" + tok
	if err := s.mailer.SendEmail(acct.Email, "Account Verification", body); err != nil {
		slog.Warn("failed to send verification email", "account_id", acct.AccountID, "err", err)
	}
	return nil
}

// VerifyEmail consumes the token and marks the owning account verified.
// Absent, expired and wrong-purpose tokens all surface as ErrInvalidToken.
func (s *service) VerifyEmail(ctx context.Context, token string) error {
	t, err := s.consume(ctx, token, domain.PurposeEmailVerification)
	if err != nil {
		return err
	}
	return s.accounts.Update(ctx, t.AccountID, map[string]interface{}{"email_verified": true})
}

// RequestPasswordReset issues a reset token for the account registered under
// email and mails the reset link. Returns ErrNotFound for unknown emails; the
// handler decides whether to surface that (it doesn't, to avoid enumeration).
func (s *service) RequestPasswordReset(ctx context.Context, email string) error {
	acct, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	tok, err := s.issue(ctx, acct.AccountID, domain.PurposePasswordReset, s.resetTTL)
	if err != nil {
		return err
	}
	body := "Click on the link to reset your password: " + s.frontendBaseURL + "/reset-password?token=" + tok
	if err := s.mailer.SendEmail(acct.Email, "Password Reset", body); err != nil {
		slog.Warn("failed to send password reset email", "account_id", acct.AccountID, "err", err)
	}
	return nil
}

// ResetPassword consumes the token and replaces the owning account's password
// hash. The consume happens before the mutation, so a concurrent attempt with
// the same token cannot apply the change twice.
func (s *service) ResetPassword(ctx context.Context, token, newPassword string) error {
	t, err := s.consume(ctx, token, domain.PurposePasswordReset)
	if err != nil {
		return err
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.accounts.Update(ctx, t.AccountID, map[string]interface{}{"password_hash": hash})
}

func (s *service) issue(ctx context.Context, accountID, purpose string, ttl time.Duration) (string, error) {
	tok, err := pkgtoken.New()
	if err != nil {
		return "", err
	}
	if err := s.tokens.DeleteByAccountPurpose(ctx, accountID, purpose); err != nil {
		return "", err
	}
	t := &domain.EphemeralToken{
		Token:     tok,
		AccountID: accountID,
		Purpose:   purpose,
		ExpiresAt: s.now().Add(ttl).Unix(),
	}
	if err := s.tokens.Put(ctx, t); err != nil {
		return "", err
	}
	return tok, nil
}

// consume deletes the token, scoped to the expected purpose so a token
// presented to the wrong flow stays live, then checks expiry on the returned
// record. A token is expired at its expiry instant, matching the one-time
// code boundary. The distinction is logged but never surfaced.
func (s *service) consume(ctx context.Context, token, purpose string) (*domain.EphemeralToken, error) {
	t, err := s.tokens.Consume(ctx, token, purpose)
	if err != nil {
		return nil, err
	}
	if t.ExpiresAt <= s.now().Unix() {
		slog.Info("expired token consumed", "account_id", t.AccountID, "purpose", t.Purpose)
		return nil, fmt.Errorf("token expired: %w", domain.ErrInvalidToken)
	}
	return t, nil
}
