package twofactor

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/go-auth-api/internal/domain"
	"github.com/go-auth-api/internal/infrastructure/smtp"
	"github.com/go-auth-api/internal/infrastructure/sns"
)

// Service manages single-use second-factor codes: generation replaces any
// live code for the account, validation consumes the code atomically.
type Service interface {
	GenerateAndDispatch(ctx context.Context, acct *domain.Account) error
	Validate(ctx context.Context, accountID, code string) error
	Invalidate(ctx context.Context, accountID string) error
}

type codeStore interface {
	Put(ctx context.Context, c *domain.OneTimeCode) error
	ConsumeIfMatch(ctx context.Context, accountID, supplied string, now int64) error
	Delete(ctx context.Context, accountID string) error
}

type service struct {
	codes     codeStore
	mailer    smtp.Mailer
	smsSender sns.SMSSender
	ttl       time.Duration
	now       func() time.Time
}

type ServiceDeps struct {
	CodeRepo  codeStore
	Mailer    smtp.Mailer
	SMSSender sns.SMSSender // optional; extra channel when the account has a phone
	CodeTTL   time.Duration
	Now       func() time.Time // defaults to time.Now
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		codes:     deps.CodeRepo,
		mailer:    deps.Mailer,
		smsSender: deps.SMSSender,
		ttl:       deps.CodeTTL,
		now:       now,
	}
}

// GenerateAndDispatch draws a fresh 6-digit code, stores it (superseding any
// prior code for the account) and delivers it out-of-band. Delivery failure
// after the code is persisted is not fatal: the caller already moved the
// login to the code-sent state and the user can request a new code.
func (s *service) GenerateAndDispatch(ctx context.Context, acct *domain.Account) error {
	code, err := generateCode()
	if err != nil {
		return err
	}
	c := &domain.OneTimeCode{
		AccountID: acct.AccountID,
		Code:      code,
		ExpiresAt: s.now().Add(s.ttl).Unix(),
	}
	if err := s.codes.Put(ctx, c); err != nil {
		return err
	}

	body := "Your two-factor authentication code is: " + code
	if err := s.mailer.SendEmail(acct.Email, "Two-Factor Authentication Code", body); err != nil {
		slog.Warn("failed to email one-time code", "account_id", acct.AccountID, "err", err)
	}
	if acct.Phone != nil && s.smsSender != nil {
		if err := s.smsSender.SendSMS(ctx, *acct.Phone, body); err != nil {
			slog.Warn("failed to SMS one-time code", "account_id", acct.AccountID, "err", err)
		}
	}
	return nil
}

// Validate consumes the account's code iff supplied matches and the code has
// not expired. The conditional delete makes success one-shot: a second
// validation with the same value always fails.
func (s *service) Validate(ctx context.Context, accountID, code string) error {
	return s.codes.ConsumeIfMatch(ctx, accountID, code, s.now().Unix())
}

// Invalidate discards the account's outstanding code, if any. Called when the
// second factor is switched off so no stale code survives the toggle.
func (s *service) Invalidate(ctx context.Context, accountID string) error {
	return s.codes.Delete(ctx, accountID)
}

// generateCode draws uniformly from the 6-digit space 100000-999999.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
