package login

import (
	"context"
	"fmt"
	"time"

	"github.com/go-auth-api/internal/domain"
	"github.com/go-auth-api/internal/infrastructure/google"
	"github.com/go-auth-api/internal/pkg/id"
	"github.com/go-auth-api/internal/pkg/password"
)

// Status is the non-error outcome of a login attempt.
type Status string

const (
	// StatusSessionIssued is terminal: Token carries the session assertion.
	StatusSessionIssued Status = "session_issued"
	// StatusCodeSent defers success: a one-time code was dispatched and the
	// caller must resubmit with it.
	StatusCodeSent Status = "code_sent"
)

type LoginRequest struct {
	Login    string `json:"login" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Code     string `json:"code"`
}

type Result struct {
	Status  Status
	Token   string
	Account *domain.Account
}

// Service is the login state machine. A password attempt moves through
// credential verification, the email-verified gate and the second-factor
// gate before a session is issued; LoginWithCode resumes at the second
// factor, and LoginWithGoogle is the provider-trust path that bypasses
// password verification entirely.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*Result, error)
	LoginWithCode(ctx context.Context, login, code string) (*Result, error)
	LoginWithGoogle(ctx context.Context, idToken string) (*Result, error)
}

type accountStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	Put(ctx context.Context, a *domain.Account) error
}

type codeManager interface {
	GenerateAndDispatch(ctx context.Context, acct *domain.Account) error
	Validate(ctx context.Context, accountID, code string) error
}

type sessionSigner interface {
	Sign(subject string) (string, error)
}

type googleVerifier interface {
	Verify(ctx context.Context, idToken string) (*google.Payload, error)
}

type service struct {
	accounts accountStore
	codes    codeManager
	signer   sessionSigner
	google   googleVerifier
	hasher   password.Hasher
}

type ServiceDeps struct {
	AccountRepo    accountStore
	CodeManager    codeManager
	Signer         sessionSigner  // optional; logins fail with ErrTokenCreation without it
	GoogleVerifier googleVerifier // optional; LoginWithGoogle fails without it
	Hasher         password.Hasher
}

func NewService(deps ServiceDeps) Service {
	return &service{
		accounts: deps.AccountRepo,
		codes:    deps.CodeManager,
		signer:   deps.Signer,
		google:   deps.GoogleVerifier,
		hasher:   deps.Hasher,
	}
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*Result, error) {
	acct, err := s.accounts.GetByEmail(ctx, req.Login)
	if err != nil {
		// Unknown login and wrong password must be indistinguishable.
		return nil, fmt.Errorf("login rejected: %w", domain.ErrInvalidCredentials)
	}
	// Externally provisioned accounts have no usable password hash; they only
	// reach session issuance through the provider-trust path.
	if acct.IsExternal() || !s.hasher.Verify(acct.PasswordHash, req.Password) {
		return nil, fmt.Errorf("login rejected: %w", domain.ErrInvalidCredentials)
	}

	if !acct.EmailVerified {
		return nil, fmt.Errorf("login rejected: %w", domain.ErrEmailUnverified)
	}

	if !acct.TwoFactorEnabled {
		return s.issueSession(acct)
	}

	if req.Code == "" {
		if err := s.codes.GenerateAndDispatch(ctx, acct); err != nil {
			return nil, err
		}
		return &Result{Status: StatusCodeSent, Account: acct}, nil
	}

	if err := s.codes.Validate(ctx, acct.AccountID, req.Code); err != nil {
		return nil, err
	}
	return s.issueSession(acct)
}

// LoginWithCode resumes a code-sent login: identifier plus code, no password.
// It produces the same terminal states as a full attempt.
func (s *service) LoginWithCode(ctx context.Context, login, code string) (*Result, error) {
	acct, err := s.accounts.GetByEmail(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("login rejected: %w", domain.ErrInvalidCode)
	}
	if !acct.EmailVerified {
		return nil, fmt.Errorf("login rejected: %w", domain.ErrEmailUnverified)
	}
	if err := s.codes.Validate(ctx, acct.AccountID, code); err != nil {
		return nil, err
	}
	return s.issueSession(acct)
}

// LoginWithGoogle trusts the identity provider's signature as the credential:
// the ID token is verified against our client ID, the account is found or
// created with the provider marker set, and a session is issued directly.
func (s *service) LoginWithGoogle(ctx context.Context, idToken string) (*Result, error) {
	if s.google == nil {
		return nil, fmt.Errorf("google login not configured: %w", domain.ErrUnauthorized)
	}
	payload, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}
	if payload.Email == "" || !payload.EmailVerified {
		return nil, fmt.Errorf("google identity not usable: %w", domain.ErrUnauthorized)
	}

	acct, err := s.accounts.GetByEmail(ctx, payload.Email)
	if err != nil {
		now := time.Now().UTC()
		acct = &domain.Account{
			AccountID:       id.New(),
			Name:            payload.Name,
			Email:           payload.Email,
			EmailVerified:   true,
			AuthProvider:    domain.ProviderGoogle,
			ProviderSubject: payload.Sub,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.accounts.Put(ctx, acct); err != nil {
			return nil, err
		}
	}
	return s.issueSession(acct)
}

func (s *service) issueSession(acct *domain.Account) (*Result, error) {
	// Running without a signer (JWT secret not configured) is an internal
	// fault, not a credential problem.
	if s.signer == nil {
		return nil, fmt.Errorf("session signing not configured: %w", domain.ErrTokenCreation)
	}
	token, err := s.signer.Sign(acct.Email)
	if err != nil {
		return nil, err
	}
	return &Result{Status: StatusSessionIssued, Token: token, Account: acct}, nil
}
