package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-auth-api/internal/domain"
	"github.com/go-auth-api/internal/pkg/id"
	"github.com/go-auth-api/internal/pkg/password"
)

// Service covers the account operations the auth flows need: registration,
// lookup and profile updates. Wider profile management is out of scope.
type Service interface {
	Register(ctx context.Context, req domain.CreateAccountRequest) (*domain.Account, error)
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	Update(ctx context.Context, accountID string, req domain.UpdateAccountRequest) (*domain.Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type accountStore interface {
	Put(ctx context.Context, a *domain.Account) error
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	Update(ctx context.Context, accountID string, updates map[string]interface{}) error
}

type codeInvalidator interface {
	Invalidate(ctx context.Context, accountID string) error
}

type service struct {
	repo   accountStore
	hasher password.Hasher
	codes  codeInvalidator // optional; discards live codes when 2FA is disabled
}

func NewService(repo accountStore, hasher password.Hasher, codes codeInvalidator) Service {
	return &service{repo: repo, hasher: hasher, codes: codes}
}

// Register creates a local account with an unverified email. The caller is
// expected to follow up with a verification-token issue; registration itself
// succeeds regardless of whether that mail can be delivered.
func (s *service) Register(ctx context.Context, req domain.CreateAccountRequest) (*domain.Account, error) {
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	a := &domain.Account{
		AccountID:     id.New(),
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		PasswordHash:  hash,
		EmailVerified: false,
		AuthProvider:  domain.ProviderLocal,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Put(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.repo.Get(ctx, accountID)
}

func (s *service) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *service) Update(ctx context.Context, accountID string, req domain.UpdateAccountRequest) (*domain.Account, error) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.TwoFactorEnabled != nil {
		updates["two_factor_enabled"] = *req.TwoFactorEnabled
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, accountID)
	}
	if err := s.repo.Update(ctx, accountID, updates); err != nil {
		return nil, err
	}
	// Turning 2FA off orphans any outstanding code; discard it so it cannot
	// be consumed later. Best effort, the code is ignored by login anyway.
	if s.codes != nil && req.TwoFactorEnabled != nil && !*req.TwoFactorEnabled {
		if err := s.codes.Invalidate(ctx, accountID); err != nil {
			slog.Warn("could not invalidate outstanding code", "account_id", accountID, "err", err)
		}
	}
	return s.repo.Get(ctx, accountID)
}

func (s *service) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if _, err := s.repo.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
