package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-auth-api/internal/domain"
	"github.com/go-auth-api/internal/pkg/password"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockTokenStore struct{ mock.Mock }

func (m *mockTokenStore) Put(ctx context.Context, t *domain.EphemeralToken) error {
	return m.Called(ctx, t).Error(0)
}
func (m *mockTokenStore) Consume(ctx context.Context, token, purpose string) (*domain.EphemeralToken, error) {
	args := m.Called(ctx, token, purpose)
	if t, _ := args.Get(0).(*domain.EphemeralToken); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockTokenStore) DeleteByAccountPurpose(ctx context.Context, accountID, purpose string) error {
	return m.Called(ctx, accountID, purpose).Error(0)
}

type mockAccountStore struct{ mock.Mock }

func (m *mockAccountStore) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAccountStore) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAccountStore) Update(ctx context.Context, accountID string, updates map[string]interface{}) error {
	return m.Called(ctx, accountID, updates).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

// --- helpers ---

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newSvc(ts *mockTokenStore, as *mockAccountStore, ml *mockMailer) Service {
	return NewService(ServiceDeps{
		TokenRepo:        ts,
		AccountRepo:      as,
		Mailer:           ml,
		Hasher:           password.Bcrypt{Cost: 4},
		VerifyEmailTTL:   24 * time.Hour,
		PasswordResetTTL: time.Hour,
		FrontendBaseURL:  "https://app.example.com",
		Now:              func() time.Time { return fixedNow },
	})
}

func unverifiedAccount() *domain.Account {
	return &domain.Account{AccountID: "acct-1", Email: "alice@example.com"}
}

// --- RequestEmailVerification tests ---

func TestRequestEmailVerification_IssuesTokenAndMailsLink(t *testing.T) {
	ts, as, ml := &mockTokenStore{}, &mockAccountStore{}, &mockMailer{}

	as.On("Get", mock.Anything, "acct-1").Return(unverifiedAccount(), nil)
	ts.On("DeleteByAccountPurpose", mock.Anything, "acct-1", domain.PurposeEmailVerification).Return(nil)
	var stored *domain.EphemeralToken
	ts.On("Put", mock.Anything, mock.AnythingOfType("*domain.EphemeralToken")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.EphemeralToken) }).
		Return(nil)
	var mailed string
	ml.On("SendEmail", "alice@example.com", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { mailed = args.String(2) }).
		Return(nil)

	err := newSvc(ts, as, ml).RequestEmailVerification(context.Background(), "acct-1")

	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Len(t, stored.Token, 64) // 32 random bytes, hex encoded
	assert.Equal(t, domain.PurposeEmailVerification, stored.Purpose)
	assert.Equal(t, fixedNow.Add(24*time.Hour).Unix(), stored.ExpiresAt)
	assert.Contains(t, mailed, "validate-email?token="+stored.Token)
}

func TestRequestEmailVerification_AlreadyVerified(t *testing.T) {
	ts, as, ml := &mockTokenStore{}, &mockAccountStore{}, &mockMailer{}

	acct := unverifiedAccount()
	acct.EmailVerified = true
	as.On("Get", mock.Anything, "acct-1").Return(acct, nil)

	err := newSvc(ts, as, ml).RequestEmailVerification(context.Background(), "acct-1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	ts.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestRequestEmailVerification_SupersedesPriorToken(t *testing.T) {
	ts, as, ml := &mockTokenStore{}, &mockAccountStore{}, &mockMailer{}

	as.On("Get", mock.Anything, "acct-1").Return(unverifiedAccount(), nil)
	ts.On("DeleteByAccountPurpose", mock.Anything, "acct-1", domain.PurposeEmailVerification).Return(nil)
	ts.On("Put", mock.Anything, mock.Anything).Return(nil)
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	err := newSvc(ts, as, ml).RequestEmailVerification(context.Background(), "acct-1")

	require.NoError(t, err)
	ts.AssertCalled(t, "DeleteByAccountPurpose", mock.Anything, "acct-1", domain.PurposeEmailVerification)
}

func TestRequestEmailVerification_MailFailureNotFatal(t *testing.T) {
	ts, as, ml := &mockTokenStore{}, &mockAccountStore{}, &mockMailer{}

	as.On("Get", mock.Anything, "acct-1").Return(unverifiedAccount(), nil)
	ts.On("DeleteByAccountPurpose", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ts.On("Put", mock.Anything, mock.Anything).Return(nil)
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	assert.NoError(t, newSvc(ts, as, ml).RequestEmailVerification(context.Background(), "acct-1"))
}

// --- VerifyEmail tests ---

func TestVerifyEmail_MarksAccountVerified(t *testing.T) {
	ts, as, ml := &mockTokenStore{}, &mockAccountStore{}, &mockMailer{}

	ts.On("Consume", mock.Anything, "tok-1", domain.PurposeEmailVerification).Return(&domain.EphemeralToken{
		Token:     "tok-1",
		AccountID: "acct-1",
		Purpose:   domain.PurposeEmailVerification,
		ExpiresAt: fixedNow.Add(time.Hour).Unix(),
	}, nil)
	as.On("Update", mock.Anything, "acct-1", map[string]interface{}{"email_verified": true}).Return(nil)

	err := newSvc(ts, as, ml).VerifyEmail(context.Background(), "tok-1")

	require.NoError(t, err)
	as.AssertCalled(t, "Update", mock.Anything, "acct-1", map[string]interface{}{"email_verified": true})
}

func TestVerifyEmail_UnknownToken(t *testing.T) {
	ts, as, ml := &mockTokenStore{}, &mockAccountStore{}, &mockMailer{}

	ts.On("Consume", mock.Anything, "nope", domain.PurposeEmailVerification).Return(nil, domain.ErrInvalidToken)

	err := newSvc(ts, as, ml).VerifyEmail(context.Background(), "nope")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidToken))
}

func TestVerifyEmail_ExpiredToken(t *testing.T) {
	ts, as, ml := &mockTokenStore{}, &mockAccountStore{}, &mockMailer{}

	ts.On("Consume", mock.Anything, "tok-1", domain.PurposeEmailVerification).Return(&domain.EphemeralToken{
		Token:     "tok-1",
		AccountID: "acct-1",
		Purpose:   domain.PurposeEmailVerification,
		ExpiresAt: fixedNow.Add(-time.Minute).Unix(),
	}, nil)

	err := newSvc(ts, as, ml).VerifyEmail(context.Background(), "tok-1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidToken))
	as.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyEmail_ExpiredAtBoundaryInstant(t *testing.T) {
	ts, as, ml := &mockTokenStore{}, &mockAccountStore{}, &mockMailer{}

	ts.On("Consume", mock.Anything, "tok-1", domain.PurposeEmailVerification).Return(&domain.EphemeralToken{
		Token:     "tok-1",
		AccountID: "acct-1",
		Purpose:   domain.PurposeEmailVerification,
		ExpiresAt: fixedNow.Unix(),
	}, nil)

	err := newSvc(ts, as, ml).VerifyEmail(context.Background(), "tok-1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidToken))
	as.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

// Consumption is scoped to the flow's purpose, so a verify-email attempt can
// never touch a reset token and vice versa; the store rejects a wrong-purpose
// presentation without deleting anything.
func TestVerifyEmail_ConsumesOnlyVerificationTokens(t *testing.T) {
	ts, as, ml := &mockTokenStore{}, &mockAccountStore{}, &mockMailer{}

	ts.On("Consume", mock.Anything, "tok-1", domain.PurposeEmailVerification).Return(nil, domain.ErrInvalidToken)

	err := newSvc(ts, as, ml).VerifyEmail(context.Background(), "tok-1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidToken))
	ts.AssertCalled(t, "Consume", mock.Anything, "tok-1", domain.PurposeEmailVerification)
	as.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

// --- RequestPasswordReset tests ---

func TestRequestPasswordReset_IssuesTokenAndMailsLink(t *testing.T) {
	ts, as, ml := &mockTokenStore{}, &mockAccountStore{}, &mockMailer{}

	as.On("GetByEmail", mock.Anything, "alice@example.com").Return(unverifiedAccount(), nil)
	ts.On("DeleteByAccountPurpose", mock.Anything, "acct-1", domain.PurposePasswordReset).Return(nil)
	var stored *domain.EphemeralToken
	ts.On("Put", mock.Anything, mock.AnythingOfType("*domain.EphemeralToken")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.EphemeralToken) }).
		Return(nil)
	var mailed string
	ml.On("SendEmail", "alice@example.com", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { mailed = args.String(2) }).
		Return(nil)

	err := newSvc(ts, as, ml).RequestPasswordReset(context.Background(), "alice@example.com")

	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, domain.PurposePasswordReset, stored.Purpose)
	assert.Equal(t, fixedNow.Add(time.Hour).Unix(), stored.ExpiresAt)
	assert.Contains(t, mailed, "reset-password?token="+stored.Token)
}

func TestRequestPasswordReset_UnknownEmail(t *testing.T) {
	ts, as, ml := &mockTokenStore{}, &mockAccountStore{}, &mockMailer{}

	as.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, domain.ErrNotFound)

	err := newSvc(ts, as, ml).RequestPasswordReset(context.Background(), "ghost@example.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// --- ResetPassword tests ---

func TestResetPassword_ReplacesHash(t *testing.T) {
	ts, as, ml := &mockTokenStore{}, &mockAccountStore{}, &mockMailer{}

	ts.On("Consume", mock.Anything, "tok-1", domain.PurposePasswordReset).Return(&domain.EphemeralToken{
		Token:     "tok-1",
		AccountID: "acct-1",
		Purpose:   domain.PurposePasswordReset,
		ExpiresAt: fixedNow.Add(time.Hour).Unix(),
	}, nil)
	var updates map[string]interface{}
	as.On("Update", mock.Anything, "acct-1", mock.Anything).
		Run(func(args mock.Arguments) { updates = args.Get(2).(map[string]interface{}) }).
		Return(nil)

	err := newSvc(ts, as, ml).ResetPassword(context.Background(), "tok-1", "new-password")

	require.NoError(t, err)
	hash, ok := updates["password_hash"].(string)
	require.True(t, ok)
	assert.True(t, password.Bcrypt{}.Verify(hash, "new-password"))
}

func TestResetPassword_TokenSingleUse(t *testing.T) {
	ts, as, ml := &mockTokenStore{}, &mockAccountStore{}, &mockMailer{}

	ts.On("Consume", mock.Anything, "tok-1", domain.PurposePasswordReset).Return(&domain.EphemeralToken{
		Token:     "tok-1",
		AccountID: "acct-1",
		Purpose:   domain.PurposePasswordReset,
		ExpiresAt: fixedNow.Add(time.Hour).Unix(),
	}, nil).Once()
	ts.On("Consume", mock.Anything, "tok-1", domain.PurposePasswordReset).Return(nil, domain.ErrInvalidToken)
	as.On("Update", mock.Anything, "acct-1", mock.Anything).Return(nil)

	svc := newSvc(ts, as, ml)

	require.NoError(t, svc.ResetPassword(context.Background(), "tok-1", "new-password"))

	err := svc.ResetPassword(context.Background(), "tok-1", "another-password")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidToken))
}

func TestResetPassword_ConsumesOnlyResetTokens(t *testing.T) {
	ts, as, ml := &mockTokenStore{}, &mockAccountStore{}, &mockMailer{}

	ts.On("Consume", mock.Anything, "tok-1", domain.PurposePasswordReset).Return(nil, domain.ErrInvalidToken)

	err := newSvc(ts, as, ml).ResetPassword(context.Background(), "tok-1", "new-password")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidToken))
	ts.AssertCalled(t, "Consume", mock.Anything, "tok-1", domain.PurposePasswordReset)
	as.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}
