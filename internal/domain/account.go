package domain

import "time"

// Auth provider values for Account.AuthProvider.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

type Account struct {
	AccountID        string     `json:"id" dynamodbav:"account_id"`
	Name             string     `json:"name" dynamodbav:"name"`
	Email            string     `json:"email" dynamodbav:"email"`
	Phone            *string    `json:"phone,omitempty" dynamodbav:"phone"`
	PasswordHash     string     `json:"-" dynamodbav:"password_hash"`
	EmailVerified    bool       `json:"email_verified" dynamodbav:"email_verified"`
	TwoFactorEnabled bool       `json:"two_factor_enabled" dynamodbav:"two_factor_enabled"`
	AuthProvider     string     `json:"auth_provider,omitempty" dynamodbav:"auth_provider"` // "local" | "google"
	ProviderSubject  string     `json:"-" dynamodbav:"provider_subject"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at"`
	CreatedAt        time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt        time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// IsExternal reports whether the account was created through an external
// identity provider. Such accounts have no usable password hash and must
// never pass password verification.
func (a *Account) IsExternal() bool {
	return a.AuthProvider != "" && a.AuthProvider != ProviderLocal
}

type CreateAccountRequest struct {
	Name     string  `json:"name" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6,max=72"`
	Phone    *string `json:"phone"`
}

type UpdateAccountRequest struct {
	Name             *string `json:"name"`
	Email            *string `json:"email" validate:"omitempty,email"`
	Phone            *string `json:"phone"`
	TwoFactorEnabled *bool   `json:"two_factor_enabled"`
}
