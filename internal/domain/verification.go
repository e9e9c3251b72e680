package domain

// OneTimeCode is a single-use 6-digit second-factor code.
// PK: account_id, SK: type ("otp"). At most one live code exists per account;
// writing a new one replaces the old under the same key.
// ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type OneTimeCode struct {
	AccountID string `json:"account_id" dynamodbav:"account_id"`
	Type      string `json:"type" dynamodbav:"type"`
	Code      string `json:"code" dynamodbav:"code"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}

// Ephemeral token purposes.
const (
	PurposeEmailVerification = "email-verification"
	PurposePasswordReset     = "password-reset"
)

// EphemeralToken is a single-use opaque token authorizing a follow-up action
// (verify email, reset password). PK: token. An account may hold one live
// token per purpose; issuing a new one supersedes the prior one of that
// purpose. ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type EphemeralToken struct {
	Token     string `json:"-" dynamodbav:"token"`
	AccountID string `json:"account_id" dynamodbav:"account_id"`
	Purpose   string `json:"purpose" dynamodbav:"purpose"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}
