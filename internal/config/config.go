package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	JWTSecret     string
	JWTIssuer     string
	SessionExpiry time.Duration

	OneTimeCodeTTL    time.Duration
	VerifyEmailTTL    time.Duration
	PasswordResetTTL  time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	SNSRegion string

	GoogleClientID string

	FrontendBaseURL string   // used to build verification/reset links in emails
	AllowedOrigins  []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Accounts        string
	OneTimeCodes    string
	EphemeralTokens string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Accounts:        getEnv("DYNAMO_TABLE_ACCOUNTS", "accounts"),
			OneTimeCodes:    getEnv("DYNAMO_TABLE_ONE_TIME_CODES", "one_time_codes"),
			EphemeralTokens: getEnv("DYNAMO_TABLE_EPHEMERAL_TOKENS", "ephemeral_tokens"),
		},

		JWTSecret:     getEnv("JWT_SECRET", ""),
		JWTIssuer:     getEnv("JWT_ISSUER", "auth-api"),
		SessionExpiry: time.Duration(getEnvInt("SESSION_EXPIRY_DAYS", 4)) * 24 * time.Hour,

		OneTimeCodeTTL:   time.Duration(getEnvInt("ONE_TIME_CODE_TTL_MINUTES", 120)) * time.Minute,
		VerifyEmailTTL:   time.Duration(getEnvInt("VERIFY_EMAIL_TTL_HOURS", 24)) * time.Hour,
		PasswordResetTTL: time.Duration(getEnvInt("PASSWORD_RESET_TTL_MINUTES", 60)) * time.Minute,

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		SNSRegion: getEnv("SNS_REGION", "us-east-1"),

		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),

		FrontendBaseURL: getEnv("FRONTEND_BASE_URL", "http://localhost:5173"),
		AllowedOrigins:  strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
