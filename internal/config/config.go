// Package config defines the global configuration structure for the injury
// case platform. Configuration is loaded once at process startup and is
// immutable thereafter. It follows 12-Factor App principles by strictly
// separating code from configuration.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File -> AWS SSM Parameter Store (Lowest)
//
// Any missing required value or invalid format aborts startup (fail fast).
package config

import (
	"time"

	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type used
// throughout configuration to prevent accidental logging of sensitive values.
type SecretString = types.SecretString

// Config is the top-level configuration struct for the API server.
// It is populated once during process initialization and never modified.
// Sub-components receive only the specific config subsets they require.
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"injury-case-api"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Domain Configurations
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Stripe   StripeConfig
	Email    EmailConfig
	Storage  StorageConfig
	DocuSeal DocuSealConfig
	Security SecurityConfig

	// Build Metadata (Injected via ldflags, not Env)
	Build BuildInfo
}

// ServerConfig holds HTTP server and public URL configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"60s"`
	RequestTimeout  time.Duration `envconfig:"HTTP_REQUEST_TIMEOUT" default:"25s"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"15s"`
	// Public base URL of the frontend, used in email links (no trailing slash).
	FrontendURL string `envconfig:"FRONTEND_URL" validate:"required,url"`
}

// DatabaseConfig holds database connection and pool tuning parameters.
type DatabaseConfig struct {
	// Resolved from SSM or Env
	URL SecretString `envconfig:"DATABASE_URL" validate:"required,url"`

	// Tuning Parameters
	MaxConns          int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns          int           `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	AcquireTimeout    time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

// AuthConfig holds token signing material and session parameters.
type AuthConfig struct {
	JWTSecret SecretString  `envconfig:"JWT_SECRET" validate:"required,min=32"`
	TokenTTL  time.Duration `envconfig:"JWT_TOKEN_TTL" default:"1h"`
}

// StripeConfig holds Stripe payment integration credentials.
type StripeConfig struct {
	SecretKey      SecretString `envconfig:"STRIPE_SECRET_KEY" validate:"required"`
	PublishableKey string       `envconfig:"STRIPE_PUBLISHABLE_KEY"`
	// Price of one additional case slot, in cents.
	CaseSlotPriceCents int64  `envconfig:"STRIPE_CASE_SLOT_PRICE_CENTS" default:"4999"`
	Currency           string `envconfig:"STRIPE_CURRENCY" default:"usd"`
}

// EmailConfig holds Brevo transactional email credentials and sender identity.
type EmailConfig struct {
	BrevoAPIKey SecretString `envconfig:"BREVO_API_KEY" validate:"required"`
	SenderName  string       `envconfig:"EMAIL_SENDER_NAME" default:"Injury Case Platform"`
	SenderEmail string       `envconfig:"EMAIL_SENDER_EMAIL" validate:"required,email"`
}

// StorageConfig holds S3 document storage settings.
type StorageConfig struct {
	Region string `envconfig:"AWS_REGION" default:"us-east-1"`
	Bucket string `envconfig:"S3_BUCKET" validate:"required"`
	// Override for the public object URL prefix (e.g. a CloudFront domain).
	PublicBaseURL string `envconfig:"S3_PUBLIC_BASE_URL"`
	// LocalStack Support (Empty in Prod)
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL"`
}

// DocuSealConfig holds e-signature builder token settings.
type DocuSealConfig struct {
	APIKey           SecretString  `envconfig:"DOCUSEAL_API_KEY" validate:"required"`
	IntegrationEmail string        `envconfig:"DOCUSEAL_INTEGRATION_EMAIL" validate:"required,email"`
	TokenTTL         time.Duration `envconfig:"DOCUSEAL_TOKEN_TTL" default:"1h"`
}

// SecurityConfig holds CORS and request limit settings.
type SecurityConfig struct {
	CorsAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	// Maximum accepted JSON request body, in bytes. Intake uploads arrive
	// base64-encoded inside JSON, so this bounds file size too.
	MaxBodyBytes int64 `envconfig:"MAX_BODY_BYTES" default:"10485760"`
}

// BuildInfo holds build-time metadata injected via ldflags.
// These values are NOT populated from environment variables.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrMissingEnv indicates a required environment variable was not found.
	ErrMissingEnv ConfigErrorType = "MISSING_ENV"
	// ErrSSMResolution indicates a failure when fetching secrets from AWS SSM.
	ErrSSMResolution ConfigErrorType = "SSM_FAILURE"
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
