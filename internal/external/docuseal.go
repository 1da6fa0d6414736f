package external

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// DocuSealConfig holds the signing configuration for DocuSeal builder tokens.
type DocuSealConfig struct {
	// APIKey is the DocuSeal API key used as the HS256 signing secret.
	APIKey types.SecretString
	// IntegrationEmail identifies the DocuSeal account the embedded builder
	// operates under.
	IntegrationEmail string
	// TokenTTL bounds how long a builder token stays valid. Defaults to one
	// hour when zero.
	TokenTTL time.Duration
}

// DocuSealClient mints signed builder tokens for DocuSeal's embedded document
// builder. The frontend exchanges the token directly with DocuSeal; no HTTP
// calls leave this service.
type DocuSealClient struct {
	cfg   DocuSealConfig
	clock types.Clock
}

// NewDocuSealClient creates a DocuSealClient. A nil clock falls back to the
// real clock.
func NewDocuSealClient(cfg DocuSealConfig, clock types.Clock) *DocuSealClient {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	if clock == nil {
		clock = types.RealClock{}
	}
	return &DocuSealClient{cfg: cfg, clock: clock}
}

// BuilderToken returns a signed HS256 JWT authorizing the given user to open
// the embedded builder for the named document.
func (c *DocuSealClient) BuilderToken(userEmail string, documentName string) (string, error) {
	if userEmail == "" {
		return "", types.NewAppError(
			types.ErrCodeValidationMissingField,
			"user email is required for a builder token",
			nil,
		)
	}

	now := c.clock.Now()
	claims := jwt.MapClaims{
		"user_email":        userEmail,
		"integration_email": c.cfg.IntegrationEmail,
		"name":              documentName,
		"iat":               now.Unix(),
		"exp":               now.Add(c.cfg.TokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(c.cfg.APIKey.Unmask()))
	if err != nil {
		return "", types.NewAppError(
			types.ErrCodeInternalUnexpected,
			fmt.Sprintf("failed to sign builder token for %s", userEmail),
			err,
		)
	}

	return signed, nil
}
