package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// defaultTokenTTL is the access token lifetime.
const defaultTokenTTL = time.Hour

// accessClaims are the JWT claims carried by an access token.
type accessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 access tokens.
type TokenIssuer struct {
	secret types.SecretString
	ttl    time.Duration
	clock  types.Clock
}

// NewTokenIssuer creates a TokenIssuer. TTL defaults to one hour; a nil
// clock falls back to the real clock.
func NewTokenIssuer(secret types.SecretString, ttl time.Duration, clock types.Clock) *TokenIssuer {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	if clock == nil {
		clock = types.RealClock{}
	}
	return &TokenIssuer{secret: secret, ttl: ttl, clock: clock}
}

// Issue returns a signed access token for the user.
func (t *TokenIssuer) Issue(user *types.User) (string, error) {
	now := t.clock.Now()
	claims := accessClaims{
		Email: user.Email,
		Role:  string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(t.secret.Unmask()))
	if err != nil {
		return "", types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to sign access token",
			err,
		)
	}
	return signed, nil
}

// Verify parses and validates a token string and returns the actor it
// identifies. Expired tokens map to auth_token_expired; anything else that
// fails validation maps to auth_token_invalid.
func (t *TokenIssuer) Verify(tokenString string) (*types.Actor, error) {
	var claims accessClaims
	token, err := jwt.ParseWithClaims(
		tokenString,
		&claims,
		func(token *jwt.Token) (any, error) {
			return []byte(t.secret.Unmask()), nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(t.clock.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, types.NewAppError(types.ErrCodeAuthTokenExpired, "access token has expired", err)
		}
		return nil, types.NewAppError(types.ErrCodeAuthTokenInvalid, "access token is invalid", err)
	}
	if !token.Valid {
		return nil, types.NewAppError(types.ErrCodeAuthTokenInvalid, "access token is invalid", nil)
	}

	return &types.Actor{
		ID:    claims.Subject,
		Email: claims.Email,
		Role:  types.UserRole(claims.Role),
	}, nil
}
