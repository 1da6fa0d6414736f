package core

import (
	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// Authenticator decouples the HTTP layer from the token mechanism, allowing
// for easy mocking in tests. The production implementation is the JWT issuer
// in the auth package.
type Authenticator interface {
	// Verify parses and validates a bearer token and returns the Actor it
	// represents.
	//
	// Distinct Error Codes:
	// - auth_token_invalid if the token is malformed or fails signature checks.
	// - auth_token_expired if the token is well-formed but past its expiry.
	Verify(tokenString string) (*types.Actor, error)
}
