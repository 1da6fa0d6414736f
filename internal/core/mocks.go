package core

import (
	"sync"

	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// MockAuthenticator implements the Authenticator interface for testing.
// It allows injecting a predefined Actor, or returning a fixed error to
// simulate authentication failures.
//
// Usage:
//
//	mock := &MockAuthenticator{
//	    Actor: &types.Actor{ID: "user_test123", Role: types.RoleAttorney},
//	}
//
// To simulate an error:
//
//	mock := &MockAuthenticator{
//	    Err: types.NewAppError(types.ErrCodeAuthTokenInvalid, "invalid token", nil),
//	}
type MockAuthenticator struct {
	// Actor is the predefined Actor returned on successful verification.
	// If nil and Err is also nil, Verify returns (nil, nil).
	Actor *types.Actor

	// Err is the error returned by Verify. When set, Actor is ignored.
	Err error

	// VerifyFunc is an optional function that overrides the default behavior.
	// When set, it takes precedence over Actor and Err. This allows tests to
	// implement dynamic behavior based on the token value.
	VerifyFunc func(tokenString string) (*types.Actor, error)

	// mu protects Calls for concurrent access.
	mu sync.Mutex

	// Calls records every token passed to Verify for assertion purposes.
	Calls []string
}

// Verify implements the Authenticator interface.
// It records the call, then delegates to VerifyFunc if set, otherwise
// returns Err (if set) or Actor.
func (m *MockAuthenticator) Verify(tokenString string) (*types.Actor, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, tokenString)
	m.mu.Unlock()

	if m.VerifyFunc != nil {
		return m.VerifyFunc(tokenString)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Actor, nil
}

// CallCount returns the number of times Verify has been invoked.
func (m *MockAuthenticator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

var _ Authenticator = (*MockAuthenticator)(nil)
