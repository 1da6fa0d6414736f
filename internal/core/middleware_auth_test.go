package core

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return &Server{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// echoActorHandler writes the actor from context, or 204 when there is none.
func echoActorHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := types.GetActor(r.Context())
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		JSON(w, r, http.StatusOK, map[string]string{
			"id":   actor.ID,
			"role": string(actor.Role),
		})
	})
}

func decodeAuthError(t *testing.T, w *httptest.ResponseRecorder) APIErrorResponse {
	t.Helper()
	var body APIErrorResponse
	if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return body
}

func TestAuthMiddleware_NilAuthenticatorPassesThrough(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/cases", nil)
	s.AuthMiddleware(echoActorHandler()).ServeHTTP(w, r)

	if w.Result().StatusCode != http.StatusNoContent {
		t.Errorf("expected pass-through 204, got %d", w.Result().StatusCode)
	}
}

func TestAuthMiddleware_PublicPathsBypass(t *testing.T) {
	s := newTestServer(t)
	mock := &MockAuthenticator{
		Err: types.NewAppError(types.ErrCodeAuthTokenInvalid, "invalid token", nil),
	}
	s.Authenticator = mock

	paths := []string{
		"/health",
		"/version",
		"/v1/auth/login",
		"/v1/auth/register",
		"/v1/invitations/inv_123",
	}
	for _, path := range paths {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, path, nil)
		s.AuthMiddleware(echoActorHandler()).ServeHTTP(w, r)

		if w.Result().StatusCode != http.StatusNoContent {
			t.Errorf("path %s: expected bypass 204, got %d", path, w.Result().StatusCode)
		}
	}
	if mock.CallCount() != 0 {
		t.Errorf("authenticator should not be called for public paths, got %d calls", mock.CallCount())
	}
}

func TestAuthMiddleware_IntakePostIsPublicListIsNot(t *testing.T) {
	s := newTestServer(t)
	s.Authenticator = &MockAuthenticator{
		Err: types.NewAppError(types.ErrCodeAuthTokenInvalid, "invalid token", nil),
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/v1/intake", nil)
	s.AuthMiddleware(echoActorHandler()).ServeHTTP(w, r)
	if w.Result().StatusCode != http.StatusNoContent {
		t.Errorf("POST /v1/intake should bypass auth, got %d", w.Result().StatusCode)
	}

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/v1/intake", nil)
	s.AuthMiddleware(echoActorHandler()).ServeHTTP(w, r)
	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("GET /v1/intake should require auth, got %d", w.Result().StatusCode)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	s := newTestServer(t)
	s.Authenticator = &MockAuthenticator{Actor: &types.Actor{ID: "user_1"}}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/cases", nil)
	s.AuthMiddleware(echoActorHandler()).ServeHTTP(w, r)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Result().StatusCode)
	}
	body := decodeAuthError(t, w)
	if body.Error.Code != string(types.ErrCodeAuthTokenMissing) {
		t.Errorf("expected auth_token_missing, got %q", body.Error.Code)
	}
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	s := newTestServer(t)
	mock := &MockAuthenticator{Actor: &types.Actor{ID: "user_1"}}
	s.Authenticator = mock

	for _, header := range []string{"Basic abc123", "Bearer", "Bearer   "} {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/cases", nil)
		r.Header.Set("Authorization", header)
		s.AuthMiddleware(echoActorHandler()).ServeHTTP(w, r)

		if w.Result().StatusCode != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %d", header, w.Result().StatusCode)
		}
	}
	if mock.CallCount() != 0 {
		t.Errorf("authenticator should not be called for malformed headers, got %d calls", mock.CallCount())
	}
}

func TestAuthMiddleware_SchemeCaseInsensitive(t *testing.T) {
	s := newTestServer(t)
	mock := &MockAuthenticator{Actor: &types.Actor{ID: "user_1", Role: types.RoleAttorney}}
	s.Authenticator = mock

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/cases", nil)
	r.Header.Set("Authorization", "bearer tok-abc")
	s.AuthMiddleware(echoActorHandler()).ServeHTTP(w, r)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Result().StatusCode)
	}
	if len(mock.Calls) != 1 || mock.Calls[0] != "tok-abc" {
		t.Errorf("expected Verify called once with tok-abc, got %v", mock.Calls)
	}
}

func TestAuthMiddleware_InjectsActor(t *testing.T) {
	s := newTestServer(t)
	s.Authenticator = &MockAuthenticator{
		Actor: &types.Actor{ID: "user_7", Email: "ada@example.com", Role: types.RoleDoctor},
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/cases", nil)
	r.Header.Set("Authorization", "Bearer tok-abc")
	s.AuthMiddleware(echoActorHandler()).ServeHTTP(w, r)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Result().StatusCode)
	}
	var body APIResponse
	if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	data := body.Data.(map[string]interface{})
	if data["id"] != "user_7" || data["role"] != "doctor" {
		t.Errorf("unexpected actor payload %v", data)
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	s := newTestServer(t)
	s.Authenticator = &MockAuthenticator{
		Err: types.NewAppError(types.ErrCodeAuthTokenExpired, "token expired", nil),
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/cases", nil)
	r.Header.Set("Authorization", "Bearer tok-old")
	s.AuthMiddleware(echoActorHandler()).ServeHTTP(w, r)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Result().StatusCode)
	}
	body := decodeAuthError(t, w)
	if body.Error.Code != string(types.ErrCodeAuthTokenExpired) {
		t.Errorf("expected auth_token_expired, got %q", body.Error.Code)
	}
}

func TestAuthMiddleware_GenericVerifyErrorMapsToInvalid(t *testing.T) {
	s := newTestServer(t)
	s.Authenticator = &MockAuthenticator{
		VerifyFunc: func(tokenString string) (*types.Actor, error) {
			return nil, io.ErrUnexpectedEOF
		},
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/cases", nil)
	r.Header.Set("Authorization", "Bearer tok-abc")
	s.AuthMiddleware(echoActorHandler()).ServeHTTP(w, r)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Result().StatusCode)
	}
	body := decodeAuthError(t, w)
	if body.Error.Code != string(types.ErrCodeAuthTokenInvalid) {
		t.Errorf("expected auth_token_invalid, got %q", body.Error.Code)
	}
}

func TestAuthMiddleware_NilActorWithoutError(t *testing.T) {
	s := newTestServer(t)
	s.Authenticator = &MockAuthenticator{}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/cases", nil)
	r.Header.Set("Authorization", "Bearer tok-abc")
	s.AuthMiddleware(echoActorHandler()).ServeHTTP(w, r)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Result().StatusCode)
	}
}

// --- RequireRole tests ---

func TestRequireRole_AllowsListedRole(t *testing.T) {
	s := newTestServer(t)

	handler := s.RequireRole(types.RoleAttorney, types.RoleDoctor)(echoActorHandler())

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/cases", nil)
	ctx := types.WithActor(r.Context(), types.Actor{ID: "user_1", Role: types.RoleDoctor})
	handler.ServeHTTP(w, r.WithContext(ctx))

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Result().StatusCode)
	}
}

func TestRequireRole_RejectsUnlistedRole(t *testing.T) {
	s := newTestServer(t)

	handler := s.RequireRole(types.RoleAttorney)(echoActorHandler())

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/cases", nil)
	ctx := types.WithActor(r.Context(), types.Actor{ID: "user_2", Role: types.RolePatient})
	handler.ServeHTTP(w, r.WithContext(ctx))

	if w.Result().StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Result().StatusCode)
	}
	body := decodeAuthError(t, w)
	if body.Error.Code != string(types.ErrCodePermissionRole) {
		t.Errorf("expected permission_role_insufficient, got %q", body.Error.Code)
	}
}

func TestRequireRole_NoActorIsUnauthorized(t *testing.T) {
	s := newTestServer(t)

	handler := s.RequireRole(types.RoleAttorney)(echoActorHandler())

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/cases", nil)
	handler.ServeHTTP(w, r)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Result().StatusCode)
	}
}

// --- extractBearerToken tests ---

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"standard", "Bearer abc123", "abc123"},
		{"lowercase scheme", "bearer abc123", "abc123"},
		{"trailing space", "Bearer abc123  ", "abc123"},
		{"wrong scheme", "Basic abc123", ""},
		{"no token", "Bearer ", ""},
		{"empty", "", ""},
		{"scheme only", "Bearer", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractBearerToken(tc.header); got != tc.want {
				t.Errorf("extractBearerToken(%q) = %q, want %q", tc.header, got, tc.want)
			}
		})
	}
}
