package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/shahbazasghar1038/injury-back-end/internal/core"
	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// Shared helpers for handler tests: a quiet logger, a real validator, and a
// request runner that injects an actor the way the auth middleware would.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testValidator() *core.Validator {
	return core.NewValidator(testLogger())
}

var testAttorney = types.Actor{ID: "user_att1", Email: "ada@example.com", Role: types.RoleAttorney}
var testDoctor = types.Actor{ID: "user_doc1", Email: "doc@example.com", Role: types.RoleDoctor}

// doRequest executes a request against the router, optionally marshalling
// body to JSON and injecting actor into the request context.
func doRequest(t *testing.T, router chi.Router, method, path string, body any, actor *types.Actor) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	r := httptest.NewRequest(method, path, reader)
	if actor != nil {
		r = r.WithContext(types.WithActor(r.Context(), *actor))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

// decodeEnvelope unmarshals the standard response envelope, returning the raw
// data payload for further decoding.
func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) json.RawMessage {
	t.Helper()

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Data
}

// decodeError unmarshals the standard error envelope.
func decodeError(t *testing.T, w *httptest.ResponseRecorder) core.ErrorDetail {
	t.Helper()

	var envelope core.APIErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Error
}

// newRouter returns a chi router with the handler's routes mounted, the way
// the server mounts them under /v1.
func newRouter(register func(chi.Router)) chi.Router {
	r := chi.NewRouter()
	register(r)
	return r
}
