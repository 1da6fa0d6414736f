package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

type fakeIntakeStore struct {
	inserted *types.Intake
}

func (f *fakeIntakeStore) Insert(ctx context.Context, in *types.Intake) error {
	f.inserted = in
	return nil
}

func (f *fakeIntakeStore) List(ctx context.Context) ([]types.Intake, error) {
	return []types.Intake{
		{ID: "intake_1", FullName: "Walk In", Email: "lead@example.com"},
	}, nil
}

type fakeDocumentStore struct {
	uploadFn func(ctx context.Context, folder, filename, contentType string, data []byte) (string, error)

	folder      string
	filename    string
	contentType string
	data        []byte
}

func (f *fakeDocumentStore) Upload(ctx context.Context, folder, filename, contentType string, data []byte) (string, error) {
	f.folder, f.filename, f.contentType, f.data = folder, filename, contentType, data
	if f.uploadFn != nil {
		return f.uploadFn(ctx, folder, filename, contentType, data)
	}
	return "https://cdn.example.com/" + folder + "/" + filename, nil
}

func newIntakeRouter(store *fakeIntakeStore, docs *fakeDocumentStore) chi.Router {
	h := NewIntakeHandler(store, docs, 1<<20, testValidator(), testLogger())
	return newRouter(h.RegisterRoutes)
}

func TestIntakeCreate_WithoutFile(t *testing.T) {
	store := &fakeIntakeStore{}
	docs := &fakeDocumentStore{}
	router := newIntakeRouter(store, docs)

	body := map[string]any{
		"full_name":   "Walk In",
		"email":       "lead@example.com",
		"phone":       "+14155550188",
		"description": "Slip and fall at a grocery store",
	}
	w := doRequest(t, router, http.MethodPost, "/intake", body, nil)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, store.inserted)
	assert.NotEmpty(t, store.inserted.ID)
	assert.Empty(t, store.inserted.InsuranceFileURL)
	assert.Empty(t, docs.filename)
}

func TestIntakeCreate_WithInsuranceFile(t *testing.T) {
	store := &fakeIntakeStore{}
	docs := &fakeDocumentStore{}
	router := newIntakeRouter(store, docs)

	raw := []byte("%PDF-1.4 fake policy document")
	body := map[string]any{
		"full_name": "Walk In",
		"email":     "lead@example.com",
		"insurance_file": map[string]string{
			"filename":     "policy.pdf",
			"content_type": "application/pdf",
			"data":         base64.StdEncoding.EncodeToString(raw),
		},
	}
	w := doRequest(t, router, http.MethodPost, "/intake", body, nil)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "intake", docs.folder)
	assert.Equal(t, "policy.pdf", docs.filename)
	assert.Equal(t, "application/pdf", docs.contentType)
	assert.Equal(t, raw, docs.data)
	require.NotNil(t, store.inserted)
	assert.Equal(t, "https://cdn.example.com/intake/policy.pdf", store.inserted.InsuranceFileURL)
}

func TestIntakeCreate_BadBase64(t *testing.T) {
	store := &fakeIntakeStore{}
	router := newIntakeRouter(store, &fakeDocumentStore{})

	body := map[string]any{
		"full_name": "Walk In",
		"email":     "lead@example.com",
		"insurance_file": map[string]string{
			"filename":     "policy.pdf",
			"content_type": "application/pdf",
			"data":         "not!!valid!!base64",
		},
	}
	w := doRequest(t, router, http.MethodPost, "/intake", body, nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(types.ErrCodeValidationInvalidFile), decodeError(t, w).Code)
	assert.Nil(t, store.inserted)
}

func TestIntakeCreate_FileMissingFields(t *testing.T) {
	router := newIntakeRouter(&fakeIntakeStore{}, &fakeDocumentStore{})

	body := map[string]any{
		"full_name": "Walk In",
		"email":     "lead@example.com",
		"insurance_file": map[string]string{
			"filename": "policy.pdf",
		},
	}
	w := doRequest(t, router, http.MethodPost, "/intake", body, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIntakeCreate_MissingEmail(t *testing.T) {
	router := newIntakeRouter(&fakeIntakeStore{}, &fakeDocumentStore{})

	body := map[string]any{"full_name": "Walk In"}
	w := doRequest(t, router, http.MethodPost, "/intake", body, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIntakeList(t *testing.T) {
	router := newIntakeRouter(&fakeIntakeStore{}, &fakeDocumentStore{})

	w := doRequest(t, router, http.MethodGet, "/intake", nil, &testAttorney)

	require.Equal(t, http.StatusOK, w.Code)
	var list []types.Intake
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "lead@example.com", list[0].Email)
}
