package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shahbazasghar1038/injury-back-end/internal/core"
	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// --- Service Interfaces ---

// BuilderTokenMinter signs embed tokens for the document builder. Satisfied
// by external.DocuSealClient.
type BuilderTokenMinter interface {
	BuilderToken(userEmail string, documentName string) (string, error)
}

// --- Request Models ---

// BuilderTokenRequest is the request body for POST /v1/docuseal/builder-token.
type BuilderTokenRequest struct {
	DocumentName string `json:"document_name"`
}

// --- Handler ---

// DocuSealHandler mints signing tokens for the embedded document builder.
type DocuSealHandler struct {
	minter    BuilderTokenMinter
	validator *core.Validator
	logger    *slog.Logger
}

// NewDocuSealHandler creates a DocuSealHandler.
func NewDocuSealHandler(minter BuilderTokenMinter, v *core.Validator, l *slog.Logger) *DocuSealHandler {
	if l == nil {
		l = slog.Default()
	}
	return &DocuSealHandler{minter: minter, validator: v, logger: l}
}

// RegisterRoutes mounts the DocuSeal routes.
func (h *DocuSealHandler) RegisterRoutes(r chi.Router) {
	r.Route("/docuseal", func(r chi.Router) {
		r.Post("/builder-token", h.BuilderToken)
	})
}

// BuilderToken handles POST /v1/docuseal/builder-token. The token is scoped
// to the caller's email.
func (h *DocuSealHandler) BuilderToken(w http.ResponseWriter, r *http.Request) {
	actor, ok := types.GetActor(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeAuthTokenMissing,
			"authentication is required",
			nil,
		))
		return
	}

	var req BuilderTokenRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}

	token, err := h.minter.BuilderToken(actor.Email, req.DocumentName)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: map[string]string{
		"token": token,
	}})
}
