package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shahbazasghar1038/injury-back-end/internal/core"
	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// --- Service Interfaces ---

// LienOfferStore is the slice of db.LienOfferRepository the handler uses.
type LienOfferStore interface {
	Insert(ctx context.Context, o *types.LienOffer) error
	ListByCase(ctx context.Context, caseID string) ([]types.LienOffer, error)
	UpdateStatus(ctx context.Context, id string, status types.LienOfferStatus) error
}

// --- Request Models ---

// CreateLienOfferRequest is the request body for POST /v1/lien-offers. The
// offering user is the authenticated caller.
type CreateLienOfferRequest struct {
	CaseID      string `json:"case_id" validate:"required"`
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
	Notes       string `json:"notes"`
}

// UpdateLienOfferStatusRequest is the request body for
// PATCH /v1/lien-offers/{id}/status.
type UpdateLienOfferStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending accepted rejected"`
}

// --- Handler ---

// LienOfferHandler exposes settlement offers against a case's medical liens.
type LienOfferHandler struct {
	offers    LienOfferStore
	cases     CaseChecker
	validator *core.Validator
	logger    *slog.Logger
}

// NewLienOfferHandler creates a LienOfferHandler.
func NewLienOfferHandler(offers LienOfferStore, cases CaseChecker, v *core.Validator, l *slog.Logger) *LienOfferHandler {
	if l == nil {
		l = slog.Default()
	}
	return &LienOfferHandler{offers: offers, cases: cases, validator: v, logger: l}
}

// RegisterRoutes mounts the lien offer routes.
func (h *LienOfferHandler) RegisterRoutes(r chi.Router) {
	r.Route("/lien-offers", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/case/{caseID}", h.ListByCase)
		r.Patch("/{id}/status", h.UpdateStatus)
	})
}

// Create handles POST /v1/lien-offers. Returns 404 when the named case does
// not exist.
func (h *LienOfferHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := types.GetActor(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeAuthTokenMissing,
			"authentication is required",
			nil,
		))
		return
	}

	var req CreateLienOfferRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	exists, err := h.cases.Exists(r.Context(), req.CaseID)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if !exists {
		core.Error(w, r, types.NewAppError(types.ErrCodeNotFoundCase, "case not found", nil))
		return
	}

	offer := &types.LienOffer{
		ID:          uuid.NewString(),
		CaseID:      req.CaseID,
		OfferedByID: actor.ID,
		AmountCents: req.AmountCents,
		Notes:       req.Notes,
		Status:      types.LienOfferPending,
	}
	if err := h.offers.Insert(r.Context(), offer); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: offer})
}

// ListByCase handles GET /v1/lien-offers/case/{caseID}. Each offer carries a
// summary of the offering user.
func (h *LienOfferHandler) ListByCase(w http.ResponseWriter, r *http.Request) {
	list, err := h.offers.ListByCase(r.Context(), chi.URLParam(r, "caseID"))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: list})
}

// UpdateStatus handles PATCH /v1/lien-offers/{id}/status.
func (h *LienOfferHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateLienOfferStatusRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	if err := h.offers.UpdateStatus(r.Context(), chi.URLParam(r, "id"), types.LienOfferStatus(req.Status)); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: map[string]string{
		"status": req.Status,
	}})
}
