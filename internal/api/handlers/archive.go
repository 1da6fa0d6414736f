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

// ArchiveStore is the slice of db.ArchiveRepository the handler uses.
type ArchiveStore interface {
	Insert(ctx context.Context, a *types.ArchivedCase) error
	DeleteByCase(ctx context.Context, caseID string) error
	List(ctx context.Context) ([]types.ArchivedCase, error)
}

// --- Request Models ---

// ArchiveCaseRequest is the request body for POST /v1/archived-cases.
type ArchiveCaseRequest struct {
	CaseID string `json:"case_id" validate:"required"`
	Reason string `json:"reason"`
}

// --- Handler ---

// ArchiveHandler archives and unarchives cases. Archiving plants a marker
// row; the case itself is untouched and listing joins it back in.
type ArchiveHandler struct {
	archive   ArchiveStore
	cases     CaseChecker
	validator *core.Validator
	logger    *slog.Logger
}

// NewArchiveHandler creates an ArchiveHandler.
func NewArchiveHandler(archive ArchiveStore, cases CaseChecker, v *core.Validator, l *slog.Logger) *ArchiveHandler {
	if l == nil {
		l = slog.Default()
	}
	return &ArchiveHandler{archive: archive, cases: cases, validator: v, logger: l}
}

// RegisterRoutes mounts the archive routes.
func (h *ArchiveHandler) RegisterRoutes(r chi.Router) {
	r.Route("/archived-cases", func(r chi.Router) {
		r.Post("/", h.Archive)
		r.Get("/", h.List)
		r.Delete("/{caseID}", h.Unarchive)
	})
}

// Archive handles POST /v1/archived-cases. A second archive of the same case
// returns conflict_already_archived (409).
func (h *ArchiveHandler) Archive(w http.ResponseWriter, r *http.Request) {
	actor, ok := types.GetActor(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeAuthTokenMissing,
			"authentication is required",
			nil,
		))
		return
	}

	var req ArchiveCaseRequest
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

	marker := &types.ArchivedCase{
		ID:         uuid.NewString(),
		CaseID:     req.CaseID,
		ArchivedBy: actor.ID,
		Reason:     req.Reason,
	}
	if err := h.archive.Insert(r.Context(), marker); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: marker})
}

// Unarchive handles DELETE /v1/archived-cases/{caseID}.
func (h *ArchiveHandler) Unarchive(w http.ResponseWriter, r *http.Request) {
	if err := h.archive.DeleteByCase(r.Context(), chi.URLParam(r, "caseID")); err != nil {
		core.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /v1/archived-cases, newest first with cases hydrated.
func (h *ArchiveHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.archive.List(r.Context())
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: list})
}
