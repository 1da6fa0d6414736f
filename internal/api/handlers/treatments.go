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

// TreatmentStore is the slice of db.TreatmentRepository the handler uses.
type TreatmentStore interface {
	Insert(ctx context.Context, t *types.TreatmentRecord) error
	GetByID(ctx context.Context, id string) (*types.TreatmentRecord, error)
	ListByCase(ctx context.Context, caseID string) ([]types.TreatmentRecord, error)
	Update(ctx context.Context, t *types.TreatmentRecord) error
	Delete(ctx context.Context, id string) error
}

// --- Request Models ---

// CreateTreatmentRequest is the request body for POST /v1/treatments.
// DoctorID defaults to the authenticated caller.
type CreateTreatmentRequest struct {
	CaseID        string `json:"case_id" validate:"required"`
	DoctorID      string `json:"doctor_id"`
	TreatmentType string `json:"treatment_type"`
	BillAmount    int64  `json:"bill_amount_cents" validate:"omitempty,gt=0"`
	Notes         string `json:"notes"`
}

// UpdateTreatmentRequest is the request body for PATCH /v1/treatments/{id}.
// Only supplied fields change.
type UpdateTreatmentRequest struct {
	TreatmentType *string `json:"treatment_type"`
	BillAmount    *int64  `json:"bill_amount_cents" validate:"omitempty,gt=0"`
	Status        *string `json:"status" validate:"omitempty,oneof=pending billed settled"`
	Notes         *string `json:"notes"`
}

// --- Handler ---

// TreatmentHandler exposes provider treatment records and their lien amounts.
type TreatmentHandler struct {
	treatments TreatmentStore
	cases      CaseChecker
	validator  *core.Validator
	logger     *slog.Logger
}

// NewTreatmentHandler creates a TreatmentHandler.
func NewTreatmentHandler(treatments TreatmentStore, cases CaseChecker, v *core.Validator, l *slog.Logger) *TreatmentHandler {
	if l == nil {
		l = slog.Default()
	}
	return &TreatmentHandler{treatments: treatments, cases: cases, validator: v, logger: l}
}

// RegisterRoutes mounts the treatment routes.
func (h *TreatmentHandler) RegisterRoutes(r chi.Router) {
	r.Route("/treatments", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/case/{caseID}", h.ListByCase)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// Create handles POST /v1/treatments. New records start Pending.
func (h *TreatmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTreatmentRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	doctorID := req.DoctorID
	if doctorID == "" {
		actor, ok := types.GetActor(r.Context())
		if !ok {
			core.Error(w, r, types.NewAppError(
				types.ErrCodeValidationMissingField,
				"doctor_id is required",
				nil,
			))
			return
		}
		doctorID = actor.ID
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

	record := &types.TreatmentRecord{
		ID:            uuid.NewString(),
		CaseID:        req.CaseID,
		DoctorID:      doctorID,
		TreatmentType: req.TreatmentType,
		BillAmount:    req.BillAmount,
		Status:        types.TreatmentPending,
		Notes:         req.Notes,
	}
	if err := h.treatments.Insert(r.Context(), record); err != nil {
		core.Error(w, r, err)
		return
	}

	created, err := h.treatments.GetByID(r.Context(), record.ID)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: created})
}

// ListByCase handles GET /v1/treatments/case/{caseID}.
func (h *TreatmentHandler) ListByCase(w http.ResponseWriter, r *http.Request) {
	list, err := h.treatments.ListByCase(r.Context(), chi.URLParam(r, "caseID"))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: list})
}

// Update handles PATCH /v1/treatments/{id} as a partial update.
func (h *TreatmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateTreatmentRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	record, err := h.treatments.GetByID(r.Context(), id)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	if req.TreatmentType != nil {
		record.TreatmentType = *req.TreatmentType
	}
	if req.BillAmount != nil {
		record.BillAmount = *req.BillAmount
	}
	if req.Status != nil {
		record.Status = types.TreatmentStatus(*req.Status)
	}
	if req.Notes != nil {
		record.Notes = *req.Notes
	}

	if err := h.treatments.Update(r.Context(), record); err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: record})
}

// Delete handles DELETE /v1/treatments/{id}.
func (h *TreatmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.treatments.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		core.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
