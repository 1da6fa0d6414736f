package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shahbazasghar1038/injury-back-end/internal/core"
	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// --- Service Interfaces ---

// CaseAdmitter admits new cases subject to the owner's allowance.
// Satisfied by cases.AdmissionService.
type CaseAdmitter interface {
	AdmitCase(ctx context.Context, userID string, draft types.CaseDraft, isPaid bool) (*types.Case, error)
	AttachDoctor(ctx context.Context, doctorID string, caseID string) error
}

// CaseReader is the slice of db.CaseRepository the case handler uses.
type CaseReader interface {
	GetByID(ctx context.Context, id string) (*types.Case, error)
	ListInProgress(ctx context.Context) ([]types.Case, error)
	ListForUser(ctx context.Context, userID string) ([]types.Case, error)
	UpdateStatus(ctx context.Context, id string, status types.CaseStatus) error
	CountActiveForUser(ctx context.Context, userID string) (int, error)
}

// AllowanceReader reports a user's case quota. Satisfied by
// db.QuotaRepository.
type AllowanceReader interface {
	GetAllowance(ctx context.Context, userID string) (types.Allowance, error)
}

// --- Request Models ---

// CreateCaseRequest is the request body for POST /v1/cases.
type CreateCaseRequest struct {
	PatientName  string     `json:"patient_name" validate:"required,min=2"`
	PatientDOB   *time.Time `json:"patient_dob"`
	Email        string     `json:"email" validate:"omitempty,email"`
	Phone        string     `json:"phone" validate:"omitempty,e164"`
	AccidentDate *time.Time `json:"accident_date"`
	Description  string     `json:"description"`

	// UserID is the owning attorney. IsPaidCase selects the paid admission
	// path, which bypasses the free-tier allowance check.
	UserID     string `json:"user_id" validate:"required"`
	IsPaidCase bool   `json:"is_paid_case"`
}

// UpdateCaseStatusRequest is the request body for PATCH /v1/cases/{id}/status.
type UpdateCaseStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=in_progress settled closed"`
}

// AttachDoctorRequest is the request body for POST /v1/cases/{id}/doctors.
type AttachDoctorRequest struct {
	DoctorID string `json:"doctor_id" validate:"required"`
}

// --- Handler ---

// CaseHandler exposes case admission and the case read surface.
type CaseHandler struct {
	admitter  CaseAdmitter
	cases     CaseReader
	allowance AllowanceReader
	validator *core.Validator
	logger    *slog.Logger
}

// NewCaseHandler creates a CaseHandler.
func NewCaseHandler(
	admitter CaseAdmitter,
	cases CaseReader,
	allowance AllowanceReader,
	v *core.Validator,
	l *slog.Logger,
) *CaseHandler {
	if l == nil {
		l = slog.Default()
	}
	return &CaseHandler{
		admitter:  admitter,
		cases:     cases,
		allowance: allowance,
		validator: v,
		logger:    l,
	}
}

// RegisterRoutes mounts the case routes.
func (h *CaseHandler) RegisterRoutes(r chi.Router) {
	r.Route("/cases", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.ListInProgress)
		r.Get("/mine", h.ListMine)
		r.Get("/count", h.ActiveCount)
		r.Get("/allowance", h.Allowance)
		r.Get("/{id}", h.Get)
		r.Patch("/{id}/status", h.UpdateStatus)
		r.Post("/{id}/doctors", h.AttachDoctor)
	})
}

// Create handles POST /v1/cases. Free-tier admissions are denied with
// limit_cases_exceeded (403) once the owner's allowance is exhausted; paid
// admissions always succeed on quota.
func (h *CaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCaseRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	draft := types.CaseDraft{
		PatientName:  req.PatientName,
		PatientDOB:   req.PatientDOB,
		Email:        req.Email,
		Phone:        req.Phone,
		AccidentDate: req.AccidentDate,
		Description:  req.Description,
	}

	c, err := h.admitter.AdmitCase(r.Context(), req.UserID, draft, req.IsPaidCase)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: c})
}

// ListInProgress handles GET /v1/cases.
func (h *CaseHandler) ListInProgress(w http.ResponseWriter, r *http.Request) {
	list, err := h.cases.ListInProgress(r.Context())
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: list})
}

// ListMine handles GET /v1/cases/mine: the cases the caller participates in.
func (h *CaseHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := types.GetActor(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeAuthTokenMissing,
			"authentication is required",
			nil,
		))
		return
	}

	list, err := h.cases.ListForUser(r.Context(), actor.ID)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: list})
}

// Get handles GET /v1/cases/{id}.
func (h *CaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.cases.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: c})
}

// UpdateStatus handles PATCH /v1/cases/{id}/status.
func (h *CaseHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateCaseStatusRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	if err := h.cases.UpdateStatus(r.Context(), id, types.CaseStatus(req.Status)); err != nil {
		core.Error(w, r, err)
		return
	}

	c, err := h.cases.GetByID(r.Context(), id)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: c})
}

// ActiveCount handles GET /v1/cases/count. The user_id query parameter
// defaults to the caller.
func (h *CaseHandler) ActiveCount(w http.ResponseWriter, r *http.Request) {
	userID, err := h.resolveUserID(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	count, err := h.cases.CountActiveForUser(r.Context(), userID)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: map[string]int{
		"active_cases": count,
	}})
}

// Allowance handles GET /v1/cases/allowance. The user_id query parameter
// defaults to the caller.
func (h *CaseHandler) Allowance(w http.ResponseWriter, r *http.Request) {
	userID, err := h.resolveUserID(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	allowance, err := h.allowance.GetAllowance(r.Context(), userID)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: allowance})
}

// AttachDoctor handles POST /v1/cases/{id}/doctors.
func (h *CaseHandler) AttachDoctor(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "id")

	var req AttachDoctorRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	if err := h.admitter.AttachDoctor(r.Context(), req.DoctorID, caseID); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: map[string]string{
		"case_id":   caseID,
		"doctor_id": req.DoctorID,
	}})
}

// resolveUserID picks the target user from the user_id query parameter,
// falling back to the authenticated caller.
func (h *CaseHandler) resolveUserID(r *http.Request) (string, error) {
	if userID := r.URL.Query().Get("user_id"); userID != "" {
		return userID, nil
	}
	actor, ok := types.GetActor(r.Context())
	if !ok {
		return "", types.NewAppError(
			types.ErrCodeAuthTokenMissing,
			"authentication is required",
			nil,
		)
	}
	return actor.ID, nil
}
