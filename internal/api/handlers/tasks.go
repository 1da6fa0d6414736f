package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shahbazasghar1038/injury-back-end/internal/core"
	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// --- Service Interfaces ---

// TaskStore is the slice of db.TaskRepository the task handler uses.
type TaskStore interface {
	Insert(ctx context.Context, t *types.Task) error
	GetByID(ctx context.Context, id string) (*types.Task, error)
	ListByCase(ctx context.Context, caseID string) ([]types.Task, error)
	UpdateStatus(ctx context.Context, id string, status types.TaskStatus) error
}

// CaseChecker verifies a case exists before dependent rows are created.
// Satisfied by db.CaseRepository.
type CaseChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// --- Request Models ---

// CreateTaskRequest is the request body for POST /v1/tasks.
type CreateTaskRequest struct {
	CaseID      string     `json:"case_id" validate:"required"`
	Title       string     `json:"title" validate:"required,min=2"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

// UpdateTaskStatusRequest is the request body for PATCH /v1/tasks/{id}/status.
type UpdateTaskStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open in_progress done"`
}

// --- Handler ---

// TaskHandler exposes the work items tracked under a case.
type TaskHandler struct {
	tasks     TaskStore
	cases     CaseChecker
	validator *core.Validator
	logger    *slog.Logger
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(tasks TaskStore, cases CaseChecker, v *core.Validator, l *slog.Logger) *TaskHandler {
	if l == nil {
		l = slog.Default()
	}
	return &TaskHandler{tasks: tasks, cases: cases, validator: v, logger: l}
}

// RegisterRoutes mounts the task routes.
func (h *TaskHandler) RegisterRoutes(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/case/{caseID}", h.ListByCase)
		r.Patch("/{id}/status", h.UpdateStatus)
	})
}

// Create handles POST /v1/tasks. Returns 404 when the named case does not
// exist.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
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

	task := &types.Task{
		ID:          uuid.NewString(),
		CaseID:      req.CaseID,
		Title:       req.Title,
		Description: req.Description,
		Status:      types.TaskStatusOpen,
		DueDate:     req.DueDate,
	}
	if err := h.tasks.Insert(r.Context(), task); err != nil {
		core.Error(w, r, err)
		return
	}

	created, err := h.tasks.GetByID(r.Context(), task.ID)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: created})
}

// ListByCase handles GET /v1/tasks/case/{caseID}.
func (h *TaskHandler) ListByCase(w http.ResponseWriter, r *http.Request) {
	list, err := h.tasks.ListByCase(r.Context(), chi.URLParam(r, "caseID"))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: list})
}

// UpdateStatus handles PATCH /v1/tasks/{id}/status.
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateTaskStatusRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	if err := h.tasks.UpdateStatus(r.Context(), id, types.TaskStatus(req.Status)); err != nil {
		core.Error(w, r, err)
		return
	}

	task, err := h.tasks.GetByID(r.Context(), id)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: task})
}
