package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shahbazasghar1038/injury-back-end/internal/core"
	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// --- Service Interfaces ---

// UserDirectory is the slice of db.UserRepository the user handler uses.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*types.User, error)
	List(ctx context.Context) ([]types.User, error)
	ListDoctors(ctx context.Context) ([]types.User, error)
	Update(ctx context.Context, user *types.User) error
	Delete(ctx context.Context, id string) error
	ReplaceAddresses(ctx context.Context, userID string, addresses []types.Address) error
}

// PasswordChanger changes a password after checking the current one.
// Satisfied by auth.AuthService.
type PasswordChanger interface {
	ChangePassword(ctx context.Context, userID string, currentPassword string, newPassword string) error
}

// --- Request Models ---

// UpdateUserRequest is the request body for PUT /v1/users/{id}. Addresses,
// when present, replace the user's full address set.
type UpdateUserRequest struct {
	FullName     string         `json:"full_name" validate:"omitempty,min=2"`
	Phone        string         `json:"phone" validate:"omitempty,e164"`
	Speciality   string         `json:"speciality"`
	PracticeName string         `json:"practice_name"`
	Addresses    []AddressInput `json:"addresses" validate:"omitempty,dive"`
}

// ChangePasswordRequest is the request body for PUT /v1/users/{id}/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// --- Handler ---

// UserHandler exposes the user directory: lookups, profile updates, account
// deletion, and the doctor listing used when attaching providers to cases.
type UserHandler struct {
	users     UserDirectory
	passwords PasswordChanger
	validator *core.Validator
	logger    *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users UserDirectory, passwords PasswordChanger, v *core.Validator, l *slog.Logger) *UserHandler {
	if l == nil {
		l = slog.Default()
	}
	return &UserHandler{users: users, passwords: passwords, validator: v, logger: l}
}

// RegisterRoutes mounts the user routes.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/doctors", h.ListDoctors)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Put("/{id}/password", h.ChangePassword)
	})
}

// List handles GET /v1/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: users})
}

// ListDoctors handles GET /v1/users/doctors.
func (h *UserHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.users.ListDoctors(r.Context())
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: doctors})
}

// Get handles GET /v1/users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: user})
}

// Update handles PUT /v1/users/{id}. Only supplied fields change; addresses,
// when present, replace the existing set.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateUserRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Speciality != "" {
		user.Speciality = req.Speciality
	}
	if req.PracticeName != "" {
		user.PracticeName = req.PracticeName
	}

	if err := h.users.Update(r.Context(), user); err != nil {
		core.Error(w, r, err)
		return
	}

	if req.Addresses != nil {
		if err := h.users.ReplaceAddresses(r.Context(), id, toAddresses(req.Addresses)); err != nil {
			core.Error(w, r, err)
			return
		}
	}

	updated, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: updated})
}

// Delete handles DELETE /v1/users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		core.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChangePassword handles PUT /v1/users/{id}/password. Users can only change
// their own password.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	actor, ok := types.GetActor(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeAuthTokenMissing,
			"authentication is required",
			nil,
		))
		return
	}
	if actor.ID != id {
		core.Error(w, r, types.NewAppError(
			types.ErrCodePermissionRole,
			"passwords can only be changed for your own account",
			nil,
		))
		return
	}

	var req ChangePasswordRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	if err := h.passwords.ChangePassword(r.Context(), id, req.CurrentPassword, req.NewPassword); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: map[string]string{
		"message": "password updated",
	}})
}
