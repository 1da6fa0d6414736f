// Package handlers contains the HTTP handler implementations for the
// injury case API.
//
// Each handler is responsible for:
//   - Decoding and validating HTTP requests
//   - Delegating to service-layer logic or repositories
//   - Translating errors into structured responses via core.Error
//
// Handlers depend on narrow interfaces declared in this package so tests can
// inject fakes without standing up real services.
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shahbazasghar1038/injury-back-end/internal/auth"
	"github.com/shahbazasghar1038/injury-back-end/internal/core"
	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// --- Service Interfaces ---

// AuthFlow is the slice of auth.AuthService the auth handler uses.
type AuthFlow interface {
	Register(ctx context.Context, input auth.RegisterInput) (*types.User, error)
	VerifyOTP(ctx context.Context, email string, code string) (string, *types.User, error)
	Login(ctx context.Context, email string, password string) (string, *types.User, error)
	ResendOTP(ctx context.Context, email string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email string, code string, newPassword string) error
}

// --- Request/Response Models ---

// AddressInput is a mailing address supplied at registration or profile update.
type AddressInput struct {
	Street  string `json:"street" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

// RegisterRequest is the request body for POST /v1/auth/register.
type RegisterRequest struct {
	FullName     string         `json:"full_name" validate:"required,min=2"`
	Email        string         `json:"email" validate:"required,email"`
	Phone        string         `json:"phone" validate:"omitempty,e164"`
	Password     string         `json:"password" validate:"required,min=8"`
	Role         string         `json:"role" validate:"required,oneof=attorney doctor patient"`
	Speciality   string         `json:"speciality"`
	PracticeName string         `json:"practice_name"`
	Addresses    []AddressInput `json:"addresses" validate:"omitempty,dive"`
}

// VerifyOTPRequest is the request body for POST /v1/auth/verify-otp.
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6"`
}

// LoginRequest is the request body for POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// EmailRequest carries just an email, used by resend-otp and forgot-password.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest is the request body for POST /v1/auth/reset-password.
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,len=6"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// SessionResponse is returned by login and OTP verification: a bearer token
// plus the authenticated user.
type SessionResponse struct {
	Token string      `json:"token"`
	User  *types.User `json:"user"`
}

// --- Handler ---

// AuthHandler exposes registration, email verification, and credential flows.
type AuthHandler struct {
	flow      AuthFlow
	validator *core.Validator
	logger    *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(flow AuthFlow, v *core.Validator, l *slog.Logger) *AuthHandler {
	if l == nil {
		l = slog.Default()
	}
	return &AuthHandler{flow: flow, validator: v, logger: l}
}

// RegisterRoutes mounts the auth routes. All of them are public; the auth
// middleware exempts the /auth prefix.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/verify-otp", h.VerifyOTP)
		r.Post("/login", h.Login)
		r.Post("/resend-otp", h.ResendOTP)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Post("/reset-password", h.ResetPassword)
	})
}

// Register handles POST /v1/auth/register. The account is created
// unverified; a six-digit code is emailed for the verify-otp step.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	user, err := h.flow.Register(r.Context(), auth.RegisterInput{
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		Password:     req.Password,
		Role:         types.UserRole(req.Role),
		Speciality:   req.Speciality,
		PracticeName: req.PracticeName,
		Addresses:    toAddresses(req.Addresses),
	})
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: user})
}

// VerifyOTP handles POST /v1/auth/verify-otp. On success the email is marked
// verified and a session token is returned.
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	token, user, err := h.flow.VerifyOTP(r.Context(), req.Email, req.Code)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: SessionResponse{Token: token, User: user}})
}

// Login handles POST /v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	token, user, err := h.flow.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: SessionResponse{Token: token, User: user}})
}

// ResendOTP handles POST /v1/auth/resend-otp.
func (h *AuthHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	if err := h.flow.ResendOTP(r.Context(), req.Email); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: map[string]string{
		"message": "verification code sent",
	}})
}

// ForgotPassword handles POST /v1/auth/forgot-password. The response is the
// same whether or not the email exists, so the endpoint cannot be used to
// enumerate accounts.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	if err := h.flow.ForgotPassword(r.Context(), req.Email); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: map[string]string{
		"message": "if the account exists, a reset code has been sent",
	}})
}

// ResetPassword handles POST /v1/auth/reset-password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	if err := h.flow.ResetPassword(r.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: map[string]string{
		"message": "password updated",
	}})
}

// toAddresses converts address inputs to domain addresses. IDs and user
// linkage are filled in by the persistence layer.
func toAddresses(in []AddressInput) []types.Address {
	if len(in) == 0 {
		return nil
	}
	out := make([]types.Address, 0, len(in))
	for _, a := range in {
		out = append(out, types.Address{
			Street:  a.Street,
			City:    a.City,
			State:   a.State,
			ZipCode: a.ZipCode,
			Country: a.Country,
		})
	}
	return out
}
