package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shahbazasghar1038/injury-back-end/internal/core"
	"github.com/shahbazasghar1038/injury-back-end/internal/external"
	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// --- Service Interfaces ---

// InvitationStore is the slice of db.InvitationRepository the handler uses.
type InvitationStore interface {
	Insert(ctx context.Context, inv *types.DoctorInvitation) error
	GetPending(ctx context.Context, id string) (*types.DoctorInvitation, error)
}

// --- Request Models ---

// InviteDoctorRequest is the request body for POST /v1/invitations.
type InviteDoctorRequest struct {
	CaseID      string `json:"case_id" validate:"required"`
	DoctorEmail string `json:"doctor_email" validate:"required,email"`
	DoctorName  string `json:"doctor_name"`
}

// --- Handler ---

// InvitationHandler invites doctors onto cases. The invite email carries a
// signup link with the invitation ID; the pending lookup backs that signup
// page and is public.
type InvitationHandler struct {
	invitations InvitationStore
	mailer      external.EmailSender
	frontendURL string
	validator   *core.Validator
	logger      *slog.Logger
}

// NewInvitationHandler creates an InvitationHandler.
func NewInvitationHandler(
	invitations InvitationStore,
	mailer external.EmailSender,
	frontendURL string,
	v *core.Validator,
	l *slog.Logger,
) *InvitationHandler {
	if l == nil {
		l = slog.Default()
	}
	return &InvitationHandler{
		invitations: invitations,
		mailer:      mailer,
		frontendURL: strings.TrimSuffix(frontendURL, "/"),
		validator:   v,
		logger:      l,
	}
}

// RegisterRoutes mounts the invitation routes.
func (h *InvitationHandler) RegisterRoutes(r chi.Router) {
	r.Route("/invitations", func(r chi.Router) {
		r.Post("/", h.Invite)
		r.Get("/{id}", h.GetPending)
	})
}

// Invite handles POST /v1/invitations. The invitation row is created first;
// email delivery is best effort, so a mail-provider outage never loses the
// invite.
func (h *InvitationHandler) Invite(w http.ResponseWriter, r *http.Request) {
	actor, ok := types.GetActor(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeAuthTokenMissing,
			"authentication is required",
			nil,
		))
		return
	}

	var req InviteDoctorRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	inv := &types.DoctorInvitation{
		ID:          uuid.NewString(),
		CaseID:      req.CaseID,
		InviterID:   actor.ID,
		DoctorEmail: req.DoctorEmail,
		DoctorName:  req.DoctorName,
		Status:      types.InvitationPending,
	}
	if err := h.invitations.Insert(r.Context(), inv); err != nil {
		core.Error(w, r, err)
		return
	}

	h.sendInviteEmail(r.Context(), inv)

	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: inv})
}

// GetPending handles GET /v1/invitations/{id}. Returns 404 once the
// invitation is no longer pending, so signup links stop working after use.
func (h *InvitationHandler) GetPending(w http.ResponseWriter, r *http.Request) {
	inv, err := h.invitations.GetPending(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: inv})
}

// sendInviteEmail delivers the signup link. Failures are logged, never
// surfaced.
func (h *InvitationHandler) sendInviteEmail(ctx context.Context, inv *types.DoctorInvitation) {
	if h.mailer == nil {
		return
	}

	signupURL := fmt.Sprintf("%s/signup?invitation=%s", h.frontendURL, inv.ID)
	name := inv.DoctorName
	if name == "" {
		name = inv.DoctorEmail
	}

	msg := external.EmailMessage{
		To:      inv.DoctorEmail,
		ToName:  name,
		Subject: "You have been invited to join a case",
		HTMLContent: fmt.Sprintf(
			"<p>Hello %s,</p><p>You have been invited to collaborate on a case. "+
				"Create your account to get started:</p><p><a href=%q>%s</a></p>",
			name, signupURL, signupURL,
		),
	}

	if _, err := h.mailer.Send(ctx, msg); err != nil {
		h.logger.ErrorContext(ctx, "failed to send invitation email",
			"invitation_id", inv.ID,
			"error", err,
		)
	}
}
