package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shahbazasghar1038/injury-back-end/internal/core"
	"github.com/shahbazasghar1038/injury-back-end/internal/external"
	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// --- Service Interfaces ---

// PaymentFlow is the slice of billing.PaymentService the payment handler
// uses: intent creation and idempotent confirmation.
type PaymentFlow interface {
	CreateIntent(ctx context.Context, userID string, amountCents int64) (*external.PaymentIntent, error)
	ConfirmPayment(ctx context.Context, intentID string, userID string) (types.Allowance, error)
}

// --- Request/Response Models ---

// CreateIntentRequest is the request body for POST /v1/payments/intent.
// AmountCents defaults to the configured case-slot price when omitted.
type CreateIntentRequest struct {
	UserID      string `json:"user_id" validate:"required"`
	AmountCents int64  `json:"amount_cents" validate:"omitempty,gt=0"`
}

// CreateIntentResponse carries the client secret the frontend needs to
// complete the payment.
type CreateIntentResponse struct {
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret"`
	AmountCents  int64  `json:"amount_cents"`
}

// ConfirmPaymentRequest is the request body for POST /v1/payments/confirm.
type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
	UserID          string `json:"user_id" validate:"required"`
}

// --- Handler ---

// PaymentHandler exposes the payment-gated case-slot purchase flow.
type PaymentHandler struct {
	payments       PaymentFlow
	slotPriceCents int64
	validator      *core.Validator
	logger         *slog.Logger
}

// NewPaymentHandler creates a PaymentHandler. slotPriceCents is the default
// charge when the intent request does not name an amount.
func NewPaymentHandler(payments PaymentFlow, slotPriceCents int64, v *core.Validator, l *slog.Logger) *PaymentHandler {
	if l == nil {
		l = slog.Default()
	}
	return &PaymentHandler{
		payments:       payments,
		slotPriceCents: slotPriceCents,
		validator:      v,
		logger:         l,
	}
}

// RegisterRoutes mounts the payment routes.
func (h *PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Route("/payments", func(r chi.Router) {
		r.Post("/intent", h.CreateIntent)
		r.Post("/confirm", h.Confirm)
	})
}

// CreateIntent handles POST /v1/payments/intent.
func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var req CreateIntentRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	amount := req.AmountCents
	if amount == 0 {
		amount = h.slotPriceCents
	}

	intent, err := h.payments.CreateIntent(r.Context(), req.UserID, amount)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: CreateIntentResponse{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		AmountCents:  intent.AmountCents,
	}})
}

// Confirm handles POST /v1/payments/confirm. Confirmation is idempotent on
// the intent ID: replays return conflict_payment_processed (409) without a
// second limit increase.
func (h *PaymentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmPaymentRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	allowance, err := h.payments.ConfirmPayment(r.Context(), req.PaymentIntentID, req.UserID)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: allowance})
}
