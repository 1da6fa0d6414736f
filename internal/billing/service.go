// Package billing coordinates Stripe payment intents with the case quota.
// Creating an intent is a pass-through to Stripe; confirming one is the
// critical path, where a succeeded intent is recorded exactly once and the
// payer's case limit is raised in the same transaction.
package billing

import (
	"context"
	"log/slog"

	"github.com/shahbazasghar1038/injury-back-end/internal/external"
	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// IntentClient is the slice of the Stripe client the service needs.
type IntentClient interface {
	CreatePaymentIntent(ctx context.Context, amountCents int64, currency string, userID string) (*external.PaymentIntent, error)
	GetPaymentIntent(ctx context.Context, intentID string) (*external.PaymentIntent, error)
}

// ConfirmationTx is the unit of work for recording a confirmed payment.
// MarkProcessed and IncreaseLimit must land together or not at all.
type ConfirmationTx interface {
	MarkProcessed(ctx context.Context, p *types.Payment) error
	IncreaseLimit(ctx context.Context, userID string) error
	GetAllowance(ctx context.Context, userID string) (types.Allowance, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// ConfirmationStore opens confirmation transactions.
type ConfirmationStore interface {
	BeginTx(ctx context.Context) (ConfirmationTx, error)
}

// PaymentService creates and confirms Stripe payment intents for paid case
// slots.
type PaymentService struct {
	intents IntentClient
	store   ConfirmationStore
	clock   types.Clock
	logger  *slog.Logger
}

// NewPaymentService wires a PaymentService.
func NewPaymentService(intents IntentClient, store ConfirmationStore, clock types.Clock, logger *slog.Logger) *PaymentService {
	if clock == nil {
		clock = types.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentService{
		intents: intents,
		store:   store,
		clock:   clock,
		logger:  logger,
	}
}

// CreateIntent creates a Stripe PaymentIntent for the given amount and
// returns it with the client secret the frontend needs to collect the card.
func (s *PaymentService) CreateIntent(ctx context.Context, userID string, amountCents int64) (*external.PaymentIntent, error) {
	if amountCents <= 0 {
		return nil, types.NewAppError(
			types.ErrCodeValidationInvalidAmount,
			"payment amount must be positive",
			nil,
		)
	}

	intent, err := s.intents.CreatePaymentIntent(ctx, amountCents, "usd", userID)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "payment intent created",
		"intent_id", intent.ID,
		"user_id", userID,
		"amount_cents", amountCents,
	)

	return intent, nil
}

// ConfirmPayment verifies the intent with Stripe and, if it succeeded,
// records the payment marker and raises the user's case limit by one in a
// single transaction. Replaying the same intent ID returns
// conflict_payment_processed without touching the limit again; the marker
// row is the idempotency guard.
func (s *PaymentService) ConfirmPayment(ctx context.Context, intentID string, userID string) (types.Allowance, error) {
	intent, err := s.intents.GetPaymentIntent(ctx, intentID)
	if err != nil {
		return types.Allowance{}, err
	}

	if !intent.Succeeded() {
		msg := "payment has not completed"
		if intent.RequiresAction() {
			msg = "payment requires further customer action"
		}
		return types.Allowance{}, types.NewAppErrorWithDetails(
			types.ErrCodePaymentNotComplete,
			msg,
			nil,
			map[string]any{"status": intent.Status},
		)
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return types.Allowance{}, err
	}
	defer tx.Rollback(ctx)

	payment := &types.Payment{
		IntentID:    intent.ID,
		UserID:      userID,
		AmountCents: intent.AmountCents,
		ProcessedAt: s.clock.Now(),
	}
	if err := tx.MarkProcessed(ctx, payment); err != nil {
		return types.Allowance{}, err
	}

	if err := tx.IncreaseLimit(ctx, userID); err != nil {
		return types.Allowance{}, err
	}

	allowance, err := tx.GetAllowance(ctx, userID)
	if err != nil {
		return types.Allowance{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return types.Allowance{}, types.NewAppError(
			types.ErrCodeInternalDB,
			"failed to commit payment confirmation",
			err,
		)
	}

	s.logger.InfoContext(ctx, "payment confirmed",
		"intent_id", intent.ID,
		"user_id", userID,
		"case_limit", allowance.Limit,
	)

	return allowance, nil
}
