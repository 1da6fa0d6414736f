package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// PaymentRepository stores processed-payment markers keyed by the payment
// provider's intent ID. The primary key makes replayed confirmations fail
// cleanly instead of granting the same slot twice.
type PaymentRepository struct {
	db DBTX
}

// NewPaymentRepository creates a new PaymentRepository backed by the given
// database connection (pool or transaction).
func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// MarkProcessed records that the given intent has been applied. A second
// call with the same intent ID returns ErrCodeConflictPaymentProcessed,
// which is the idempotency contract of payment confirmation.
func (r *PaymentRepository) MarkProcessed(ctx context.Context, p *types.Payment) error {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO payments (intent_id, user_id, amount_cents)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (intent_id) DO NOTHING`,
		p.IntentID,
		p.UserID,
		p.AmountCents,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to record payment", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeConflictPaymentProcessed, "payment has already been processed", nil)
	}
	return nil
}

// Get retrieves a processed-payment marker by intent ID.
func (r *PaymentRepository) Get(ctx context.Context, intentID string) (*types.Payment, error) {
	var p types.Payment
	err := r.db.QueryRow(ctx,
		`SELECT intent_id, user_id, amount_cents, processed_at
		 FROM payments WHERE intent_id = $1`,
		intentID,
	).Scan(&p.IntentID, &p.UserID, &p.AmountCents, &p.ProcessedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundPayment, "payment not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve payment", err)
	}
	return &p, nil
}
