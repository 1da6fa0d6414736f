package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// QuotaRepository tracks each user's case allowance on the users table
// (case_count / case_limit). All mutations are single conditional UPDATE
// statements: the row lock taken by the UPDATE serializes concurrent
// admissions for the same user, and RowsAffected tells the caller whether
// the guard held. Run inside the admission transaction, a reservation
// commits or rolls back together with the case row it paid for.
type QuotaRepository struct {
	db DBTX
}

// NewQuotaRepository creates a QuotaRepository backed by the given
// database connection (pool or transaction).
func NewQuotaRepository(db DBTX) *QuotaRepository {
	return &QuotaRepository{db: db}
}

// GetAllowance returns the user's current case count and limit.
// Returns ErrCodeNotFoundUser if the user row is missing.
func (r *QuotaRepository) GetAllowance(ctx context.Context, userID string) (types.Allowance, error) {
	var a types.Allowance
	err := r.db.QueryRow(ctx,
		`SELECT case_count, case_limit FROM users WHERE id = $1`,
		userID,
	).Scan(&a.Count, &a.Limit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Allowance{}, types.NewAppError(types.ErrCodeNotFoundUser, "user not found", nil)
		}
		return types.Allowance{}, types.NewAppError(types.ErrCodeInternalDB, "failed to read case allowance", err)
	}
	return a, nil
}

// ReserveSlot consumes one free-tier slot if the user has room. Check and
// increment happen in one statement, so two concurrent reservations at one
// remaining slot resolve to exactly one success.
// Returns ErrCodeLimitCases when the allowance is exhausted and
// ErrCodeNotFoundUser when the user row is missing.
func (r *QuotaRepository) ReserveSlot(ctx context.Context, userID string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET case_count = case_count + 1, updated_at = NOW()
		 WHERE id = $1 AND case_count < case_limit`,
		userID,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to reserve case slot", err)
	}
	if tag.RowsAffected() == 0 {
		// Zero rows means either the guard failed or the user is gone.
		var exists bool
		err := r.db.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`,
			userID,
		).Scan(&exists)
		if err != nil {
			return types.NewAppError(types.ErrCodeInternalDB, "failed to check user after reservation", err)
		}
		if !exists {
			return types.NewAppError(types.ErrCodeNotFoundUser, "user not found", nil)
		}
		return types.NewAppError(types.ErrCodeLimitCases,
			"case limit reached, upgrade or purchase a slot to add more cases", nil)
	}
	return nil
}

// ConsumePaidSlot records a paid admission. It always increments the count;
// when the user is already at their limit, the limit is extended by exactly
// the amount needed so count never exceeds it.
// Returns ErrCodeNotFoundUser when the user row is missing.
func (r *QuotaRepository) ConsumePaidSlot(ctx context.Context, userID string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET case_count = case_count + 1,
		 case_limit = GREATEST(case_limit, case_count + 1),
		 updated_at = NOW()
		 WHERE id = $1`,
		userID,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to record paid case", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundUser, "user not found", nil)
	}
	return nil
}

// IncreaseLimit grants one additional case slot. Used by payment
// confirmation after the processed-payment marker is in place.
// Returns ErrCodeNotFoundUser when the user row is missing.
func (r *QuotaRepository) IncreaseLimit(ctx context.Context, userID string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET case_limit = case_limit + 1, updated_at = NOW()
		 WHERE id = $1`,
		userID,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to increase case limit", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundUser, "user not found", nil)
	}
	return nil
}
