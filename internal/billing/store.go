package billing

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/shahbazasghar1038/injury-back-end/internal/db"
	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// Store opens pgx transactions that satisfy ConfirmationStore.
type Store struct {
	pool db.TxBeginner
}

// NewStore creates a Store backed by a pgx pool.
func NewStore(pool db.TxBeginner) *Store {
	return &Store{pool: pool}
}

// BeginTx starts a transaction and returns repositories bound to it.
func (s *Store) BeginTx(ctx context.Context) (ConfirmationTx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, types.NewAppError(
			types.ErrCodeInternalDB,
			"failed to begin payment confirmation transaction",
			err,
		)
	}
	return &storeTx{
		tx:       tx,
		payments: db.NewPaymentRepository(tx),
		quota:    db.NewQuotaRepository(tx),
	}, nil
}

type storeTx struct {
	tx       pgx.Tx
	payments *db.PaymentRepository
	quota    *db.QuotaRepository
}

func (t *storeTx) MarkProcessed(ctx context.Context, p *types.Payment) error {
	return t.payments.MarkProcessed(ctx, p)
}

func (t *storeTx) IncreaseLimit(ctx context.Context, userID string) error {
	return t.quota.IncreaseLimit(ctx, userID)
}

func (t *storeTx) GetAllowance(ctx context.Context, userID string) (types.Allowance, error) {
	return t.quota.GetAllowance(ctx, userID)
}

func (t *storeTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *storeTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

var _ ConfirmationStore = (*Store)(nil)
