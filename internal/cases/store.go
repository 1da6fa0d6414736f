package cases

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/shahbazasghar1038/injury-back-end/internal/db"
	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// Store implements AdmissionStore over a pgx connection pool. Each
// transaction carries quota and case repositories bound to the same pgx.Tx.
type Store struct {
	pool db.TxBeginner
}

// NewStore creates a Store over the given pool.
func NewStore(pool db.TxBeginner) *Store {
	return &Store{pool: pool}
}

// BeginTx opens a database transaction for one admission.
func (s *Store) BeginTx(ctx context.Context) (AdmissionTx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &storeTx{
		tx:    tx,
		quota: db.NewQuotaRepository(tx),
		cases: db.NewCaseRepository(tx),
	}, nil
}

type storeTx struct {
	tx    pgx.Tx
	quota *db.QuotaRepository
	cases *db.CaseRepository
}

func (t *storeTx) ReserveSlot(ctx context.Context, userID string) error {
	return t.quota.ReserveSlot(ctx, userID)
}

func (t *storeTx) ConsumePaidSlot(ctx context.Context, userID string) error {
	return t.quota.ConsumePaidSlot(ctx, userID)
}

func (t *storeTx) InsertCase(ctx context.Context, c *types.Case) error {
	return t.cases.Insert(ctx, c)
}

func (t *storeTx) AttachParticipant(ctx context.Context, userID, caseID string) error {
	return t.cases.AttachParticipant(ctx, userID, caseID)
}

func (t *storeTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *storeTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}
