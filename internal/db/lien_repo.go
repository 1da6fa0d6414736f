package db

import (
	"context"

	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// LienOfferRepository provides data access for lien settlement offers.
type LienOfferRepository struct {
	db DBTX
}

// NewLienOfferRepository creates a new LienOfferRepository backed by the
// given database connection (pool or transaction).
func NewLienOfferRepository(db DBTX) *LienOfferRepository {
	return &LienOfferRepository{db: db}
}

// Insert persists a new lien offer against a case.
func (r *LienOfferRepository) Insert(ctx context.Context, o *types.LienOffer) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO lien_offers (id, case_id, offered_by_id, amount_cents, notes, status)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		o.ID,
		o.CaseID,
		o.OfferedByID,
		o.AmountCents,
		nilIfEmpty(o.Notes),
		o.Status,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create lien offer", err)
	}
	return nil
}

// ListByCase returns all offers for a case, newest first, with a summary of
// the offering user joined in.
func (r *LienOfferRepository) ListByCase(ctx context.Context, caseID string) ([]types.LienOffer, error) {
	rows, err := r.db.Query(ctx,
		`SELECT o.id, o.case_id, o.offered_by_id, o.amount_cents, o.notes, o.status,
		        o.created_at, u.id, u.full_name, u.email, u.role
		 FROM lien_offers o
		 JOIN users u ON u.id = o.offered_by_id
		 WHERE o.case_id = $1
		 ORDER BY o.created_at DESC`,
		caseID,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list lien offers", err)
	}
	defer rows.Close()

	var offers []types.LienOffer
	for rows.Next() {
		var o types.LienOffer
		var notes *string
		var by types.UserSummary
		err := rows.Scan(
			&o.ID,
			&o.CaseID,
			&o.OfferedByID,
			&o.AmountCents,
			&notes,
			&o.Status,
			&o.CreatedAt,
			&by.ID,
			&by.FullName,
			&by.Email,
			&by.Role,
		)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan lien offer row", err)
		}
		if notes != nil {
			o.Notes = *notes
		}
		o.OfferedBy = &by
		offers = append(offers, o)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate lien offer rows", err)
	}
	return offers, nil
}

// UpdateStatus transitions an offer to the given status.
// Returns ErrCodeNotFoundLienOffer if no offer is found.
func (r *LienOfferRepository) UpdateStatus(ctx context.Context, id string, status types.LienOfferStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE lien_offers SET status = $1 WHERE id = $2`,
		status,
		id,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to update lien offer status", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundLienOffer, "lien offer not found", nil)
	}
	return nil
}
