package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// TreatmentRepository provides data access for provider treatment records.
type TreatmentRepository struct {
	db DBTX
}

// NewTreatmentRepository creates a new TreatmentRepository backed by the
// given database connection (pool or transaction).
func NewTreatmentRepository(db DBTX) *TreatmentRepository {
	return &TreatmentRepository{db: db}
}

const treatmentColumns = `t.id, t.case_id, t.doctor_id, t.treatment_type,
	t.bill_amount_cents, t.status, t.notes, t.created_at, t.updated_at`

func scanTreatment(row pgx.Row) (*types.TreatmentRecord, error) {
	var t types.TreatmentRecord
	var (
		treatmentType *string
		notes         *string
	)
	err := row.Scan(
		&t.ID,
		&t.CaseID,
		&t.DoctorID,
		&treatmentType,
		&t.BillAmount,
		&t.Status,
		&notes,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if treatmentType != nil {
		t.TreatmentType = *treatmentType
	}
	if notes != nil {
		t.Notes = *notes
	}
	return &t, nil
}

// Insert persists a new treatment record.
func (r *TreatmentRepository) Insert(ctx context.Context, t *types.TreatmentRecord) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO treatment_records (id, case_id, doctor_id, treatment_type,
		 bill_amount_cents, status, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID,
		t.CaseID,
		t.DoctorID,
		nilIfEmpty(t.TreatmentType),
		t.BillAmount,
		t.Status,
		nilIfEmpty(t.Notes),
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create treatment record", err)
	}
	return nil
}

// GetByID retrieves a treatment record by ID.
// Returns ErrCodeNotFoundTreatment if no record is found.
func (r *TreatmentRepository) GetByID(ctx context.Context, id string) (*types.TreatmentRecord, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+treatmentColumns+` FROM treatment_records t WHERE t.id = $1`,
		id,
	)
	t, err := scanTreatment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundTreatment, "treatment record not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve treatment record", err)
	}
	return t, nil
}

// ListByCase returns all treatment records for a case ordered by creation time.
func (r *TreatmentRepository) ListByCase(ctx context.Context, caseID string) ([]types.TreatmentRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+treatmentColumns+` FROM treatment_records t
		 WHERE t.case_id = $1 ORDER BY t.created_at`,
		caseID,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list treatment records", err)
	}
	defer rows.Close()

	var records []types.TreatmentRecord
	for rows.Next() {
		t, err := scanTreatment(rows)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan treatment row", err)
		}
		records = append(records, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate treatment rows", err)
	}
	return records, nil
}

// Update applies a partial update. Zero values leave the stored column
// unchanged via COALESCE.
func (r *TreatmentRepository) Update(ctx context.Context, t *types.TreatmentRecord) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE treatment_records SET
		 treatment_type = COALESCE($1, treatment_type),
		 bill_amount_cents = COALESCE($2, bill_amount_cents),
		 status = COALESCE($3, status),
		 notes = COALESCE($4, notes),
		 updated_at = NOW()
		 WHERE id = $5`,
		nilIfEmpty(t.TreatmentType),
		nilIfZeroInt64(t.BillAmount),
		nilIfEmpty(string(t.Status)),
		nilIfEmpty(t.Notes),
		t.ID,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to update treatment record", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundTreatment, "treatment record not found", nil)
	}
	return nil
}

// Delete removes a treatment record.
// Returns ErrCodeNotFoundTreatment if no record is found.
func (r *TreatmentRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM treatment_records WHERE id = $1`, id)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to delete treatment record", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundTreatment, "treatment record not found", nil)
	}
	return nil
}

// nilIfZeroInt64 returns nil when v is zero so COALESCE keeps the stored value.
func nilIfZeroInt64(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}
