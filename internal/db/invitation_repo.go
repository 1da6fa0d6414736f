package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// InvitationRepository provides data access for doctor invitations.
type InvitationRepository struct {
	db DBTX
}

// NewInvitationRepository creates a new InvitationRepository backed by the
// given database connection (pool or transaction).
func NewInvitationRepository(db DBTX) *InvitationRepository {
	return &InvitationRepository{db: db}
}

const invitationColumns = `i.id, i.case_id, i.inviter_id, i.doctor_email,
	i.doctor_name, i.status, i.created_at`

func scanInvitation(row pgx.Row) (*types.DoctorInvitation, error) {
	var inv types.DoctorInvitation
	var doctorName *string
	err := row.Scan(
		&inv.ID,
		&inv.CaseID,
		&inv.InviterID,
		&inv.DoctorEmail,
		&doctorName,
		&inv.Status,
		&inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if doctorName != nil {
		inv.DoctorName = *doctorName
	}
	return &inv, nil
}

// Insert persists a new invitation in pending state.
func (r *InvitationRepository) Insert(ctx context.Context, inv *types.DoctorInvitation) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO doctor_invitations (id, case_id, inviter_id, doctor_email, doctor_name, status)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		inv.ID,
		inv.CaseID,
		inv.InviterID,
		inv.DoctorEmail,
		nilIfEmpty(inv.DoctorName),
		inv.Status,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create invitation", err)
	}
	return nil
}

// GetPending retrieves an invitation by ID only while it is still pending.
// Accepted or expired invitations are treated as not found so signup links
// stop working once used.
func (r *InvitationRepository) GetPending(ctx context.Context, id string) (*types.DoctorInvitation, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+invitationColumns+`
		 FROM doctor_invitations i
		 WHERE i.id = $1 AND i.status = 'pending'`,
		id,
	)
	inv, err := scanInvitation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundInvitation, "invitation not found or no longer pending", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve invitation", err)
	}
	return inv, nil
}

// UpdateStatus transitions an invitation to the given status.
// Returns ErrCodeNotFoundInvitation if no invitation is found.
func (r *InvitationRepository) UpdateStatus(ctx context.Context, id string, status types.InvitationStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE doctor_invitations SET status = $1 WHERE id = $2`,
		status,
		id,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to update invitation status", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundInvitation, "invitation not found", nil)
	}
	return nil
}
