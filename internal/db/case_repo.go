package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// CaseRepository provides data access for cases and the user_cases
// association set.
type CaseRepository struct {
	db DBTX
}

// NewCaseRepository creates a new CaseRepository backed by the given
// database connection (pool or transaction).
func NewCaseRepository(db DBTX) *CaseRepository {
	return &CaseRepository{db: db}
}

const caseColumns = `c.id, c.patient_name, c.patient_dob, c.email, c.phone,
	c.accident_date, c.description, c.status, c.payment_status, c.created_at, c.updated_at`

// scanCase scans a single case row. Column order must match caseColumns.
func scanCase(row pgx.Row) (*types.Case, error) {
	var c types.Case
	var (
		email       *string
		phone       *string
		description *string
	)
	err := row.Scan(
		&c.ID,
		&c.PatientName,
		&c.PatientDOB,
		&email,
		&phone,
		&c.AccidentDate,
		&description,
		&c.Status,
		&c.PaymentStatus,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if email != nil {
		c.Email = *email
	}
	if phone != nil {
		c.Phone = *phone
	}
	if description != nil {
		c.Description = *description
	}
	return &c, nil
}

// Insert persists a new case row.
func (r *CaseRepository) Insert(ctx context.Context, c *types.Case) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO cases (id, patient_name, patient_dob, email, phone,
		 accident_date, description, status, payment_status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID,
		c.PatientName,
		c.PatientDOB,
		nilIfEmpty(c.Email),
		nilIfEmpty(c.Phone),
		c.AccidentDate,
		nilIfEmpty(c.Description),
		c.Status,
		c.PaymentStatus,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create case", err)
	}
	return nil
}

// AttachParticipant links a user to a case in user_cases.
// Returns ErrCodeConflictCaseAssociation when the link already exists.
func (r *CaseRepository) AttachParticipant(ctx context.Context, userID, caseID string) error {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO user_cases (user_id, case_id) VALUES ($1, $2)
		 ON CONFLICT (user_id, case_id) DO NOTHING`,
		userID,
		caseID,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to attach user to case", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeConflictCaseAssociation, "user is already on this case", nil)
	}
	return nil
}

// GetByID retrieves a case with its participant set hydrated.
// Returns ErrCodeNotFoundCase if no case is found.
func (r *CaseRepository) GetByID(ctx context.Context, id string) (*types.Case, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+caseColumns+` FROM cases c WHERE c.id = $1`,
		id,
	)
	c, err := scanCase(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundCase, "case not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve case", err)
	}

	participants, err := r.ListParticipants(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Participants = participants
	return c, nil
}

// Exists reports whether a case row is present. Child-entity creation
// (tasks, offers, invitations) checks this before inserting.
func (r *CaseRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM cases WHERE id = $1)`,
		id,
	).Scan(&exists)
	if err != nil {
		return false, types.NewAppError(types.ErrCodeInternalDB, "failed to check case existence", err)
	}
	return exists, nil
}

// ListParticipants returns the users attached to a case with their roles.
func (r *CaseRepository) ListParticipants(ctx context.Context, caseID string) ([]types.CaseParticipant, error) {
	rows, err := r.db.Query(ctx,
		`SELECT uc.user_id, uc.case_id, u.role, u.full_name, u.email, uc.created_at
		 FROM user_cases uc
		 JOIN users u ON u.id = uc.user_id
		 WHERE uc.case_id = $1
		 ORDER BY uc.created_at`,
		caseID,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list case participants", err)
	}
	defer rows.Close()

	var participants []types.CaseParticipant
	for rows.Next() {
		var p types.CaseParticipant
		if err := rows.Scan(&p.UserID, &p.CaseID, &p.Role, &p.FullName, &p.Email, &p.JoinedAt); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan participant row", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate participant rows", err)
	}
	return participants, nil
}

// ListForUser returns all cases a user participates in, newest first.
func (r *CaseRepository) ListForUser(ctx context.Context, userID string) ([]types.Case, error) {
	return r.list(ctx,
		`SELECT `+caseColumns+`
		 FROM cases c
		 JOIN user_cases uc ON uc.case_id = c.id
		 WHERE uc.user_id = $1
		 ORDER BY c.created_at DESC`,
		userID,
	)
}

// ListInProgress returns every case still in progress, excluding archived
// ones, newest first.
func (r *CaseRepository) ListInProgress(ctx context.Context) ([]types.Case, error) {
	return r.list(ctx,
		`SELECT `+caseColumns+`
		 FROM cases c
		 WHERE c.status = 'in_progress'
		   AND NOT EXISTS (SELECT 1 FROM archived_cases a WHERE a.case_id = c.id)
		 ORDER BY c.created_at DESC`,
	)
}

func (r *CaseRepository) list(ctx context.Context, query string, args ...any) ([]types.Case, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list cases", err)
	}
	defer rows.Close()

	var cases []types.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan case row", err)
		}
		cases = append(cases, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate case rows", err)
	}
	return cases, nil
}

// UpdateStatus transitions a case to the given status.
// Returns ErrCodeNotFoundCase if no case is found.
func (r *CaseRepository) UpdateStatus(ctx context.Context, id string, status types.CaseStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE cases SET status = $1, updated_at = NOW() WHERE id = $2`,
		status,
		id,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to update case status", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundCase, "case not found", nil)
	}
	return nil
}

// CountActiveForUser returns the number of in-progress cases the user
// participates in.
func (r *CaseRepository) CountActiveForUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM cases c
		 JOIN user_cases uc ON uc.case_id = c.id
		 WHERE uc.user_id = $1 AND c.status = 'in_progress'`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to count active cases", err)
	}
	return count, nil
}
