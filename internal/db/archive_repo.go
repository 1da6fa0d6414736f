package db

import (
	"context"

	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// ArchiveRepository provides data access for archived-case markers. The
// underlying case row is never touched; archiving inserts a marker and
// unarchiving deletes it.
type ArchiveRepository struct {
	db DBTX
}

// NewArchiveRepository creates a new ArchiveRepository backed by the given
// database connection (pool or transaction).
func NewArchiveRepository(db DBTX) *ArchiveRepository {
	return &ArchiveRepository{db: db}
}

// Insert archives a case. The UNIQUE constraint on case_id makes a double
// archive return ErrCodeConflictAlreadyArchived.
func (r *ArchiveRepository) Insert(ctx context.Context, a *types.ArchivedCase) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO archived_cases (id, case_id, archived_by, reason)
		 VALUES ($1, $2, $3, $4)`,
		a.ID,
		a.CaseID,
		a.ArchivedBy,
		nilIfEmpty(a.Reason),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return types.NewAppError(types.ErrCodeConflictAlreadyArchived, "case is already archived", err)
		}
		return types.NewAppError(types.ErrCodeInternalDB, "failed to archive case", err)
	}
	return nil
}

// DeleteByCase unarchives a case by removing its marker.
// Returns ErrCodeNotFoundArchive if the case is not archived.
func (r *ArchiveRepository) DeleteByCase(ctx context.Context, caseID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM archived_cases WHERE case_id = $1`, caseID)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to unarchive case", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundArchive, "case is not archived", nil)
	}
	return nil
}

// List returns all archive markers, newest first, with the underlying case
// hydrated.
func (r *ArchiveRepository) List(ctx context.Context) ([]types.ArchivedCase, error) {
	rows, err := r.db.Query(ctx,
		`SELECT a.id, a.case_id, a.archived_by, a.reason, a.archived_at,
		        `+caseColumns+`
		 FROM archived_cases a
		 JOIN cases c ON c.id = a.case_id
		 ORDER BY a.archived_at DESC`,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list archived cases", err)
	}
	defer rows.Close()

	var archived []types.ArchivedCase
	for rows.Next() {
		var a types.ArchivedCase
		var reason *string
		var c types.Case
		var (
			email       *string
			phone       *string
			description *string
		)
		err := rows.Scan(
			&a.ID,
			&a.CaseID,
			&a.ArchivedBy,
			&reason,
			&a.ArchivedAt,
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
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan archived case row", err)
		}
		if reason != nil {
			a.Reason = *reason
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
		a.Case = &c
		archived = append(archived, a)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate archived case rows", err)
	}
	return archived, nil
}
