package db

import (
	"context"

	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// IntakeRepository provides data access for public intake submissions.
type IntakeRepository struct {
	db DBTX
}

// NewIntakeRepository creates a new IntakeRepository backed by the given
// database connection (pool or transaction).
func NewIntakeRepository(db DBTX) *IntakeRepository {
	return &IntakeRepository{db: db}
}

// Insert persists a new intake submission.
func (r *IntakeRepository) Insert(ctx context.Context, in *types.Intake) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO intakes (id, full_name, email, phone, accident_date,
		 description, insurance_file_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		in.ID,
		in.FullName,
		in.Email,
		nilIfEmpty(in.Phone),
		in.AccidentDate,
		nilIfEmpty(in.Description),
		nilIfEmpty(in.InsuranceFileURL),
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create intake", err)
	}
	return nil
}

// List returns all intake submissions, newest first.
func (r *IntakeRepository) List(ctx context.Context) ([]types.Intake, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, full_name, email, phone, accident_date, description,
		        insurance_file_url, created_at
		 FROM intakes ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list intakes", err)
	}
	defer rows.Close()

	var intakes []types.Intake
	for rows.Next() {
		var in types.Intake
		var (
			phone       *string
			description *string
			fileURL     *string
		)
		err := rows.Scan(&in.ID, &in.FullName, &in.Email, &phone, &in.AccidentDate,
			&description, &fileURL, &in.CreatedAt)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan intake row", err)
		}
		if phone != nil {
			in.Phone = *phone
		}
		if description != nil {
			in.Description = *description
		}
		if fileURL != nil {
			in.InsuranceFileURL = *fileURL
		}
		intakes = append(intakes, in)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate intake rows", err)
	}
	return intakes, nil
}
