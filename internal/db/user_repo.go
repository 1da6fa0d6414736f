package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// UserRepository provides data access for the users table and the addresses
// that hang off it.
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new UserRepository backed by the given
// database connection (pool or transaction).
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// userColumns defines the standard set of columns selected for user queries.
// Used consistently across all query methods to avoid column drift.
const userColumns = `u.id, u.full_name, u.email, u.phone, u.role, u.password_hash,
	u.speciality, u.practice_name, u.email_verified, u.otp_hash, u.otp_expires_at,
	u.case_count, u.case_limit, u.created_at, u.updated_at`

// scanUser scans a single user row into a types.User struct.
// The columns must match the order defined in userColumns.
// Uses nullable scan targets for columns that may be NULL in the database
// (phone, password_hash, speciality, practice_name, otp_hash).
func scanUser(row pgx.Row) (*types.User, error) {
	var u types.User
	var (
		phone        *string
		passwordHash *string
		speciality   *string
		practiceName *string
		otpHash      *string
	)
	err := row.Scan(
		&u.ID,
		&u.FullName,
		&u.Email,
		&phone,
		&u.Role,
		&passwordHash,
		&speciality,
		&practiceName,
		&u.EmailVerified,
		&otpHash,
		&u.OTPExpiresAt,
		&u.CaseCount,
		&u.CaseLimit,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if phone != nil {
		u.Phone = *phone
	}
	if passwordHash != nil {
		u.PasswordHash = *passwordHash
	}
	if speciality != nil {
		u.Speciality = *speciality
	}
	if practiceName != nil {
		u.PracticeName = *practiceName
	}
	if otpHash != nil {
		u.OTPHash = *otpHash
	}
	return &u, nil
}

// Create inserts a new user row. The case allowance starts at the free-tier
// default unless the caller set an explicit limit.
// Returns ErrCodeConflictEmail (409) on a duplicate email.
func (r *UserRepository) Create(ctx context.Context, user *types.User) error {
	limit := user.CaseLimit
	if limit == 0 {
		limit = freeTierCaseLimit
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, full_name, email, phone, role, password_hash,
		 speciality, practice_name, email_verified, otp_hash, otp_expires_at,
		 case_count, case_limit, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 0, $12, COALESCE($13, NOW()))`,
		user.ID,
		user.FullName,
		user.Email,
		nilIfEmpty(user.Phone),
		user.Role,
		nilIfEmpty(user.PasswordHash),
		nilIfEmpty(user.Speciality),
		nilIfEmpty(user.PracticeName),
		user.EmailVerified,
		nilIfEmpty(user.OTPHash),
		user.OTPExpiresAt,
		limit,
		nilIfZeroTime(user.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return types.NewAppError(types.ErrCodeConflictEmail, "user already exists", err)
		}
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create user", err)
	}
	return nil
}

// GetByID retrieves a user by ID, including their addresses.
// Returns ErrCodeNotFoundUser if no user is found.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*types.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users u WHERE u.id = $1`,
		id,
	)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundUser, "user not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve user", err)
	}

	addresses, err := r.listAddresses(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	u.Addresses = addresses
	return u, nil
}

// GetByEmail retrieves a user by email address. Addresses are not hydrated;
// the auth flows that use this only need credentials and verification state.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*types.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users u WHERE u.email = $1`,
		email,
	)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundUser, "user not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve user by email", err)
	}
	return u, nil
}

// List returns all users ordered by creation time.
func (r *UserRepository) List(ctx context.Context) ([]types.User, error) {
	return r.listWhere(ctx, ``)
}

// ListDoctors returns all users carrying the doctor role.
func (r *UserRepository) ListDoctors(ctx context.Context) ([]types.User, error) {
	return r.listWhere(ctx, `WHERE u.role = 'doctor'`)
}

func (r *UserRepository) listWhere(ctx context.Context, where string, args ...any) ([]types.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users u `+where+` ORDER BY u.created_at DESC`,
		args...,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list users", err)
	}
	defer rows.Close()

	var users []types.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan user row", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate user rows", err)
	}
	return users, nil
}

// Update applies changes to the mutable profile fields.
func (r *UserRepository) Update(ctx context.Context, user *types.User) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET full_name = $1, phone = $2, speciality = $3,
		 practice_name = $4, updated_at = NOW()
		 WHERE id = $5`,
		user.FullName,
		nilIfEmpty(user.Phone),
		nilIfEmpty(user.Speciality),
		nilIfEmpty(user.PracticeName),
		user.ID,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to update user", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundUser, "user not found", nil)
	}
	return nil
}

// Delete removes a user row. Addresses and case associations cascade.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundUser, "user not found", nil)
	}
	return nil
}

// UpdatePassword updates the user's password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, userID string, newHash string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`,
		newHash,
		userID,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to update password", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundUser, "user not found", nil)
	}
	return nil
}

// SetOTP stores a new hashed one-time code and its expiry for the user.
// The raw code is never stored; only its SHA-256 hash.
func (r *UserRepository) SetOTP(ctx context.Context, userID string, otpHash string, expiresAt time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET otp_hash = $1, otp_expires_at = $2, updated_at = NOW()
		 WHERE id = $3`,
		otpHash,
		expiresAt,
		userID,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to set verification code", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundUser, "user not found", nil)
	}
	return nil
}

// MarkEmailVerified flips the verification flag and clears any pending code.
func (r *UserRepository) MarkEmailVerified(ctx context.Context, userID string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET email_verified = TRUE, otp_hash = NULL,
		 otp_expires_at = NULL, updated_at = NOW()
		 WHERE id = $1`,
		userID,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to mark email verified", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundUser, "user not found", nil)
	}
	return nil
}

// ClearOTP removes the pending verification code after a successful password
// reset without touching the verified flag.
func (r *UserRepository) ClearOTP(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET otp_hash = NULL, otp_expires_at = NULL, updated_at = NOW()
		 WHERE id = $1`,
		userID,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to clear verification code", err)
	}
	return nil
}

// ReplaceAddresses deletes the user's address set and inserts the given one.
// Callers run this inside a transaction together with the profile update.
func (r *UserRepository) ReplaceAddresses(ctx context.Context, userID string, addresses []types.Address) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM addresses WHERE user_id = $1`, userID); err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to clear addresses", err)
	}
	for _, a := range addresses {
		_, err := r.db.Exec(ctx,
			`INSERT INTO addresses (id, user_id, street, city, state, zip_code, country)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			a.ID,
			userID,
			a.Street,
			a.City,
			a.State,
			a.ZipCode,
			a.Country,
		)
		if err != nil {
			return types.NewAppError(types.ErrCodeInternalDB, "failed to insert address", err)
		}
	}
	return nil
}

func (r *UserRepository) listAddresses(ctx context.Context, userID string) ([]types.Address, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, street, city, state, zip_code, country, created_at
		 FROM addresses WHERE user_id = $1 ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list addresses", err)
	}
	defer rows.Close()

	var addresses []types.Address
	for rows.Next() {
		var a types.Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.Street, &a.City, &a.State, &a.ZipCode, &a.Country, &a.CreatedAt); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan address row", err)
		}
		addresses = append(addresses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate address rows", err)
	}
	return addresses, nil
}
