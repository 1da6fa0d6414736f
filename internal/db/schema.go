package db

import (
	"context"

	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// freeTierCaseLimit is the default allowance for new accounts.
const freeTierCaseLimit = 3

// schemaStatements holds the full relational schema. Relationships between
// users and cases live in the user_cases join table declared here once;
// nothing rewires associations at runtime.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id             TEXT PRIMARY KEY,
		full_name      TEXT NOT NULL,
		email          TEXT NOT NULL UNIQUE,
		phone          TEXT,
		role           TEXT NOT NULL DEFAULT 'attorney',
		password_hash  TEXT,
		speciality     TEXT,
		practice_name  TEXT,
		email_verified BOOLEAN NOT NULL DEFAULT FALSE,
		otp_hash       TEXT,
		otp_expires_at TIMESTAMPTZ,
		case_count     INTEGER NOT NULL DEFAULT 0,
		case_limit     INTEGER NOT NULL DEFAULT 3,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT users_case_quota CHECK (case_count >= 0 AND case_count <= case_limit)
	)`,
	`CREATE TABLE IF NOT EXISTS addresses (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		street     TEXT NOT NULL,
		city       TEXT NOT NULL,
		state      TEXT NOT NULL,
		zip_code   TEXT NOT NULL,
		country    TEXT NOT NULL DEFAULT 'US',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS cases (
		id             TEXT PRIMARY KEY,
		patient_name   TEXT NOT NULL,
		patient_dob    TIMESTAMPTZ,
		email          TEXT,
		phone          TEXT,
		accident_date  TIMESTAMPTZ,
		description    TEXT,
		status         TEXT NOT NULL DEFAULT 'in_progress',
		payment_status TEXT NOT NULL DEFAULT 'unpaid',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS user_cases (
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		case_id    TEXT NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, case_id)
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id          TEXT PRIMARY KEY,
		case_id     TEXT NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
		title       TEXT NOT NULL,
		description TEXT,
		status      TEXT NOT NULL DEFAULT 'open',
		due_date    TIMESTAMPTZ,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS lien_offers (
		id            TEXT PRIMARY KEY,
		case_id       TEXT NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
		offered_by_id TEXT NOT NULL REFERENCES users(id),
		amount_cents  BIGINT NOT NULL,
		notes         TEXT,
		status        TEXT NOT NULL DEFAULT 'pending',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS treatment_records (
		id                TEXT PRIMARY KEY,
		case_id           TEXT NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
		doctor_id         TEXT NOT NULL REFERENCES users(id),
		treatment_type    TEXT,
		bill_amount_cents BIGINT NOT NULL DEFAULT 0,
		status            TEXT NOT NULL DEFAULT 'pending',
		notes             TEXT,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS doctor_invitations (
		id           TEXT PRIMARY KEY,
		case_id      TEXT NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
		inviter_id   TEXT NOT NULL REFERENCES users(id),
		doctor_email TEXT NOT NULL,
		doctor_name  TEXT,
		status       TEXT NOT NULL DEFAULT 'pending',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS intakes (
		id                 TEXT PRIMARY KEY,
		full_name          TEXT NOT NULL,
		email              TEXT NOT NULL,
		phone              TEXT,
		accident_date      TIMESTAMPTZ,
		description        TEXT,
		insurance_file_url TEXT,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS archived_cases (
		id          TEXT PRIMARY KEY,
		case_id     TEXT NOT NULL UNIQUE REFERENCES cases(id) ON DELETE CASCADE,
		archived_by TEXT NOT NULL REFERENCES users(id),
		reason      TEXT,
		archived_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	// Processed-payment markers. The primary key on the provider's intent ID
	// is the idempotency guard for payment confirmation.
	`CREATE TABLE IF NOT EXISTS payments (
		intent_id    TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL REFERENCES users(id),
		amount_cents BIGINT NOT NULL DEFAULT 0,
		processed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_addresses_user ON addresses(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_user_cases_case ON user_cases(case_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_case ON tasks(case_id)`,
	`CREATE INDEX IF NOT EXISTS idx_lien_offers_case ON lien_offers(case_id)`,
	`CREATE INDEX IF NOT EXISTS idx_treatments_case ON treatment_records(case_id)`,
	`CREATE INDEX IF NOT EXISTS idx_cases_status ON cases(status)`,
}

// ApplySchema creates all tables and indexes if they do not exist.
// Statements are idempotent so startup can run this unconditionally.
func ApplySchema(ctx context.Context, db DBTX) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return types.NewAppError(types.ErrCodeInternalDB, "failed to apply schema", err)
		}
	}
	return nil
}
