package types

import (
	"time"
)

// User represents an account holder: an attorney, a doctor, or a patient.
// Doctors and attorneys share the table and are distinguished by Role.
type User struct {
	ID       string   `json:"id" db:"id"`
	FullName string   `json:"full_name" db:"full_name"`
	Email    string   `json:"email" db:"email"`
	Phone    string   `json:"phone,omitempty" db:"phone"`
	Role     UserRole `json:"role" db:"role"`

	PasswordHash string `json:"-" db:"password_hash"`

	// Doctor-specific profile fields (null for other roles).
	Speciality   string `json:"speciality,omitempty" db:"speciality"`
	PracticeName string `json:"practice_name,omitempty" db:"practice_name"`

	// Email verification via one-time code.
	EmailVerified bool       `json:"email_verified" db:"email_verified"`
	OTPHash       string     `json:"-" db:"otp_hash"`
	OTPExpiresAt  *time.Time `json:"-" db:"otp_expires_at"`

	// Free-tier case allowance ledger. CaseCount never exceeds CaseLimit.
	CaseCount int `json:"case_count" db:"case_count"`
	CaseLimit int `json:"case_limit" db:"case_limit"`

	Addresses []Address `json:"addresses,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Allowance is the read model of a user's case quota.
type Allowance struct {
	Count int `json:"case_count"`
	Limit int `json:"case_limit"`
}

// Remaining reports how many free admissions are left.
func (a Allowance) Remaining() int {
	if a.Limit < a.Count {
		return 0
	}
	return a.Limit - a.Count
}

// Address is a mailing address attached to a user. Users may carry several;
// updates replace the full set.
type Address struct {
	ID      string `json:"id" db:"id"`
	UserID  string `json:"user_id" db:"user_id"`
	Street  string `json:"street" db:"street"`
	City    string `json:"city" db:"city"`
	State   string `json:"state" db:"state"`
	ZipCode string `json:"zip_code" db:"zip_code"`
	Country string `json:"country" db:"country"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Case is the core domain entity: a personal-injury matter tracked through
// treatment and lien negotiation.
type Case struct {
	ID string `json:"id" db:"id"`

	// Patient identity as captured at intake.
	PatientName string     `json:"patient_name" db:"patient_name"`
	PatientDOB  *time.Time `json:"patient_dob,omitempty" db:"patient_dob"`
	Email       string     `json:"email,omitempty" db:"email"`
	Phone       string     `json:"phone,omitempty" db:"phone"`

	AccidentDate *time.Time `json:"accident_date,omitempty" db:"accident_date"`
	Description  string     `json:"description,omitempty" db:"description"`

	Status        CaseStatus    `json:"status" db:"status"`
	PaymentStatus PaymentStatus `json:"payment_status" db:"payment_status"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Hydrated fields (not columns on the cases table).
	Participants []CaseParticipant `json:"participants,omitempty" db:"-"`
	Tasks        []Task            `json:"tasks,omitempty" db:"-"`
}

// CaseDraft carries the caller-supplied fields for a new case before
// admission. IDs and timestamps are assigned by the persistence layer.
type CaseDraft struct {
	PatientName  string     `json:"patient_name"`
	PatientDOB   *time.Time `json:"patient_dob,omitempty"`
	Email        string     `json:"email,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	AccidentDate *time.Time `json:"accident_date,omitempty"`
	Description  string     `json:"description,omitempty"`
}

// CaseParticipant is one row of the user/case association set: the owning
// attorney plus any doctors attached later.
type CaseParticipant struct {
	UserID   string   `json:"user_id" db:"user_id"`
	CaseID   string   `json:"case_id" db:"case_id"`
	Role     UserRole `json:"role" db:"role"`
	FullName string   `json:"full_name" db:"full_name"`
	Email    string   `json:"email" db:"email"`

	JoinedAt time.Time `json:"joined_at" db:"created_at"`
}

// Task is a work item under a case (records requests, follow-ups).
type Task struct {
	ID          string     `json:"id" db:"id"`
	CaseID      string     `json:"case_id" db:"case_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description,omitempty" db:"description"`
	Status      TaskStatus `json:"status" db:"status"`
	DueDate     *time.Time `json:"due_date,omitempty" db:"due_date"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// LienOffer is a settlement offer made against a case's medical liens.
type LienOffer struct {
	ID          string          `json:"id" db:"id"`
	CaseID      string          `json:"case_id" db:"case_id"`
	OfferedByID string          `json:"offered_by_id" db:"offered_by_id"`
	AmountCents int64           `json:"amount_cents" db:"amount_cents"`
	Notes       string          `json:"notes,omitempty" db:"notes"`
	Status      LienOfferStatus `json:"status" db:"status"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Hydrated from users for list views.
	OfferedBy *UserSummary `json:"offered_by,omitempty" db:"-"`
}

// UserSummary is a lightweight user projection for embedding in other
// entities without leaking credential fields.
type UserSummary struct {
	ID       string   `json:"id" db:"id"`
	FullName string   `json:"full_name" db:"full_name"`
	Email    string   `json:"email" db:"email"`
	Role     UserRole `json:"role" db:"role"`
}

// TreatmentRecord tracks a provider's treatment of a case's patient and the
// resulting lien amount.
type TreatmentRecord struct {
	ID            string          `json:"id" db:"id"`
	CaseID        string          `json:"case_id" db:"case_id"`
	DoctorID      string          `json:"doctor_id" db:"doctor_id"`
	TreatmentType string          `json:"treatment_type,omitempty" db:"treatment_type"`
	BillAmount    int64           `json:"bill_amount_cents" db:"bill_amount_cents"`
	Status        TreatmentStatus `json:"status" db:"status"`
	Notes         string          `json:"notes,omitempty" db:"notes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DoctorInvitation is a pending invite for a doctor to join a case. The
// invitee signs up through the emailed link carrying the invitation ID.
type DoctorInvitation struct {
	ID          string           `json:"id" db:"id"`
	CaseID      string           `json:"case_id" db:"case_id"`
	InviterID   string           `json:"inviter_id" db:"inviter_id"`
	DoctorEmail string           `json:"doctor_email" db:"doctor_email"`
	DoctorName  string           `json:"doctor_name,omitempty" db:"doctor_name"`
	Status      InvitationStatus `json:"status" db:"status"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Intake is a public lead-capture submission, optionally carrying an
// uploaded defendant-insurance document.
type Intake struct {
	ID           string     `json:"id" db:"id"`
	FullName     string     `json:"full_name" db:"full_name"`
	Email        string     `json:"email" db:"email"`
	Phone        string     `json:"phone,omitempty" db:"phone"`
	AccidentDate *time.Time `json:"accident_date,omitempty" db:"accident_date"`
	Description  string     `json:"description,omitempty" db:"description"`

	// Public URL of the uploaded insurance document, empty when none was sent.
	InsuranceFileURL string `json:"insurance_file_url,omitempty" db:"insurance_file_url"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ArchivedCase is the archive marker for a case. The case row itself is
// untouched; listing joins back to it.
type ArchivedCase struct {
	ID         string    `json:"id" db:"id"`
	CaseID     string    `json:"case_id" db:"case_id"`
	ArchivedBy string    `json:"archived_by" db:"archived_by"`
	Reason     string    `json:"reason,omitempty" db:"reason"`
	ArchivedAt time.Time `json:"archived_at" db:"archived_at"`

	// Hydrated for list views.
	Case *Case `json:"case,omitempty" db:"-"`
}

// Payment is the processed-payment marker keyed by the provider's intent ID.
// Its primary-key uniqueness is what makes confirmation idempotent.
type Payment struct {
	IntentID    string    `json:"intent_id" db:"intent_id"`
	UserID      string    `json:"user_id" db:"user_id"`
	AmountCents int64     `json:"amount_cents" db:"amount_cents"`
	ProcessedAt time.Time `json:"processed_at" db:"processed_at"`
}

// ResponseMeta carries non-blocking metadata returned alongside a successful
// response envelope, such as warnings that did not prevent the operation.
type ResponseMeta struct {
	Warnings []string `json:"warnings,omitempty"`
}
