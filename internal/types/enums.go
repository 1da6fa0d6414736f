package types

// UserRole distinguishes the account types sharing the users table.
type UserRole string

const (
	RoleAttorney UserRole = "attorney"
	RoleDoctor   UserRole = "doctor"
	RolePatient  UserRole = "patient"
)

// ValidUserRoles enumerates accepted roles for request validation.
var ValidUserRoles = []UserRole{RoleAttorney, RoleDoctor, RolePatient}

// CaseStatus represents the lifecycle state of a case.
type CaseStatus string

const (
	CaseStatusInProgress CaseStatus = "in_progress"
	CaseStatusSettled    CaseStatus = "settled"
	CaseStatusClosed     CaseStatus = "closed"
)

// PaymentStatus marks whether a case was admitted through the paid path.
// Paid cases bypass the free-tier allowance check.
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusOpen       TaskStatus = "open"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// LienOfferStatus represents the negotiation state of a lien offer.
type LienOfferStatus string

const (
	LienOfferPending  LienOfferStatus = "pending"
	LienOfferAccepted LienOfferStatus = "accepted"
	LienOfferRejected LienOfferStatus = "rejected"
)

// TreatmentStatus represents the billing state of a treatment record.
type TreatmentStatus string

const (
	TreatmentPending TreatmentStatus = "pending"
	TreatmentBilled  TreatmentStatus = "billed"
	TreatmentSettled TreatmentStatus = "settled"
)

// InvitationStatus represents the lifecycle of a doctor invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationExpired  InvitationStatus = "expired"
)
