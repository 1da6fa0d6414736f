// Package cases implements case admission against the per-user allowance
// ledger.
//
// Admission is a single database transaction: reserve an allowance slot (or
// record a paid one), insert the case row, link the owning user, commit.
// Any failure rolls the whole transaction back, so a reserved slot is never
// left behind without its case and an inserted case is never left without
// its owner link.
package cases

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// AdmissionStore opens admission transactions. Implemented by Store over
// pgxpool; tests substitute mocks.
type AdmissionStore interface {
	BeginTx(ctx context.Context) (AdmissionTx, error)
}

// AdmissionTx is the set of writes available inside one admission
// transaction. The caller must Commit or Rollback; Rollback after Commit is
// a no-op, matching pgx semantics.
type AdmissionTx interface {
	// ReserveSlot consumes one free-tier slot, failing with
	// ErrCodeLimitCases when the allowance is exhausted.
	ReserveSlot(ctx context.Context, userID string) error

	// ConsumePaidSlot records a paid admission, extending the limit when
	// the user is already at it. Paid admissions are never denied for quota.
	ConsumePaidSlot(ctx context.Context, userID string) error

	// InsertCase persists the case row.
	InsertCase(ctx context.Context, c *types.Case) error

	// AttachParticipant links a user to the case in user_cases.
	AttachParticipant(ctx context.Context, userID, caseID string) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// CaseDirectory is the non-transactional case access the service needs for
// operations outside admission.
type CaseDirectory interface {
	Exists(ctx context.Context, id string) (bool, error)
	AttachParticipant(ctx context.Context, userID, caseID string) error
}

// AdmissionService admits new cases subject to the owner's allowance.
type AdmissionService struct {
	store  AdmissionStore
	dir    CaseDirectory
	clock  types.Clock
	logger *slog.Logger
}

// NewAdmissionService creates an AdmissionService.
func NewAdmissionService(store AdmissionStore, dir CaseDirectory, clock types.Clock, logger *slog.Logger) *AdmissionService {
	return &AdmissionService{store: store, dir: dir, clock: clock, logger: logger}
}

// AdmitCase creates a case owned by userID. Unpaid admissions consume one
// free-tier slot and are denied with ErrCodeLimitCases when none remain.
// Paid admissions skip the allowance check entirely. The ledger update, the
// case row, and the owner association commit atomically; on any failure the
// transaction rolls back and nothing is persisted.
func (s *AdmissionService) AdmitCase(ctx context.Context, userID string, draft types.CaseDraft, isPaid bool) (*types.Case, error) {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to open admission transaction", err)
	}
	defer tx.Rollback(ctx)

	if isPaid {
		if err := tx.ConsumePaidSlot(ctx, userID); err != nil {
			return nil, err
		}
	} else {
		if err := tx.ReserveSlot(ctx, userID); err != nil {
			return nil, err
		}
	}

	now := s.clock.Now()
	c := &types.Case{
		ID:            uuid.NewString(),
		PatientName:   draft.PatientName,
		PatientDOB:    draft.PatientDOB,
		Email:         draft.Email,
		Phone:         draft.Phone,
		AccidentDate:  draft.AccidentDate,
		Description:   draft.Description,
		Status:        types.CaseStatusInProgress,
		PaymentStatus: types.PaymentStatusUnpaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if isPaid {
		c.PaymentStatus = types.PaymentStatusPaid
	}

	if err := tx.InsertCase(ctx, c); err != nil {
		return nil, err
	}
	if err := tx.AttachParticipant(ctx, userID, c.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to commit admission", err)
	}

	s.logger.InfoContext(ctx, "case admitted",
		"case_id", c.ID,
		"user_id", userID,
		"paid", isPaid,
	)
	return c, nil
}

// AttachDoctor links a doctor to an existing case. Joining a case does not
// touch the doctor's own allowance; only ownership of new cases does.
func (s *AdmissionService) AttachDoctor(ctx context.Context, doctorID, caseID string) error {
	exists, err := s.dir.Exists(ctx, caseID)
	if err != nil {
		return err
	}
	if !exists {
		return types.NewAppError(types.ErrCodeNotFoundCase, "case not found", nil)
	}
	if err := s.dir.AttachParticipant(ctx, doctorID, caseID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "doctor attached to case", "doctor_id", doctorID, "case_id", caseID)
	return nil
}
