package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// Note: mockDBTX and mockRow are defined in quota_repo_test.go and reused here.

// --- Insert ---

func TestCaseRepository_Insert_Success(t *testing.T) {
	db := new(mockDBTX)
	repo := NewCaseRepository(db)

	c := &types.Case{
		ID:            "case_1",
		PatientName:   "John Smith",
		Status:        types.CaseStatusInProgress,
		PaymentStatus: types.PaymentStatusUnpaid,
	}

	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	err := repo.Insert(context.Background(), c)
	require.NoError(t, err)
	db.AssertExpectations(t)
}

func TestCaseRepository_Insert_DBError(t *testing.T) {
	db := new(mockDBTX)
	repo := NewCaseRepository(db)

	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.CommandTag{}, errors.New("disk full"))

	err := repo.Insert(context.Background(), &types.Case{ID: "case_1", PatientName: "John Smith"})
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)

	db.AssertExpectations(t)
}

// --- AttachParticipant ---

func TestCaseRepository_AttachParticipant_Success(t *testing.T) {
	db := new(mockDBTX)
	repo := NewCaseRepository(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), []any{"user_1", "case_1"}).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	err := repo.AttachParticipant(ctx, "user_1", "case_1")
	require.NoError(t, err)
	db.AssertExpectations(t)
}

func TestCaseRepository_AttachParticipant_AlreadyLinked(t *testing.T) {
	db := new(mockDBTX)
	repo := NewCaseRepository(db)
	ctx := context.Background()

	// ON CONFLICT DO NOTHING reports zero affected rows for an existing link.
	db.On("Exec", ctx, mock.AnythingOfType("string"), []any{"user_1", "case_1"}).
		Return(pgconn.NewCommandTag("INSERT 0 0"), nil)

	err := repo.AttachParticipant(ctx, "user_1", "case_1")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeConflictCaseAssociation, appErr.Code)

	db.AssertExpectations(t)
}

// --- Exists ---

func TestCaseRepository_Exists(t *testing.T) {
	db := new(mockDBTX)
	repo := NewCaseRepository(db)
	ctx := context.Background()

	row := &mockRow{
		scanFn: func(dest ...any) error {
			*dest[0].(*bool) = true
			return nil
		},
	}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), []any{"case_1"}).Return(row)

	exists, err := repo.Exists(ctx, "case_1")
	require.NoError(t, err)
	assert.True(t, exists)
	db.AssertExpectations(t)
}

// --- GetByID ---

func TestCaseRepository_GetByID_NotFound(t *testing.T) {
	db := new(mockDBTX)
	repo := NewCaseRepository(db)
	ctx := context.Background()

	row := &mockRow{scanErr: pgx.ErrNoRows}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), []any{"case_missing"}).Return(row)

	_, err := repo.GetByID(ctx, "case_missing")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeNotFoundCase, appErr.Code)
	assert.Equal(t, 404, appErr.HTTPStatus())

	db.AssertExpectations(t)
}

// --- UpdateStatus ---

func TestCaseRepository_UpdateStatus_Success(t *testing.T) {
	db := new(mockDBTX)
	repo := NewCaseRepository(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), []any{types.CaseStatusSettled, "case_1"}).
		Return(pgconn.NewCommandTag("UPDATE 1"), nil)

	err := repo.UpdateStatus(ctx, "case_1", types.CaseStatusSettled)
	require.NoError(t, err)
	db.AssertExpectations(t)
}

func TestCaseRepository_UpdateStatus_NotFound(t *testing.T) {
	db := new(mockDBTX)
	repo := NewCaseRepository(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("UPDATE 0"), nil)

	err := repo.UpdateStatus(ctx, "case_missing", types.CaseStatusClosed)
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeNotFoundCase, appErr.Code)

	db.AssertExpectations(t)
}

// --- CountActiveForUser ---

func TestCaseRepository_CountActiveForUser(t *testing.T) {
	db := new(mockDBTX)
	repo := NewCaseRepository(db)
	ctx := context.Background()

	row := &mockRow{
		scanFn: func(dest ...any) error {
			*dest[0].(*int) = 2
			return nil
		},
	}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), []any{"user_1"}).Return(row)

	count, err := repo.CountActiveForUser(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	db.AssertExpectations(t)
}
