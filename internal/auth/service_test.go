package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shahbazasghar1038/injury-back-end/internal/external"
	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) Create(ctx context.Context, user *types.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserStore) GetByID(ctx context.Context, id string) (*types.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*types.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *mockUserStore) UpdatePassword(ctx context.Context, userID string, newHash string) error {
	args := m.Called(ctx, userID, newHash)
	return args.Error(0)
}

func (m *mockUserStore) SetOTP(ctx context.Context, userID string, otpHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, otpHash, expiresAt)
	return args.Error(0)
}

func (m *mockUserStore) MarkEmailVerified(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockUserStore) ClearOTP(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockUserStore) ReplaceAddresses(ctx context.Context, userID string, addresses []types.Address) error {
	args := m.Called(ctx, userID, addresses)
	return args.Error(0)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, msg external.EmailMessage) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

// fakeHasher avoids bcrypt cost in service tests. The hash is a marked copy
// of the plaintext.
type fakeHasher struct{}

func (fakeHasher) CompareHashAndPassword(hashedPassword, password string) error {
	if hashedPassword != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

func (fakeHasher) GenerateFromPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

type svcClock struct {
	now time.Time
}

func (c svcClock) Now() time.Time { return c.now }

var testNow = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

func newAuthService(users UserStore, mailer external.EmailSender) *AuthService {
	return NewAuthService(AuthServiceConfig{
		Users:  users,
		Mailer: mailer,
		Tokens: NewTokenIssuer(types.SecretString("test-signing-secret"), time.Hour, svcClock{now: testNow}),
		Hasher: fakeHasher{},
		Clock:  svcClock{now: testNow},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func verifiedUser() *types.User {
	return &types.User{
		ID:            "user_1",
		FullName:      "Ada Attorney",
		Email:         "ada@example.com",
		Role:          types.RoleAttorney,
		PasswordHash:  "hashed:s3cret",
		EmailVerified: true,
	}
}

func TestRegister_Success(t *testing.T) {
	users := new(mockUserStore)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *types.User) bool {
		return u.Email == "doc@example.com" &&
			u.Role == types.RoleDoctor &&
			u.PasswordHash == "hashed:s3cret" &&
			!u.EmailVerified &&
			u.OTPHash != "" &&
			u.OTPExpiresAt != nil &&
			u.OTPExpiresAt.Equal(testNow.Add(OTPTTL))
	})).Return(nil)

	mailer := new(mockMailer)
	mailer.On("Send", mock.Anything, mock.MatchedBy(func(msg external.EmailMessage) bool {
		return msg.To == "doc@example.com" && msg.Subject == "Verify your email"
	})).Return("msg-1", nil)

	svc := newAuthService(users, mailer)

	user, err := svc.Register(context.Background(), RegisterInput{
		FullName:   "Dee Doctor",
		Email:      "doc@example.com",
		Password:   "s3cret",
		Role:       types.RoleDoctor,
		Speciality: "orthopedics",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	users.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestRegister_WithAddresses(t *testing.T) {
	addresses := []types.Address{{Street: "1 Main St", City: "Austin", State: "TX", ZipCode: "78701"}}

	users := new(mockUserStore)
	users.On("Create", mock.Anything, mock.Anything).Return(nil)
	users.On("ReplaceAddresses", mock.Anything, mock.Anything, addresses).Return(nil)

	mailer := new(mockMailer)
	mailer.On("Send", mock.Anything, mock.Anything).Return("msg-1", nil)

	svc := newAuthService(users, mailer)

	user, err := svc.Register(context.Background(), RegisterInput{
		FullName:  "Ada Attorney",
		Email:     "ada@example.com",
		Password:  "s3cret",
		Role:      types.RoleAttorney,
		Addresses: addresses,
	})
	require.NoError(t, err)
	assert.Equal(t, addresses, user.Addresses)
	users.AssertCalled(t, "ReplaceAddresses", mock.Anything, user.ID, addresses)
}

func TestRegister_InvalidRole(t *testing.T) {
	users := new(mockUserStore)
	svc := newAuthService(users, new(mockMailer))

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "x@example.com",
		Password: "s3cret",
		Role:     "admin",
	})
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeValidationInvalidRole, appErr.Code)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := new(mockUserStore)
	users.On("Create", mock.Anything, mock.Anything).
		Return(types.NewAppError(types.ErrCodeConflictEmail, "email already registered", nil))

	svc := newAuthService(users, new(mockMailer))

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "taken@example.com",
		Password: "s3cret",
		Role:     types.RolePatient,
	})
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeConflictEmail, appErr.Code)
}

func TestRegister_EmailFailureDoesNotFailRegistration(t *testing.T) {
	users := new(mockUserStore)
	users.On("Create", mock.Anything, mock.Anything).Return(nil)

	mailer := new(mockMailer)
	mailer.On("Send", mock.Anything, mock.Anything).
		Return("", types.NewAppError(types.ErrCodeUpstreamEmail, "brevo down", nil))

	svc := newAuthService(users, mailer)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "new@example.com",
		Password: "s3cret",
		Role:     types.RolePatient,
	})
	assert.NoError(t, err)
}

func TestVerifyOTP_Success(t *testing.T) {
	expiry := testNow.Add(5 * time.Minute)
	user := verifiedUser()
	user.EmailVerified = false
	user.OTPHash = HashToken("482913")
	user.OTPExpiresAt = &expiry

	users := new(mockUserStore)
	users.On("GetByEmail", mock.Anything, "ada@example.com").Return(user, nil)
	users.On("MarkEmailVerified", mock.Anything, "user_1").Return(nil)
	users.On("ClearOTP", mock.Anything, "user_1").Return(nil)

	svc := newAuthService(users, new(mockMailer))

	token, verified, err := svc.VerifyOTP(context.Background(), "ada@example.com", "482913")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, verified.EmailVerified)
	assert.Empty(t, verified.OTPHash)
	users.AssertExpectations(t)
}

func TestVerifyOTP_Expired(t *testing.T) {
	expiry := testNow.Add(-1 * time.Minute)
	user := verifiedUser()
	user.EmailVerified = false
	user.OTPHash = HashToken("482913")
	user.OTPExpiresAt = &expiry

	users := new(mockUserStore)
	users.On("GetByEmail", mock.Anything, "ada@example.com").Return(user, nil)

	svc := newAuthService(users, new(mockMailer))

	_, _, err := svc.VerifyOTP(context.Background(), "ada@example.com", "482913")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeAuthOTPExpired, appErr.Code)
	users.AssertNotCalled(t, "MarkEmailVerified", mock.Anything, mock.Anything)
}

func TestVerifyOTP_Mismatch(t *testing.T) {
	expiry := testNow.Add(5 * time.Minute)
	user := verifiedUser()
	user.EmailVerified = false
	user.OTPHash = HashToken("482913")
	user.OTPExpiresAt = &expiry

	users := new(mockUserStore)
	users.On("GetByEmail", mock.Anything, "ada@example.com").Return(user, nil)

	svc := newAuthService(users, new(mockMailer))

	_, _, err := svc.VerifyOTP(context.Background(), "ada@example.com", "000000")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeAuthOTPMismatch, appErr.Code)
}

func TestVerifyOTP_NoActiveCode(t *testing.T) {
	user := verifiedUser()

	users := new(mockUserStore)
	users.On("GetByEmail", mock.Anything, "ada@example.com").Return(user, nil)

	svc := newAuthService(users, new(mockMailer))

	_, _, err := svc.VerifyOTP(context.Background(), "ada@example.com", "482913")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeAuthOTPMismatch, appErr.Code)
}

func TestLogin_Success(t *testing.T) {
	users := new(mockUserStore)
	users.On("GetByEmail", mock.Anything, "ada@example.com").Return(verifiedUser(), nil)

	svc := newAuthService(users, new(mockMailer))

	token, user, err := svc.Login(context.Background(), "ada@example.com", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "user_1", user.ID)
}

func TestLogin_WrongPassword(t *testing.T) {
	users := new(mockUserStore)
	users.On("GetByEmail", mock.Anything, "ada@example.com").Return(verifiedUser(), nil)

	svc := newAuthService(users, new(mockMailer))

	_, _, err := svc.Login(context.Background(), "ada@example.com", "wrong")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeAuthInvalidCreds, appErr.Code)
}

func TestLogin_UnknownEmailMasked(t *testing.T) {
	users := new(mockUserStore)
	users.On("GetByEmail", mock.Anything, "ghost@example.com").
		Return(nil, types.NewAppError(types.ErrCodeNotFoundUser, "user not found", nil))

	svc := newAuthService(users, new(mockMailer))

	_, _, err := svc.Login(context.Background(), "ghost@example.com", "whatever")
	require.Error(t, err)

	// Unknown email must be indistinguishable from a wrong password.
	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeAuthInvalidCreds, appErr.Code)
}

func TestLogin_UnverifiedEmailGetsFreshCode(t *testing.T) {
	user := verifiedUser()
	user.EmailVerified = false

	users := new(mockUserStore)
	users.On("GetByEmail", mock.Anything, "ada@example.com").Return(user, nil)
	users.On("SetOTP", mock.Anything, "user_1", mock.Anything, testNow.Add(OTPTTL)).Return(nil)

	mailer := new(mockMailer)
	mailer.On("Send", mock.Anything, mock.Anything).Return("msg-1", nil)

	svc := newAuthService(users, mailer)

	_, _, err := svc.Login(context.Background(), "ada@example.com", "s3cret")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeAuthEmailNotVerified, appErr.Code)
	users.AssertCalled(t, "SetOTP", mock.Anything, "user_1", mock.Anything, testNow.Add(OTPTTL))
	mailer.AssertCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestForgotPassword_UnknownEmailSilent(t *testing.T) {
	users := new(mockUserStore)
	users.On("GetByEmail", mock.Anything, "ghost@example.com").
		Return(nil, types.NewAppError(types.ErrCodeNotFoundUser, "user not found", nil))

	svc := newAuthService(users, new(mockMailer))

	err := svc.ForgotPassword(context.Background(), "ghost@example.com")
	assert.NoError(t, err)
}

func TestForgotPassword_IssuesResetCode(t *testing.T) {
	users := new(mockUserStore)
	users.On("GetByEmail", mock.Anything, "ada@example.com").Return(verifiedUser(), nil)
	users.On("SetOTP", mock.Anything, "user_1", mock.Anything, testNow.Add(OTPTTL)).Return(nil)

	mailer := new(mockMailer)
	mailer.On("Send", mock.Anything, mock.MatchedBy(func(msg external.EmailMessage) bool {
		return msg.Subject == "Reset your password"
	})).Return("msg-1", nil)

	svc := newAuthService(users, mailer)

	err := svc.ForgotPassword(context.Background(), "ada@example.com")
	require.NoError(t, err)
	mailer.AssertExpectations(t)
}

func TestResetPassword_Success(t *testing.T) {
	expiry := testNow.Add(5 * time.Minute)
	user := verifiedUser()
	user.OTPHash = HashToken("482913")
	user.OTPExpiresAt = &expiry

	users := new(mockUserStore)
	users.On("GetByEmail", mock.Anything, "ada@example.com").Return(user, nil)
	users.On("UpdatePassword", mock.Anything, "user_1", "hashed:newpass").Return(nil)
	users.On("ClearOTP", mock.Anything, "user_1").Return(nil)

	svc := newAuthService(users, new(mockMailer))

	err := svc.ResetPassword(context.Background(), "ada@example.com", "482913", "newpass")
	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestResetPassword_WrongCode(t *testing.T) {
	expiry := testNow.Add(5 * time.Minute)
	user := verifiedUser()
	user.OTPHash = HashToken("482913")
	user.OTPExpiresAt = &expiry

	users := new(mockUserStore)
	users.On("GetByEmail", mock.Anything, "ada@example.com").Return(user, nil)

	svc := newAuthService(users, new(mockMailer))

	err := svc.ResetPassword(context.Background(), "ada@example.com", "111111", "newpass")
	require.Error(t, err)
	users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestChangePassword_Success(t *testing.T) {
	users := new(mockUserStore)
	users.On("GetByID", mock.Anything, "user_1").Return(verifiedUser(), nil)
	users.On("UpdatePassword", mock.Anything, "user_1", "hashed:newpass").Return(nil)

	svc := newAuthService(users, new(mockMailer))

	err := svc.ChangePassword(context.Background(), "user_1", "s3cret", "newpass")
	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	users := new(mockUserStore)
	users.On("GetByID", mock.Anything, "user_1").Return(verifiedUser(), nil)

	svc := newAuthService(users, new(mockMailer))

	err := svc.ChangePassword(context.Background(), "user_1", "nope", "newpass")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeAuthInvalidCreds, appErr.Code)
	users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}
