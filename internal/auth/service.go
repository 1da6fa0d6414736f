package auth

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/shahbazasghar1038/injury-back-end/internal/external"
	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// UserStore defines the data access methods AuthService needs. Implemented
// by db.UserRepository.
type UserStore interface {
	Create(ctx context.Context, user *types.User) error
	GetByID(ctx context.Context, id string) (*types.User, error)
	GetByEmail(ctx context.Context, email string) (*types.User, error)
	UpdatePassword(ctx context.Context, userID string, newHash string) error
	SetOTP(ctx context.Context, userID string, otpHash string, expiresAt time.Time) error
	MarkEmailVerified(ctx context.Context, userID string) error
	ClearOTP(ctx context.Context, userID string) error
	ReplaceAddresses(ctx context.Context, userID string, addresses []types.Address) error
}

// RegisterInput carries everything needed to create an account.
type RegisterInput struct {
	FullName     string
	Email        string
	Phone        string
	Password     string
	Role         types.UserRole
	Speciality   string
	PracticeName string
	Addresses    []types.Address
}

// AuthServiceConfig holds the dependencies for creating an AuthService.
type AuthServiceConfig struct {
	Users  UserStore
	Mailer external.EmailSender
	Tokens *TokenIssuer
	Hasher PasswordHasher
	Clock  types.Clock
	Logger *slog.Logger
}

// AuthService implements registration, OTP verification, and credential
// flows. Email delivery is best effort: a failed send is logged, never
// surfaced, so an outage at the mail provider cannot lock users out of
// retrying.
type AuthService struct {
	users  UserStore
	mailer external.EmailSender
	tokens *TokenIssuer
	hasher PasswordHasher
	clock  types.Clock
	logger *slog.Logger
}

// NewAuthService creates an AuthService. Nil Hasher, Clock, and Logger fall
// back to production defaults.
func NewAuthService(cfg AuthServiceConfig) *AuthService {
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = &bcryptHasher{}
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.RealClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:  cfg.Users,
		mailer: cfg.Mailer,
		tokens: cfg.Tokens,
		hasher: hasher,
		clock:  clock,
		logger: logger,
	}
}

// Register creates the account unverified and emails a one-time code.
// A duplicate email surfaces as conflict_email_exists from the store.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*types.User, error) {
	if !slices.Contains(types.ValidUserRoles, input.Role) {
		return nil, types.NewAppError(
			types.ErrCodeValidationInvalidRole,
			fmt.Sprintf("unknown role %q", input.Role),
			nil,
		)
	}

	passwordHash, err := s.hasher.GenerateFromPassword(input.Password)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to hash password", err)
	}

	otp, err := GenerateOTP()
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to generate one-time code", err)
	}
	otpExpiry := s.clock.Now().Add(OTPTTL)

	user := &types.User{
		ID:            uuid.NewString(),
		FullName:      input.FullName,
		Email:         input.Email,
		Phone:         input.Phone,
		Role:          input.Role,
		PasswordHash:  passwordHash,
		Speciality:    input.Speciality,
		PracticeName:  input.PracticeName,
		EmailVerified: false,
		OTPHash:       HashToken(otp),
		OTPExpiresAt:  &otpExpiry,
		CreatedAt:     s.clock.Now(),
		UpdatedAt:     s.clock.Now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if len(input.Addresses) > 0 {
		if err := s.users.ReplaceAddresses(ctx, user.ID, input.Addresses); err != nil {
			return nil, err
		}
		user.Addresses = input.Addresses
	}

	s.sendOTPEmail(ctx, user, otp, "Verify your email")

	s.logger.InfoContext(ctx, "user registered",
		"user_id", user.ID,
		"role", user.Role,
	)

	return user, nil
}

// VerifyOTP checks the code, marks the email verified, and returns a signed
// access token so the frontend can log the user straight in.
func (s *AuthService) VerifyOTP(ctx context.Context, email string, code string) (string, *types.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}

	if err := s.checkOTP(user, code); err != nil {
		return "", nil, err
	}

	if err := s.users.MarkEmailVerified(ctx, user.ID); err != nil {
		return "", nil, err
	}
	if err := s.users.ClearOTP(ctx, user.ID); err != nil {
		return "", nil, err
	}
	user.EmailVerified = true
	user.OTPHash = ""
	user.OTPExpiresAt = nil

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}

	s.logger.InfoContext(ctx, "email verified", "user_id", user.ID)

	return token, user, nil
}

// Login verifies credentials and returns a signed access token.
//
// Unknown emails and wrong passwords both return auth_invalid_credentials
// so the endpoint cannot be used to probe which emails have accounts. An
// unverified account gets a fresh code mailed and a 403 telling the
// frontend to show the verification screen.
func (s *AuthService) Login(ctx context.Context, email string, password string) (string, *types.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if appErr, ok := err.(*types.AppError); ok && appErr.Code == types.ErrCodeNotFoundUser {
			return "", nil, types.NewAppError(types.ErrCodeAuthInvalidCreds, "invalid email or password", nil)
		}
		return "", nil, err
	}

	if err := s.hasher.CompareHashAndPassword(user.PasswordHash, password); err != nil {
		return "", nil, types.NewAppError(types.ErrCodeAuthInvalidCreds, "invalid email or password", nil)
	}

	if !user.EmailVerified {
		if otpErr := s.issueOTP(ctx, user, "Verify your email"); otpErr != nil {
			s.logger.WarnContext(ctx, "failed to reissue verification code",
				"user_id", user.ID,
				"error", otpErr,
			)
		}
		return "", nil, types.NewAppError(
			types.ErrCodeAuthEmailNotVerified,
			"email address is not verified; a new code has been sent",
			nil,
		)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID)

	return token, user, nil
}

// ResendOTP issues and mails a fresh verification code.
func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	return s.issueOTP(ctx, user, "Verify your email")
}

// ForgotPassword issues and mails a reset code. Unknown emails return nil
// so the endpoint cannot be used to probe which emails have accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if appErr, ok := err.(*types.AppError); ok && appErr.Code == types.ErrCodeNotFoundUser {
			s.logger.InfoContext(ctx, "password reset requested for unknown email")
			return nil
		}
		return err
	}
	return s.issueOTP(ctx, user, "Reset your password")
}

// ResetPassword checks the reset code and sets a new password.
func (s *AuthService) ResetPassword(ctx context.Context, email string, code string, newPassword string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	if err := s.checkOTP(user, code); err != nil {
		return err
	}

	passwordHash, err := s.hasher.GenerateFromPassword(newPassword)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to hash password", err)
	}

	if err := s.users.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return err
	}
	if err := s.users.ClearOTP(ctx, user.ID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "password reset", "user_id", user.ID)

	return nil
}

// ChangePassword verifies the current password before setting a new one.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, currentPassword string, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.hasher.CompareHashAndPassword(user.PasswordHash, currentPassword); err != nil {
		return types.NewAppError(types.ErrCodeAuthInvalidCreds, "current password is incorrect", nil)
	}

	passwordHash, err := s.hasher.GenerateFromPassword(newPassword)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to hash password", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "password changed", "user_id", userID)

	return nil
}

// checkOTP validates a raw code against the user's stored hash and expiry.
func (s *AuthService) checkOTP(user *types.User, code string) error {
	if user.OTPHash == "" || user.OTPExpiresAt == nil {
		return types.NewAppError(types.ErrCodeAuthOTPMismatch, "no active code for this account", nil)
	}
	if s.clock.Now().After(*user.OTPExpiresAt) {
		return types.NewAppError(types.ErrCodeAuthOTPExpired, "code has expired; request a new one", nil)
	}
	if !VerifyTokenHash(code, user.OTPHash) {
		return types.NewAppError(types.ErrCodeAuthOTPMismatch, "code does not match", nil)
	}
	return nil
}

// issueOTP stores a fresh code for the user and mails it.
func (s *AuthService) issueOTP(ctx context.Context, user *types.User, subject string) error {
	otp, err := GenerateOTP()
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to generate one-time code", err)
	}

	expiresAt := s.clock.Now().Add(OTPTTL)
	if err := s.users.SetOTP(ctx, user.ID, HashToken(otp), expiresAt); err != nil {
		return err
	}

	s.sendOTPEmail(ctx, user, otp, subject)
	return nil
}

// sendOTPEmail delivers the code, logging failures instead of returning
// them.
func (s *AuthService) sendOTPEmail(ctx context.Context, user *types.User, otp string, subject string) {
	if s.mailer == nil {
		return
	}

	msg := external.EmailMessage{
		To:      user.Email,
		ToName:  user.FullName,
		Subject: subject,
		HTMLContent: fmt.Sprintf(
			"<p>Your verification code is <strong>%s</strong>. It expires in %d minutes.</p>",
			otp, int(OTPTTL.Minutes()),
		),
	}

	if _, err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "failed to send one-time code email",
			"user_id", user.ID,
			"error", err,
		)
	}
}
