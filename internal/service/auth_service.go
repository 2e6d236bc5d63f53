package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"accountly/internal/cache"
	"accountly/internal/entities"
	"accountly/internal/jwt"
	"accountly/internal/models"
	"accountly/internal/notify"
	"accountly/internal/repository"
)

var (
	ErrUsernameTaken        = errors.New("username already exists")
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrEmailNotFound        = errors.New("email not found")
	ErrPasswordMismatch     = errors.New("passwords do not match")
	ErrPasswordTooLong      = errors.New("password must be at most 72 bytes")
	ErrConfirmationRequired = errors.New("account cancellation requires typing CANCEL")
)

// CancelConfirmation is the literal a user must type to delete their account.
const CancelConfirmation = "CANCEL"

// maxPasswordBytes is bcrypt's input limit.
const maxPasswordBytes = 72

// AuthService defines the account business logic behind every form
type AuthService interface {
	Register(ctx context.Context, form *models.RegisterForm) (*entities.User, error)
	Login(ctx context.Context, username, password string) (*entities.User, error)
	GetUser(ctx context.Context, id int64) (*entities.User, error)
	RequestPasswordReset(ctx context.Context, email, baseURL string) error
	CheckResetToken(ctx context.Context, token string) (*entities.User, error)
	ResetPassword(ctx context.Context, token string, form *models.ResetPasswordForm) error
	UpdateProfile(ctx context.Context, user *entities.User, form *models.EditProfileForm) error
	CancelAccount(ctx context.Context, user *entities.User, confirm string) error
	VerifyPhone(ctx context.Context, user *entities.User, code string) error
	ResendVerificationCode(ctx context.Context, user *entities.User) error
}

type authService struct {
	userRepo    repository.UserRepository
	resetTokens *jwt.JWTService
	sms         notify.SMSSender
	email       notify.EmailSender
	codes       cache.Cache // nil when no verification store is configured
	logger      *slog.Logger

	hashCost  int
	dummyHash []byte
	newCode   func() (string, error)
}

// NewAuthService creates a new auth service. codes may be nil, in which case verification codes are
// sent but cannot be checked.
func NewAuthService(
	userRepo repository.UserRepository,
	resetTokens *jwt.JWTService,
	sms notify.SMSSender,
	email notify.EmailSender,
	codes cache.Cache,
	logger *slog.Logger,
) AuthService {
	return newAuthService(userRepo, resetTokens, sms, email, codes, logger, bcrypt.DefaultCost)
}

func newAuthService(
	userRepo repository.UserRepository,
	resetTokens *jwt.JWTService,
	sms notify.SMSSender,
	email notify.EmailSender,
	codes cache.Cache,
	logger *slog.Logger,
	hashCost int,
) *authService {
	if logger == nil {
		logger = slog.Default()
	}
	// Compared against when the username is unknown so both failure paths cost one bcrypt check.
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), hashCost)
	if err != nil {
		panic(fmt.Sprintf("bcrypt: %v", err))
	}
	return &authService{
		userRepo:    userRepo,
		resetTokens: resetTokens,
		sms:         sms,
		email:       email,
		codes:       codes,
		logger:      logger,
		hashCost:    hashCost,
		dummyHash:   dummy,
		newCode:     generateVerificationCode,
	}
}

// Register creates a new user account and texts a verification code to the phone number
func (s *authService) Register(ctx context.Context, form *models.RegisterForm) (*entities.User, error) {
	username := strings.TrimSpace(form.Username)
	email := strings.TrimSpace(form.Email)

	// Check if user already exists
	if err := s.ensureFree(ctx, s.userRepo.FindByUsername, username, ErrUsernameTaken); err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, s.userRepo.FindByEmail, email, ErrEmailTaken); err != nil {
		return nil, err
	}

	hash, err := s.hashPassword(form.Password)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		PhoneNumber:  strings.TrimSpace(form.PhoneNumber),
	}
	// The unique constraints still guard against a concurrent registration slipping past the checks above.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)

	if err := s.sendVerificationCode(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) ensureFree(
	ctx context.Context,
	find func(context.Context, string) (*entities.User, error),
	value string,
	taken error,
) error {
	_, err := find(ctx, value)
	switch {
	case err == nil:
		return taken
	case errors.Is(err, repository.ErrUserNotFound):
		return nil
	default:
		return err
	}
}

// Login checks credentials. Unknown usernames and wrong passwords are indistinguishable.
func (s *authService) Login(ctx context.Context, username, password string) (*entities.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrUserNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *authService) GetUser(ctx context.Context, id int64) (*entities.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

// RequestPasswordReset emails a signed reset link to the account holding email.
// A token whose email fails to send stays valid until it expires.
func (s *authService) RequestPasswordReset(ctx context.Context, email, baseURL string) error {
	user, err := s.userRepo.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repository.ErrUserNotFound) {
		return ErrEmailNotFound
	}
	if err != nil {
		return err
	}

	token, err := s.resetTokens.GenerateToken(user.ID)
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	link := strings.TrimRight(baseURL, "/") + "/reset-password/" + token
	body := "Click the following link to reset your password: " + link
	if err := s.email.SendEmail(ctx, user.Email, "Password Reset", body); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "password reset requested", "user_id", user.ID)
	return nil
}

// CheckResetToken returns the user a reset token was issued for.
// It fails with jwt.ErrExpiredToken or jwt.ErrInvalidToken.
func (s *authService) CheckResetToken(ctx context.Context, token string) (*entities.User, error) {
	userID, err := s.resetTokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("%w: account no longer exists", jwt.ErrInvalidToken)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ResetPassword replaces the password of the token's user when both entries match
func (s *authService) ResetPassword(ctx context.Context, token string, form *models.ResetPasswordForm) error {
	user, err := s.CheckResetToken(ctx, token)
	if err != nil {
		return err
	}

	if form.NewPassword != form.ConfirmPassword {
		return ErrPasswordMismatch
	}

	hash, err := s.hashPassword(form.NewPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "password reset", "user_id", user.ID)
	return nil
}

// UpdateProfile applies the form to user. Nothing is written when validation fails,
// and user is only modified after the store accepted the change.
func (s *authService) UpdateProfile(ctx context.Context, user *entities.User, form *models.EditProfileForm) error {
	updated := *user
	updated.Username = strings.TrimSpace(form.Username)
	updated.Email = strings.TrimSpace(form.Email)
	updated.PhoneNumber = strings.TrimSpace(form.PhoneNumber)
	if updated.PhoneNumber != user.PhoneNumber {
		updated.PhoneVerified = false
	}

	if form.NewPassword != "" {
		if form.NewPassword != form.ConfirmPassword {
			return ErrPasswordMismatch
		}
		hash, err := s.hashPassword(form.NewPassword)
		if err != nil {
			return err
		}
		updated.PasswordHash = hash
	}

	if err := s.userRepo.Update(ctx, &updated); err != nil {
		return err
	}

	*user = updated
	s.logger.InfoContext(ctx, "profile updated", "user_id", user.ID)
	return nil
}

// CancelAccount deletes the account when confirm is exactly "CANCEL"
func (s *authService) CancelAccount(ctx context.Context, user *entities.User, confirm string) error {
	if confirm != CancelConfirmation {
		return ErrConfirmationRequired
	}

	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return err
	}

	if s.codes != nil {
		if err := s.codes.Delete(ctx, verificationKey(user.ID)); err != nil {
			s.logger.WarnContext(ctx, "failed to drop verification code", "user_id", user.ID, "error", err)
		}
	}

	s.logger.InfoContext(ctx, "account cancelled", "user_id", user.ID)
	return nil
}

func (s *authService) hashPassword(password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
