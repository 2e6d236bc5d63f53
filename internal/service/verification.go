package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"accountly/internal/cache"
	"accountly/internal/entities"
)

var (
	ErrInvalidVerificationCode = errors.New("invalid or expired verification code")
	ErrVerificationUnavailable = errors.New("phone verification is unavailable")
)

// VerificationCodeTTL is how long a texted code can be redeemed.
const VerificationCodeTTL = 10 * time.Minute

func verificationKey(userID int64) string {
	return "phone_verification:" + strconv.FormatInt(userID, 10)
}

// generateVerificationCode returns a uniformly random 6-digit code (100000-999999).
func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

// sendVerificationCode texts a fresh code to the user and remembers it when a code store is configured.
func (s *authService) sendVerificationCode(ctx context.Context, user *entities.User) error {
	code, err := s.newCode()
	if err != nil {
		return err
	}

	if s.codes != nil {
		if err := s.codes.Set(ctx, verificationKey(user.ID), code, VerificationCodeTTL); err != nil {
			return fmt.Errorf("failed to store verification code: %w", err)
		}
	}

	return s.sms.SendSMS(ctx, user.PhoneNumber, "Your verification code is: "+code)
}

// VerifyPhone redeems a texted code and marks the phone number verified
func (s *authService) VerifyPhone(ctx context.Context, user *entities.User, code string) error {
	if s.codes == nil {
		return ErrVerificationUnavailable
	}

	key := verificationKey(user.ID)
	want, err := s.codes.Get(ctx, key)
	if errors.Is(err, cache.ErrNotFound) {
		return ErrInvalidVerificationCode
	}
	if err != nil {
		return err
	}

	got := strings.TrimSpace(code)
	if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
		return ErrInvalidVerificationCode
	}

	if err := s.userRepo.SetPhoneVerified(ctx, user.ID, true); err != nil {
		return err
	}
	user.PhoneVerified = true

	if err := s.codes.Delete(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "failed to drop redeemed verification code", "user_id", user.ID, "error", err)
	}
	s.logger.InfoContext(ctx, "phone verified", "user_id", user.ID)
	return nil
}

// ResendVerificationCode replaces any pending code with a new one
func (s *authService) ResendVerificationCode(ctx context.Context, user *entities.User) error {
	if s.codes == nil {
		return ErrVerificationUnavailable
	}
	return s.sendVerificationCode(ctx, user)
}
