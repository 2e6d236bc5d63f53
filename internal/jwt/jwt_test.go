package jwt

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newService(t *testing.T, audience string, clock *fakeClock) *JWTService {
	t.Helper()
	s, err := NewJWTService(testSecret, audience, time.Hour, WithClock(clock.Now))
	require.NoError(t, err)
	return s
}

func TestNewJWTService_MissingSecret(t *testing.T) {
	_, err := NewJWTService("", AudiencePasswordReset, time.Hour)
	require.ErrorIs(t, err, ErrMissingSecret)
}

func TestGenerateAndValidate_RoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	s := newService(t, AudiencePasswordReset, clock)

	token, err := s.GenerateToken(42)
	require.NoError(t, err)

	clock.t = clock.t.Add(59 * time.Minute)
	userID, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestValidate_Expired(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	s := newService(t, AudiencePasswordReset, clock)

	token, err := s.GenerateToken(42)
	require.NoError(t, err)

	clock.t = clock.t.Add(time.Hour + time.Second)
	_, err = s.ValidateToken(token)
	require.ErrorIs(t, err, ErrExpiredToken)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_TamperedToken(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	s := newService(t, AudiencePasswordReset, clock)

	token, err := s.GenerateToken(42)
	require.NoError(t, err)

	lastSig := len(token) - 1
	for i := 0; i < len(token); i++ {
		// The final signature character carries padding bits, so flipping it may not change the decoded bytes.
		if token[i] == '.' || i == lastSig {
			continue
		}
		replacement := byte('A')
		if token[i] == 'A' {
			replacement = 'B'
		}
		tampered := token[:i] + string(replacement) + token[i+1:]

		_, err := s.ValidateToken(tampered)
		require.ErrorIs(t, err, ErrInvalidToken, "position %d", i)
	}
}

func TestValidate_Malformed(t *testing.T) {
	s := newService(t, AudiencePasswordReset, &fakeClock{t: time.Now()})

	for _, token := range []string{"", "abc", "a.b.c", strings.Repeat("x", 300)} {
		_, err := s.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken, token)
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	s := newService(t, AudiencePasswordReset, clock)
	other, err := NewJWTService("another-secret", AudiencePasswordReset, time.Hour, WithClock(clock.Now))
	require.NoError(t, err)

	token, err := other.GenerateToken(1)
	require.NoError(t, err)

	_, err = s.ValidateToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_AudienceSeparation(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	reset := newService(t, AudiencePasswordReset, clock)
	session := newService(t, AudienceSession, clock)

	sessionToken, err := session.GenerateToken(5)
	require.NoError(t, err)

	_, err = reset.ValidateToken(sessionToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	id, err := session.ValidateToken(sessionToken)
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)
}

func TestValidate_RejectsOtherAlgorithms(t *testing.T) {
	s := newService(t, AudiencePasswordReset, &fakeClock{t: time.Now()})

	claims := &Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{AudiencePasswordReset},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = s.ValidateToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = s.ValidateToken(unsigned)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_MissingClaims(t *testing.T) {
	s := newService(t, AudiencePasswordReset, &fakeClock{t: time.Now()})

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:           1,
		RegisteredClaims: jwt.RegisteredClaims{Audience: jwt.ClaimStrings{AudiencePasswordReset}},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = s.ValidateToken(noExpiry)
	require.ErrorIs(t, err, ErrInvalidToken)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{AudiencePasswordReset},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = s.ValidateToken(noUser)
	require.ErrorIs(t, err, ErrInvalidToken)
}
