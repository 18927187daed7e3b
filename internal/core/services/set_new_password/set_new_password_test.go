package setnewpassword

import (
	"context"
	c "resetme/internal/core/domain/common"
	"resetme/internal/core/domain/logging"
	"resetme/internal/core/domain/user"
	"resetme/internal/core/services"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	USER_ID      = user.ID(1)
	TOKEN        = "test-reset-token"
	OLD_PASSWORD = "OldPass123"
	NEW_PASSWORD = "NewPass123"
)

var NOW = time.Date(2023, 2, 11, 16, 30, 0, 0, time.UTC)

type suite struct {
	log         *logging.FakeLogger
	credRepo    *user.FakeCredentialRepository
	sessionRepo *user.FakeSessionRepository
	signer      *user.FakeResetProofSigner
	hasher      *user.FakePasswordHasher
}

func setupSuite(expiresAt time.Time) *suite {
	hasher := user.NewFakePasswordHasher()
	oldHash, err := hasher.HashPassword(OLD_PASSWORD)
	if err != nil {
		panic(err)
	}
	credRepo := user.NewFakeCredentialRepository()
	credRepo.Users = []user.User{{
		ID:                  USER_ID,
		Email:               c.NewEmail("user@example.com"),
		PasswordHash:        oldHash,
		ResetToken:          c.NewOptional(user.ResetToken(TOKEN), true),
		ResetTokenExpiresAt: c.NewOptional(expiresAt, true),
		Version:             1,
	}}
	return &suite{
		log:         logging.NewFakeLogger(),
		credRepo:    credRepo,
		sessionRepo: user.NewFakeSessionRepository(credRepo),
		signer:      user.NewFakeResetProofSigner(),
		hasher:      hasher,
	}
}

func (s *suite) createService(now time.Time) services.Service[Input, Result] {
	return New(s.log, s.credRepo, s.sessionRepo, s.signer, s.hasher, func() time.Time { return now })
}

func (s *suite) issueProof(t *testing.T) user.ResetProof {
	t.Helper()
	proof, err := s.signer.Issue(s.credRepo.Users[0], TOKEN, NOW)
	require.NoError(t, err)
	return proof
}

func (s *suite) createSessions(t *testing.T, tokens ...string) {
	t.Helper()
	for _, token := range tokens {
		err := s.sessionRepo.Create(context.Background(), user.CreateSessionInput{
			UserID:    USER_ID,
			Token:     user.SessionToken(token),
			CreatedAt: NOW,
		})
		require.NoError(t, err)
	}
}

func TestPasswordSetAndTokenConsumed(t *testing.T) {
	// Setup ---
	suite := setupSuite(NOW.Add(time.Hour))
	suite.createSessions(t, "session-1", "session-2")
	service := suite.createService(NOW.Add(30 * time.Minute))
	proof := suite.issueProof(t)

	// Exercise ---
	_, err := service.Run(context.Background(), Input{Proof: proof, NewPassword: NEW_PASSWORD})

	// Verify ---
	require.NoError(t, err)

	u, err := suite.credRepo.GetByID(context.Background(), USER_ID)
	require.NoError(t, err)
	require.NoError(t, u.Validate())
	require.False(t, u.ResetToken.IsPresent)
	require.False(t, u.ResetTokenExpiresAt.IsPresent)
	require.True(t, suite.hasher.ValidatePassword(NEW_PASSWORD, u.PasswordHash))
	require.False(t, suite.hasher.ValidatePassword(OLD_PASSWORD, u.PasswordHash))

	// Every previously issued session is gone.
	require.Equal(t, 0, suite.sessionRepo.SessionCount(USER_ID))
}

func TestProofIsSingleUse(t *testing.T) {
	// Setup ---
	suite := setupSuite(NOW.Add(time.Hour))
	service := suite.createService(NOW.Add(30 * time.Minute))
	proof := suite.issueProof(t)

	// Exercise ---
	_, err := service.Run(context.Background(), Input{Proof: proof, NewPassword: NEW_PASSWORD})
	require.NoError(t, err)
	_, err = service.Run(context.Background(), Input{Proof: proof, NewPassword: "AnotherPass1"})

	// Verify ---
	require.ErrorIs(t, err, user.ErrResetTokenInvalid)

	// The second attempt must not have overwritten the first.
	u, getErr := suite.credRepo.GetByID(context.Background(), USER_ID)
	require.NoError(t, getErr)
	require.True(t, suite.hasher.ValidatePassword(NEW_PASSWORD, u.PasswordHash))
}

func TestExpiryRecheckedAtSetTime(t *testing.T) {
	// Setup ---
	// The token was valid when the proof was issued but expires before the
	// new password arrives.
	suite := setupSuite(NOW.Add(time.Hour))
	service := suite.createService(NOW.Add(61 * time.Minute))
	proof := suite.issueProof(t)

	// Exercise ---
	_, err := service.Run(context.Background(), Input{Proof: proof, NewPassword: NEW_PASSWORD})

	// Verify ---
	require.ErrorIs(t, err, user.ErrResetTokenExpired)

	u, getErr := suite.credRepo.GetByID(context.Background(), USER_ID)
	require.NoError(t, getErr)
	require.True(t, u.ResetToken.IsPresent)
	require.True(t, suite.hasher.ValidatePassword(OLD_PASSWORD, u.PasswordHash))
}

func TestInvalidProof(t *testing.T) {
	// Setup ---
	suite := setupSuite(NOW.Add(time.Hour))
	service := suite.createService(NOW)

	// Exercise ---
	_, err := service.Run(context.Background(), Input{Proof: "garbage", NewPassword: NEW_PASSWORD})

	// Verify ---
	require.ErrorIs(t, err, user.ErrResetProofInvalid)
}

func TestSessionRevocationFailureDoesNotUndoPasswordChange(t *testing.T) {
	// Setup ---
	suite := setupSuite(NOW.Add(time.Hour))
	suite.sessionRepo.ReturnError = true
	service := suite.createService(NOW)
	proof := suite.issueProof(t)

	// Exercise ---
	_, err := service.Run(context.Background(), Input{Proof: proof, NewPassword: NEW_PASSWORD})

	// Verify ---
	require.NoError(t, err)

	u, getErr := suite.credRepo.GetByID(context.Background(), USER_ID)
	require.NoError(t, getErr)
	require.True(t, suite.hasher.ValidatePassword(NEW_PASSWORD, u.PasswordHash))
	require.False(t, u.ResetToken.IsPresent)
}

func TestConsumedTokenFailsReverification(t *testing.T) {
	// Full reset flow: request -> verify -> set -> verify again.
	// Setup ---
	suite := setupSuite(NOW.Add(time.Hour))
	service := suite.createService(NOW.Add(30 * time.Minute))
	proof := suite.issueProof(t)

	// Exercise ---
	_, err := service.Run(context.Background(), Input{Proof: proof, NewPassword: NEW_PASSWORD})
	require.NoError(t, err)

	// Verify ---
	_, err = suite.credRepo.GetByResetToken(context.Background(), TOKEN)
	require.ErrorIs(t, err, user.ErrUserDoesNotExist)
}
