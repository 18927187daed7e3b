package requestpasswordreset

import (
	"context"
	c "resetme/internal/core/domain/common"
	"resetme/internal/core/domain/logging"
	"resetme/internal/core/domain/user"
	"resetme/internal/core/services"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const EMAIL = "user@example.com"
const TOKEN = "test-reset-token"

var NOW = time.Date(2023, 2, 11, 16, 30, 0, 0, time.UTC)

type suite struct {
	log       *logging.FakeLogger
	credRepo  *user.FakeCredentialRepository
	generator *user.FakeResetTokenGenerator
	sender    *user.FakeResetTokenSender
}

func setupSuite() *suite {
	credRepo := user.NewFakeCredentialRepository()
	credRepo.Users = []user.User{{
		ID:           1,
		Email:        c.NewEmail(EMAIL),
		PasswordHash: "hash",
		CreatedAt:    NOW.Add(-24 * time.Hour),
	}}
	return &suite{
		log:       logging.NewFakeLogger(),
		credRepo:  credRepo,
		generator: user.NewFakeResetTokenGenerator(TOKEN),
		sender:    user.NewFakeResetTokenSender(),
	}
}

func (s *suite) createService() services.Service[Input, Result] {
	return New(s.log, s.credRepo, s.generator, s.sender, time.Hour, func() time.Time { return NOW })
}

func TestTokenCreatedAndSent(t *testing.T) {
	// Setup ---
	suite := setupSuite()
	service := suite.createService()

	// Exercise ---
	result, err := service.Run(context.Background(), Input{Email: c.NewEmail(EMAIL)})

	// Verify ---
	require.NoError(t, err)
	require.Equal(t, user.ResetToken(TOKEN), result.Token)

	u, err := suite.credRepo.GetByEmail(context.Background(), c.NewEmail(EMAIL))
	require.NoError(t, err)
	require.True(t, u.ResetToken.IsPresent)
	require.Equal(t, user.ResetToken(TOKEN), u.ResetToken.Value)
	require.True(t, u.ResetTokenExpiresAt.IsPresent)
	require.Equal(t, NOW.Add(time.Hour), u.ResetTokenExpiresAt.Value)
	require.True(t, u.ResetTokenExpiresAt.Value.After(NOW))
	require.NoError(t, u.Validate())

	require.Equal(t, 1, suite.sender.SentCount())
	require.Equal(t, user.ResetToken(TOKEN), suite.sender.Sent[0])
}

func TestUnknownEmailGetsSameSuccessOutcome(t *testing.T) {
	// Setup ---
	suite := setupSuite()
	service := suite.createService()

	// Exercise ---
	result, err := service.Run(context.Background(), Input{Email: c.NewEmail("nobody@example.com")})

	// Verify ---
	require.NoError(t, err)
	require.Equal(t, user.ResetToken(""), result.Token)
	require.Equal(t, 0, suite.sender.SentCount())
	require.Len(t, suite.credRepo.Users, 1)
	require.False(t, suite.credRepo.Users[0].ResetToken.IsPresent)
	// The generator still ran so the unknown-email path does comparable work.
	require.Equal(t, 1, suite.generator.Generated)
}

func TestRepeatedRequestRotatesToken(t *testing.T) {
	// Setup ---
	suite := setupSuite()
	first := New(
		suite.log, suite.credRepo,
		user.NewFakeResetTokenGenerator("token-1"),
		suite.sender, time.Hour, func() time.Time { return NOW },
	)
	second := New(
		suite.log, suite.credRepo,
		user.NewFakeResetTokenGenerator("token-2"),
		suite.sender, time.Hour, func() time.Time { return NOW.Add(time.Minute) },
	)

	// Exercise ---
	_, err := first.Run(context.Background(), Input{Email: c.NewEmail(EMAIL)})
	require.NoError(t, err)
	_, err = second.Run(context.Background(), Input{Email: c.NewEmail(EMAIL)})
	require.NoError(t, err)

	// Verify ---
	u, err := suite.credRepo.GetByEmail(context.Background(), c.NewEmail(EMAIL))
	require.NoError(t, err)
	require.Equal(t, user.ResetToken("token-2"), u.ResetToken.Value)
	require.Equal(t, NOW.Add(time.Minute+time.Hour), u.ResetTokenExpiresAt.Value)
	require.Equal(t, 2, suite.sender.SentCount())
}

func TestConcurrentRequestsConvergeOnSingleToken(t *testing.T) {
	// Setup ---
	suite := setupSuite()
	serviceA := New(
		suite.log, suite.credRepo,
		user.NewFakeResetTokenGenerator("token-a"),
		suite.sender, time.Hour, func() time.Time { return NOW },
	)
	serviceB := New(
		suite.log, suite.credRepo,
		user.NewFakeResetTokenGenerator("token-b"),
		suite.sender, time.Hour, func() time.Time { return NOW },
	)

	// Exercise ---
	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = serviceA.Run(context.Background(), Input{Email: c.NewEmail(EMAIL)})
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = serviceB.Run(context.Background(), Input{Email: c.NewEmail(EMAIL)})
	}()
	wg.Wait()

	// Verify ---
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	u, err := suite.credRepo.GetByEmail(context.Background(), c.NewEmail(EMAIL))
	require.NoError(t, err)
	require.NoError(t, u.Validate())
	require.True(t, u.ResetToken.IsPresent)
	require.Contains(t,
		[]user.ResetToken{"token-a", "token-b"},
		u.ResetToken.Value,
	)
	require.Equal(t, NOW.Add(time.Hour), u.ResetTokenExpiresAt.Value)
}

func TestSenderErrorPropagatesButTokenStands(t *testing.T) {
	// Setup ---
	suite := setupSuite()
	suite.sender.ReturnError = true
	service := suite.createService()

	// Exercise ---
	_, err := service.Run(context.Background(), Input{Email: c.NewEmail(EMAIL)})

	// Verify ---
	require.Error(t, err)
	u, getErr := suite.credRepo.GetByEmail(context.Background(), c.NewEmail(EMAIL))
	require.NoError(t, getErr)
	require.True(t, u.ResetToken.IsPresent)
}

func TestGeneratorErrorFailsRequest(t *testing.T) {
	// Setup ---
	suite := setupSuite()
	suite.generator.ReturnError = true
	service := suite.createService()

	// Exercise ---
	_, err := service.Run(context.Background(), Input{Email: c.NewEmail(EMAIL)})

	// Verify ---
	require.Error(t, err)
	require.Equal(t, 0, suite.sender.SentCount())
}
