package user

import (
	"context"
	"os"
	c "resetme/internal/core/domain/common"
	"resetme/internal/core/domain/user"
	"resetme/internal/db"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/suite"
)

const (
	EMAIL         = "test@test.test"
	PASSWORD_HASH = "test-password-hash"
	RESET_TOKEN   = "test-reset-token"
)

var NOW = time.Date(2023, 2, 11, 16, 30, 0, 0, time.UTC)

type testCredentialSuite struct {
	suite.Suite
	pool       *pgxpool.Pool
	repository *PgxCredentialRepository
}

func (suite *testCredentialSuite) SetupSuite() {
	suite.pool = db.CreateTestPool()
	suite.repository = NewPgxCredentialRepository(suite.pool)
}

func (suite *testCredentialSuite) TearDownSuite() {
	suite.pool.Close()
}

func (suite *testCredentialSuite) TearDownTest() {
	db.TruncateTables(suite.pool)
}

func TestPgxCredentialRepository(t *testing.T) {
	if os.Getenv("TEST_POSTGRESQL_URL") == "" {
		t.Skip("TEST_POSTGRESQL_URL is not set.")
	}
	suite.Run(t, new(testCredentialSuite))
}

func (s *testCredentialSuite) TestCreateAndGet() {
	u, err := s.repository.Create(
		context.Background(),
		user.CreateUserInput{
			Email:        c.NewEmail(EMAIL),
			PasswordHash: user.PasswordHash(PASSWORD_HASH),
			CreatedAt:    NOW,
		},
	)

	s.Nil(err)
	s.True(u.ID > 0)
	s.Equal(c.NewEmail(EMAIL), u.Email)
	s.Equal(user.PasswordHash(PASSWORD_HASH), u.PasswordHash)
	s.False(u.HasPendingReset())
	s.Equal(uint64(1), u.Version)

	byEmail, err := s.repository.GetByEmail(context.Background(), c.NewEmail(EMAIL))
	s.Nil(err)
	s.Equal(u.ID, byEmail.ID)

	byID, err := s.repository.GetByID(context.Background(), u.ID)
	s.Nil(err)
	s.Equal(u.ID, byID.ID)
}

func (s *testCredentialSuite) TestCreateDuplicateEmail() {
	s.createUser(EMAIL)

	_, err := s.repository.Create(
		context.Background(),
		user.CreateUserInput{
			Email:        c.NewEmail(EMAIL),
			PasswordHash: user.PasswordHash(PASSWORD_HASH),
			CreatedAt:    NOW,
		},
	)

	s.ErrorIs(err, user.ErrEmailAlreadyExists)
}

func (s *testCredentialSuite) TestGetUnknownUser() {
	_, err := s.repository.GetByEmail(context.Background(), c.NewEmail("unknown@test.test"))
	s.ErrorIs(err, user.ErrUserDoesNotExist)

	_, err = s.repository.GetByResetToken(context.Background(), user.ResetToken("unknown-token"))
	s.ErrorIs(err, user.ErrUserDoesNotExist)
}

func (s *testCredentialSuite) TestSetResetToken() {
	u := s.createUser(EMAIL)

	updated, err := s.repository.SetResetToken(
		context.Background(),
		user.SetResetTokenInput{
			UserID:          u.ID,
			Token:           user.ResetToken(RESET_TOKEN),
			ExpiresAt:       NOW.Add(time.Hour),
			ExpectedVersion: u.Version,
		},
	)

	s.Nil(err)
	s.True(updated.HasPendingReset())
	s.Equal(user.ResetToken(RESET_TOKEN), updated.ResetToken.Value)
	s.True(updated.ResetTokenExpiresAt.Value.Equal(NOW.Add(time.Hour)))
	s.Equal(u.Version+1, updated.Version)

	byToken, err := s.repository.GetByResetToken(context.Background(), user.ResetToken(RESET_TOKEN))
	s.Nil(err)
	s.Equal(u.ID, byToken.ID)
}

func (s *testCredentialSuite) TestSetResetTokenStaleVersion() {
	u := s.createUser(EMAIL)
	s.setResetToken(u, RESET_TOKEN)

	_, err := s.repository.SetResetToken(
		context.Background(),
		user.SetResetTokenInput{
			UserID:          u.ID,
			Token:           user.ResetToken("another-token"),
			ExpiresAt:       NOW.Add(time.Hour),
			ExpectedVersion: u.Version,
		},
	)

	s.ErrorIs(err, user.ErrStaleRecord)
}

func (s *testCredentialSuite) TestUpdatePasswordConsumesToken() {
	u := s.createUser(EMAIL)
	s.setResetToken(u, RESET_TOKEN)

	updated, err := s.repository.UpdatePassword(
		context.Background(),
		user.UpdatePasswordInput{
			UserID:            u.ID,
			PasswordHash:      user.PasswordHash("new-password-hash"),
			ConsumeResetToken: c.NewOptional(user.ResetToken(RESET_TOKEN), true),
		},
	)

	s.Nil(err)
	s.Equal(user.PasswordHash("new-password-hash"), updated.PasswordHash)
	s.False(updated.HasPendingReset())

	_, err = s.repository.GetByResetToken(context.Background(), user.ResetToken(RESET_TOKEN))
	s.ErrorIs(err, user.ErrUserDoesNotExist)
}

func (s *testCredentialSuite) TestUpdatePasswordTokenAlreadyConsumed() {
	u := s.createUser(EMAIL)
	s.setResetToken(u, RESET_TOKEN)

	_, err := s.repository.UpdatePassword(
		context.Background(),
		user.UpdatePasswordInput{
			UserID:            u.ID,
			PasswordHash:      user.PasswordHash("new-password-hash"),
			ConsumeResetToken: c.NewOptional(user.ResetToken(RESET_TOKEN), true),
		},
	)
	s.Nil(err)

	_, err = s.repository.UpdatePassword(
		context.Background(),
		user.UpdatePasswordInput{
			UserID:            u.ID,
			PasswordHash:      user.PasswordHash("other-password-hash"),
			ConsumeResetToken: c.NewOptional(user.ResetToken(RESET_TOKEN), true),
		},
	)
	s.ErrorIs(err, user.ErrResetTokenInvalid)
}

func (s *testCredentialSuite) TestUpdatePasswordWithoutConsume() {
	u := s.createUser(EMAIL)
	s.setResetToken(u, RESET_TOKEN)

	updated, err := s.repository.UpdatePassword(
		context.Background(),
		user.UpdatePasswordInput{
			UserID:       u.ID,
			PasswordHash: user.PasswordHash("new-password-hash"),
		},
	)

	s.Nil(err)
	s.Equal(user.PasswordHash("new-password-hash"), updated.PasswordHash)
	s.True(updated.HasPendingReset())
}

func (s *testCredentialSuite) createUser(email string) user.User {
	s.T().Helper()
	u, err := s.repository.Create(
		context.Background(),
		user.CreateUserInput{
			Email:        c.NewEmail(email),
			PasswordHash: user.PasswordHash(PASSWORD_HASH),
			CreatedAt:    NOW,
		},
	)
	if err != nil {
		s.FailNow(err.Error())
	}
	return u
}

func (s *testCredentialSuite) setResetToken(u user.User, token string) user.User {
	s.T().Helper()
	updated, err := s.repository.SetResetToken(
		context.Background(),
		user.SetResetTokenInput{
			UserID:          u.ID,
			Token:           user.ResetToken(token),
			ExpiresAt:       NOW.Add(time.Hour),
			ExpectedVersion: u.Version,
		},
	)
	if err != nil {
		s.FailNow(err.Error())
	}
	return updated
}
