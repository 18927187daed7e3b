package changepassword

import (
	"context"
	"errors"
	c "resetme/internal/core/domain/common"
	e "resetme/internal/core/domain/errors"
	"resetme/internal/core/domain/logging"
	"resetme/internal/core/domain/user"
	"resetme/internal/core/services"
	"resetme/internal/core/services/auth"
)

type Input struct {
	CurrentPassword user.RawPassword
	NewPassword     user.RawPassword
	User            user.User
	Session         user.SessionToken
}

func (i Input) WithAuthenticatedUser(u user.User, token user.SessionToken) auth.Input {
	i.User = u
	i.Session = token
	return i
}

type Result struct{}

type service struct {
	log                  logging.Logger
	credentialRepository user.CredentialRepository
	sessionRepository    user.SessionRepository
	passwordHasher       user.PasswordHasher
}

func New(
	log logging.Logger,
	credentialRepository user.CredentialRepository,
	sessionRepository user.SessionRepository,
	passwordHasher user.PasswordHasher,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if credentialRepository == nil {
		panic(e.NewNilArgumentError("credentialRepository"))
	}
	if sessionRepository == nil {
		panic(e.NewNilArgumentError("sessionRepository"))
	}
	if passwordHasher == nil {
		panic(e.NewNilArgumentError("passwordHasher"))
	}
	return &service{
		log:                  log,
		credentialRepository: credentialRepository,
		sessionRepository:    sessionRepository,
		passwordHasher:       passwordHasher,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	isCurrentPasswordValid := s.passwordHasher.ValidatePassword(
		input.CurrentPassword,
		input.User.PasswordHash,
	)
	if !isCurrentPasswordValid {
		return result, user.ErrInvalidCredentials
	}

	newPasswordHash, err := s.passwordHasher.HashPassword(input.NewPassword)
	if err != nil {
		s.log.Error(ctx, "Could not hash password.", logging.Entry("err", err))
		return result, err
	}

	// This path never touches the reset token fields.
	_, err = s.credentialRepository.UpdatePassword(ctx, user.UpdatePasswordInput{
		UserID:       input.User.ID,
		PasswordHash: newPasswordHash,
	})
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not update password.",
			logging.Entry("userID", input.User.ID),
			logging.Entry("err", err),
		)
		return result, err
	}

	// The caller just re-authenticated with the old credential, so its own
	// session survives; every other session is revoked best-effort.
	deleted, err := s.sessionRepository.DeleteAllForUser(
		ctx, input.User.ID, c.NewOptional(input.Session, input.Session != ""),
	)
	if err != nil {
		s.log.Error(
			ctx,
			"Could not revoke other sessions after password change.",
			logging.Entry("userID", input.User.ID),
			logging.Entry("err", err),
		)
	}

	s.log.Info(
		ctx,
		"Password has been successfully changed.",
		logging.Entry("userID", input.User.ID),
		logging.Entry("revokedSessions", deleted),
	)
	return Result{}, nil
}
