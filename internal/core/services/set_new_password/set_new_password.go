package setnewpassword

import (
	"context"
	"errors"
	c "resetme/internal/core/domain/common"
	e "resetme/internal/core/domain/errors"
	"resetme/internal/core/domain/logging"
	"resetme/internal/core/domain/user"
	"resetme/internal/core/services"
	"time"
)

type Input struct {
	Proof       user.ResetProof
	NewPassword user.RawPassword
}

type Result struct{}

type service struct {
	log                  logging.Logger
	credentialRepository user.CredentialRepository
	sessionRepository    user.SessionRepository
	resetProofSigner     user.ResetProofSigner
	passwordHasher       user.PasswordHasher
	now                  func() time.Time
}

func New(
	log logging.Logger,
	credentialRepository user.CredentialRepository,
	sessionRepository user.SessionRepository,
	resetProofSigner user.ResetProofSigner,
	passwordHasher user.PasswordHasher,
	now func() time.Time,
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
	if resetProofSigner == nil {
		panic(e.NewNilArgumentError("resetProofSigner"))
	}
	if passwordHasher == nil {
		panic(e.NewNilArgumentError("passwordHasher"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:                  log,
		credentialRepository: credentialRepository,
		sessionRepository:    sessionRepository,
		resetProofSigner:     resetProofSigner,
		passwordHasher:       passwordHasher,
		now:                  now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	token, err := s.resetProofSigner.Resolve(input.Proof, s.now())
	if err != nil {
		return result, user.ErrResetProofInvalid
	}

	u, err := s.credentialRepository.GetByResetToken(ctx, token)
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if errors.Is(err, user.ErrUserDoesNotExist) {
		// Consumed or rotated since the proof was issued.
		return result, user.ErrResetTokenInvalid
	}
	if err != nil {
		s.log.Error(ctx, "Could not get user by reset token.", logging.Entry("err", err))
		return result, err
	}

	// Expiry is re-checked here: a token that expired between verification
	// and this call must be rejected as well.
	if u.IsResetExpired(s.now()) {
		return result, user.ErrResetTokenExpired
	}

	newPasswordHash, err := s.passwordHasher.HashPassword(input.NewPassword)
	if err != nil {
		s.log.Error(ctx, "Could not hash password.", logging.Entry("err", err))
		return result, err
	}

	u, err = s.credentialRepository.UpdatePassword(ctx, user.UpdatePasswordInput{
		UserID:            u.ID,
		PasswordHash:      newPasswordHash,
		ConsumeResetToken: c.NewOptional(token, true),
	})
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if errors.Is(err, user.ErrResetTokenInvalid) || errors.Is(err, user.ErrUserDoesNotExist) {
		// Lost the race against a concurrent consume or a new request.
		return result, user.ErrResetTokenInvalid
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not update password.",
			logging.Entry("userID", u.ID),
			logging.Entry("err", err),
		)
		return result, err
	}

	// The credential change is committed; session revocation is best-effort
	// and must not undo it.
	deleted, err := s.sessionRepository.DeleteAllForUser(
		ctx, u.ID, c.NewOptional(user.SessionToken(""), false),
	)
	if err != nil {
		s.log.Error(
			ctx,
			"Could not revoke sessions after password reset.",
			logging.Entry("userID", u.ID),
			logging.Entry("err", err),
		)
	}

	s.log.Info(
		ctx,
		"New password has been set, reset token consumed.",
		logging.Entry("userID", u.ID),
		logging.Entry("revokedSessions", deleted),
	)
	return result, nil
}
