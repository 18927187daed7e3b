package verifyresettoken

import (
	"context"
	"errors"
	e "resetme/internal/core/domain/errors"
	"resetme/internal/core/domain/logging"
	"resetme/internal/core/domain/user"
	"resetme/internal/core/services"
	"time"
)

type Input struct {
	Token user.ResetToken
}

type Result struct {
	Proof user.ResetProof
}

// Verification is read-only: the token stays on the record until it is
// consumed or overwritten, so repeating the call yields the same outcome.
type service struct {
	log                  logging.Logger
	credentialRepository user.CredentialRepository
	resetProofSigner     user.ResetProofSigner
	now                  func() time.Time
}

func New(
	log logging.Logger,
	credentialRepository user.CredentialRepository,
	resetProofSigner user.ResetProofSigner,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if credentialRepository == nil {
		panic(e.NewNilArgumentError("credentialRepository"))
	}
	if resetProofSigner == nil {
		panic(e.NewNilArgumentError("resetProofSigner"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:                  log,
		credentialRepository: credentialRepository,
		resetProofSigner:     resetProofSigner,
		now:                  now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	if input.Token == "" {
		return result, user.ErrResetTokenInvalid
	}

	u, err := s.credentialRepository.GetByResetToken(ctx, input.Token)
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if errors.Is(err, user.ErrUserDoesNotExist) {
		return result, user.ErrResetTokenInvalid
	}
	if err != nil {
		s.log.Error(ctx, "Could not get user by reset token.", logging.Entry("err", err))
		return result, err
	}

	now := s.now()
	if u.IsResetExpired(now) {
		return result, user.ErrResetTokenExpired
	}

	proof, err := s.resetProofSigner.Issue(u, input.Token, now)
	if err != nil {
		s.log.Error(
			ctx,
			"Could not issue reset proof.",
			logging.Entry("userID", u.ID),
			logging.Entry("err", err),
		)
		return result, err
	}

	s.log.Info(ctx, "Reset token verified, proof issued.", logging.Entry("userID", u.ID))
	return Result{Proof: proof}, nil
}
