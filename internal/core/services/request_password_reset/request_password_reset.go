package requestpasswordreset

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

// Concurrent requests for the same account race on the record version; the
// loser re-reads and retries so both calls converge on a single live token.
const maxSetTokenAttempts = 3

type Input struct {
	Email c.Email
}

func (i Input) GetRateLimitKey() string {
	return "request-password-reset::" + string(i.Email)
}

type Result struct {
	// Token is set only when an account matched; handlers must never reveal
	// it to the caller outside of the local diagnostic mode.
	Token user.ResetToken
}

type service struct {
	log                  logging.Logger
	credentialRepository user.CredentialRepository
	resetTokenGenerator  user.ResetTokenGenerator
	resetTokenSender     user.ResetTokenSender
	tokenTTL             time.Duration
	now                  func() time.Time
}

func New(
	log logging.Logger,
	credentialRepository user.CredentialRepository,
	resetTokenGenerator user.ResetTokenGenerator,
	resetTokenSender user.ResetTokenSender,
	tokenTTL time.Duration,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if credentialRepository == nil {
		panic(e.NewNilArgumentError("credentialRepository"))
	}
	if resetTokenGenerator == nil {
		panic(e.NewNilArgumentError("resetTokenGenerator"))
	}
	if resetTokenSender == nil {
		panic(e.NewNilArgumentError("resetTokenSender"))
	}
	if tokenTTL <= 0 {
		panic("tokenTTL must be positive")
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:                  log,
		credentialRepository: credentialRepository,
		resetTokenGenerator:  resetTokenGenerator,
		resetTokenSender:     resetTokenSender,
		tokenTTL:             tokenTTL,
		now:                  now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	token, err := s.resetTokenGenerator.GenerateResetToken()
	if err != nil {
		s.log.Error(ctx, "Could not generate reset token.", logging.Entry("err", err))
		return result, err
	}

	u, err := s.credentialRepository.GetByEmail(ctx, input.Email)
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if errors.Is(err, user.ErrUserDoesNotExist) {
		// Unknown emails get the same success outcome, no mutation and no
		// notification. The token was already generated above so the two
		// paths stay close in timing.
		s.log.Info(ctx, "Password reset requested for unknown email.")
		return result, nil
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not get user for password reset request.",
			logging.Entry("err", err),
		)
		return result, err
	}

	u, err = s.setResetToken(ctx, u, token)
	if err != nil {
		return result, err
	}

	// The token is durably committed at this point; a failed or cancelled
	// notification leaves it valid.
	if err := s.resetTokenSender.SendResetToken(ctx, u, token); err != nil {
		s.log.Error(
			ctx,
			"Could not send password reset token.",
			logging.Entry("userID", u.ID),
			logging.Entry("err", err),
		)
		return result, err
	}

	s.log.Info(
		ctx,
		"Password reset token created and dispatched.",
		logging.Entry("userID", u.ID),
		logging.Entry("expiresAt", u.ResetTokenExpiresAt.Value),
	)
	return Result{Token: token}, nil
}

func (s *service) setResetToken(ctx context.Context, u user.User, token user.ResetToken) (user.User, error) {
	for attempt := 0; ; attempt++ {
		updated, err := s.credentialRepository.SetResetToken(ctx, user.SetResetTokenInput{
			UserID:          u.ID,
			Token:           token,
			ExpiresAt:       s.now().Add(s.tokenTTL),
			ExpectedVersion: u.Version,
		})
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, context.Canceled) {
			return u, err
		}
		if errors.Is(err, user.ErrStaleRecord) && attempt+1 < maxSetTokenAttempts {
			u, err = s.credentialRepository.GetByID(ctx, u.ID)
			if err != nil {
				return u, err
			}
			continue
		}
		s.log.Error(
			ctx,
			"Could not set reset token.",
			logging.Entry("userID", u.ID),
			logging.Entry("err", err),
		)
		return u, err
	}
}
