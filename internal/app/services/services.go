package services

import (
	"resetme/internal/app/deps"
	drl "resetme/internal/core/domain/rate_limiter"
	"resetme/internal/core/services"
	"resetme/internal/core/services/auth"
	changepassword "resetme/internal/core/services/change_password"
	loginwithemail "resetme/internal/core/services/log_in_with_email"
	logout "resetme/internal/core/services/log_out"
	ratelimiting "resetme/internal/core/services/rate_limiting"
	requestpasswordreset "resetme/internal/core/services/request_password_reset"
	setnewpassword "resetme/internal/core/services/set_new_password"
	signupwithemail "resetme/internal/core/services/sign_up_with_email"
	verifyresettoken "resetme/internal/core/services/verify_reset_token"
)

type Services struct {
	SignUpWithEmail services.Service[signupwithemail.Input, signupwithemail.Result]
	LogInWithEmail  services.Service[loginwithemail.Input, loginwithemail.Result]
	LogOut          services.Service[logout.Input, logout.Result]

	RequestPasswordReset services.Service[requestpasswordreset.Input, requestpasswordreset.Result]
	VerifyResetToken     services.Service[verifyresettoken.Input, verifyresettoken.Result]
	SetNewPassword       services.Service[setnewpassword.Input, setnewpassword.Result]
	ChangePassword       services.Service[changepassword.Input, changepassword.Result]
}

func InitServices(deps *deps.Deps) *Services {
	s := &Services{}

	s.SignUpWithEmail = signupwithemail.New(
		deps.Logger,
		deps.CredentialRepository,
		deps.PasswordHasher,
		deps.Now,
	)
	s.LogInWithEmail = ratelimiting.WithRateLimiting(
		deps.Logger,
		deps.RateLimiter,
		drl.Limit{Interval: drl.Hour, Value: 10},
		loginwithemail.New(
			deps.Logger,
			deps.CredentialRepository,
			deps.SessionRepository,
			deps.PasswordHasher,
			deps.SessionTokenGenerator,
			deps.Now,
		),
	)
	s.LogOut = logout.New(
		deps.Logger,
		deps.SessionRepository,
	)

	s.RequestPasswordReset = ratelimiting.WithRateLimiting(
		deps.Logger,
		deps.RateLimiter,
		drl.Limit{Interval: drl.Hour, Value: 3},
		requestpasswordreset.New(
			deps.Logger,
			deps.CredentialRepository,
			deps.ResetTokenGenerator,
			deps.ResetTokenSender,
			deps.Config.ResetTokenTTL,
			deps.Now,
		),
	)
	s.VerifyResetToken = verifyresettoken.New(
		deps.Logger,
		deps.CredentialRepository,
		deps.ResetProofSigner,
		deps.Now,
	)
	s.SetNewPassword = setnewpassword.New(
		deps.Logger,
		deps.CredentialRepository,
		deps.SessionRepository,
		deps.ResetProofSigner,
		deps.PasswordHasher,
		deps.Now,
	)
	s.ChangePassword = auth.WithAuthentication(
		deps.SessionRepository,
		changepassword.New(
			deps.Logger,
			deps.CredentialRepository,
			deps.SessionRepository,
			deps.PasswordHasher,
		),
	)

	return s
}
