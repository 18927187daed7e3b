package user

import (
	"errors"
)

var (
	ErrEmailAlreadyExists  = errors.New("email already exists")
	ErrUserDoesNotExist    = errors.New("user does not exist")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrSessionDoesNotExist = errors.New("session does not exist")

	// ErrResetTokenInvalid covers unknown, malformed and already consumed
	// tokens; callers must not be able to tell these apart.
	ErrResetTokenInvalid = errors.New("invalid password reset token")
	ErrResetTokenExpired = errors.New("password reset token expired")
	ErrResetProofInvalid = errors.New("invalid password reset proof")

	// ErrStaleRecord is returned by compare-and-set repository updates when
	// the record version moved under the caller.
	ErrStaleRecord = errors.New("credential record is stale")
)
