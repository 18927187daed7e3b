package user

import (
	"context"
	"time"
)

// ResetTokenGenerator produces opaque URL-safe tokens with at least 128 bits
// of entropy. Generation fails only when the process entropy source does.
type ResetTokenGenerator interface {
	GenerateResetToken() (ResetToken, error)
}

// ResetProofSigner issues and checks the short-lived artifact handed to the
// caller after a successful token verification. The proof wraps the raw
// reset token, so resolving a proof yields the pending reset it is bound to.
type ResetProofSigner interface {
	Issue(u User, token ResetToken, now time.Time) (ResetProof, error)
	Resolve(proof ResetProof, now time.Time) (ResetToken, error)
}

// ResetTokenSender delivers the reset link to the account owner. Delivery
// happens strictly after the repository mutation committed.
type ResetTokenSender interface {
	SendResetToken(ctx context.Context, u User, token ResetToken) error
}

type PasswordHasher interface {
	HashPassword(password RawPassword) (PasswordHash, error)
	ValidatePassword(password RawPassword, hash PasswordHash) bool
}

type SessionTokenGenerator interface {
	GenerateSessionToken() SessionToken
}
