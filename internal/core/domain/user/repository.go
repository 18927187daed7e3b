package user

import (
	"context"
	c "resetme/internal/core/domain/common"
	"time"
)

type CreateUserInput struct {
	Email        c.Email
	PasswordHash PasswordHash
	CreatedAt    time.Time
}

type SetResetTokenInput struct {
	UserID    ID
	Token     ResetToken
	ExpiresAt time.Time
	// ExpectedVersion guards the read-modify-write: the update applies only
	// if the record version has not moved since the caller read it.
	ExpectedVersion uint64
}

type UpdatePasswordInput struct {
	UserID       ID
	PasswordHash PasswordHash
	// ConsumeResetToken makes the update conditional on this exact token
	// still being pending on the record; the update clears both reset
	// fields. A consumed or rotated token never matches twice.
	ConsumeResetToken c.Optional[ResetToken]
}

type CredentialRepository interface {
	Create(ctx context.Context, input CreateUserInput) (User, error)
	GetByID(ctx context.Context, id ID) (User, error)
	GetByEmail(ctx context.Context, email c.Email) (User, error)
	GetByResetToken(ctx context.Context, token ResetToken) (User, error)
	SetResetToken(ctx context.Context, input SetResetTokenInput) (User, error)
	UpdatePassword(ctx context.Context, input UpdatePasswordInput) (User, error)
}

type CreateSessionInput struct {
	UserID    ID
	Token     SessionToken
	CreatedAt time.Time
}

type SessionRepository interface {
	Create(ctx context.Context, input CreateSessionInput) error
	GetUserByToken(ctx context.Context, token SessionToken) (User, error)
	Delete(ctx context.Context, token SessionToken) (userID ID, err error)
	// DeleteAllForUser revokes every session of the account, optionally
	// keeping one caller-identified session alive.
	DeleteAllForUser(ctx context.Context, userID ID, except c.Optional[SessionToken]) (deleted int, err error)
}
