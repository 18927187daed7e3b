package user

import (
	"fmt"
	c "resetme/internal/core/domain/common"
	e "resetme/internal/core/domain/errors"
	"time"
)

type ID int64

type PasswordHash string

func (p PasswordHash) String() string {
	return "***"
}

type RawPassword string

func (p RawPassword) String() string {
	return "***"
}

// ResetToken is an opaque single-use credential proving the holder received
// the password reset notification. It is masked in logs.
type ResetToken string

func (t ResetToken) String() string {
	return "***"
}

// ResetProof is a short-lived signed artifact issued after a successful
// token verification; it binds the caller to one pending reset.
type ResetProof string

type SessionToken string

type User struct {
	ID                  ID
	Email               c.Email
	PasswordHash        PasswordHash
	ResetToken          c.Optional[ResetToken]
	ResetTokenExpiresAt c.Optional[time.Time]
	// Version counts committed mutations of the record and backs the
	// compare-and-set on reset token updates.
	Version   uint64
	CreatedAt time.Time
}

func (u *User) Validate() error {
	if u.PasswordHash == "" {
		return e.NewInvalidStateError(fmt.Sprintf("password hash is not set for user %d", u.ID))
	}
	if u.ResetToken.IsPresent != u.ResetTokenExpiresAt.IsPresent {
		return e.NewInvalidStateError(
			fmt.Sprintf("reset token and its expiry must be set together for user %d", u.ID),
		)
	}
	return nil
}

func (u *User) HasPendingReset() bool {
	return u.ResetToken.IsPresent
}

func (u *User) IsResetExpired(now time.Time) bool {
	if !u.ResetTokenExpiresAt.IsPresent {
		return true
	}
	return now.After(u.ResetTokenExpiresAt.Value)
}

type Session struct {
	Token     SessionToken
	UserID    ID
	CreatedAt time.Time
}
