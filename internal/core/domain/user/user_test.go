package user

import (
	c "resetme/internal/core/domain/common"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var now = time.Date(2023, 1, 15, 12, 0, 0, 0, time.UTC)

func TestValidate(t *testing.T) {
	cases := []struct {
		id      string
		user    User
		isValid bool
	}{
		{
			id: "1",
			user: User{
				ID:           1,
				Email:        c.NewEmail("user@example.com"),
				PasswordHash: "hash",
			},
			isValid: true,
		},
		{
			id: "2",
			user: User{
				ID:                  2,
				Email:               c.NewEmail("user@example.com"),
				PasswordHash:        "hash",
				ResetToken:          c.NewOptional(ResetToken("token"), true),
				ResetTokenExpiresAt: c.NewOptional(now, true),
			},
			isValid: true,
		},
		{
			id: "3",
			user: User{
				ID:    3,
				Email: c.NewEmail("user@example.com"),
			},
			isValid: false,
		},
		{
			id: "4",
			user: User{
				ID:           4,
				Email:        c.NewEmail("user@example.com"),
				PasswordHash: "hash",
				ResetToken:   c.NewOptional(ResetToken("token"), true),
			},
			isValid: false,
		},
		{
			id: "5",
			user: User{
				ID:                  5,
				Email:               c.NewEmail("user@example.com"),
				PasswordHash:        "hash",
				ResetTokenExpiresAt: c.NewOptional(now, true),
			},
			isValid: false,
		},
	}

	for _, testcase := range cases {
		t.Run(testcase.id, func(t *testing.T) {
			err := testcase.user.Validate()
			if testcase.isValid {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestIsResetExpired(t *testing.T) {
	u := User{
		ID:                  1,
		Email:               c.NewEmail("user@example.com"),
		PasswordHash:        "hash",
		ResetToken:          c.NewOptional(ResetToken("token"), true),
		ResetTokenExpiresAt: c.NewOptional(now.Add(time.Hour), true),
	}

	require.False(t, u.IsResetExpired(now))
	require.False(t, u.IsResetExpired(now.Add(time.Hour)))
	require.True(t, u.IsResetExpired(now.Add(time.Hour+time.Second)))

	noReset := User{ID: 2, PasswordHash: "hash"}
	require.True(t, noReset.IsResetExpired(now))
}
