package email

import (
	"context"
	"net/url"
	e "resetme/internal/core/domain/errors"
	"resetme/internal/core/domain/logging"
	"resetme/internal/core/domain/user"
)

// LocalSender surfaces the reset link in the logs instead of emailing it.
// It backs the non-production diagnostic path and must never be wired where
// real users are served.
type LocalSender struct {
	log              logging.Logger
	resetLinkBaseURL url.URL
}

func NewLocalSender(log logging.Logger, resetLinkBaseURL url.URL) *LocalSender {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	return &LocalSender{log: log, resetLinkBaseURL: resetLinkBaseURL}
}

func (s *LocalSender) SendResetToken(ctx context.Context, u user.User, token user.ResetToken) error {
	s.log.Info(
		ctx,
		"Password reset link (local sender).",
		logging.Entry("userID", u.ID),
		logging.Entry("link", ResetLink(s.resetLinkBaseURL, token)),
	)
	return nil
}
