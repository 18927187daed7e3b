package email

import (
	"context"
	"encoding/json"
	"net/url"

	"resetme/internal/core/domain/user"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

type ResetEmailSender struct {
	ses *ses.Client
	// This address must be verified with Amazon SES.
	sender           string
	resetTemplate    string
	resetLinkBaseURL url.URL
}

func NewResetEmailSender(
	awsConfig aws.Config,
	sender string,
	resetTemplate string,
	resetLinkBaseURL url.URL,
) *ResetEmailSender {
	return &ResetEmailSender{
		ses:              ses.NewFromConfig(awsConfig),
		sender:           sender,
		resetTemplate:    resetTemplate,
		resetLinkBaseURL: resetLinkBaseURL,
	}
}

func (s *ResetEmailSender) SendResetToken(ctx context.Context, u user.User, token user.ResetToken) error {
	templateParamsBytes, err := json.Marshal(
		resetTemplateParams{
			ResetLink: ResetLink(s.resetLinkBaseURL, token),
		},
	)
	if err != nil {
		return err
	}
	templateParams := string(templateParamsBytes)

	email := string(u.Email)
	_, err = s.ses.SendTemplatedEmail(
		ctx,
		&ses.SendTemplatedEmailInput{
			Source: &s.sender,
			Destination: &types.Destination{
				CcAddresses: []string{},
				ToAddresses: []string{email},
			},
			Template:     &s.resetTemplate,
			TemplateData: &templateParams,
		},
	)
	return err
}

type resetTemplateParams struct {
	ResetLink string `json:"resetLink"`
}

// ResetLink embeds the token in the verification URL the user follows from
// the email.
func ResetLink(baseURL url.URL, token user.ResetToken) string {
	q := baseURL.Query()
	q.Set("token", string(token))
	baseURL.RawQuery = q.Encode()
	return baseURL.String()
}
