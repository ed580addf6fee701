package tools

import (
	"context"

	"frontdesk-workers/internal/common/errors"
	"frontdesk-workers/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// Email is one outgoing message produced by the send_email tool.
type Email struct {
	ID      string `json:"id"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	SentAt  string `json:"sentAt"`
}

type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// LogMailer only writes the "email sent" record to the log.
type LogMailer struct {
	logger logger.Logger
}

func NewLogMailer(log logger.Logger) *LogMailer {
	return &LogMailer{logger: log}
}

func (m *LogMailer) Send(ctx context.Context, email Email) error {
	m.logger.Info("email sent", map[string]interface{}{
		"emailId":   email.ID,
		"to":        email.To,
		"subject":   email.Subject,
		"message":   email.Message,
		"timestamp": email.SentAt,
	})
	return nil
}

type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESMailer delivers through AWS SES and logs the same record as LogMailer.
type SESMailer struct {
	client    SESService
	fromEmail string
	logger    logger.Logger
}

func NewSESMailer(client SESService, fromEmail string, log logger.Logger) *SESMailer {
	return &SESMailer{client: client, fromEmail: fromEmail, logger: log}
}

func (m *SESMailer) Send(ctx context.Context, email Email) error {
	out, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{email.To},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(email.Subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(email.Message)},
			},
		},
		Source: aws.String(m.fromEmail),
	})
	if err != nil {
		return errors.NewNotificationSendFailedError("ses", err)
	}

	m.logger.Info("email sent", map[string]interface{}{
		"emailId":   email.ID,
		"messageId": aws.ToString(out.MessageId),
		"to":        email.To,
		"subject":   email.Subject,
		"message":   email.Message,
		"timestamp": email.SentAt,
	})
	return nil
}
