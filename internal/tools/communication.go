package tools

import (
	"context"
	"time"

	"frontdesk-workers/internal/common/logger"

	"github.com/google/uuid"
)

const (
	EmailSent       = "Email sent successfully!"
	EmailNotSent    = "Sorry, the email could not be sent right now."
	callerCollected = "Caller information collected: "
)

// Communicator implements send_email and collect_caller_info. The auditor and notifier are optional.
type Communicator struct {
	mailer   Mailer
	auditor  EmailAuditor
	notifier CallerNotifier
	logger   logger.Logger
	now      func() time.Time
}

type CommunicatorOption func(*Communicator)

func WithAuditor(a EmailAuditor) CommunicatorOption {
	return func(c *Communicator) { c.auditor = a }
}

func WithNotifier(n CallerNotifier) CommunicatorOption {
	return func(c *Communicator) { c.notifier = n }
}

func WithClock(now func() time.Time) CommunicatorOption {
	return func(c *Communicator) { c.now = now }
}

func NewCommunicator(mailer Mailer, log logger.Logger, opts ...CommunicatorOption) *Communicator {
	c := &Communicator{
		mailer: mailer,
		logger: log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SendEmail delivers the message through the mailer. Audit failures are logged and do not change the
// result.
func (c *Communicator) SendEmail(ctx context.Context, subject, message, to string) string {
	email := Email{
		ID:      uuid.New().String(),
		To:      to,
		Subject: subject,
		Message: message,
		SentAt:  c.now().UTC().Format(time.RFC3339),
	}

	if err := c.mailer.Send(ctx, email); err != nil {
		c.logger.Error("email send failed", map[string]interface{}{
			"emailId": email.ID,
			"to":      to,
			"error":   err,
		})
		return EmailNotSent
	}

	if c.auditor != nil {
		if err := c.auditor.Record(ctx, email); err != nil {
			c.logger.Warn("email audit failed", map[string]interface{}{
				"emailId": email.ID,
				"error":   err,
			})
		}
	}
	return EmailSent
}

// CollectCallerInfo echoes the caller record back to the model and publishes it when a notifier is set.
func (c *Communicator) CollectCallerInfo(ctx context.Context, name, email, phone, purpose string) string {
	info := CallerInfo{
		Name:      name,
		Email:     email,
		Phone:     phone,
		Purpose:   purpose,
		Timestamp: c.now().UTC().Format(time.RFC3339),
	}

	c.logger.Info("caller information collected", map[string]interface{}{
		"name":    name,
		"purpose": purpose,
	})

	if c.notifier != nil {
		if err := c.notifier.Notify(ctx, info); err != nil {
			c.logger.Warn("caller info publish failed", map[string]interface{}{
				"error": err,
			})
		}
	}
	return callerCollected + info.String()
}
