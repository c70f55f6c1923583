package email

import (
	"context"

	"nurture_backend/platform/config"
)

// Message is a fully rendered email ready for delivery.
type Message struct {
	ToEmail string
	ToName  string
	Subject string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NoopSender is used when email delivery is disabled. Sends succeed
// without contacting any server.
type NoopSender struct{}

func (NoopSender) Send(ctx context.Context, msg Message) error { return nil }

// NewSender returns an SMTP-backed sender when delivery is enabled,
// and a NoopSender otherwise.
func NewSender(cfg config.EmailConfig) Sender {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}

var _ Sender = NoopSender{}
var _ Sender = (*SMTPSender)(nil)
