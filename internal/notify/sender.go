package notify

import (
	"context"

	"github.com/mocworks/curricula-backend/internal/logger"
	"github.com/mocworks/curricula-backend/internal/platform/sendgrid"
)

// Sender delivers one assembled reminder email.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

type sendgridSender struct {
	log *logger.Logger
	sg  sendgrid.Client
}

func NewSendgridSender(log *logger.Logger, sg sendgrid.Client) Sender {
	return &sendgridSender{
		log: log.With("service", "ReminderSender"),
		sg:  sg,
	}
}

func (s *sendgridSender) Send(ctx context.Context, email *Email) error {
	html, err := Render(email.MailTemplate, email.Params)
	if err != nil {
		return err
	}
	req := sendgrid.SendEmailRequest{
		To:         []sendgrid.EmailAddress{{Email: email.To, Name: email.Params.Name}},
		Subject:    email.Subject,
		HTML:       html,
		Categories: []string{"moc-reminder"},
	}
	if email.From != "" {
		req.From = sendgrid.EmailAddress{Email: email.From}
	}
	return s.sg.Send(ctx, req)
}
