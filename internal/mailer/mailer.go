// Package mailer sends the exported workbooks to the report recipients.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("mariinsky.internal.mailer")

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

func (c SmtpConfig) addr() string {
	return fmt.Sprintf("%s:%d", c.Server, c.Port)
}

// NewMessage builds the report message with every file attached.
func NewMessage(from string, recipients []string, period string, files []string) (*email.Email, error) {
	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Mariinsky Counter <%s>", from)
	mail.To = recipients
	mail.Subject = fmt.Sprintf("Participation report %s", period)
	mail.Text = []byte(fmt.Sprintf(`Participation reports for %s are attached.

%d file(s).`, period, len(files)))

	for _, path := range files {
		_, err := mail.AttachFile(path)
		if err != nil {
			return nil, fmt.Errorf("attach %s: %w", path, err)
		}
	}
	return mail, nil
}

func Send(ctx context.Context, cfg SmtpConfig, recipients []string, period string, files []string) error {
	_, span := tracer.Start(ctx, "mailer:Send")
	defer span.End()
	span.SetAttributes(
		attribute.String("period", period),
		attribute.Int("attachments", len(files)),
	)

	if len(recipients) == 0 {
		return fmt.Errorf("no recipients configured")
	}

	mail, err := NewMessage(cfg.EmailAddress, recipients, period, files)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to build message")
		return err
	}

	err = mail.Send(
		cfg.addr(),
		smtp.PlainAuth("", cfg.EmailAddress, cfg.Password, cfg.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(cfg.addr(), nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return err
	}
	return nil
}
