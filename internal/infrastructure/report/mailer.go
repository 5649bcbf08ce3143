// Package report delivers tracking reports over SMTP.
package report

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"

	"bookworm/internal/config"
	"bookworm/internal/ports"
)

// Mailer sends plain-text reports to the configured recipients.
type Mailer struct {
	cfg config.SMTPConfig
}

var _ ports.ReportSender = (*Mailer)(nil)

// NewMailer wires SMTP settings.
func NewMailer(cfg config.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// Send mails one report. The context is accepted for interface symmetry;
// the underlying SMTP client has no cancellation hook.
func (m *Mailer) Send(_ context.Context, subject, body string) error {
	if len(m.cfg.Recipients) == 0 {
		return fmt.Errorf("no report recipients configured")
	}

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Bookworm <%s>", m.cfg.Address)
	mail.To = m.cfg.Recipients
	mail.Subject = subject
	mail.Text = []byte(body)

	addr := fmt.Sprintf("%s:%d", m.cfg.Server, m.cfg.Port)
	err := mail.Send(addr, smtp.PlainAuth("", m.cfg.Address, m.cfg.Password, m.cfg.Server))
	if err != nil {
		return fmt.Errorf("send report email: %w", err)
	}
	return nil
}
