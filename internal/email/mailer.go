// Package email sends transactional mail over SMTP.
package email

import (
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"

	"github.com/locpham246/task-manager/internal"
)

type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends invitation emails. Build it with NewMailer; a nil *Mailer is a
// valid no-op sender so environments without SMTP still boot.
type Mailer struct {
	dialer  Dialer
	from    string
	appURL  string
	appName string
	logger  *slog.Logger
}

// NewMailer returns nil when no SMTP host is configured.
func NewMailer(cfg internal.MailConfig, appURL string, logger *slog.Logger) *Mailer {
	if cfg.SMTPHost == "" {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Mailer{
		dialer:  gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password),
		from:    cfg.From,
		appURL:  appURL,
		appName: "Task Manager",
		logger:  logger,
	}
}

// SendInvitation emails a sign-up invitation to a prospective member.
func (m *Mailer) SendInvitation(toEmail, inviterName string) error {
	if m == nil {
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", fmt.Sprintf("%s invited you to %s", inviterName, m.appName))
	msg.SetBody("text/html", m.invitationBody(inviterName))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send invitation to %s: %w", toEmail, err)
	}
	m.logger.Info("invitation email sent", "to", toEmail)
	return nil
}

func (m *Mailer) invitationBody(inviterName string) string {
	return fmt.Sprintf(`<p>Hi,</p>
<p>%s has invited you to join %s.</p>
<p>Sign in with your Google account to get started: <a href="%s">%s</a></p>
<p>If you were not expecting this invitation you can ignore this email.</p>`,
		inviterName, m.appName, m.appURL, m.appURL)
}
