package mail

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Mailer sends account lifecycle notifications. Implementations are invoked
// fire-and-forget; a failure must never fail the triggering request.
type Mailer interface {
	SendWelcome(email, name string) error
	SendCancellation(email, name string) error
}

// Config carries SMTP connection settings. An empty Host disables sending.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer delivers mail over SMTP. When unconfigured it logs and skips, so
// local setups work without a mail server.
type SMTPMailer struct {
	cfg    Config
	logger *logrus.Logger
}

func NewSMTPMailer(cfg Config, logger *logrus.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, logger: logger}
}

func (m *SMTPMailer) SendWelcome(email, name string) error {
	subject := "Thanks for joining in!"
	body := fmt.Sprintf("Welcome to the app, %s. Let me know how you get along with the app.", name)
	return m.send(email, subject, body)
}

func (m *SMTPMailer) SendCancellation(email, name string) error {
	subject := "Sorry to see you go!"
	body := fmt.Sprintf("Good bye, %s. I hope to see you back sometime soon.", name)
	return m.send(email, subject, body)
}

func (m *SMTPMailer) send(to, subject, body string) error {
	if m.cfg.Host == "" || m.cfg.From == "" {
		m.logger.Warn("mail config missing, skip notification")
		return nil
	}
	if strings.TrimSpace(to) == "" {
		m.logger.Warn("mail recipient empty, skip notification")
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	m.logger.Infof("mail sent to %s: %s", to, subject)
	return nil
}

var _ Mailer = (*SMTPMailer)(nil)
