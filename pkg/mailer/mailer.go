package mailer

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/tair/repair-manager/pkg/logger"
)

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Sender delivers an HTML email.
type Sender interface {
	Send(ctx context.Context, to []string, subject, htmlBody string) error
}

// New returns an SMTP sender, or a sender that only logs when no host is configured.
func New(cfg Config) Sender {
	if cfg.Host == "" {
		return LogSender{}
	}
	port := cfg.Port
	if port == 0 {
		port = 587
	}
	return &SMTPSender{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, port, cfg.User, cfg.Password),
	}
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPSender struct {
	from   string
	dialer dialer
}

func (s *SMTPSender) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	if len(to) == 0 {
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	logger.Info(ctx).Strs("to", to).Str("subject", subject).Msg("email sent")
	return nil
}

// LogSender writes the message to the log instead of sending it.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, to []string, subject, _ string) error {
	logger.Warn(ctx).
		Strs("to", to).
		Str("subject", subject).
		Msg("smtp not configured, email not sent")
	return nil
}
