package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gopkg.in/mail.v2"
)

const maxRetries = 3

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type dialer interface {
	DialAndSend(m ...*mail.Message) error
}

type smtpSender struct {
	cfg     SMTPConfig
	dialer  dialer
	backoff func(attempt int) time.Duration
}

// NewSMTPSender sends through an SMTP relay, retrying with exponential backoff.
func NewSMTPSender(cfg SMTPConfig) Sender {
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.Timeout = 15 * time.Second
	return &smtpSender{
		cfg:    cfg,
		dialer: d,
		backoff: func(attempt int) time.Duration {
			// 1s, 2s, 4s
			return time.Duration(1<<(attempt-1)) * time.Second
		},
	}
}

func (s *smtpSender) Send(ctx context.Context, msg Message) (string, error) {
	if s.cfg.Host == "" {
		return "", ErrNotConfigured
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), s.cfg.Host)

	m := mail.NewMessage()
	m.SetAddressHeader("From", s.cfg.From, s.cfg.FromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("Message-ID", messageID)
	m.SetBody("text/html", msg.HTML)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := s.dialer.DialAndSend(m)
		if err == nil {
			slog.Info("Email sent successfully", "to", msg.To, "subject", msg.Subject, "attempt", attempt)
			return messageID, nil
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", msg.To,
			"subject", msg.Subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(s.backoff(attempt)):
			}
		}
	}

	return "", fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}
