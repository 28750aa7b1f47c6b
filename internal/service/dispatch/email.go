package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-notify/internal/domain/channel"
	"github.com/cmlabs-hris/hris-notify/internal/domain/notify"
	"github.com/cmlabs-hris/hris-notify/internal/domain/template"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/cache"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/email"
)

type emailDispatcher struct {
	active      *cache.Value[email.Sender]
	fallback    email.Sender
	parallelism int
	build       func(p channel.EmailProfile) (email.Sender, error)
}

// NewEmailDispatcher sends through the active stored email profile, or through
// the environment SMTP profile when none is active.
func NewEmailDispatcher(settings channel.SettingsRepository, fallback email.SMTPConfig, ttl time.Duration, parallelism int) notify.Dispatcher {
	d := &emailDispatcher{
		parallelism: parallelism,
		build:       senderForProfile,
	}
	if fallback.Host != "" {
		d.fallback = email.NewSMTPSender(fallback)
	}
	d.active = cache.NewValue("email_profile", ttl, func(ctx context.Context) (email.Sender, bool, error) {
		p, err := settings.GetActiveEmailProfile(ctx)
		if errors.Is(err, channel.ErrNoActiveProfile) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		s, err := d.build(p)
		if err != nil {
			return nil, false, err
		}
		return s, true, nil
	})
	return d
}

func senderForProfile(p channel.EmailProfile) (email.Sender, error) {
	switch p.Provider {
	case channel.EmailProviderSMTP:
		return email.NewSMTPSender(email.SMTPConfig{
			Host:     p.Host,
			Port:     p.Port,
			Username: p.Username,
			Password: p.Password,
			From:     p.FromAddress,
			FromName: p.FromName,
		}), nil
	case channel.EmailProviderGraph:
		// The token source outlives any single request.
		return email.NewGraphSender(context.Background(), email.GraphConfig{
			TenantID:     p.TenantID,
			ClientID:     p.ClientID,
			ClientSecret: p.ClientSecret,
			SenderUser:   p.FromAddress,
		}), nil
	default:
		return nil, fmt.Errorf("profile %q: %w", p.Name, channel.ErrInvalidEmailProvider)
	}
}

func (d *emailDispatcher) Channel() template.Channel { return template.ChannelEmail }

func (d *emailDispatcher) Targets(set notify.RecipientSet) []string { return set.Emails }

func (d *emailDispatcher) sender(ctx context.Context) email.Sender {
	if s, ok := d.active.Get(ctx); ok && s != nil {
		return s
	}
	return d.fallback
}

func (d *emailDispatcher) Dispatch(ctx context.Context, targets []string, msg notify.Message) []notify.Delivery {
	if len(targets) == 0 {
		return nil
	}
	sender := d.sender(ctx)
	if sender == nil {
		slog.Warn("Email channel not configured, skipping", "event", msg.Event, "recipients", len(targets))
		return nil
	}

	return fanOut(ctx, template.ChannelEmail, d.parallelism, targets, func(ctx context.Context, to string) (string, error) {
		return sender.Send(ctx, email.Message{
			To:      to,
			Subject: msg.Rendered.Subject,
			HTML:    msg.Rendered.Body,
		})
	})
}
