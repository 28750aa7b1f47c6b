package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-notify/internal/domain/channel"
	"github.com/cmlabs-hris/hris-notify/internal/domain/notify"
	"github.com/cmlabs-hris/hris-notify/internal/domain/template"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/cache"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/whatsapp"
)

type whatsAppDispatcher struct {
	gateway     *cache.Value[*whatsapp.Client]
	parallelism int
}

// NewWhatsAppDispatcher sends one gateway call per phone number using the
// active gateway configuration.
func NewWhatsAppDispatcher(settings channel.SettingsRepository, ttl time.Duration, parallelism int) notify.Dispatcher {
	return &whatsAppDispatcher{
		parallelism: parallelism,
		gateway: cache.NewValue("whatsapp_gateway", ttl, func(ctx context.Context) (*whatsapp.Client, bool, error) {
			g, err := settings.GetActiveWhatsAppGateway(ctx)
			if errors.Is(err, channel.ErrNoActiveProfile) {
				return nil, false, nil
			}
			if err != nil {
				return nil, false, err
			}
			return whatsapp.NewClient(whatsapp.Config{
				BaseURL: g.BaseURL,
				APIKey:  g.APIKey,
				Sender:  g.Sender,
			}), true, nil
		}),
	}
}

func (d *whatsAppDispatcher) Channel() template.Channel { return template.ChannelWhatsApp }

func (d *whatsAppDispatcher) Targets(set notify.RecipientSet) []string { return set.Phones }

func (d *whatsAppDispatcher) Dispatch(ctx context.Context, targets []string, msg notify.Message) []notify.Delivery {
	if len(targets) == 0 {
		return nil
	}
	client, ok := d.gateway.Get(ctx)
	if !ok {
		slog.Warn("WhatsApp gateway not configured, skipping", "event", msg.Event, "recipients", len(targets))
		return nil
	}

	text := msg.Rendered.ChatText()
	return fanOut(ctx, template.ChannelWhatsApp, d.parallelism, targets, func(ctx context.Context, to string) (string, error) {
		return client.Send(ctx, to, text)
	})
}
