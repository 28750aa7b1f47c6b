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
	"github.com/cmlabs-hris/hris-notify/internal/pkg/telegram"
)

// groupTarget is the placeholder destination used for the single group post.
const groupTarget = "group"

type telegramDispatcher struct {
	settings *cache.Value[channel.TelegramSettings]
	fallback channel.TelegramSettings
	baseURL  string
}

// NewTelegramDispatcher posts one aggregated message per event to the
// configured group chat. Stored settings take precedence over fallback.
func NewTelegramDispatcher(settings channel.SettingsRepository, fallback channel.TelegramSettings, ttl time.Duration) notify.Dispatcher {
	return &telegramDispatcher{
		fallback: fallback,
		settings: cache.NewValue("telegram_settings", ttl, func(ctx context.Context) (channel.TelegramSettings, bool, error) {
			s, err := settings.GetTelegramSettings(ctx)
			if errors.Is(err, channel.ErrNoActiveProfile) {
				return channel.TelegramSettings{}, false, nil
			}
			if err != nil {
				return channel.TelegramSettings{}, false, err
			}
			return s, true, nil
		}),
	}
}

func (d *telegramDispatcher) Channel() template.Channel { return template.ChannelTelegram }

// Targets yields the group whenever the event has any recipient at all.
func (d *telegramDispatcher) Targets(set notify.RecipientSet) []string {
	if set.IsEmpty() {
		return nil
	}
	return []string{groupTarget}
}

func (d *telegramDispatcher) current(ctx context.Context) channel.TelegramSettings {
	if s, ok := d.settings.Get(ctx); ok {
		return s
	}
	return d.fallback
}

func (d *telegramDispatcher) Dispatch(ctx context.Context, targets []string, msg notify.Message) []notify.Delivery {
	if len(targets) == 0 {
		return nil
	}
	s := d.current(ctx)
	if !s.Enabled || s.BotToken == "" || s.GroupChatID == "" {
		slog.Warn("Telegram channel not configured, skipping", "event", msg.Event)
		return nil
	}

	client := telegram.NewClient(s.BotToken)
	if d.baseURL != "" {
		client = client.WithBaseURL(d.baseURL)
	}
	return fanOut(ctx, template.ChannelTelegram, 1, []string{s.GroupChatID}, func(ctx context.Context, chatID string) (string, error) {
		return client.SendMessage(ctx, chatID, msg.Rendered.ChatText())
	})
}
