package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/hris-notify/internal/domain/notification"
	"github.com/cmlabs-hris/hris-notify/internal/domain/notify"
	"github.com/cmlabs-hris/hris-notify/internal/domain/template"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/fcm"
)

// PushSender is implemented by *fcm.Client.
type PushSender interface {
	Send(ctx context.Context, tokens []string, n fcm.Notification) fcm.Result
}

type pushDispatcher struct {
	inbox   notification.Service
	devices notification.DeviceRepository
	fcm     PushSender
}

// NewPushDispatcher records an in-app inbox entry for every user and, when
// sender is non-nil, pushes to the user's registered devices.
func NewPushDispatcher(inbox notification.Service, devices notification.DeviceRepository, sender PushSender) notify.Dispatcher {
	return &pushDispatcher{inbox: inbox, devices: devices, fcm: sender}
}

func (d *pushDispatcher) Channel() template.Channel { return template.ChannelPush }

func (d *pushDispatcher) Targets(set notify.RecipientSet) []string { return set.UserIDs }

type userOutcome struct {
	inboxErr   error
	sent       int
	messageID  string
	deviceErrs []string
}

func (d *pushDispatcher) Dispatch(ctx context.Context, targets []string, msg notify.Message) []notify.Delivery {
	if len(targets) == 0 {
		return nil
	}

	outcomes := make(map[string]*userOutcome, len(targets))
	for _, userID := range targets {
		outcomes[userID] = &userOutcome{
			inboxErr: d.inbox.QueueNotification(ctx, notification.CreateNotificationRequest{
				RecipientID: userID,
				Type:        msg.Event,
				Title:       msg.Rendered.Subject,
				Message:     msg.Rendered.Body,
				Data:        toAnyMap(msg.Data),
			}),
		}
	}

	if d.fcm != nil {
		d.pushDevices(ctx, targets, msg, outcomes)
	}

	deliveries := make([]notify.Delivery, 0, len(targets))
	for _, userID := range targets {
		o := outcomes[userID]
		dl := notify.Delivery{
			Channel:   template.ChannelPush,
			To:        userID,
			Success:   o.inboxErr == nil || o.sent > 0,
			Queued:    o.inboxErr == nil && o.sent == 0,
			MessageID: o.messageID,
		}
		var problems []string
		if o.inboxErr != nil {
			problems = append(problems, "inbox: "+o.inboxErr.Error())
		}
		problems = append(problems, o.deviceErrs...)
		if len(problems) > 0 {
			dl.Error = strings.Join(problems, "; ")
		}
		if !dl.Success {
			slog.Error("Delivery failed", "channel", template.ChannelPush, "recipient", userID, "error", errors.New(dl.Error))
		}
		deliveries = append(deliveries, dl)
	}
	return deliveries
}

func (d *pushDispatcher) pushDevices(ctx context.Context, userIDs []string, msg notify.Message, outcomes map[string]*userOutcome) {
	devices, err := d.devices.GetTokensByUserIDs(ctx, userIDs)
	if err != nil {
		slog.Error("Device lookup failed", "channel", template.ChannelPush, "users", len(userIDs), "error", err)
		for _, o := range outcomes {
			o.deviceErrs = append(o.deviceErrs, "devices: "+err.Error())
		}
		return
	}
	if len(devices) == 0 {
		return
	}

	owner := make(map[string]string, len(devices))
	tokens := make([]string, 0, len(devices))
	for _, dev := range devices {
		if _, dup := owner[dev.Token]; dup {
			continue
		}
		owner[dev.Token] = dev.UserID
		tokens = append(tokens, dev.Token)
	}

	res := d.fcm.Send(ctx, tokens, fcm.Notification{
		Title: msg.Rendered.Subject,
		Body:  msg.Rendered.Body,
		Data:  msg.Data,
	})

	for token, id := range res.MessageIDs {
		if o, ok := outcomes[owner[token]]; ok {
			o.sent++
			if o.messageID == "" {
				o.messageID = id
			}
		}
	}
	for token, ferr := range res.Failed {
		if o, ok := outcomes[owner[token]]; ok {
			o.deviceErrs = append(o.deviceErrs, "device: "+ferr.Error())
		}
	}

	if len(res.Unregistered) > 0 {
		if err := d.devices.DeleteByTokens(ctx, res.Unregistered); err != nil {
			slog.Warn("Failed to prune unregistered device tokens", "count", len(res.Unregistered), "error", err)
		} else {
			slog.Info("Pruned unregistered device tokens", "count", len(res.Unregistered))
		}
	}
}

func toAnyMap(m map[string]string) map[string]interface{} {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
