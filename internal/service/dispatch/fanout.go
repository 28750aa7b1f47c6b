// Package dispatch implements one notify.Dispatcher per delivery channel.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-notify/internal/domain/notify"
	"github.com/cmlabs-hris/hris-notify/internal/domain/template"
	"golang.org/x/sync/errgroup"
)

type sendFunc func(ctx context.Context, to string) (messageID string, err error)

// fanOut calls send for every target with at most limit in flight. A failed
// or panicking send only affects its own delivery.
func fanOut(ctx context.Context, channel template.Channel, limit int, targets []string, send sendFunc) []notify.Delivery {
	deliveries := make([]notify.Delivery, len(targets))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, to := range targets {
		g.Go(func() error {
			deliveries[i] = deliver(ctx, channel, to, send)
			return nil
		})
	}
	_ = g.Wait()

	return deliveries
}

func deliver(ctx context.Context, channel template.Channel, to string, send sendFunc) (d notify.Delivery) {
	d = notify.Delivery{Channel: channel, To: to}
	defer func() {
		if r := recover(); r != nil {
			d.Success = false
			d.Error = fmt.Sprintf("panic: %v", r)
			slog.Error("Delivery panicked", "channel", channel, "recipient", to, "error", r)
		}
	}()

	id, err := send(ctx, to)
	if err != nil {
		d.Error = err.Error()
		slog.Error("Delivery failed", "channel", channel, "recipient", to, "error", err)
		return d
	}
	d.Success = true
	d.MessageID = id
	return d
}
