package notifier

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Detached runs follow-up work after a request has been answered. Jobs keep
// the caller's context values but not its cancellation, and are bounded by
// the configured timeout.
type Detached struct {
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDetached(timeout time.Duration) *Detached {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Detached{timeout: timeout}
}

// Go starts fn in the background. Errors and panics are logged.
func (d *Detached) Go(ctx context.Context, name string, fn func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Background job panicked", "job", name, "error", r)
			}
		}()

		jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()

		if err := fn(jobCtx); err != nil {
			slog.Error("Background job failed", "job", name, "error", err)
		}
	}()
}

// Wait blocks until every started job has returned.
func (d *Detached) Wait() {
	d.wg.Wait()
}
