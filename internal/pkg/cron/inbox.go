package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-notify/internal/domain/notification"
)

const purgeInterval = 6 * time.Hour

// InboxJobs keeps the in-app inbox bounded.
type InboxJobs struct {
	inbox     notification.Service
	retention time.Duration
}

func NewInboxJobs(inbox notification.Service, retention time.Duration) *InboxJobs {
	return &InboxJobs{inbox: inbox, retention: retention}
}

func (j *InboxJobs) RegisterJobs(scheduler *Scheduler) {
	if j.retention <= 0 {
		slog.Info("Inbox retention disabled, purge job not registered")
		return
	}
	scheduler.AddJob(Job{
		Name:       "purge_read_notifications",
		Interval:   purgeInterval,
		RunOnStart: true,
		Fn:         j.PurgeReadNotifications,
	})
}

// PurgeReadNotifications deletes read notifications older than the retention window.
func (j *InboxJobs) PurgeReadNotifications(ctx context.Context) error {
	n, err := j.inbox.PurgeRead(ctx, j.retention)
	if err != nil {
		return err
	}
	if n > 0 {
		slog.Info("Purged read notifications", "count", n, "retention", j.retention)
	}
	return nil
}
