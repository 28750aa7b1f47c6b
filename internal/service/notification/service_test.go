package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-notify/internal/domain/notification"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	mu      sync.Mutex
	created []*notification.Notification
	cutoff  time.Time
}

func (f *fakeRepo) Insert(_ context.Context, ns ...*notification.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, ns...)
	return nil
}

func (f *fakeRepo) ListForRecipient(_ context.Context, recipientID string, q notification.ListQuery) ([]*notification.Notification, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*notification.Notification
	for _, n := range f.created {
		if n.RecipientID == recipientID && (!q.UnreadOnly || !n.IsRead) {
			out = append(out, n)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepo) CountUnread(_ context.Context, recipientID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := 0
	for _, n := range f.created {
		if n.RecipientID == recipientID && !n.IsRead {
			c++
		}
	}
	return c, nil
}

func (f *fakeRepo) MarkRead(_ context.Context, recipientID string, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.created {
		if n.RecipientID != recipientID {
			continue
		}
		if len(ids) == 0 {
			n.IsRead = true
			continue
		}
		for _, id := range ids {
			if n.ID == id {
				n.IsRead = true
			}
		}
	}
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, _, _ string) error { return nil }

func (f *fakeRepo) PurgeReadBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return 3, nil
}

func (f *fakeRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

type fakeDevices struct {
	registered []notification.Device
}

func (f *fakeDevices) Register(_ context.Context, d notification.Device) error {
	f.registered = append(f.registered, d)
	return nil
}

func (f *fakeDevices) GetTokensByUserIDs(_ context.Context, _ []string) ([]notification.Device, error) {
	return nil, nil
}

func (f *fakeDevices) DeleteByTokens(_ context.Context, _ []string) error { return nil }

func TestQueueNotification_FlushedOnStopAndPublished(t *testing.T) {
	repo := &fakeRepo{}
	hub := sse.NewHub()
	svc := NewNotificationService(repo, &fakeDevices{}, hub, Config{FlushInterval: time.Hour, WorkerCount: 1})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, cleanup := svc.Subscribe(ctx, "u1")
	defer cleanup()

	require.NoError(t, svc.QueueNotification(context.Background(), notification.CreateNotificationRequest{
		RecipientID: "u1",
		Type:        notification.TypeReconciliationApproved,
		Title:       "Approved",
		Message:     "Your request was approved",
	}))
	svc.Stop()

	assert.Equal(t, 1, repo.count())
	select {
	case e := <-events:
		assert.Equal(t, "notification", e.Event)
		assert.Equal(t, "Approved", e.Data.Title)
	case <-time.After(time.Second):
		t.Fatal("expected SSE event")
	}
}

func TestQueueNotification_RequiresRecipient(t *testing.T) {
	svc := NewNotificationService(&fakeRepo{}, &fakeDevices{}, sse.NewHub(), Config{})
	defer svc.Stop()

	err := svc.QueueNotification(context.Background(), notification.CreateNotificationRequest{})
	assert.Error(t, err)
}

func TestQueueNotification_FullQueueWritesDirectly(t *testing.T) {
	repo := &fakeRepo{}
	s := &service{
		repo:  repo,
		hub:   sse.NewHub(),
		now:   time.Now,
		queue: make(chan notification.CreateNotificationRequest),
	}

	require.NoError(t, s.QueueNotification(context.Background(), notification.CreateNotificationRequest{RecipientID: "u1"}))
	assert.Equal(t, 1, repo.count())
}

func TestGetNotifications_ClampsPaging(t *testing.T) {
	repo := &fakeRepo{created: []*notification.Notification{{ID: "n1", RecipientID: "u1"}}}
	svc := NewNotificationService(repo, &fakeDevices{}, sse.NewHub(), Config{})
	defer svc.Stop()

	got, err := svc.GetNotifications(context.Background(), "u1", notification.ListQuery{Page: 0, PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Page)
	assert.Equal(t, notification.MaxPageSize, got.PageSize)
	assert.Equal(t, 1, got.UnreadCount)
	require.Len(t, got.Notifications, 1)
}

func TestPurgeRead_UsesCutoff(t *testing.T) {
	repo := &fakeRepo{}
	now := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	s := &service{repo: repo, now: func() time.Time { return now }}

	n, err := s.PurgeRead(context.Background(), 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), repo.cutoff)
}

func TestRegisterDevice(t *testing.T) {
	devices := &fakeDevices{}
	s := &service{devices: devices, now: time.Now}

	assert.ErrorIs(t, s.RegisterDevice(context.Background(), "u1", notification.RegisterDeviceRequest{Token: "  "}), notification.ErrDeviceTokenRequired)

	require.NoError(t, s.RegisterDevice(context.Background(), "u1", notification.RegisterDeviceRequest{Token: "tok", Platform: "Android"}))
	require.Len(t, devices.registered, 1)
	assert.Equal(t, "android", devices.registered[0].Platform)
	assert.Equal(t, "u1", devices.registered[0].UserID)
}

func TestMarkRead_SelectedThenAll(t *testing.T) {
	repo := &fakeRepo{created: []*notification.Notification{
		{ID: "n1", RecipientID: "u1"},
		{ID: "n2", RecipientID: "u1"},
		{ID: "n3", RecipientID: "u2"},
	}}
	s := &service{repo: repo, now: time.Now}
	ctx := context.Background()

	require.NoError(t, s.MarkAsRead(ctx, "u1", notification.MarkAsReadRequest{NotificationIDs: []string{"n1"}}))
	count, err := s.GetUnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, s.MarkAsRead(ctx, "u1", notification.MarkAsReadRequest{}))
	count, _ = s.GetUnreadCount(ctx, "u1")
	assert.Equal(t, 1, count, "an empty request marks nothing")

	require.NoError(t, s.MarkAllAsRead(ctx, "u1"))
	count, _ = s.GetUnreadCount(ctx, "u1")
	assert.Zero(t, count)
	other, _ := s.GetUnreadCount(ctx, "u2")
	assert.Equal(t, 1, other)
}
