package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-notify/internal/domain/notification"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/sse"
	"github.com/google/uuid"
)

// Config holds notification service configuration
type Config struct {
	BatchSize     int           // default: 100
	FlushInterval time.Duration // default: 2 seconds
	WorkerCount   int           // default: 2
	QueueSize     int           // default: 1000
}

type service struct {
	repo    notification.Repository
	devices notification.DeviceRepository
	hub     *sse.Hub
	config  Config
	now     func() time.Time

	queue    chan notification.CreateNotificationRequest
	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewNotificationService creates the inbox service and starts its batch writers.
func NewNotificationService(repo notification.Repository, devices notification.DeviceRepository, hub *sse.Hub, cfg Config) notification.Service {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = 2 * time.Second
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1000
	}

	s := &service{
		repo:    repo,
		devices: devices,
		hub:     hub,
		config:  cfg,
		now:     time.Now,
		queue:   make(chan notification.CreateNotificationRequest, cfg.QueueSize),
		stopCh:  make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("Notification service started",
		"workers", cfg.WorkerCount,
		"batch_size", cfg.BatchSize,
		"flush_interval", cfg.FlushInterval,
	)

	return s
}

func (s *service) worker(id int) {
	defer s.wg.Done()

	batch := make([]notification.CreateNotificationRequest, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		notifications := make([]*notification.Notification, len(batch))
		for i, req := range batch {
			notifications[i] = s.newEntity(req)
		}

		if err := s.repo.Insert(ctx, notifications...); err != nil {
			slog.Error("Inbox batch insert failed", "worker", id, "count", len(notifications), "error", err)
		} else {
			slog.Debug("Inbox batch inserted", "worker", id, "count", len(notifications))
			for _, n := range notifications {
				s.publish(n)
			}
		}

		batch = batch[:0]
	}

	for {
		select {
		case req := <-s.queue:
			batch = append(batch, req)
			if len(batch) >= s.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			// Drain what is already queued before exiting.
			for {
				select {
				case req := <-s.queue:
					batch = append(batch, req)
					if len(batch) >= s.config.BatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

func (s *service) newEntity(req notification.CreateNotificationRequest) *notification.Notification {
	return &notification.Notification{
		ID:          uuid.New().String(),
		RecipientID: req.RecipientID,
		Type:        req.Type,
		Title:       req.Title,
		Message:     req.Message,
		Data:        req.Data,
		IsRead:      false,
		CreatedAt:   s.now(),
	}
}

func (s *service) publish(n *notification.Notification) {
	s.hub.Publish(sse.Event{
		UserID: n.RecipientID,
		Name:   "notification",
		Data:   notification.ToResponse(n),
	})
}

// QueueNotification queues an inbox entry for the batch writers. When the
// queue is full the entry is written directly.
func (s *service) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	if strings.TrimSpace(req.RecipientID) == "" {
		return fmt.Errorf("queue notification: recipient is required")
	}

	select {
	case s.queue <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return s.directInsert(ctx, req)
	}
}

// QueueBulkNotification queues several entries, logging individual failures.
func (s *service) QueueBulkNotification(ctx context.Context, reqs []notification.CreateNotificationRequest) error {
	for _, req := range reqs {
		if err := s.QueueNotification(ctx, req); err != nil {
			slog.Warn("Failed to queue notification", "recipient", req.RecipientID, "type", req.Type, "error", err)
		}
	}
	return nil
}

func (s *service) directInsert(ctx context.Context, req notification.CreateNotificationRequest) error {
	n := s.newEntity(req)
	if err := s.repo.Insert(ctx, n); err != nil {
		return err
	}
	s.publish(n)
	return nil
}

// GetNotifications returns one page of userID's inbox plus the unread total.
func (s *service) GetNotifications(ctx context.Context, userID string, q notification.ListQuery) (*notification.NotificationListResponse, error) {
	q = q.Normalize()

	notifications, total, err := s.repo.ListForRecipient(ctx, userID, q)
	if err != nil {
		return nil, err
	}

	unreadCount, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]notification.NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = notification.ToResponse(n)
	}

	return &notification.NotificationListResponse{
		Notifications: responses,
		Total:         total,
		UnreadCount:   unreadCount,
		Page:          q.Page,
		PageSize:      q.PageSize,
	}, nil
}

func (s *service) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *service) MarkAsRead(ctx context.Context, userID string, req notification.MarkAsReadRequest) error {
	if len(req.NotificationIDs) == 0 {
		return nil
	}
	return s.repo.MarkRead(ctx, userID, req.NotificationIDs)
}

func (s *service) MarkAllAsRead(ctx context.Context, userID string) error {
	return s.repo.MarkRead(ctx, userID, nil)
}

func (s *service) Delete(ctx context.Context, userID string, notificationID string) error {
	return s.repo.Delete(ctx, userID, notificationID)
}

// PurgeRead deletes read entries older than olderThan.
func (s *service) PurgeRead(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.repo.PurgeReadBefore(ctx, s.now().Add(-olderThan))
}

// RegisterDevice stores or refreshes a push token for userID.
func (s *service) RegisterDevice(ctx context.Context, userID string, req notification.RegisterDeviceRequest) error {
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return notification.ErrDeviceTokenRequired
	}
	platform := strings.ToLower(strings.TrimSpace(req.Platform))
	if platform == "" {
		platform = "unknown"
	}

	now := s.now()
	return s.devices.Register(ctx, notification.Device{
		ID:         uuid.New().String(),
		UserID:     userID,
		Token:      token,
		Platform:   platform,
		CreatedAt:  now,
		LastSeenAt: now,
	})
}

// Subscribe opens an SSE stream for userID. The stream ends when ctx is done.
func (s *service) Subscribe(ctx context.Context, userID string) (<-chan notification.SSEEvent, func()) {
	ch, cleanup := s.hub.Subscribe(userID)

	out := make(chan notification.SSEEvent, 10)

	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				resp, ok := event.Data.(notification.NotificationResponse)
				if !ok {
					continue
				}
				select {
				case out <- notification.SSEEvent{Event: event.Name, Data: resp}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}

// Stop flushes queued entries and waits for the workers to exit.
func (s *service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
		slog.Info("Notification service stopped", "open_streams", s.hub.Connections())
	})
}
