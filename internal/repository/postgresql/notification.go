package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-notify/internal/domain/notification"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type notificationRepository struct {
	db *database.DB
}

func NewNotificationRepository(db *database.DB) notification.Repository {
	return &notificationRepository{db: db}
}

// Insert writes all entries in one statement. Missing IDs and timestamps are filled in.
func (r *notificationRepository) Insert(ctx context.Context, entries ...*notification.Notification) error {
	if len(entries) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO notifications (id, recipient_id, type, title, message, data, is_read, created_at) VALUES ")
	args := make([]interface{}, 0, len(entries)*8)

	for i, n := range entries {
		if n.ID == "" {
			n.ID = uuid.New().String()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = time.Now()
		}
		payload, err := json.Marshal(n.Data)
		if err != nil {
			return fmt.Errorf("failed to encode data of notification %s: %w", n.ID, err)
		}

		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for c := 1; c <= 8; c++ {
			if c > 1 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", len(args)+c)
		}
		sb.WriteByte(')')

		args = append(args, n.ID, n.RecipientID, string(n.Type), n.Title, n.Message, payload, n.IsRead, n.CreatedAt)
	}

	if _, err := GetQuerier(ctx, r.db).Exec(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("failed to insert %d notifications: %w", len(entries), err)
	}
	return nil
}

// ListForRecipient returns one page, newest first, and the number of entries
// matching the filter across all pages.
func (r *notificationRepository) ListForRecipient(ctx context.Context, recipientID string, q notification.ListQuery) ([]*notification.Notification, int, error) {
	q = q.Normalize()
	db := GetQuerier(ctx, r.db)

	filter := "recipient_id = $1"
	if q.UnreadOnly {
		filter += " AND NOT is_read"
	}

	var total int
	if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM notifications WHERE "+filter, recipientID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count inbox of %s: %w", recipientID, err)
	}
	if total == 0 {
		return nil, 0, nil
	}

	rows, err := db.Query(ctx, `
		SELECT id, recipient_id, type, title, message, data, is_read, read_at, created_at
		FROM notifications
		WHERE `+filter+`
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`, recipientID, q.PageSize, (q.Page-1)*q.PageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list inbox of %s: %w", recipientID, err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*notification.Notification, error) {
		var (
			n       notification.Notification
			kind    string
			payload []byte
		)
		if err := row.Scan(&n.ID, &n.RecipientID, &kind, &n.Title, &n.Message, &payload, &n.IsRead, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Type = notification.NotificationType(kind)
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &n.Data); err != nil {
				return nil, fmt.Errorf("notification %s has malformed data: %w", n.ID, err)
			}
		}
		return &n, nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan inbox of %s: %w", recipientID, err)
	}
	return items, total, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID string) (int, error) {
	var n int
	err := GetQuerier(ctx, r.db).QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND NOT is_read`, recipientID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return n, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, recipientID string, ids []string) error {
	query := `UPDATE notifications SET is_read = true, read_at = NOW() WHERE recipient_id = $1 AND NOT is_read`
	args := []interface{}{recipientID}
	if len(ids) > 0 {
		query += ` AND id = ANY($2::text[])`
		args = append(args, ids)
	}

	if _, err := GetQuerier(ctx, r.db).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

func (r *notificationRepository) Delete(ctx context.Context, recipientID, id string) error {
	tag, err := GetQuerier(ctx, r.db).Exec(ctx,
		`DELETE FROM notifications WHERE recipient_id = $1 AND id = $2`, recipientID, id)
	if err != nil {
		return fmt.Errorf("failed to delete notification %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrNotificationNotFound
	}
	return nil
}

func (r *notificationRepository) PurgeReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := GetQuerier(ctx, r.db).Exec(ctx,
		`DELETE FROM notifications WHERE is_read AND created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge read notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}
