package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-notify/internal/domain/notification"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/database"
	"github.com/google/uuid"
)

type deviceRepository struct {
	db *database.DB
}

func NewDeviceRepository(db *database.DB) notification.DeviceRepository {
	return &deviceRepository{db: db}
}

// Register stores d. A token already known moves to d.UserID.
func (r *deviceRepository) Register(ctx context.Context, d notification.Device) error {
	q := GetQuerier(ctx, r.db)

	if d.ID == "" {
		d.ID = uuid.New().String()
	}

	query := `
		INSERT INTO devices (id, user_id, token, platform, created_at, last_seen_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (token) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			platform = EXCLUDED.platform,
			last_seen_at = NOW()
	`
	if _, err := q.Exec(ctx, query, d.ID, d.UserID, d.Token, d.Platform); err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

func (r *deviceRepository) GetTokensByUserIDs(ctx context.Context, userIDs []string) ([]notification.Device, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, user_id, token, platform, created_at, last_seen_at
		FROM devices
		WHERE user_id = ANY($1::text[])
		ORDER BY user_id, last_seen_at DESC
	`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer rows.Close()

	var out []notification.Device
	for rows.Next() {
		var d notification.Device
		if err := rows.Scan(&d.ID, &d.UserID, &d.Token, &d.Platform, &d.CreatedAt, &d.LastSeenAt); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *deviceRepository) DeleteByTokens(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM devices WHERE token = ANY($1::text[])`, tokens); err != nil {
		return fmt.Errorf("failed to delete devices: %w", err)
	}
	return nil
}
