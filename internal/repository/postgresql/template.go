package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-notify/internal/domain/template"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type templateRepository struct {
	db *database.DB
}

func NewTemplateRepository(db *database.DB) template.TemplateRepository {
	return &templateRepository{db: db}
}

func scanTemplate(row pgx.Row) (template.Template, error) {
	var t template.Template
	var channel string
	err := row.Scan(&t.ID, &channel, &t.Slug, &t.Name, &t.Subject, &t.Body, &t.UpdatedAt)
	t.Channel = template.Channel(channel)
	return t, err
}

func (r *templateRepository) GetBySlug(ctx context.Context, channel template.Channel, slug string) (template.Template, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, channel, slug, name, subject, body, updated_at
		FROM notification_templates
		WHERE channel = $1 AND slug = $2
	`
	t, err := scanTemplate(q.QueryRow(ctx, query, string(channel), slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return template.Template{}, template.ErrTemplateNotFound
		}
		return template.Template{}, fmt.Errorf("failed to get template: %w", err)
	}
	return t, nil
}

func (r *templateRepository) ListByChannel(ctx context.Context, channel template.Channel) ([]template.Template, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, channel, slug, name, subject, body, updated_at
		FROM notification_templates
		WHERE channel = $1
		ORDER BY slug
	`
	rows, err := q.Query(ctx, query, string(channel))
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer rows.Close()

	var out []template.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *templateRepository) Upsert(ctx context.Context, t template.Template) error {
	q := GetQuerier(ctx, r.db)

	if t.ID == "" {
		t.ID = uuid.New().String()
	}

	query := `
		INSERT INTO notification_templates (id, channel, slug, name, subject, body, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (channel, slug) DO UPDATE SET
			name = EXCLUDED.name,
			subject = EXCLUDED.subject,
			body = EXCLUDED.body,
			updated_at = NOW()
	`
	if _, err := q.Exec(ctx, query, t.ID, string(t.Channel), t.Slug, t.Name, t.Subject, t.Body); err != nil {
		return fmt.Errorf("failed to upsert template: %w", err)
	}
	return nil
}
