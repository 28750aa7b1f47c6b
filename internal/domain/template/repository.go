package template

import "context"

type TemplateRepository interface {
	GetBySlug(ctx context.Context, channel Channel, slug string) (Template, error)
	ListByChannel(ctx context.Context, channel Channel) ([]Template, error)
	Upsert(ctx context.Context, t Template) error
}
