package template

import "context"

type Renderer interface {
	// Render fetches the channel's template for slug and substitutes vars.
	// Placeholders without a value are left verbatim.
	Render(ctx context.Context, channel Channel, slug string, vars map[string]string) (Rendered, error)
}
