package template

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-notify/internal/domain/template"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/timefmt"
)

// Branding supplies the default app_name and company_name variables.
type Branding struct {
	AppName     string
	CompanyName string
}

type renderer struct {
	repo     template.TemplateRepository
	branding Branding
	loc      *time.Location
	now      func() time.Time
}

func NewRenderer(repo template.TemplateRepository, branding Branding, loc *time.Location) template.Renderer {
	if loc == nil {
		loc = time.UTC
	}
	return &renderer{
		repo:     repo,
		branding: branding,
		loc:      loc,
		now:      time.Now,
	}
}

func (r *renderer) Render(ctx context.Context, channel template.Channel, slug string, vars map[string]string) (template.Rendered, error) {
	tmpl, err := r.repo.GetBySlug(ctx, channel, slug)
	if err != nil {
		return template.Rendered{}, err
	}

	replacer := newReplacer(r.withDefaults(vars))
	return template.Rendered{
		Subject: replacer.Replace(tmpl.Subject),
		Body:    replacer.Replace(tmpl.Body),
	}, nil
}

func (r *renderer) withDefaults(vars map[string]string) map[string]string {
	now := r.now().In(r.loc)
	merged := map[string]string{
		"year":         strconv.Itoa(now.Year()),
		"date":         now.Format(timefmt.HumanDateLayout),
		"app_name":     r.branding.AppName,
		"company_name": r.branding.CompanyName,
	}
	for k, v := range vars {
		merged[k] = v
	}
	return merged
}

// newReplacer builds a single-pass replacer for every {{key}}. Substituted
// values are never re-scanned, so a value containing "{{x}}" stays literal.
func newReplacer(vars map[string]string) *strings.Replacer {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, "{{"+k+"}}", vars[k])
	}
	return strings.NewReplacer(pairs...)
}
