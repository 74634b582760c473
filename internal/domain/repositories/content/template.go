package content

import (
	"context"

	"github.com/jbaikge/boneless/internal/domain/models/content"
)

// TemplateRepository is the gateway's template collection
type TemplateRepository interface {
	Create(ctx context.Context, tmpl *content.Template) error
	GetByID(ctx context.Context, id string) (*content.Template, error)
	List(ctx context.Context, filter content.TemplateFilter) ([]content.Template, content.Range, error)
	Update(ctx context.Context, tmpl *content.Template) error
	Delete(ctx context.Context, id string) error
}
