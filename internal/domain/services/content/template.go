package content

import (
	"context"

	"github.com/jbaikge/boneless/internal/domain/models/content"
)

// TemplateService handles template business logic
type TemplateService interface {
	CreateTemplate(ctx context.Context, req *TemplateRequest) (*content.Template, error)
	GetTemplate(ctx context.Context, id string) (*content.Template, error)
	ListTemplates(ctx context.Context, filter content.TemplateFilter) ([]content.Template, content.Range, error)
	UpdateTemplate(ctx context.Context, id string, req *TemplateRequest) (*content.Template, error)
	DeleteTemplate(ctx context.Context, id string) error
}

// TemplateRequest is the writable part of a template
type TemplateRequest struct {
	Name string `json:"name"`
	Body string `json:"body"`
}
