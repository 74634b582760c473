package content

import (
	"context"

	"github.com/jbaikge/boneless/internal/domain/models/content"
)

// ClassService handles class (content type) business logic
type ClassService interface {
	CreateClass(ctx context.Context, req *ClassRequest) (*content.Class, error)
	GetClass(ctx context.Context, id string) (*content.Class, error)
	ListClasses(ctx context.Context, filter content.ClassFilter) ([]content.Class, content.Range, error)
	UpdateClass(ctx context.Context, id string, req *ClassRequest) (*content.Class, error)
	DeleteClass(ctx context.Context, id string) error
}

// ClassRequest is the writable part of a class
type ClassRequest struct {
	ParentID string          `json:"parent_id"`
	Name     string          `json:"name"`
	Fields   []content.Field `json:"fields"`
}
