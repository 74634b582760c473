package content

import (
	"context"

	"github.com/jbaikge/boneless/internal/domain/models/content"
)

// DocumentService handles document business logic. Writes pass through the
// upload coordinator before reaching the gateway.
type DocumentService interface {
	CreateDocument(ctx context.Context, classID string, req *DocumentRequest) (*content.Document, error)
	GetDocument(ctx context.Context, classID, id string) (*content.Document, error)
	GetDocumentByPath(ctx context.Context, path string) (*content.Document, error)
	ListDocuments(ctx context.Context, filter content.DocumentFilter) ([]content.Document, content.Range, error)
	UpdateDocument(ctx context.Context, classID, id string, req *DocumentRequest) (*content.Document, error)
	DeleteDocument(ctx context.Context, classID, id string) error
}

// DocumentRequest is the writable part of a document. Values may carry
// *content.PendingFile entries for upload fields.
type DocumentRequest struct {
	ParentID   string         `json:"parent_id"`
	TemplateID string         `json:"template_id"`
	Path       string         `json:"path"`
	Values     map[string]any `json:"values"`
}
