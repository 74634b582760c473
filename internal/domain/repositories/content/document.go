package content

import (
	"context"

	"github.com/jbaikge/boneless/internal/domain/models/content"
)

// DocumentRepository is the gateway's per-class document collection
// (classes/<class_id>/documents)
type DocumentRepository interface {
	// Create stores a new document and assigns its ID and timestamps
	Create(ctx context.Context, doc *content.Document) error

	// GetByID retrieves a document of the given class
	GetByID(ctx context.Context, classID, id string) (*content.Document, error)

	// GetByPath retrieves a document by its public path
	GetByPath(ctx context.Context, path string) (*content.Document, error)

	// List returns documents matching filter and the resolved range
	List(ctx context.Context, filter content.DocumentFilter) ([]content.Document, content.Range, error)

	// Update replaces a document's values and references
	Update(ctx context.Context, doc *content.Document) error

	// Delete removes a document
	Delete(ctx context.Context, classID, id string) error
}
