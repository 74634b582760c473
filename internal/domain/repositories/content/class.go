package content

import (
	"context"

	"github.com/jbaikge/boneless/internal/domain/models/content"
)

// ClassRepository is the gateway's class collection
type ClassRepository interface {
	// Create stores a new class and assigns its ID and timestamps
	Create(ctx context.Context, class *content.Class) error

	// GetByID retrieves a class by ID
	GetByID(ctx context.Context, id string) (*content.Class, error)

	// List returns classes ordered by name and the resolved range
	List(ctx context.Context, filter content.ClassFilter) ([]content.Class, content.Range, error)

	// Update replaces a class's name, parent and fields
	Update(ctx context.Context, class *content.Class) error

	// Delete removes a class. Documents are not cascaded.
	Delete(ctx context.Context, id string) error
}
