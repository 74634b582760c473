package content

import (
	"context"
	"io"

	"github.com/jbaikge/boneless/internal/domain/models/content"
)

// ImportService recreates exported classes and templates under fresh ids
type ImportService interface {
	// ImportClasses creates classes parents-first and rewrites parent_id to new ids
	ImportClasses(ctx context.Context, items []content.Class) (*ImportResult, error)

	// ImportTemplates creates templates, remapping only their own ids
	ImportTemplates(ctx context.Context, items []content.Template) (*ImportResult, error)
}

// ExportService serializes whole collections as JSON arrays
type ExportService interface {
	ExportClasses(ctx context.Context, w io.Writer) (int, error)
	ExportTemplates(ctx context.Context, w io.Writer) (int, error)
}

// ImportResult maps every origin id of the batch to the id assigned on creation
type ImportResult struct {
	Collection string            `json:"collection"`
	IDMap      map[string]string `json:"id_map"`
	Created    int               `json:"created"`
	Waves      int               `json:"waves"` // dependency levels created in sequence
}
