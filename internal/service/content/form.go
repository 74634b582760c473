package content

import (
	"context"
	"log/slog"

	"github.com/jbaikge/boneless/internal/domain/models/content"
	contentRepo "github.com/jbaikge/boneless/internal/domain/repositories/content"
)

// DocumentForm is the editing projection of one document
type DocumentForm struct {
	Schema   *Schema           `json:"schema"`
	Document *content.Document `json:"document,omitempty"` // nil for a blank create form
	Bindings []FieldBinding    `json:"bindings"`
	Orphans  map[string]any    `json:"orphans,omitempty"` // stored values no field claims
}

// FormService builds editing and list projections from a class schema
type FormService struct {
	classRepo contentRepo.ClassRepository
	docRepo   contentRepo.DocumentRepository
	codec     *DocumentCodec
	logger    *slog.Logger
}

// NewFormService creates a new form service
func NewFormService(
	classRepo contentRepo.ClassRepository,
	docRepo contentRepo.DocumentRepository,
	codec *DocumentCodec,
	logger *slog.Logger,
) *FormService {
	return &FormService{
		classRepo: classRepo,
		docRepo:   docRepo,
		codec:     codec,
		logger:    logger,
	}
}

// Form resolves the schema and binds the document's values. An empty id
// builds a blank form.
func (s *FormService) Form(ctx context.Context, classID, id string) (*DocumentForm, error) {
	schema, err := NewSchemaSession(s.classRepo, s.logger).Resolve(ctx, classID)
	if err != nil {
		return nil, err
	}

	form := &DocumentForm{Schema: schema}
	values := map[string]any{}
	if id != "" {
		doc, err := s.docRepo.GetByID(ctx, classID, id)
		if err != nil {
			return nil, err
		}
		form.Document = doc
		values = doc.Values
	}

	form.Bindings = s.codec.ToEditable(schema.Fields, values)
	if orphans := s.codec.Orphans(schema.Fields, values); len(orphans) > 0 {
		form.Orphans = orphans
	}
	if err := s.codec.Project(ctx, form.Bindings, s.docRepo); err != nil {
		return nil, err
	}
	return form, nil
}

// Columns returns the list-view fields of a class
func (s *FormService) Columns(ctx context.Context, classID string) ([]content.Field, error) {
	schema, err := NewSchemaSession(s.classRepo, s.logger).Resolve(ctx, classID)
	if err != nil {
		return nil, err
	}
	return ListColumns(schema.Fields), nil
}
