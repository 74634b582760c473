package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jbaikge/boneless/internal/domain"
	"github.com/jbaikge/boneless/internal/domain/models/content"
	contentRepo "github.com/jbaikge/boneless/internal/domain/repositories/content"
	contentSvc "github.com/jbaikge/boneless/internal/domain/services/content"
)

// documentService implements the DocumentService interface. Every write
// resolves the class schema, validates values against it and runs the upload
// coordinator before the gateway sees the document.
type documentService struct {
	docRepo      contentRepo.DocumentRepository
	classRepo    contentRepo.ClassRepository
	templateRepo contentRepo.TemplateRepository
	codec        *DocumentCodec
	uploads      *UploadCoordinator
	logger       *slog.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	docRepo contentRepo.DocumentRepository,
	classRepo contentRepo.ClassRepository,
	templateRepo contentRepo.TemplateRepository,
	codec *DocumentCodec,
	uploads *UploadCoordinator,
	logger *slog.Logger,
) contentSvc.DocumentService {
	return &documentService{
		docRepo:      docRepo,
		classRepo:    classRepo,
		templateRepo: templateRepo,
		codec:        codec,
		uploads:      uploads,
		logger:       logger,
	}
}

// CreateDocument uploads pending files, then creates the document
func (s *documentService) CreateDocument(ctx context.Context, classID string, req *contentSvc.DocumentRequest) (*content.Document, error) {
	if err := validateDocumentRequest(req); err != nil {
		return nil, err
	}

	schema, err := NewSchemaSession(s.classRepo, s.logger).Resolve(ctx, classID)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, schema, req); err != nil {
		return nil, err
	}
	if err := s.codec.Validate(schema.Fields, req.Values); err != nil {
		return nil, err
	}

	values, err := s.uploads.PrepareCreate(ctx, s.codec.Sanitize(schema.Fields, req.Values))
	if err != nil {
		return nil, err
	}

	doc := &content.Document{
		ClassID:    classID,
		ParentID:   req.ParentID,
		TemplateID: req.TemplateID,
		Path:       req.Path,
		Values:     values,
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("document created",
		"id", doc.ID,
		"class_id", classID,
		"path", doc.Path,
	)

	return doc, nil
}

// GetDocument retrieves a document of a class
func (s *documentService) GetDocument(ctx context.Context, classID, id string) (*content.Document, error) {
	return s.docRepo.GetByID(ctx, classID, id)
}

// GetDocumentByPath retrieves a document by its public path
func (s *documentService) GetDocumentByPath(ctx context.Context, path string) (*content.Document, error) {
	return s.docRepo.GetByPath(ctx, path)
}

// ListDocuments lists documents of one class. Sorting is only allowed on
// fields flagged sortable in the schema.
func (s *documentService) ListDocuments(ctx context.Context, filter content.DocumentFilter) ([]content.Document, content.Range, error) {
	if filter.Sort.Field != "" {
		schema, err := NewSchemaSession(s.classRepo, s.logger).Resolve(ctx, filter.ClassID)
		if err != nil {
			return nil, content.Range{}, err
		}
		if !contains(schema.SortFields(), filter.Sort.Field) && !isBuiltinSort(filter.Sort.Field) {
			return nil, content.Range{}, fmt.Errorf("%w: field %s is not sortable", domain.ErrValidation, filter.Sort.Field)
		}
	}
	filter.Range = filter.Range.OrDefault()
	return s.docRepo.List(ctx, filter)
}

// UpdateDocument fetches the stored document as previous data, uploads
// changed files and replaces the document's values.
func (s *documentService) UpdateDocument(ctx context.Context, classID, id string, req *contentSvc.DocumentRequest) (*content.Document, error) {
	if err := validateDocumentRequest(req); err != nil {
		return nil, err
	}

	previous, err := s.docRepo.GetByID(ctx, classID, id)
	if err != nil {
		return nil, err
	}

	schema, err := NewSchemaSession(s.classRepo, s.logger).Resolve(ctx, classID)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, schema, req); err != nil {
		return nil, err
	}
	if err := s.codec.Validate(schema.Fields, req.Values); err != nil {
		return nil, err
	}

	values, err := s.uploads.PrepareUpdate(ctx, s.codec.Sanitize(schema.Fields, req.Values), previous.Values)
	if err != nil {
		return nil, err
	}

	doc := *previous
	doc.ParentID = req.ParentID
	doc.TemplateID = req.TemplateID
	doc.Path = req.Path
	doc.Values = values

	if err := s.docRepo.Update(ctx, &doc); err != nil {
		return nil, err
	}

	s.logger.Info("document updated",
		"id", doc.ID,
		"class_id", classID,
		"version", doc.Version,
	)

	return &doc, nil
}

// DeleteDocument removes a document. Nothing is cascaded.
func (s *documentService) DeleteDocument(ctx context.Context, classID, id string) error {
	if err := s.docRepo.Delete(ctx, classID, id); err != nil {
		return err
	}
	s.logger.Info("document deleted", "id", id, "class_id", classID)
	return nil
}

// checkReferences verifies parent_id belongs to the parent class and
// template_id exists.
func (s *documentService) checkReferences(ctx context.Context, schema *Schema, req *contentSvc.DocumentRequest) error {
	if req.ParentID != "" {
		if schema.ParentClassID == "" {
			return fmt.Errorf("%w: class %s has no parent class", domain.ErrValidation, schema.ClassID)
		}
		if _, err := s.docRepo.GetByID(ctx, schema.ParentClassID, req.ParentID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: parent document %s not found in class %s", domain.ErrValidation, req.ParentID, schema.ParentClassID)
			}
			return err
		}
	}
	if req.TemplateID != "" {
		if _, err := s.templateRepo.GetByID(ctx, req.TemplateID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: template %s not found", domain.ErrValidation, req.TemplateID)
			}
			return err
		}
	}
	return nil
}

func isBuiltinSort(field string) bool {
	switch field {
	case "id", "path", "created", "updated":
		return true
	}
	return false
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
