package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/jbaikge/boneless/internal/config"
	"github.com/jbaikge/boneless/internal/domain/models/content"
	contentRepo "github.com/jbaikge/boneless/internal/domain/repositories/content"
	contentSvc "github.com/jbaikge/boneless/internal/domain/services/content"
)

// exportService implements the ExportService interface
type exportService struct {
	classRepo    contentRepo.ClassRepository
	templateRepo contentRepo.TemplateRepository
	logger       *slog.Logger
}

// NewExportService creates a new export service
func NewExportService(
	classRepo contentRepo.ClassRepository,
	templateRepo contentRepo.TemplateRepository,
	logger *slog.Logger,
) contentSvc.ExportService {
	return &exportService{
		classRepo:    classRepo,
		templateRepo: templateRepo,
		logger:       logger,
	}
}

// ExportClasses writes every class, origin ids and parent ids included
func (s *exportService) ExportClasses(ctx context.Context, w io.Writer) (int, error) {
	classes, err := collectPages(func(r content.Range) ([]content.Class, content.Range, error) {
		return s.classRepo.List(ctx, content.ClassFilter{Range: r})
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list classes: %w", err)
	}
	if err := writeBatch(w, classes); err != nil {
		return 0, err
	}
	s.logger.Info("export complete", "collection", CollectionClasses, "count", len(classes))
	return len(classes), nil
}

// ExportTemplates writes every template
func (s *exportService) ExportTemplates(ctx context.Context, w io.Writer) (int, error) {
	templates, err := collectPages(func(r content.Range) ([]content.Template, content.Range, error) {
		return s.templateRepo.List(ctx, content.TemplateFilter{Range: r})
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list templates: %w", err)
	}
	if err := writeBatch(w, templates); err != nil {
		return 0, err
	}
	s.logger.Info("export complete", "collection", CollectionTemplates, "count", len(templates))
	return len(templates), nil
}

// collectPages walks a listing page by page until the reported size is reached
func collectPages[T any](list func(content.Range) ([]T, content.Range, error)) ([]T, error) {
	all := make([]T, 0)
	page := content.Range{Start: 0, End: config.MaxListPageSize - 1}
	for {
		items, got, err := list(page)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if len(items) == 0 || len(all) >= got.Size {
			return all, nil
		}
		page = content.Range{Start: page.End + 1, End: page.End + config.MaxListPageSize}
	}
}

func writeBatch[T any](w io.Writer, items []T) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}
