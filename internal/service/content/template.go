package content

import (
	"context"
	"log/slog"

	"github.com/jbaikge/boneless/internal/domain/models/content"
	contentRepo "github.com/jbaikge/boneless/internal/domain/repositories/content"
	contentSvc "github.com/jbaikge/boneless/internal/domain/services/content"
)

// templateService implements the TemplateService interface
type templateService struct {
	templateRepo contentRepo.TemplateRepository
	logger       *slog.Logger
}

// NewTemplateService creates a new template service
func NewTemplateService(templateRepo contentRepo.TemplateRepository, logger *slog.Logger) contentSvc.TemplateService {
	return &templateService{
		templateRepo: templateRepo,
		logger:       logger,
	}
}

func (s *templateService) CreateTemplate(ctx context.Context, req *contentSvc.TemplateRequest) (*content.Template, error) {
	if err := validateTemplateRequest(req); err != nil {
		return nil, err
	}

	tmpl := &content.Template{
		Name: req.Name,
		Body: req.Body,
	}
	if err := s.templateRepo.Create(ctx, tmpl); err != nil {
		return nil, err
	}

	s.logger.Info("template created", "id", tmpl.ID, "name", tmpl.Name)
	return tmpl, nil
}

func (s *templateService) GetTemplate(ctx context.Context, id string) (*content.Template, error) {
	return s.templateRepo.GetByID(ctx, id)
}

func (s *templateService) ListTemplates(ctx context.Context, filter content.TemplateFilter) ([]content.Template, content.Range, error) {
	filter.Range = filter.Range.OrDefault()
	return s.templateRepo.List(ctx, filter)
}

func (s *templateService) UpdateTemplate(ctx context.Context, id string, req *contentSvc.TemplateRequest) (*content.Template, error) {
	if err := validateTemplateRequest(req); err != nil {
		return nil, err
	}

	tmpl, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tmpl.Name = req.Name
	tmpl.Body = req.Body

	if err := s.templateRepo.Update(ctx, tmpl); err != nil {
		return nil, err
	}

	s.logger.Info("template updated", "id", tmpl.ID, "version", tmpl.Version)
	return tmpl, nil
}

func (s *templateService) DeleteTemplate(ctx context.Context, id string) error {
	if err := s.templateRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("template deleted", "id", id)
	return nil
}
