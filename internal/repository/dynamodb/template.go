package dynamodb

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jbaikge/boneless/internal/domain"
	"github.com/jbaikge/boneless/internal/domain/models/content"
	contentRepo "github.com/jbaikge/boneless/internal/domain/repositories/content"
)

// TemplateRepository implements the TemplateRepository interface
type TemplateRepository struct {
	*RepositoryConfig
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(cfg *RepositoryConfig) contentRepo.TemplateRepository {
	return &TemplateRepository{RepositoryConfig: cfg}
}

func (r *TemplateRepository) Create(ctx context.Context, tmpl *content.Template) error {
	now := time.Now().UTC()
	item := *tmpl
	item.ID = newID()
	item.Version = 1
	item.Created = now
	item.Updated = now

	current, err := r.transactPut(newTemplateItem(&item, 0), condNotExists, nil, nil)
	if err != nil {
		return err
	}
	history, err := r.transactPut(newTemplateItem(&item, item.Version), nil, nil, nil)
	if err != nil {
		return err
	}
	if _, err := r.API.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{current, history},
	}); err != nil {
		return fmt.Errorf("create template: %w", err)
	}

	*tmpl = item
	return nil
}

func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*content.Template, error) {
	var item templateItem
	if err := r.getItem(ctx, templatePrefix+id, versionKey(0), &item); err != nil {
		return nil, mapError(err, "get template", "template", id)
	}
	tmpl := item.toTemplate()
	return &tmpl, nil
}

// List retrieves templates ordered by name. Query matches names.
func (r *TemplateRepository) List(ctx context.Context, filter content.TemplateFilter) ([]content.Template, content.Range, error) {
	items, err := scanKind[templateItem](ctx, r.RepositoryConfig, kindTemplate, versionKey(0))
	if err != nil {
		return nil, content.Range{}, err
	}

	query := strings.ToLower(filter.Query)
	templates := make([]content.Template, 0, len(items))
	for _, item := range items {
		if query != "" && !strings.Contains(strings.ToLower(item.Name), query) {
			continue
		}
		templates = append(templates, item.toTemplate())
	}
	slices.SortFunc(templates, func(a, b content.Template) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	page, rng := paginate(templates, filter.Range)
	return page, rng, nil
}

// Update replaces name and body and bumps the version. The previous state
// stays readable under its version key.
func (r *TemplateRepository) Update(ctx context.Context, tmpl *content.Template) error {
	current, err := r.GetByID(ctx, tmpl.ID)
	if err != nil {
		return err
	}

	item := *tmpl
	item.Version = current.Version + 1
	item.Created = current.Created
	item.Updated = time.Now().UTC()

	head, err := r.transactPut(newTemplateItem(&item, 0), aws.String("#version = :version"),
		map[string]types.AttributeValue{":version": versionValue(current.Version)},
		map[string]string{"#version": "Version"})
	if err != nil {
		return err
	}
	history, err := r.transactPut(newTemplateItem(&item, item.Version), nil, nil, nil)
	if err != nil {
		return err
	}

	if _, err := r.API.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{head, history},
	}); err != nil {
		if cancelledAt(err, 0) {
			return fmt.Errorf("template %s changed during update: %w", tmpl.ID, domain.ErrConflict)
		}
		return fmt.Errorf("update template: %w", err)
	}

	*tmpl = item
	return nil
}

// Delete removes the template and its history
func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return r.deleteVersions(ctx, templatePrefix+id, current.Version)
}
