package dynamodb

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jbaikge/boneless/internal/domain/models/content"
	contentRepo "github.com/jbaikge/boneless/internal/domain/repositories/content"
)

// ClassRepository implements the ClassRepository interface
type ClassRepository struct {
	*RepositoryConfig
}

// NewClassRepository creates a new class repository
func NewClassRepository(cfg *RepositoryConfig) contentRepo.ClassRepository {
	return &ClassRepository{RepositoryConfig: cfg}
}

// Create creates a new class
func (r *ClassRepository) Create(ctx context.Context, class *content.Class) error {
	now := time.Now().UTC()
	item := *class
	item.ID = newID()
	item.Created = now
	item.Updated = now

	if err := r.putItem(ctx, newClassItem(&item), condNotExists); err != nil {
		return fmt.Errorf("create class: %w", err)
	}

	class.ID = item.ID
	class.Fields = fieldsOrEmpty(class.Fields)
	class.Created = now
	class.Updated = now
	return nil
}

// GetByID retrieves a class by ID
func (r *ClassRepository) GetByID(ctx context.Context, id string) (*content.Class, error) {
	var item classItem
	if err := r.getItem(ctx, classPrefix+id, classSortKey, &item); err != nil {
		return nil, mapError(err, "get class", "class", id)
	}
	class := item.toClass()
	return &class, nil
}

// List retrieves classes ordered by name
func (r *ClassRepository) List(ctx context.Context, filter content.ClassFilter) ([]content.Class, content.Range, error) {
	items, err := scanKind[classItem](ctx, r.RepositoryConfig, kindClass, classSortKey)
	if err != nil {
		return nil, content.Range{}, err
	}

	classes := make([]content.Class, 0, len(items))
	for _, item := range items {
		if filter.ParentID != nil && item.ParentID != *filter.ParentID {
			continue
		}
		classes = append(classes, item.toClass())
	}
	slices.SortFunc(classes, func(a, b content.Class) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	page, rng := paginate(classes, filter.Range)
	return page, rng, nil
}

// Update replaces a class's parent, name and fields
func (r *ClassRepository) Update(ctx context.Context, class *content.Class) error {
	current, err := r.GetByID(ctx, class.ID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	item := *class
	item.Created = current.Created
	item.Updated = now
	if err := r.putItem(ctx, newClassItem(&item), condExists); err != nil {
		return mapError(err, "update class", "class", class.ID)
	}

	class.Created = current.Created
	class.Updated = now
	return nil
}

// Delete removes a class
func (r *ClassRepository) Delete(ctx context.Context, id string) error {
	if err := r.deleteItem(ctx, classPrefix+id, classSortKey, condExists); err != nil {
		return mapError(err, "delete class", "class", id)
	}
	return nil
}

func fieldsOrEmpty(fields []content.Field) []content.Field {
	if fields == nil {
		return []content.Field{}
	}
	return fields
}
