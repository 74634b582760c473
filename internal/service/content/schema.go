package content

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/jbaikge/boneless/internal/domain"
	"github.com/jbaikge/boneless/internal/domain/models/content"
	contentRepo "github.com/jbaikge/boneless/internal/domain/repositories/content"
)

// SchemaState distinguishes "not resolved yet" from "resolved with no fields"
type SchemaState int

const (
	SchemaLoading SchemaState = iota
	SchemaEmpty
	SchemaLoaded
)

func (s SchemaState) String() string {
	switch s {
	case SchemaEmpty:
		return "empty"
	case SchemaLoaded:
		return "loaded"
	default:
		return "loading"
	}
}

// MarshalText encodes the state by name
func (s SchemaState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Schema is a resolved class schema
type Schema struct {
	State         SchemaState     `json:"state"`
	ClassID       string          `json:"class_id"`
	Name          string          `json:"name"`
	Fields        []content.Field `json:"fields"`
	ParentClassID string          `json:"parent_class_id"` // "" = root class
	Ancestors     []string        `json:"ancestors"`       // parent chain, nearest first
}

// Ready reports whether the schema may be rendered
func (s Schema) Ready() bool {
	return s.State != SchemaLoading
}

// SortFields returns the names of sortable fields
func (s Schema) SortFields() []string {
	return content.Class{Fields: s.Fields}.SortFields()
}

// SchemaSession resolves class schemas for one editing or listing session.
// Each resolved class is fetched once and cached until Invalidate; failures
// are never cached. Sessions are not shared between users or imports.
type SchemaSession struct {
	classRepo contentRepo.ClassRepository
	logger    *slog.Logger

	mu      sync.RWMutex
	classes map[string]*content.Class
	group   singleflight.Group
}

// NewSchemaSession starts an empty session
func NewSchemaSession(classRepo contentRepo.ClassRepository, logger *slog.Logger) *SchemaSession {
	return &SchemaSession{
		classRepo: classRepo,
		logger:    logger,
		classes:   make(map[string]*content.Class),
	}
}

// Peek returns the cached schema without blocking. A class that has not been
// resolved yet reports SchemaLoading.
func (s *SchemaSession) Peek(classID string) Schema {
	s.mu.RLock()
	class, ok := s.classes[classID]
	s.mu.RUnlock()
	if !ok {
		return Schema{State: SchemaLoading, ClassID: classID}
	}
	return s.build(class)
}

// Resolve fetches (or reuses) the class and its parent chain
func (s *SchemaSession) Resolve(ctx context.Context, classID string) (*Schema, error) {
	class, err := s.class(ctx, classID)
	if err != nil {
		return nil, err
	}

	schema := s.build(class)

	// Walk the parent chain. Cycles stop the walk instead of looping.
	visited := map[string]bool{class.ID: true}
	parentID := class.ParentID
	for parentID != "" {
		if visited[parentID] {
			s.logger.Warn("class parent cycle detected",
				"class_id", classID,
				"parent_id", parentID,
			)
			break
		}
		visited[parentID] = true
		schema.Ancestors = append(schema.Ancestors, parentID)

		parent, err := s.class(ctx, parentID)
		if err != nil {
			return nil, fmt.Errorf("resolve parent of class %s: %w", classID, err)
		}
		parentID = parent.ParentID
	}

	return &schema, nil
}

// Invalidate drops a cached class, or the whole cache when classID is ""
func (s *SchemaSession) Invalidate(classID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if classID == "" {
		s.classes = make(map[string]*content.Class)
		return
	}
	delete(s.classes, classID)
}

func (s *SchemaSession) class(ctx context.Context, classID string) (*content.Class, error) {
	s.mu.RLock()
	cached, ok := s.classes[classID]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	v, err, _ := s.group.Do(classID, func() (interface{}, error) {
		class, err := s.classRepo.GetByID(ctx, classID)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.classes[classID] = class
		s.mu.Unlock()
		return class, nil
	})
	if err != nil {
		s.logger.Error("schema resolution failed", "class_id", classID, "error", err)
		return nil, fmt.Errorf("%w: class %s: %w", domain.ErrSchemaUnresolved, classID, err)
	}
	return v.(*content.Class), nil
}

func (s *SchemaSession) build(class *content.Class) Schema {
	state := SchemaLoaded
	if len(class.Fields) == 0 {
		state = SchemaEmpty
	}
	fields := make([]content.Field, len(class.Fields))
	copy(fields, class.Fields)
	return Schema{
		State:         state,
		ClassID:       class.ID,
		Name:          class.Name,
		Fields:        fields,
		ParentClassID: class.ParentID,
	}
}
