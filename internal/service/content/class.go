package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jbaikge/boneless/internal/domain"
	"github.com/jbaikge/boneless/internal/domain/models/content"
	"github.com/jbaikge/boneless/internal/domain/repositories"
	contentRepo "github.com/jbaikge/boneless/internal/domain/repositories/content"
	contentSvc "github.com/jbaikge/boneless/internal/domain/services/content"
	"github.com/jbaikge/boneless/internal/fieldtype"
)

// classService implements the ClassService interface
type classService struct {
	classRepo contentRepo.ClassRepository
	txManager repositories.TransactionManager
	registry  *fieldtype.Registry
	logger    *slog.Logger
}

// NewClassService creates a new class service
func NewClassService(
	classRepo contentRepo.ClassRepository,
	txManager repositories.TransactionManager,
	registry *fieldtype.Registry,
	logger *slog.Logger,
) contentSvc.ClassService {
	return &classService{
		classRepo: classRepo,
		txManager: txManager,
		registry:  registry,
		logger:    logger,
	}
}

// CreateClass creates a new class
func (s *classService) CreateClass(ctx context.Context, req *contentSvc.ClassRequest) (*content.Class, error) {
	if err := validateClassRequest(req, s.registry); err != nil {
		return nil, err
	}
	if err := s.checkParent(ctx, "", req.ParentID); err != nil {
		return nil, err
	}

	class := &content.Class{
		ParentID: req.ParentID,
		Name:     req.Name,
		Fields:   req.Fields,
	}
	if class.Fields == nil {
		class.Fields = []content.Field{}
	}

	if err := s.classRepo.Create(ctx, class); err != nil {
		return nil, err
	}

	s.logger.Info("class created",
		"id", class.ID,
		"name", class.Name,
		"parent_id", class.ParentID,
		"fields", len(class.Fields),
	)

	return class, nil
}

// GetClass retrieves a class
func (s *classService) GetClass(ctx context.Context, id string) (*content.Class, error) {
	return s.classRepo.GetByID(ctx, id)
}

// ListClasses lists classes within the requested range
func (s *classService) ListClasses(ctx context.Context, filter content.ClassFilter) ([]content.Class, content.Range, error) {
	filter.Range = filter.Range.OrDefault()
	return s.classRepo.List(ctx, filter)
}

// UpdateClass replaces a class's name, parent and fields. Existing documents
// are not migrated: values under removed fields remain stored.
func (s *classService) UpdateClass(ctx context.Context, id string, req *contentSvc.ClassRequest) (*content.Class, error) {
	if err := validateClassRequest(req, s.registry); err != nil {
		return nil, err
	}

	// Parent check and write share a transaction so two concurrent updates
	// cannot close a cycle between them.
	var class *content.Class
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		var err error
		class, err = s.classRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if err := s.checkParent(txCtx, id, req.ParentID); err != nil {
			return err
		}

		class.ParentID = req.ParentID
		class.Name = req.Name
		class.Fields = req.Fields
		if class.Fields == nil {
			class.Fields = []content.Field{}
		}
		return s.classRepo.Update(txCtx, class)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("class updated",
		"id", class.ID,
		"name", class.Name,
		"fields", len(class.Fields),
	)

	return class, nil
}

// DeleteClass removes a class. Its documents are left in place.
func (s *classService) DeleteClass(ctx context.Context, id string) error {
	if err := s.classRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("class deleted", "id", id)
	return nil
}

// checkParent verifies parentID exists and that setting it on id would not
// close a cycle.
func (s *classService) checkParent(ctx context.Context, id, parentID string) error {
	if parentID == "" {
		return nil
	}
	if parentID == id {
		return fmt.Errorf("%w: class cannot be its own parent", domain.ErrValidation)
	}

	visited := map[string]bool{}
	for current := parentID; current != ""; {
		if visited[current] {
			// pre-existing cycle above us, not ours to fix
			break
		}
		visited[current] = true

		parent, err := s.classRepo.GetByID(ctx, current)
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: parent class %s does not exist", domain.ErrValidation, current)
		}
		if err != nil {
			return err
		}
		if id != "" && parent.ParentID == id {
			return fmt.Errorf("%w: parent %s would create a cycle", domain.ErrValidation, parentID)
		}
		current = parent.ParentID
	}
	return nil
}
