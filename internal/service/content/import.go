package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/jbaikge/boneless/internal/config"
	"github.com/jbaikge/boneless/internal/domain"
	"github.com/jbaikge/boneless/internal/domain/models/content"
	contentRepo "github.com/jbaikge/boneless/internal/domain/repositories/content"
	contentSvc "github.com/jbaikge/boneless/internal/domain/services/content"
	"github.com/jbaikge/boneless/internal/fieldtype"
)

const (
	CollectionClasses   = "classes"
	CollectionTemplates = "templates"
)

// RefreshFunc is called after a successful import so cached lists and
// schemas can be dropped.
type RefreshFunc func(ctx context.Context, collection string)

// ImportOption configures the import service
type ImportOption func(*importService)

// WithRefresh registers a hook invoked once per successful import
func WithRefresh(fn RefreshFunc) ImportOption {
	return func(s *importService) {
		s.refresh = append(s.refresh, fn)
	}
}

// importService implements the ImportService interface. Every call owns its
// identity map; nothing is shared between concurrent imports.
type importService struct {
	classRepo    contentRepo.ClassRepository
	templateRepo contentRepo.TemplateRepository
	registry     *fieldtype.Registry
	refresh      []RefreshFunc
	logger       *slog.Logger
}

// NewImportService creates a new import service
func NewImportService(
	classRepo contentRepo.ClassRepository,
	templateRepo contentRepo.TemplateRepository,
	registry *fieldtype.Registry,
	logger *slog.Logger,
	opts ...ImportOption,
) contentSvc.ImportService {
	s := &importService{
		classRepo:    classRepo,
		templateRepo: templateRepo,
		registry:     registry,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DecodeClasses reads an exported class array. Nothing is created on error.
func DecodeClasses(r io.Reader) ([]content.Class, error) {
	return decodeBatch[content.Class](r)
}

// DecodeTemplates reads an exported template array
func DecodeTemplates(r io.Reader) ([]content.Template, error) {
	return decodeBatch[content.Template](r)
}

func decodeBatch[T any](r io.Reader) ([]T, error) {
	dec := json.NewDecoder(r)
	var items []T
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedImport, err)
	}
	if items == nil {
		return nil, fmt.Errorf("%w: expected a JSON array", domain.ErrMalformedImport)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after array", domain.ErrMalformedImport)
	}
	if len(items) > config.MaxImportBatchSize {
		return nil, fmt.Errorf("%w: %d items exceeds limit of %d", domain.ErrMalformedImport, len(items), config.MaxImportBatchSize)
	}
	return items, nil
}

// ImportClasses creates classes parents-first. Wave 0 holds the roots, wave n
// the classes whose parent was created in wave n-1. Each wave runs
// concurrently and completes before the next starts, so parent_id can always
// be rewritten to an identity that already exists.
func (s *importService) ImportClasses(ctx context.Context, items []content.Class) (*contentSvc.ImportResult, error) {
	waves, err := planClassWaves(items, s.registry)
	if err != nil {
		return nil, err
	}

	idMap := make(map[string]string, len(items))
	for n, wave := range waves {
		created, failedAt, err := runWave(ctx, wave, func(ctx context.Context, i int) (string, error) {
			class := items[i]
			class.ID = ""
			class.ParentID = idMap[items[i].ParentID]
			class.Fields = append([]content.Field(nil), items[i].Fields...)
			if err := s.classRepo.Create(ctx, &class); err != nil {
				return "", err
			}
			return class.ID, nil
		})
		for j, newID := range created {
			if newID != "" {
				idMap[items[wave[j]].ID] = newID
			}
		}
		if err != nil {
			return nil, s.abort(CollectionClasses, items[failedAt].ID, idMap, err)
		}
		s.logger.Debug("import wave complete", "collection", CollectionClasses, "wave", n, "size", len(wave))
	}

	return s.complete(ctx, CollectionClasses, idMap, len(waves)), nil
}

// ImportTemplates creates every template in one concurrent pass
func (s *importService) ImportTemplates(ctx context.Context, items []content.Template) (*contentSvc.ImportResult, error) {
	if err := checkOriginIDs(len(items), func(i int) string { return items[i].ID }); err != nil {
		return nil, err
	}
	for _, item := range items {
		req := &contentSvc.TemplateRequest{Name: item.Name, Body: item.Body}
		if err := validateTemplateRequest(req); err != nil {
			return nil, fmt.Errorf("%w: template %q: %v", domain.ErrMalformedImport, item.ID, err)
		}
	}

	wave := make([]int, len(items))
	for i := range items {
		wave[i] = i
	}

	idMap := make(map[string]string, len(items))
	created, failedAt, err := runWave(ctx, wave, func(ctx context.Context, i int) (string, error) {
		tmpl := items[i]
		tmpl.ID = ""
		if err := s.templateRepo.Create(ctx, &tmpl); err != nil {
			return "", err
		}
		return tmpl.ID, nil
	})
	for j, newID := range created {
		if newID != "" {
			idMap[items[wave[j]].ID] = newID
		}
	}
	if err != nil {
		return nil, s.abort(CollectionTemplates, items[failedAt].ID, idMap, err)
	}

	waves := 0
	if len(items) > 0 {
		waves = 1
	}
	return s.complete(ctx, CollectionTemplates, idMap, waves), nil
}

func (s *importService) complete(ctx context.Context, collection string, idMap map[string]string, waves int) *contentSvc.ImportResult {
	s.logger.Info("import complete",
		"collection", collection,
		"created", len(idMap),
		"waves", waves,
	)
	for _, fn := range s.refresh {
		fn(ctx, collection)
	}
	return &contentSvc.ImportResult{
		Collection: collection,
		IDMap:      idMap,
		Created:    len(idMap),
		Waves:      waves,
	}
}

func (s *importService) abort(collection, originID string, idMap map[string]string, err error) error {
	created := make(map[string]string, len(idMap))
	for k, v := range idMap {
		created[k] = v
	}
	s.logger.Error("import aborted",
		"collection", collection,
		"origin_id", originID,
		"created", len(created),
		"error", err,
	)
	return &domain.ImportAbortedError{
		Collection: collection,
		OriginID:   originID,
		Created:    created,
		Err:        err,
	}
}

// waveError remembers which batch item failed
type waveError struct {
	index int
	err   error
}

func (e *waveError) Error() string { return e.err.Error() }
func (e *waveError) Unwrap() error { return e.err }

// runWave creates the given batch indexes concurrently. created[j] holds the
// new id for wave[j], "" when that creation did not happen. On error the
// batch index of the first failure is returned.
func runWave(ctx context.Context, wave []int, create func(ctx context.Context, i int) (string, error)) ([]string, int, error) {
	created := make([]string, len(wave))
	g, gctx := errgroup.WithContext(ctx)
	for j, i := range wave {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return &waveError{index: i, err: err}
			}
			newID, err := create(gctx, i)
			if err != nil {
				return &waveError{index: i, err: err}
			}
			created[j] = newID
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var we *waveError
		if errors.As(err, &we) {
			return created, we.index, we.err
		}
		return created, wave[0], err
	}
	return created, -1, nil
}

// planClassWaves validates the batch and groups item indexes by depth.
// Everything is checked before the first creation, each class against the
// rules CreateClass applies.
func planClassWaves(items []content.Class, registry *fieldtype.Registry) ([][]int, error) {
	if err := checkOriginIDs(len(items), func(i int) string { return items[i].ID }); err != nil {
		return nil, err
	}
	for _, item := range items {
		req := &contentSvc.ClassRequest{ParentID: item.ParentID, Name: item.Name, Fields: item.Fields}
		if err := validateClassRequest(req, registry); err != nil {
			return nil, fmt.Errorf("%w: class %q: %v", domain.ErrMalformedImport, item.ID, err)
		}
	}

	index := make(map[string]int, len(items))
	children := make(map[string][]int)
	var roots []int
	for i, item := range items {
		index[item.ID] = i
	}
	for i, item := range items {
		if item.ParentID == "" {
			roots = append(roots, i)
			continue
		}
		if _, ok := index[item.ParentID]; !ok {
			return nil, fmt.Errorf("%w: class %q references parent %q outside the batch", domain.ErrMalformedImport, item.ID, item.ParentID)
		}
		children[item.ParentID] = append(children[item.ParentID], i)
	}

	var waves [][]int
	placed := 0
	for wave := roots; len(wave) > 0; {
		waves = append(waves, wave)
		placed += len(wave)
		var next []int
		for _, i := range wave {
			next = append(next, children[items[i].ID]...)
		}
		wave = next
	}

	// Anything unplaced sits on a parent cycle
	if placed != len(items) {
		for i, item := range items {
			if !isPlaced(waves, i) {
				return nil, fmt.Errorf("%w: class %q is part of a parent cycle", domain.ErrMalformedImport, item.ID)
			}
		}
	}
	return waves, nil
}

func isPlaced(waves [][]int, i int) bool {
	for _, wave := range waves {
		for _, j := range wave {
			if j == i {
				return true
			}
		}
	}
	return false
}

func checkOriginIDs(n int, id func(int) string) error {
	if n > config.MaxImportBatchSize {
		return fmt.Errorf("%w: %d items exceeds limit of %d", domain.ErrMalformedImport, n, config.MaxImportBatchSize)
	}
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		origin := id(i)
		if origin == "" {
			return fmt.Errorf("%w: item %d has no id", domain.ErrMalformedImport, i)
		}
		if seen[origin] {
			return fmt.Errorf("%w: duplicate id %q", domain.ErrMalformedImport, origin)
		}
		seen[origin] = true
	}
	return nil
}
