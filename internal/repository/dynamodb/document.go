package dynamodb

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jbaikge/boneless/internal/domain"
	"github.com/jbaikge/boneless/internal/domain/models/content"
	contentRepo "github.com/jbaikge/boneless/internal/domain/repositories/content"
)

// DocumentRepository implements the DocumentRepository interface. A
// document's path is claimed by a separate path item so uniqueness holds
// across the table.
type DocumentRepository struct {
	*RepositoryConfig
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(cfg *RepositoryConfig) contentRepo.DocumentRepository {
	return &DocumentRepository{RepositoryConfig: cfg}
}

// Create creates a new document
func (r *DocumentRepository) Create(ctx context.Context, doc *content.Document) error {
	now := time.Now().UTC()
	item := *doc
	item.ID = newID()
	item.Version = 1
	item.Created = now
	item.Updated = now
	if item.Values == nil {
		item.Values = map[string]any{}
	}

	current, err := r.putDocument(&item, 0, condNotExists, nil, nil)
	if err != nil {
		return err
	}
	history, err := r.putDocument(&item, item.Version, nil, nil, nil)
	if err != nil {
		return err
	}
	writes := []types.TransactWriteItem{current, history}
	if item.Path != "" {
		claim, err := r.transactPut(newPathItem(&item), condNotExists, nil, nil)
		if err != nil {
			return err
		}
		writes = append(writes, claim)
	}

	if _, err := r.API.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: writes}); err != nil {
		if item.Path != "" && cancelledAt(err, 2) {
			return r.pathConflict(ctx, item.Path)
		}
		return fmt.Errorf("create document: %w", err)
	}

	*doc = item
	return nil
}

// GetByID retrieves a document of a class
func (r *DocumentRepository) GetByID(ctx context.Context, classID, id string) (*content.Document, error) {
	doc, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.ClassID != classID {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return doc, nil
}

// GetByPath retrieves a document by its public path
func (r *DocumentRepository) GetByPath(ctx context.Context, path string) (*content.Document, error) {
	if path == "" {
		return nil, fmt.Errorf("empty path: %w", domain.ErrNotFound)
	}
	var claim pathItem
	if err := r.getItem(ctx, pathPrefix+path, pathSortKey, &claim); err != nil {
		return nil, mapError(err, "get document by path", "document", path)
	}
	return r.get(ctx, claim.DocumentID)
}

// List retrieves documents of one class
func (r *DocumentRepository) List(ctx context.Context, filter content.DocumentFilter) ([]content.Document, content.Range, error) {
	items, err := scanKind[documentItem](ctx, r.RepositoryConfig, kindDocument, versionKey(0))
	if err != nil {
		return nil, content.Range{}, err
	}

	query := strings.ToLower(filter.Query)
	docs := make([]content.Document, 0, len(items))
	for _, item := range items {
		if item.ClassID != filter.ClassID {
			continue
		}
		if filter.ParentID != "" && item.ParentID != filter.ParentID {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(item.Values), query) &&
			!strings.Contains(strings.ToLower(item.Path), query) {
			continue
		}
		doc, err := item.toDocument()
		if err != nil {
			return nil, content.Range{}, err
		}
		if len(filter.IDs) > 0 && !slices.Contains(filter.IDs, doc.ID) {
			continue
		}
		docs = append(docs, doc)
	}

	sortDocuments(docs, filter.Sort)
	page, rng := paginate(docs, filter.Range)
	return page, rng, nil
}

// Update replaces a document's references and values and bumps its version.
// A changed path moves the path claim in the same transaction.
func (r *DocumentRepository) Update(ctx context.Context, doc *content.Document) error {
	current, err := r.GetByID(ctx, doc.ClassID, doc.ID)
	if err != nil {
		return err
	}

	item := *doc
	item.Version = current.Version + 1
	item.Created = current.Created
	item.Updated = time.Now().UTC()
	if item.Values == nil {
		item.Values = map[string]any{}
	}

	head, err := r.putDocument(&item, 0, aws.String("#version = :version"),
		map[string]types.AttributeValue{":version": versionValue(current.Version)},
		map[string]string{"#version": "Version"})
	if err != nil {
		return err
	}
	history, err := r.putDocument(&item, item.Version, nil, nil, nil)
	if err != nil {
		return err
	}
	writes := []types.TransactWriteItem{head, history}

	claimAt := -1
	if item.Path != current.Path {
		if current.Path != "" {
			writes = append(writes, r.transactDelete(pathPrefix+current.Path, pathSortKey))
		}
		if item.Path != "" {
			claim, err := r.transactPut(newPathItem(&item), condNotExists, nil, nil)
			if err != nil {
				return err
			}
			claimAt = len(writes)
			writes = append(writes, claim)
		}
	}

	if _, err := r.API.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: writes}); err != nil {
		switch {
		case claimAt >= 0 && cancelledAt(err, claimAt):
			return r.pathConflict(ctx, item.Path)
		case cancelledAt(err, 0):
			return fmt.Errorf("document %s changed during update: %w", doc.ID, domain.ErrConflict)
		}
		return fmt.Errorf("update document: %w", err)
	}

	*doc = item
	return nil
}

// Delete removes a document, its history and its path claim
func (r *DocumentRepository) Delete(ctx context.Context, classID, id string) error {
	current, err := r.GetByID(ctx, classID, id)
	if err != nil {
		return err
	}
	if current.Path != "" {
		if err := r.deleteItem(ctx, pathPrefix+current.Path, pathSortKey, nil); err != nil {
			return fmt.Errorf("delete document path: %w", err)
		}
	}
	return r.deleteVersions(ctx, docPrefix+id, current.Version)
}

func (r *DocumentRepository) get(ctx context.Context, id string) (*content.Document, error) {
	var item documentItem
	if err := r.getItem(ctx, docPrefix+id, versionKey(0), &item); err != nil {
		return nil, mapError(err, "get document", "document", id)
	}
	doc, err := item.toDocument()
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepository) putDocument(doc *content.Document, version int, condition *string, values map[string]types.AttributeValue, names map[string]string) (types.TransactWriteItem, error) {
	item, err := newDocumentItem(doc, version)
	if err != nil {
		return types.TransactWriteItem{}, err
	}
	return r.transactPut(item, condition, values, names)
}

func (r *DocumentRepository) pathConflict(ctx context.Context, path string) error {
	existing, err := r.GetByPath(ctx, path)
	if err != nil {
		return fmt.Errorf("document path '%s' already exists: %w", path, domain.ErrConflict)
	}
	return &domain.ConflictError{
		Message:      fmt.Sprintf("document path '%s' already exists", path),
		ResourceType: "document",
		ResourceID:   existing.ID,
	}
}

// deleteVersions removes the current item and every history item of pk
func (c *RepositoryConfig) deleteVersions(ctx context.Context, pk string, latest int) error {
	for version := latest; version >= 0; version-- {
		if err := c.deleteItem(ctx, pk, versionKey(version), nil); err != nil {
			return fmt.Errorf("delete %s %s: %w", pk, versionKey(version), err)
		}
	}
	return nil
}

func versionValue(version int) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.Itoa(version)}
}
