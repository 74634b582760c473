package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jbaikge/boneless/internal/domain"
	"github.com/jbaikge/boneless/internal/domain/models/content"
	contentRepo "github.com/jbaikge/boneless/internal/domain/repositories/content"
)

const documentColumns = `id, class_id, COALESCE(parent_id, ''), COALESCE(template_id, ''), path, version, field_values, created_at, updated_at`

var builtinSortColumns = map[string]string{
	"id":      "id",
	"path":    "path",
	"created": "created_at",
	"updated": "updated_at",
}

// DocumentRepository implements the DocumentRepository interface
type DocumentRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *sql.DB, logger *slog.Logger) contentRepo.DocumentRepository {
	return &DocumentRepository{db: db, logger: logger}
}

// Create creates a new document
func (r *DocumentRepository) Create(ctx context.Context, doc *content.Document) error {
	values, err := encodeValues(doc.Values)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	id := uuid.NewString()
	_, err = getExecutor(ctx, r.db).ExecContext(ctx, `
		INSERT INTO documents (id, class_id, parent_id, template_id, path, version, field_values, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 1, ?, ?, ?)`,
		id, doc.ClassID, nullable(doc.ParentID), nullable(doc.TemplateID), doc.Path, values, formatTime(now), formatTime(now),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return r.pathConflict(ctx, doc.Path)
		}
		return mapError(err, "create document", "document", doc.Path)
	}

	doc.ID = id
	doc.Version = 1
	doc.Created = now
	doc.Updated = now
	return nil
}

// GetByID retrieves a document of a class
func (r *DocumentRepository) GetByID(ctx context.Context, classID, id string) (*content.Document, error) {
	row := getExecutor(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ? AND class_id = ?`, id, classID)
	doc, err := scanDocument(row)
	if err != nil {
		return nil, mapError(err, "get document", "document", id)
	}
	return doc, nil
}

// GetByPath retrieves a document by its public path
func (r *DocumentRepository) GetByPath(ctx context.Context, path string) (*content.Document, error) {
	if path == "" {
		return nil, fmt.Errorf("empty path: %w", domain.ErrNotFound)
	}
	row := getExecutor(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE path = ?`, path)
	doc, err := scanDocument(row)
	if err != nil {
		return nil, mapError(err, "get document by path", "document", path)
	}
	return doc, nil
}

// List retrieves documents of one class
func (r *DocumentRepository) List(ctx context.Context, filter content.DocumentFilter) ([]content.Document, content.Range, error) {
	conditions := []string{"class_id = ?"}
	args := []any{filter.ClassID}

	if filter.ParentID != "" {
		conditions = append(conditions, "parent_id = ?")
		args = append(args, filter.ParentID)
	}
	if filter.Query != "" {
		conditions = append(conditions, "(field_values LIKE ? OR path LIKE ?)")
		args = append(args, "%"+filter.Query+"%", "%"+filter.Query+"%")
	}
	if len(filter.IDs) > 0 {
		conditions = append(conditions, "id IN ("+placeholders(len(filter.IDs))+")")
		for _, id := range filter.IDs {
			args = append(args, id)
		}
	}
	where := strings.Join(conditions, " AND ")

	exec := getExecutor(ctx, r.db)

	var size int
	if err := exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE `+where, args...).Scan(&size); err != nil {
		return nil, content.Range{}, fmt.Errorf("count documents: %w", err)
	}

	orderBy := "created_at"
	if filter.Sort.Field != "" {
		if column, ok := builtinSortColumns[filter.Sort.Field]; ok {
			orderBy = column
		} else {
			orderBy = "json_extract(field_values, ?)"
			args = append(args, "$."+filter.Sort.Field)
		}
	}
	direction := "ASC"
	if !filter.Sort.Ascending() {
		direction = "DESC"
	}

	rng := filter.Range.OrDefault()
	query := fmt.Sprintf(`SELECT %s FROM documents WHERE %s ORDER BY %s %s, id LIMIT %d OFFSET %d`,
		documentColumns, where, orderBy, direction, rng.Len(), rng.Start)
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, content.Range{}, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := []content.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, content.Range{}, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, content.Range{}, fmt.Errorf("iterate documents: %w", err)
	}

	return docs, rng.Resolved(len(docs), size), nil
}

// Update replaces a document's references and values and bumps its version
func (r *DocumentRepository) Update(ctx context.Context, doc *content.Document) error {
	values, err := encodeValues(doc.Values)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	row := getExecutor(ctx, r.db).QueryRowContext(ctx, `
		UPDATE documents
		SET parent_id = ?, template_id = ?, path = ?, field_values = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND class_id = ?
		RETURNING version`,
		nullable(doc.ParentID), nullable(doc.TemplateID), doc.Path, values, formatTime(now), doc.ID, doc.ClassID,
	)
	if err := row.Scan(&doc.Version); err != nil {
		if isUniqueViolation(err) {
			return r.pathConflict(ctx, doc.Path)
		}
		return mapError(err, "update document", "document", doc.ID)
	}

	doc.Updated = now
	return nil
}

// Delete removes a document
func (r *DocumentRepository) Delete(ctx context.Context, classID, id string) error {
	result, err := getExecutor(ctx, r.db).ExecContext(ctx,
		`DELETE FROM documents WHERE id = ? AND class_id = ?`, id, classID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return nil
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

func encodeValues(values map[string]any) (string, error) {
	if values == nil {
		values = map[string]any{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encode values: %w", err)
	}
	return string(data), nil
}

func scanDocument(row rowScanner) (*content.Document, error) {
	var (
		doc              content.Document
		values           string
		created, updated string
	)
	err := row.Scan(
		&doc.ID,
		&doc.ClassID,
		&doc.ParentID,
		&doc.TemplateID,
		&doc.Path,
		&doc.Version,
		&values,
		&created,
		&updated,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(values), &doc.Values); err != nil {
		return nil, fmt.Errorf("decode values of document %s: %w", doc.ID, err)
	}
	if doc.Values == nil {
		doc.Values = map[string]any{}
	}
	if doc.Created, err = parseTime(created); err != nil {
		return nil, err
	}
	if doc.Updated, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &doc, nil
}
