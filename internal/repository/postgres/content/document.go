package content

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jbaikge/boneless/internal/domain"
	"github.com/jbaikge/boneless/internal/domain/models/content"
	contentRepo "github.com/jbaikge/boneless/internal/domain/repositories/content"
	"github.com/jbaikge/boneless/internal/repository/postgres"
)

const documentColumns = `id, class_id, COALESCE(parent_id, ''), COALESCE(template_id, ''), path, version, field_values, created_at, updated_at`

// builtinSortColumns maps sortable document attributes to columns
var builtinSortColumns = map[string]string{
	"id":      "id",
	"path":    "path",
	"created": "created_at",
	"updated": "updated_at",
}

// PostgresDocumentRepository implements the DocumentRepository interface
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *postgres.RepositoryConfig) contentRepo.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new document
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *content.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, class_id, parent_id, template_id, path, version, field_values, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 1, $6, $7, $7)
		RETURNING version, created_at, updated_at
	`, r.tables.Documents)

	doc.ID = uuid.NewString()
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		doc.ID,
		doc.ClassID,
		nullable(doc.ParentID),
		nullable(doc.TemplateID),
		doc.Path,
		valuesOrEmpty(doc.Values),
		time.Now().UTC(),
	).Scan(&doc.Version, &doc.Created, &doc.Updated)
	if err != nil {
		doc.ID = ""
		if postgres.IsPgDuplicateError(err) {
			return r.pathConflict(ctx, doc.Path)
		}
		return postgres.MapError(err, "create document", "document", doc.Path)
	}

	return nil
}

// GetByID retrieves a document of a class
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, classID, id string) (*content.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 AND class_id = $2`, documentColumns, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	doc, err := scanDocument(executor.QueryRow(ctx, query, id, classID))
	if err != nil {
		return nil, postgres.MapError(err, "get document", "document", id)
	}
	return doc, nil
}

// GetByPath retrieves a document by its public path
func (r *PostgresDocumentRepository) GetByPath(ctx context.Context, path string) (*content.Document, error) {
	if path == "" {
		return nil, fmt.Errorf("empty path: %w", domain.ErrNotFound)
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE path = $1`, documentColumns, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	doc, err := scanDocument(executor.QueryRow(ctx, query, path))
	if err != nil {
		return nil, postgres.MapError(err, "get document by path", "document", path)
	}
	return doc, nil
}

// List retrieves documents of one class
func (r *PostgresDocumentRepository) List(ctx context.Context, filter content.DocumentFilter) ([]content.Document, content.Range, error) {
	conditions := []string{"class_id = $1"}
	args := []any{filter.ClassID}

	if filter.ParentID != "" {
		args = append(args, filter.ParentID)
		conditions = append(conditions, fmt.Sprintf("parent_id = $%d", len(args)))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		conditions = append(conditions, fmt.Sprintf("(field_values::text ILIKE $%d OR path ILIKE $%d)", len(args), len(args)))
	}
	if len(filter.IDs) > 0 {
		args = append(args, filter.IDs)
		conditions = append(conditions, fmt.Sprintf("id = ANY($%d)", len(args)))
	}
	where := strings.Join(conditions, " AND ")

	executor := postgres.GetExecutor(ctx, r.pool)

	var size int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, r.tables.Documents, where)
	if err := executor.QueryRow(ctx, countQuery, args...).Scan(&size); err != nil {
		return nil, content.Range{}, fmt.Errorf("count documents: %w", err)
	}

	orderBy := "created_at"
	if filter.Sort.Field != "" {
		if column, ok := builtinSortColumns[filter.Sort.Field]; ok {
			orderBy = column
		} else {
			args = append(args, filter.Sort.Field)
			orderBy = fmt.Sprintf("field_values->>$%d", len(args))
		}
	}
	direction := "ASC"
	if !filter.Sort.Ascending() {
		direction = "DESC"
	}

	rng := filter.Range.OrDefault()
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s
		ORDER BY %s %s, id
		LIMIT %d OFFSET %d
	`, documentColumns, r.tables.Documents, where, orderBy, direction, rng.Len(), rng.Start)

	rows, err := executor.Query(ctx, query, args...)
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
func (r *PostgresDocumentRepository) Update(ctx context.Context, doc *content.Document) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $1, template_id = $2, path = $3, field_values = $4,
		    version = version + 1, updated_at = $5
		WHERE id = $6 AND class_id = $7
		RETURNING version, updated_at
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		nullable(doc.ParentID),
		nullable(doc.TemplateID),
		doc.Path,
		valuesOrEmpty(doc.Values),
		time.Now().UTC(),
		doc.ID,
		doc.ClassID,
	).Scan(&doc.Version, &doc.Updated)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return r.pathConflict(ctx, doc.Path)
		}
		return postgres.MapError(err, "update document", "document", doc.ID)
	}

	return nil
}

// Delete removes a document
func (r *PostgresDocumentRepository) Delete(ctx context.Context, classID, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND class_id = $2`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, classID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// pathConflict builds the conflict error for a taken path
func (r *PostgresDocumentRepository) pathConflict(ctx context.Context, path string) error {
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*content.Document, error) {
	var doc content.Document
	err := row.Scan(
		&doc.ID,
		&doc.ClassID,
		&doc.ParentID,
		&doc.TemplateID,
		&doc.Path,
		&doc.Version,
		&doc.Values,
		&doc.Created,
		&doc.Updated,
	)
	if err != nil {
		return nil, err
	}
	if doc.Values == nil {
		doc.Values = map[string]any{}
	}
	return &doc, nil
}

func valuesOrEmpty(values map[string]any) map[string]any {
	if values == nil {
		return map[string]any{}
	}
	return values
}
