package content

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jbaikge/boneless/internal/domain"
	"github.com/jbaikge/boneless/internal/domain/models/content"
	contentRepo "github.com/jbaikge/boneless/internal/domain/repositories/content"
	"github.com/jbaikge/boneless/internal/repository/postgres"
)

// PostgresClassRepository implements the ClassRepository interface
type PostgresClassRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewClassRepository creates a new class repository
func NewClassRepository(config *postgres.RepositoryConfig) contentRepo.ClassRepository {
	return &PostgresClassRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new class
func (r *PostgresClassRepository) Create(ctx context.Context, class *content.Class) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, parent_id, name, fields, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING created_at, updated_at
	`, r.tables.Classes)

	class.ID = uuid.NewString()
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		class.ID,
		nullable(class.ParentID),
		class.Name,
		fieldsOrEmpty(class.Fields),
		time.Now().UTC(),
	).Scan(&class.Created, &class.Updated)
	if err != nil {
		class.ID = ""
		return postgres.MapError(err, "create class", "class", class.Name)
	}

	return nil
}

// GetByID retrieves a class by ID
func (r *PostgresClassRepository) GetByID(ctx context.Context, id string) (*content.Class, error) {
	query := fmt.Sprintf(`
		SELECT id, COALESCE(parent_id, ''), name, fields, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Classes)

	var class content.Class
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&class.ID,
		&class.ParentID,
		&class.Name,
		&class.Fields,
		&class.Created,
		&class.Updated,
	)
	if err != nil {
		return nil, postgres.MapError(err, "get class", "class", id)
	}

	return &class, nil
}

// List retrieves classes ordered by name
func (r *PostgresClassRepository) List(ctx context.Context, filter content.ClassFilter) ([]content.Class, content.Range, error) {
	where := "TRUE"
	var args []any
	if filter.ParentID != nil {
		args = append(args, *filter.ParentID)
		where = "COALESCE(parent_id, '') = $1"
	}

	executor := postgres.GetExecutor(ctx, r.pool)

	var size int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, r.tables.Classes, where)
	if err := executor.QueryRow(ctx, countQuery, args...).Scan(&size); err != nil {
		return nil, content.Range{}, fmt.Errorf("count classes: %w", err)
	}

	rng := filter.Range.OrDefault()
	query := fmt.Sprintf(`
		SELECT id, COALESCE(parent_id, ''), name, fields, created_at, updated_at
		FROM %s
		WHERE %s
		ORDER BY name, id
		LIMIT %d OFFSET %d
	`, r.tables.Classes, where, rng.Len(), rng.Start)

	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, content.Range{}, fmt.Errorf("list classes: %w", err)
	}
	defer rows.Close()

	classes := []content.Class{}
	for rows.Next() {
		var class content.Class
		if err := rows.Scan(
			&class.ID,
			&class.ParentID,
			&class.Name,
			&class.Fields,
			&class.Created,
			&class.Updated,
		); err != nil {
			return nil, content.Range{}, fmt.Errorf("scan class: %w", err)
		}
		classes = append(classes, class)
	}
	if err := rows.Err(); err != nil {
		return nil, content.Range{}, fmt.Errorf("iterate classes: %w", err)
	}

	return classes, rng.Resolved(len(classes), size), nil
}

// Update replaces a class's parent, name and fields
func (r *PostgresClassRepository) Update(ctx context.Context, class *content.Class) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $1, name = $2, fields = $3, updated_at = $4
		WHERE id = $5
		RETURNING updated_at
	`, r.tables.Classes)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		nullable(class.ParentID),
		class.Name,
		fieldsOrEmpty(class.Fields),
		time.Now().UTC(),
		class.ID,
	).Scan(&class.Updated)
	if err != nil {
		return postgres.MapError(err, "update class", "class", class.ID)
	}

	return nil
}

// Delete removes a class
func (r *PostgresClassRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Classes)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("class %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// nullable stores "" as NULL
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func fieldsOrEmpty(fields []content.Field) []content.Field {
	if fields == nil {
		return []content.Field{}
	}
	return fields
}
