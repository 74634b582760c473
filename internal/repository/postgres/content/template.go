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

// PostgresTemplateRepository implements the TemplateRepository interface
type PostgresTemplateRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(config *postgres.RepositoryConfig) contentRepo.TemplateRepository {
	return &PostgresTemplateRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func (r *PostgresTemplateRepository) Create(ctx context.Context, tmpl *content.Template) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, version, body, created_at, updated_at)
		VALUES ($1, $2, 1, $3, $4, $4)
		RETURNING version, created_at, updated_at
	`, r.tables.Templates)

	tmpl.ID = uuid.NewString()
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		tmpl.ID,
		tmpl.Name,
		tmpl.Body,
		time.Now().UTC(),
	).Scan(&tmpl.Version, &tmpl.Created, &tmpl.Updated)
	if err != nil {
		tmpl.ID = ""
		return postgres.MapError(err, "create template", "template", tmpl.Name)
	}
	return nil
}

func (r *PostgresTemplateRepository) GetByID(ctx context.Context, id string) (*content.Template, error) {
	query := fmt.Sprintf(`
		SELECT id, name, version, body, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Templates)

	var tmpl content.Template
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&tmpl.ID,
		&tmpl.Name,
		&tmpl.Version,
		&tmpl.Body,
		&tmpl.Created,
		&tmpl.Updated,
	)
	if err != nil {
		return nil, postgres.MapError(err, "get template", "template", id)
	}
	return &tmpl, nil
}

// List retrieves templates ordered by name. Query matches names.
func (r *PostgresTemplateRepository) List(ctx context.Context, filter content.TemplateFilter) ([]content.Template, content.Range, error) {
	where := "TRUE"
	var args []any
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		where = "name ILIKE $1"
	}

	executor := postgres.GetExecutor(ctx, r.pool)

	var size int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, r.tables.Templates, where)
	if err := executor.QueryRow(ctx, countQuery, args...).Scan(&size); err != nil {
		return nil, content.Range{}, fmt.Errorf("count templates: %w", err)
	}

	rng := filter.Range.OrDefault()
	query := fmt.Sprintf(`
		SELECT id, name, version, body, created_at, updated_at
		FROM %s
		WHERE %s
		ORDER BY name, id
		LIMIT %d OFFSET %d
	`, r.tables.Templates, where, rng.Len(), rng.Start)

	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, content.Range{}, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	templates := []content.Template{}
	for rows.Next() {
		var tmpl content.Template
		if err := rows.Scan(&tmpl.ID, &tmpl.Name, &tmpl.Version, &tmpl.Body, &tmpl.Created, &tmpl.Updated); err != nil {
			return nil, content.Range{}, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, tmpl)
	}
	if err := rows.Err(); err != nil {
		return nil, content.Range{}, fmt.Errorf("iterate templates: %w", err)
	}

	return templates, rng.Resolved(len(templates), size), nil
}

// Update replaces name and body and bumps the version
func (r *PostgresTemplateRepository) Update(ctx context.Context, tmpl *content.Template) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, body = $2, version = version + 1, updated_at = $3
		WHERE id = $4
		RETURNING version, updated_at
	`, r.tables.Templates)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		tmpl.Name,
		tmpl.Body,
		time.Now().UTC(),
		tmpl.ID,
	).Scan(&tmpl.Version, &tmpl.Updated)
	if err != nil {
		return postgres.MapError(err, "update template", "template", tmpl.ID)
	}
	return nil
}

func (r *PostgresTemplateRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Templates)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("template %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
