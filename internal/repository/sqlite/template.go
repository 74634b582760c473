package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jbaikge/boneless/internal/domain"
	"github.com/jbaikge/boneless/internal/domain/models/content"
	contentRepo "github.com/jbaikge/boneless/internal/domain/repositories/content"
)

const templateColumns = `id, name, version, body, created_at, updated_at`

// TemplateRepository implements the TemplateRepository interface
type TemplateRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(db *sql.DB, logger *slog.Logger) contentRepo.TemplateRepository {
	return &TemplateRepository{db: db, logger: logger}
}

func (r *TemplateRepository) Create(ctx context.Context, tmpl *content.Template) error {
	now := time.Now().UTC()
	id := uuid.NewString()
	_, err := getExecutor(ctx, r.db).ExecContext(ctx,
		`INSERT INTO templates (id, name, version, body, created_at, updated_at) VALUES (?, ?, 1, ?, ?, ?)`,
		id, tmpl.Name, tmpl.Body, formatTime(now), formatTime(now),
	)
	if err != nil {
		return mapError(err, "create template", "template", tmpl.Name)
	}

	tmpl.ID = id
	tmpl.Version = 1
	tmpl.Created = now
	tmpl.Updated = now
	return nil
}

func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*content.Template, error) {
	row := getExecutor(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM templates WHERE id = ?`, id)
	tmpl, err := scanTemplate(row)
	if err != nil {
		return nil, mapError(err, "get template", "template", id)
	}
	return tmpl, nil
}

// List retrieves templates ordered by name. Query matches names.
func (r *TemplateRepository) List(ctx context.Context, filter content.TemplateFilter) ([]content.Template, content.Range, error) {
	where := "1 = 1"
	var args []any
	if filter.Query != "" {
		where = "name LIKE ?"
		args = append(args, "%"+filter.Query+"%")
	}

	exec := getExecutor(ctx, r.db)

	var size int
	if err := exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM templates WHERE `+where, args...).Scan(&size); err != nil {
		return nil, content.Range{}, fmt.Errorf("count templates: %w", err)
	}

	rng := filter.Range.OrDefault()
	query := fmt.Sprintf(`SELECT %s FROM templates WHERE %s ORDER BY name, id LIMIT %d OFFSET %d`,
		templateColumns, where, rng.Len(), rng.Start)
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, content.Range{}, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	templates := []content.Template{}
	for rows.Next() {
		tmpl, err := scanTemplate(rows)
		if err != nil {
			return nil, content.Range{}, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *tmpl)
	}
	if err := rows.Err(); err != nil {
		return nil, content.Range{}, fmt.Errorf("iterate templates: %w", err)
	}

	return templates, rng.Resolved(len(templates), size), nil
}

// Update replaces name and body and bumps the version
func (r *TemplateRepository) Update(ctx context.Context, tmpl *content.Template) error {
	now := time.Now().UTC()
	row := getExecutor(ctx, r.db).QueryRowContext(ctx,
		`UPDATE templates SET name = ?, body = ?, version = version + 1, updated_at = ? WHERE id = ? RETURNING version`,
		tmpl.Name, tmpl.Body, formatTime(now), tmpl.ID,
	)
	if err := row.Scan(&tmpl.Version); err != nil {
		return mapError(err, "update template", "template", tmpl.ID)
	}
	tmpl.Updated = now
	return nil
}

func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	result, err := getExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("template %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanTemplate(row rowScanner) (*content.Template, error) {
	var (
		tmpl             content.Template
		created, updated string
	)
	if err := row.Scan(&tmpl.ID, &tmpl.Name, &tmpl.Version, &tmpl.Body, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	if tmpl.Created, err = parseTime(created); err != nil {
		return nil, err
	}
	if tmpl.Updated, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &tmpl, nil
}
