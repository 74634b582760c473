package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jbaikge/boneless/internal/domain"
	"github.com/jbaikge/boneless/internal/domain/models/content"
	contentRepo "github.com/jbaikge/boneless/internal/domain/repositories/content"
)

const classColumns = `id, COALESCE(parent_id, ''), name, fields, created_at, updated_at`

// ClassRepository implements the ClassRepository interface
type ClassRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewClassRepository creates a new class repository
func NewClassRepository(db *sql.DB, logger *slog.Logger) contentRepo.ClassRepository {
	return &ClassRepository{db: db, logger: logger}
}

// Create creates a new class
func (r *ClassRepository) Create(ctx context.Context, class *content.Class) error {
	fields, err := json.Marshal(fieldsOrEmpty(class.Fields))
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}

	now := time.Now().UTC()
	id := uuid.NewString()
	_, err = getExecutor(ctx, r.db).ExecContext(ctx,
		`INSERT INTO classes (id, parent_id, name, fields, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, nullable(class.ParentID), class.Name, string(fields), formatTime(now), formatTime(now),
	)
	if err != nil {
		return mapError(err, "create class", "class", class.Name)
	}

	class.ID = id
	class.Created = now
	class.Updated = now
	return nil
}

// GetByID retrieves a class by ID
func (r *ClassRepository) GetByID(ctx context.Context, id string) (*content.Class, error) {
	row := getExecutor(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+classColumns+` FROM classes WHERE id = ?`, id)
	class, err := scanClass(row)
	if err != nil {
		return nil, mapError(err, "get class", "class", id)
	}
	return class, nil
}

// List retrieves classes ordered by name
func (r *ClassRepository) List(ctx context.Context, filter content.ClassFilter) ([]content.Class, content.Range, error) {
	where := "1 = 1"
	var args []any
	if filter.ParentID != nil {
		where = "COALESCE(parent_id, '') = ?"
		args = append(args, *filter.ParentID)
	}

	exec := getExecutor(ctx, r.db)

	var size int
	if err := exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM classes WHERE `+where, args...).Scan(&size); err != nil {
		return nil, content.Range{}, fmt.Errorf("count classes: %w", err)
	}

	rng := filter.Range.OrDefault()
	query := fmt.Sprintf(`SELECT %s FROM classes WHERE %s ORDER BY name, id LIMIT %d OFFSET %d`,
		classColumns, where, rng.Len(), rng.Start)
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, content.Range{}, fmt.Errorf("list classes: %w", err)
	}
	defer rows.Close()

	classes := []content.Class{}
	for rows.Next() {
		class, err := scanClass(rows)
		if err != nil {
			return nil, content.Range{}, fmt.Errorf("scan class: %w", err)
		}
		classes = append(classes, *class)
	}
	if err := rows.Err(); err != nil {
		return nil, content.Range{}, fmt.Errorf("iterate classes: %w", err)
	}

	return classes, rng.Resolved(len(classes), size), nil
}

// Update replaces a class's parent, name and fields
func (r *ClassRepository) Update(ctx context.Context, class *content.Class) error {
	fields, err := json.Marshal(fieldsOrEmpty(class.Fields))
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}

	now := time.Now().UTC()
	result, err := getExecutor(ctx, r.db).ExecContext(ctx,
		`UPDATE classes SET parent_id = ?, name = ?, fields = ?, updated_at = ? WHERE id = ?`,
		nullable(class.ParentID), class.Name, string(fields), formatTime(now), class.ID,
	)
	if err != nil {
		return mapError(err, "update class", "class", class.ID)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("class %s: %w", class.ID, domain.ErrNotFound)
	}

	class.Updated = now
	return nil
}

// Delete removes a class
func (r *ClassRepository) Delete(ctx context.Context, id string) error {
	result, err := getExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM classes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("class %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClass(row rowScanner) (*content.Class, error) {
	var (
		class            content.Class
		fields           string
		created, updated string
	)
	if err := row.Scan(&class.ID, &class.ParentID, &class.Name, &fields, &created, &updated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(fields), &class.Fields); err != nil {
		return nil, fmt.Errorf("decode fields of class %s: %w", class.ID, err)
	}
	var err error
	if class.Created, err = parseTime(created); err != nil {
		return nil, err
	}
	if class.Updated, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &class, nil
}

func fieldsOrEmpty(fields []content.Field) []content.Field {
	if fields == nil {
		return []content.Field{}
	}
	return fields
}
