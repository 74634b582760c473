package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/schema.sql
var schemaSQL string

// Migrate creates the prefixed tables when they do not exist yet
func Migrate(ctx context.Context, pool *pgxpool.Pool, prefix string) error {
	ddl := strings.ReplaceAll(schemaSQL, "{{prefix}}", prefix)
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
