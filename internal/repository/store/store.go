package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jbaikge/boneless/internal/config"
	"github.com/jbaikge/boneless/internal/domain/repositories"
	contentRepo "github.com/jbaikge/boneless/internal/domain/repositories/content"
	"github.com/jbaikge/boneless/internal/repository/dynamodb"
	"github.com/jbaikge/boneless/internal/repository/postgres"
	postgresContent "github.com/jbaikge/boneless/internal/repository/postgres/content"
	"github.com/jbaikge/boneless/internal/repository/sqlite"
)

// Store bundles the gateway repositories of one backend
type Store struct {
	Classes   contentRepo.ClassRepository
	Documents contentRepo.DocumentRepository
	Templates contentRepo.TemplateRepository
	TxManager repositories.TransactionManager
	closeFn   func()
}

func (s *Store) Close() {
	if s.closeFn != nil {
		s.closeFn()
	}
}

// Open connects to DATABASE_URL and applies the schema. sqlite:<path>
// selects the embedded store, dynamodb:<table> a DynamoDB table, anything
// else is a postgres URL.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	switch {
	case cfg.UsesSQLite():
		return openSQLite(ctx, cfg.SQLitePath(), logger)
	case cfg.UsesDynamoDB():
		return openDynamoDB(ctx, cfg, logger)
	default:
		return openPostgres(ctx, cfg, logger)
	}
}

func openSQLite(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, err
	}
	if err := sqlite.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("database connected", "driver", "sqlite", "path", path)

	return &Store{
		Classes:   sqlite.NewClassRepository(db, logger),
		Documents: sqlite.NewDocumentRepository(db, logger),
		Templates: sqlite.NewTemplateRepository(db, logger),
		TxManager: sqlite.NewTransactionManager(db, logger),
		closeFn:   func() { closeDB(db, logger) },
	}, nil
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, pool, cfg.TablePrefix); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logStats(pool, logger)

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}
	return &Store{
		Classes:   postgresContent.NewClassRepository(repoConfig),
		Documents: postgresContent.NewDocumentRepository(repoConfig),
		Templates: postgresContent.NewTemplateRepository(repoConfig),
		TxManager: postgres.NewTransactionManager(pool, logger),
		closeFn:   pool.Close,
	}, nil
}

func openDynamoDB(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	client, err := dynamodb.NewClient(ctx, dynamodb.ClientConfig{
		Region:   cfg.DynamoRegion,
		Endpoint: cfg.DynamoEndpoint,
	})
	if err != nil {
		return nil, err
	}
	return newDynamoStore(ctx, client, cfg.DynamoTable(), logger)
}

func newDynamoStore(ctx context.Context, api dynamodb.API, table string, logger *slog.Logger) (*Store, error) {
	if table == "" {
		return nil, fmt.Errorf("dynamodb: table name required")
	}
	if err := dynamodb.EnsureTable(ctx, api, table, logger); err != nil {
		return nil, err
	}
	logger.Info("database connected", "driver", "dynamodb", "table", table)

	repoConfig := &dynamodb.RepositoryConfig{API: api, Table: table, Logger: logger}
	return &Store{
		Classes:   dynamodb.NewClassRepository(repoConfig),
		Documents: dynamodb.NewDocumentRepository(repoConfig),
		Templates: dynamodb.NewTemplateRepository(repoConfig),
		TxManager: dynamodb.NewTransactionManager(logger),
	}, nil
}

func logStats(pool *pgxpool.Pool, logger *slog.Logger) {
	poolCfg := pool.Config()
	logger.Info("database connected",
		"driver", "postgres",
		"max_conns", poolCfg.MaxConns,
		"min_conns", poolCfg.MinConns,
	)
}

func closeDB(db *sql.DB, logger *slog.Logger) {
	if err := db.Close(); err != nil {
		logger.Error("close database", "error", err)
	}
}
