//go:build ignore

// Drops the content tables for the current environment prefix.
//
//	go run scripts/drop_all_tables.go
package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/jbaikge/boneless/internal/config"
	"github.com/jbaikge/boneless/internal/repository/postgres"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if cfg.UsesSQLite() {
		log.Fatalf("DATABASE_URL points at sqlite (%s); delete the file instead", cfg.SQLitePath())
	}
	if cfg.UsesDynamoDB() {
		log.Fatalf("DATABASE_URL points at DynamoDB table %s; use cmd/seed --clear-data", cfg.DynamoTable())
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = db.Close() }() // Error ignored: script exiting

	for _, table := range postgres.NewTableNames(cfg.TablePrefix).All() {
		if _, err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)); err != nil {
			log.Fatalf("Failed to drop %s: %v", table, err)
		}
	}

	fmt.Printf("All tables dropped successfully (prefix: %s)\n", cfg.TablePrefix)
}
