package di

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/mattn/go-sqlite3"

	"github.com/goliatone/go-press/internal/runtimeconfig"
)

// OpenBunDB materialises a bun handle from the storage configuration. The
// memory driver returns nil so the container keeps its in-memory repositories.
func OpenBunDB(cfg runtimeconfig.StorageConfig) (*bun.DB, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "memory":
		return nil, nil
	case "sqlite":
		return OpenSQLiteDB(cfg.DSN)
	case "postgres":
		return nil, fmt.Errorf("di: postgres requires a host-supplied *sql.DB, use NewPostgresDB")
	default:
		return nil, fmt.Errorf("di: unsupported storage driver %q", cfg.Driver)
	}
}

// OpenSQLiteDB opens a SQLite database and wraps it with the bun dialect.
// SQLite serialises writers, so the pool is capped at a single connection.
func OpenSQLiteDB(dsn string) (*bun.DB, error) {
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("di: open sqlite database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return bun.NewDB(sqlDB, sqlitedialect.New()), nil
}

// NewPostgresDB wraps an already opened Postgres connection with the bun
// dialect. Driver selection stays with the host application.
func NewPostgresDB(sqlDB *sql.DB) *bun.DB {
	return bun.NewDB(sqlDB, pgdialect.New())
}
