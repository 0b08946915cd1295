package press

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-press/internal/migrations"
)

// Models lists the bun models registered by the press schema, in dependency order.
func Models() []any {
	return migrations.Models()
}

// CreateTables creates the press schema on the supplied database.
func CreateTables(ctx context.Context, db *bun.DB) error {
	return migrations.CreateTables(ctx, db)
}

// DropTables drops the press schema.
func DropTables(ctx context.Context, db *bun.DB) error {
	return migrations.DropTables(ctx, db)
}

// ResetTables drops and recreates the press schema, primarily for tests.
func ResetTables(ctx context.Context, db *bun.DB) error {
	return migrations.ResetTables(ctx, db)
}
