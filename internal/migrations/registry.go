package migrations

import (
	"context"
	"fmt"

	"github.com/goliatone/go-press/articles"
	"github.com/uptrace/bun"
)

// Models returns every bun model the press schema consists of, ordered so
// foreign key targets are created before their dependants.
func Models() []any {
	return []any{
		(*articles.Collection)(nil),
		(*articles.Article)(nil),
		(*articles.ArticleRevision)(nil),
	}
}

// CreateTables creates the press schema, skipping tables that already exist.
// The same statements work for both the sqlite and postgres dialects bun
// supports.
func CreateTables(ctx context.Context, db *bun.DB) error {
	for _, model := range Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("migrations: create table %T: %w", model, err)
		}
	}
	return nil
}

// DropTables removes the press schema in reverse dependency order. Intended
// for tests and throwaway environments.
func DropTables(ctx context.Context, db *bun.DB) error {
	models := Models()
	for i := len(models) - 1; i >= 0; i-- {
		if _, err := db.NewDropTable().Model(models[i]).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("migrations: drop table %T: %w", models[i], err)
		}
	}
	return nil
}

// ResetTables drops and recreates the press schema.
func ResetTables(ctx context.Context, db *bun.DB) error {
	if err := DropTables(ctx, db); err != nil {
		return err
	}
	return CreateTables(ctx, db)
}
