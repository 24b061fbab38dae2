package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"shopify-ingest-layer/internal/infrastructure/repository/entity"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// OpenDB opens a bun database for the given DSN. Postgres DSNs
// (postgres:// or postgresql://) use the pq driver; anything else is
// treated as a SQLite path, which is what local development and tests use.
func OpenDB(dsn string) (*bun.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		sqldb, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres database: %w", err)
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	}

	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if strings.Contains(dsn, ":memory:") {
		// An in-memory SQLite database exists per connection; pin the pool
		// to one connection so every query sees the same database.
		sqldb.SetMaxOpenConns(1)
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// EnsureSchema creates the five tenant-scoped tables and their unique
// (tenant_id, external_id) indexes if they do not exist yet.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	models := []interface{}{
		(*entity.TenantRecord)(nil),
		(*entity.CustomerRecord)(nil),
		(*entity.OrderRecord)(nil),
		(*entity.ProductRecord)(nil),
		(*entity.CheckoutRecord)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	indexes := []struct {
		name  string
		model interface{}
	}{
		{"customers_tenant_external_idx", (*entity.CustomerRecord)(nil)},
		{"orders_tenant_external_idx", (*entity.OrderRecord)(nil)},
		{"products_tenant_external_idx", (*entity.ProductRecord)(nil)},
		{"checkouts_tenant_external_idx", (*entity.CheckoutRecord)(nil)},
	}
	for _, idx := range indexes {
		_, err := db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			Unique().
			IfNotExists().
			Column("tenant_id", "external_id").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}
	return nil
}
