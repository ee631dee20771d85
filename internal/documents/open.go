package documents

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// Open wraps sqlDB in a bun.DB for the named dialect ("sqlite", "postgres" or "pg").
func Open(sqlDB *sql.DB, dialect string) (*bun.DB, error) {
	if sqlDB == nil {
		return nil, fmt.Errorf("documents: sql db required")
	}
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "", "sqlite", "sqlite3":
		db := bun.NewDB(sqlDB, sqlitedialect.New())
		db.SetMaxOpenConns(1)
		return db, nil
	case "postgres", "pg":
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("documents: unsupported dialect %q", dialect)
	}
}

// CreateTables creates the document tables when missing.
func CreateTables(ctx context.Context, db bun.IDB) error {
	for _, model := range Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("documents: create table %T: %w", model, err)
		}
	}
	return nil
}
