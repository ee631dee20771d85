package documents_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-sitecms/internal/documents"
	"github.com/goliatone/go-sitecms/pkg/testsupport"
)

func newBunDB(t *testing.T) *bun.DB {
	t.Helper()
	sqlDB, err := testsupport.NewSQLiteMemoryDB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := documents.Open(sqlDB, "sqlite")
	require.NoError(t, err)
	require.NoError(t, documents.CreateTables(context.Background(), db))
	return db
}
