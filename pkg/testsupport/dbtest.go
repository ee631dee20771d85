package testsupport

import (
	"database/sql"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// NewSQLiteMemoryDB opens a private in-memory sqlite database. The database
// lives until the last connection closes.
func NewSQLiteMemoryDB() (*sql.DB, error) {
	return sql.Open("sqlite3", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
}
