package testutil

import (
	"database/sql"
	"testing"

	"github.com/iliyamo/school-activities/internal/database"
)

// OpenInMemoryDB opens an in-memory SQLite database with the schema
// applied.  Caller cleanup is registered automatically.
// We use a shared cache memory database so that multiple connections
// share the same DB if needed.
func OpenInMemoryDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.CreateTables(db, database.DriverSQLite); err != nil {
		t.Fatalf("create tables: %v", err)
	}
	return db
}
