// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// DefaultViews are the statements SetupTestProject runs when given none.
var DefaultViews = []string{
	"CREATE TABLE orders (id INTEGER PRIMARY KEY, amount REAL)",
	"CREATE VIEW open_orders AS SELECT id, amount FROM orders",
	"CREATE VIEW big_orders AS SELECT id FROM open_orders WHERE amount > 100",
}

// SetupTestProject creates a temporary project: a SQLite database built from
// stmts (DefaultViews if none) and a dbexport.yaml exporting its main schema.
// It returns the project directory and the DB_URL that points at the database.
func SetupTestProject(t *testing.T, stmts ...string) (string, string) {
	t.Helper()

	if len(stmts) == 0 {
		stmts = DefaultViews
	}

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "app.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to open %s: %v", dbPath, err)
	}
	defer func() { _ = db.Close() }()

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to run %q: %v", stmt, err)
		}
	}

	cfg := "schemas: [main]\ndefault_schema: main\n"
	if err := os.WriteFile(filepath.Join(tmpDir, "dbexport.yaml"), []byte(cfg), 0600); err != nil {
		t.Fatalf("failed to create dbexport.yaml: %v", err)
	}

	return tmpDir, "sqlite://" + dbPath
}
