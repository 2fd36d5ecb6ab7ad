// Package sqlite_test contains integration tests for SQLite repositories.
//
// All test databases are built from db.GetSchemaSQL(); do not hardcode
// CREATE TABLE statements in test files.
package sqlite_test

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/boxkeep/internal/core/ledger"
	"github.com/example/boxkeep/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// Every pooled connection would get its own empty :memory: database
	testDB.SetMaxOpenConns(1)

	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

func mustPeriod(t *testing.T, s string) ledger.Period {
	t.Helper()
	p, err := ledger.ParsePeriod(s)
	if err != nil {
		t.Fatalf("bad period %q: %v", s, err)
	}
	return p
}

func localTime(day, hour, min, sec int) time.Time {
	return time.Date(2026, time.October, day, hour, min, sec, 0, time.Local)
}
