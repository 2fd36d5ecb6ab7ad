package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete schema for fresh databases.
// It reflects the state after all migrations; keep the two in sync.
//
// Tests build their databases from GetSchemaSQL() rather than hardcoding
// CREATE TABLE statements, so a repository referencing a missing column
// fails with "no such column" right away.
const SchemaSQL = `
-- One row per saved monthly snapshot
CREATE TABLE IF NOT EXISTS snapshots (
	period TEXT PRIMARY KEY,
	saved_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Inventory rows of a snapshot, seq preserves file order
CREATE TABLE IF NOT EXISTS inventory_records (
	period TEXT NOT NULL,
	seq INTEGER NOT NULL,
	id INTEGER NOT NULL,
	serial TEXT NOT NULL,
	box INTEGER NOT NULL,
	cell INTEGER NOT NULL,
	placed_at TEXT NOT NULL,
	report_generated INTEGER NOT NULL DEFAULT 0,
	retrieved_at TEXT,
	PRIMARY KEY (period, seq),
	FOREIGN KEY (period) REFERENCES snapshots(period) ON DELETE CASCADE
);

`

// InitSchema creates the schema on a fresh database, or runs pending
// migrations on an existing one.
func InitSchema(db *sql.DB) error {
	var tableCount int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount > 0 {
		return RunMigrations(db)
	}

	var oldTableCount int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('snapshots', 'inventory_records')").Scan(&oldTableCount)
	if err != nil {
		return err
	}
	if oldTableCount > 0 {
		// Tables predate version tracking
		return RunMigrations(db)
	}

	// Completely fresh install - create modern schema directly and mark
	// every migration as applied
	if _, err := db.Exec(SchemaSQL); err != nil {
		return err
	}
	if err := ensureVersionTable(db); err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
func GetSchemaSQL() string {
	return SchemaSQL
}
