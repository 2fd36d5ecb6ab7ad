// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/boxkeep/internal/core/ledger"
	"github.com/example/boxkeep/internal/ports/secondary"
)

// SnapshotRepository implements secondary.SnapshotStore with SQLite.
// Each period is one snapshots row plus its inventory_records rows.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new SQLite snapshot repository.
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Exists reports whether a snapshot has been saved for the period.
func (r *SnapshotRepository) Exists(ctx context.Context, period ledger.Period) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM snapshots WHERE period = ?",
		period.String(),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check snapshot: %w", err)
	}
	return count > 0, nil
}

// Load returns every row of the period snapshot in saved order.
func (r *SnapshotRepository) Load(ctx context.Context, period ledger.Period) ([]*secondary.InventoryRecord, error) {
	exists, err := r.Exists(ctx, period)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &ledger.SnapshotNotFoundError{Period: period}
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, serial, box, cell, placed_at, report_generated, retrieved_at
		FROM inventory_records WHERE period = ? ORDER BY seq`,
		period.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	defer rows.Close()

	var records []*secondary.InventoryRecord
	for rows.Next() {
		var (
			placedAt    string
			reported    int
			retrievedAt sql.NullString
		)

		record := &secondary.InventoryRecord{}
		if err := rows.Scan(&record.ID, &record.Serial, &record.Box, &record.Cell, &placedAt, &reported, &retrievedAt); err != nil {
			return nil, fmt.Errorf("failed to scan inventory record: %w", err)
		}

		record.PlacedAt, err = secondary.ParseTimestamp(placedAt)
		if err != nil {
			return nil, fmt.Errorf("record %d: bad placed_at: %w", record.ID, err)
		}
		record.ReportGenerated = reported != 0
		if retrievedAt.Valid && retrievedAt.String != "" {
			t, err := secondary.ParseTimestamp(retrievedAt.String)
			if err != nil {
				return nil, fmt.Errorf("record %d: bad retrieved_at: %w", record.ID, err)
			}
			record.RetrievedAt = &t
		}

		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate inventory records: %w", err)
	}

	return records, nil
}

// Save replaces the period snapshot with records in one transaction.
func (r *SnapshotRepository) Save(ctx context.Context, period ledger.Period, records []*secondary.InventoryRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	key := period.String()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshots (period, saved_at) VALUES (?, CURRENT_TIMESTAMP)
		ON CONFLICT(period) DO UPDATE SET saved_at = CURRENT_TIMESTAMP`,
		key,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM inventory_records WHERE period = ?", key); err != nil {
		return fmt.Errorf("failed to clear snapshot rows: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO inventory_records
		(period, seq, id, serial, box, cell, placed_at, report_generated, retrieved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for seq, record := range records {
		var retrievedAt sql.NullString
		if record.RetrievedAt != nil {
			retrievedAt = sql.NullString{String: secondary.FormatTimestamp(*record.RetrievedAt), Valid: true}
		}
		reported := 0
		if record.ReportGenerated {
			reported = 1
		}

		_, err := stmt.ExecContext(ctx,
			key, seq, record.ID, record.Serial, record.Box, record.Cell,
			secondary.FormatTimestamp(record.PlacedAt), reported, retrievedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert record %d: %w", record.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// Periods lists every saved period, oldest first.
func (r *SnapshotRepository) Periods(ctx context.Context) ([]ledger.Period, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT period FROM snapshots ORDER BY period")
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var periods []ledger.Period
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan period: %w", err)
		}
		p, err := ledger.ParsePeriod(key)
		if err != nil {
			return nil, fmt.Errorf("failed to parse period %q: %w", key, err)
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

// Ensure SnapshotRepository implements the interface
var _ secondary.SnapshotStore = (*SnapshotRepository)(nil)
