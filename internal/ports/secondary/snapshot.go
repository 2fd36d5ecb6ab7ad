// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"time"

	"github.com/example/boxkeep/internal/core/ledger"
)

// TimestampLayout is the wall-clock form timestamps are persisted in.
// Values are naive local time at second precision.
const TimestampLayout = "2006-01-02 15:04:05"

// FormatTimestamp renders t's wall clock in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ParseTimestamp reads a TimestampLayout value as local time.
func ParseTimestamp(s string) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, s, time.Local)
}

// InventoryRecord represents one placed item as stored in a period snapshot.
type InventoryRecord struct {
	ID              int
	Serial          string
	Box             int
	Cell            int
	PlacedAt        time.Time
	ReportGenerated bool
	RetrievedAt     *time.Time // nil while the item occupies its slot
}

// Active reports whether the item still occupies its slot.
func (r *InventoryRecord) Active() bool {
	return r.RetrievedAt == nil
}

// IsSentinel reports whether the row is the period bootstrap placeholder.
func (r *InventoryRecord) IsSentinel() bool {
	return ledger.IsSentinel(r.Serial, r.ID, r.Box, r.Cell)
}

// Clone returns a deep copy.
func (r *InventoryRecord) Clone() *InventoryRecord {
	c := *r
	if r.RetrievedAt != nil {
		t := *r.RetrievedAt
		c.RetrievedAt = &t
	}
	return &c
}

// SentinelRecord returns the placeholder row for an otherwise empty period.
func SentinelRecord() *InventoryRecord {
	retrieved := ledger.SentinelTime
	return &InventoryRecord{
		ID:              ledger.SentinelID,
		Serial:          ledger.SentinelSerial,
		Box:             0,
		Cell:            0,
		PlacedAt:        ledger.SentinelTime,
		ReportGenerated: true,
		RetrievedAt:     &retrieved,
	}
}

// SnapshotStore defines the secondary port for per-period snapshot persistence.
// Snapshots are read and overwritten whole; row order is insertion order.
type SnapshotStore interface {
	// Exists reports whether a snapshot has been persisted for the period.
	Exists(ctx context.Context, period ledger.Period) (bool, error)

	// Load returns every row of the period snapshot, sentinel included.
	// Returns an error wrapping ledger.ErrSnapshotNotFound if none exists.
	Load(ctx context.Context, period ledger.Period) ([]*InventoryRecord, error)

	// Save overwrites the period snapshot with records.
	Save(ctx context.Context, period ledger.Period, records []*InventoryRecord) error

	// Periods lists every period with a snapshot, oldest first.
	Periods(ctx context.Context) ([]ledger.Period, error)
}

// ReportWriter defines the secondary port for exporting a record subset.
type ReportWriter interface {
	// WriteReport writes records to destination, replacing any existing file.
	WriteReport(ctx context.Context, destination string, records []*InventoryRecord) error
}
