// Package primary defines the primary ports (driving side) of the application.
package primary

import (
	"context"
	"time"
)

// WarehouseService defines the primary port for slot and ledger operations.
// Every method except InitializePeriod requires an initialized period.
type WarehouseService interface {
	// InitializePeriod opens the period containing now, rolling over the
	// previous month's active records if the period has no snapshot yet.
	InitializePeriod(ctx context.Context, now time.Time) (*PeriodHandle, error)

	// CurrentGrid returns the occupancy view of the open period.
	CurrentGrid(ctx context.Context) (*GridView, error)

	// PlaceItem assigns the next free slot to a new item.
	PlaceItem(ctx context.Context, req PlaceItemRequest) (*Item, error)

	// RetrieveItems marks committed items as taken out of storage.
	RetrieveItems(ctx context.Context, ids []int, now time.Time) (*RetrieveResult, error)

	// DeleteItems releases the items' slots and removes their records.
	DeleteItems(ctx context.Context, ids []int) error

	// CommitAndSave commits the working batch and persists the period.
	CommitAndSave(ctx context.Context, now time.Time) error

	// Save persists the period without committing the working batch.
	Save(ctx context.Context) error

	// GenerateReport exports the items placed on date to destination.
	GenerateReport(ctx context.Context, date time.Time, destination string) (*ReportResult, error)

	// ListPending returns the working batch (items not yet committed).
	ListPending(ctx context.Context) ([]*Item, error)

	// SearchItems returns committed items still in storage matching filters.
	SearchItems(ctx context.Context, filters SearchFilters) ([]*Item, error)

	// Dirty reports whether there are unsaved changes.
	Dirty() bool
}

// PeriodHandle describes the open period.
type PeriodHandle struct {
	Period    string // YYYYMM
	Created   bool   // snapshot was seeded by this call
	Carried   int    // records carried forward from the previous period
	Records   int
	Capacity  int
	Available int
}

// PlaceItemRequest contains parameters for placing an item.
type PlaceItemRequest struct {
	Serial string
	Now    time.Time
}

// RetrieveResult contains the outcome of a retrieval request.
type RetrieveResult struct {
	Updated []int
	Skipped []int // not committed yet, already retrieved, or unknown
}

// SearchFilters contains filter options for searching stored items.
type SearchFilters struct {
	SerialPrefix string
	PlacedOn     *time.Time
}

// ReportResult contains the outcome of a report export.
type ReportResult struct {
	Destination string
	Date        string // YYYY-MM-DD
	Count       int
}

// Item represents an inventory record at the port boundary.
type Item struct {
	ID              int
	Serial          string
	Box             int
	Cell            int
	PlacedAt        time.Time
	ReportGenerated bool
	RetrievedAt     *time.Time
}

// GridView is a read-only snapshot of occupancy.
type GridView struct {
	Boxes  int
	Cells  int
	Rows   [][]bool // Rows[box-1][cell-1] is true when full
	Tokens []string // flat marker tokens, row-major
	Used   int
	Free   int
}
