package app

import (
	"context"
	"fmt"
	"io"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/boxkeep/internal/config"
	"github.com/example/boxkeep/internal/core/ledger"
	"github.com/example/boxkeep/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// mockSnapshotStore implements secondary.SnapshotStore in memory.
type mockSnapshotStore struct {
	snapshots map[ledger.Period][]*secondary.InventoryRecord
	saves     int
	saveErr   error
	loadErr   error
}

func newMockSnapshotStore() *mockSnapshotStore {
	return &mockSnapshotStore{snapshots: make(map[ledger.Period][]*secondary.InventoryRecord)}
}

func (m *mockSnapshotStore) Exists(ctx context.Context, period ledger.Period) (bool, error) {
	_, ok := m.snapshots[period]
	return ok, nil
}

func (m *mockSnapshotStore) Load(ctx context.Context, period ledger.Period) ([]*secondary.InventoryRecord, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	rows, ok := m.snapshots[period]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ledger.ErrSnapshotNotFound, period)
	}
	return cloneAll(rows), nil
}

func (m *mockSnapshotStore) Save(ctx context.Context, period ledger.Period, records []*secondary.InventoryRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.snapshots[period] = cloneAll(records)
	return nil
}

func (m *mockSnapshotStore) Periods(ctx context.Context) ([]ledger.Period, error) {
	var out []ledger.Period
	for p := range m.snapshots {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

// mockReportWriter implements secondary.ReportWriter capturing output.
type mockReportWriter struct {
	written  map[string][]*secondary.InventoryRecord
	writeErr error
}

func newMockReportWriter() *mockReportWriter {
	return &mockReportWriter{written: make(map[string][]*secondary.InventoryRecord)}
}

func (m *mockReportWriter) WriteReport(ctx context.Context, destination string, records []*secondary.InventoryRecord) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.written[destination] = cloneAll(records)
	return nil
}

var (
	_ secondary.SnapshotStore = (*mockSnapshotStore)(nil)
	_ secondary.ReportWriter  = (*mockReportWriter)(nil)
)

// ============================================================================
// Test Helpers
// ============================================================================

func cloneAll(records []*secondary.InventoryRecord) []*secondary.InventoryRecord {
	out := make([]*secondary.InventoryRecord, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

func mustPeriod(t *testing.T, s string) ledger.Period {
	t.Helper()
	p, err := ledger.ParsePeriod(s)
	if err != nil {
		t.Fatalf("bad period %q: %v", s, err)
	}
	return p
}

func at(day, hour int) time.Time {
	return time.Date(2026, time.October, day, hour, 0, 0, 0, time.Local)
}

func timePtr(t time.Time) *time.Time { return &t }

func testSettings(boxes, cells int) config.Settings {
	s := config.Default()
	s.BoxAmount = boxes
	s.CellAmount = cells
	return s
}

func newTestWarehouseService(boxes, cells int) (*WarehouseServiceImpl, *mockSnapshotStore, *mockReportWriter) {
	snapshots := newMockSnapshotStore()
	reports := newMockReportWriter()
	store := NewRecordStore(snapshots, reports)
	svc := NewWarehouseService(testSettings(boxes, cells), store, zerolog.New(io.Discard))
	return svc, snapshots, reports
}
