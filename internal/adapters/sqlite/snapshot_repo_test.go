package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/boxkeep/internal/adapters/sqlite"
	"github.com/example/boxkeep/internal/core/ledger"
	"github.com/example/boxkeep/internal/ports/secondary"
)

func TestSnapshotRepository_ExistsAndNotFound(t *testing.T) {
	repo := sqlite.NewSnapshotRepository(setupTestDB(t))
	ctx := context.Background()
	period := mustPeriod(t, "202610")

	exists, err := repo.Exists(ctx, period)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("expected no snapshot")
	}

	_, err = repo.Load(ctx, period)
	if !errors.Is(err, ledger.ErrSnapshotNotFound) {
		t.Errorf("expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestSnapshotRepository_SaveLoadRoundTrip(t *testing.T) {
	repo := sqlite.NewSnapshotRepository(setupTestDB(t))
	ctx := context.Background()
	period := mustPeriod(t, "202610")
	retrieved := localTime(14, 16, 30, 5)

	records := []*secondary.InventoryRecord{
		{ID: 3, Serial: "SN-C", Box: 1, Cell: 3, PlacedAt: localTime(13, 9, 0, 1), ReportGenerated: true, RetrievedAt: &retrieved},
		{ID: 1, Serial: "SN-A", Box: 1, Cell: 1, PlacedAt: localTime(14, 8, 15, 0), ReportGenerated: false},
	}
	if err := repo.Save(ctx, period, records); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.Load(ctx, period)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].ID != 3 || got[1].ID != 1 {
		t.Errorf("expected saved order [3 1], got [%d %d]", got[0].ID, got[1].ID)
	}
	if !got[0].PlacedAt.Equal(records[0].PlacedAt) {
		t.Errorf("placed_at = %v, want %v", got[0].PlacedAt, records[0].PlacedAt)
	}
	if got[0].RetrievedAt == nil || !got[0].RetrievedAt.Equal(retrieved) {
		t.Errorf("retrieved_at = %v, want %v", got[0].RetrievedAt, retrieved)
	}
	if !got[0].ReportGenerated || got[1].ReportGenerated {
		t.Error("report_generated flags not preserved")
	}
	if got[1].RetrievedAt != nil {
		t.Error("expected active record to have no retrieved_at")
	}
}

func TestSnapshotRepository_SaveOverwrites(t *testing.T) {
	repo := sqlite.NewSnapshotRepository(setupTestDB(t))
	ctx := context.Background()
	period := mustPeriod(t, "202610")

	first := []*secondary.InventoryRecord{
		{ID: 1, Serial: "SN-A", Box: 1, Cell: 1, PlacedAt: localTime(1, 9, 0, 0)},
		{ID: 2, Serial: "SN-B", Box: 1, Cell: 2, PlacedAt: localTime(1, 9, 0, 0)},
	}
	if err := repo.Save(ctx, period, first); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	second := []*secondary.InventoryRecord{
		{ID: 2, Serial: "SN-B", Box: 1, Cell: 2, PlacedAt: localTime(1, 9, 0, 0)},
	}
	if err := repo.Save(ctx, period, second); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.Load(ctx, period)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != 1 || got[0].Serial != "SN-B" {
		t.Errorf("expected only SN-B after overwrite, got %d records", len(got))
	}
}

func TestSnapshotRepository_EmptySnapshotExists(t *testing.T) {
	repo := sqlite.NewSnapshotRepository(setupTestDB(t))
	ctx := context.Background()
	period := mustPeriod(t, "202610")

	if err := repo.Save(ctx, period, nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	exists, err := repo.Exists(ctx, period)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("expected empty snapshot to exist")
	}
	got, err := repo.Load(ctx, period)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no records, got %d", len(got))
	}
}

func TestSnapshotRepository_SentinelRow(t *testing.T) {
	repo := sqlite.NewSnapshotRepository(setupTestDB(t))
	ctx := context.Background()
	period := mustPeriod(t, "202610")

	if err := repo.Save(ctx, period, []*secondary.InventoryRecord{secondary.SentinelRecord()}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.Load(ctx, period)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != 1 || !got[0].IsSentinel() {
		t.Fatalf("expected the sentinel row back, got %+v", got)
	}
	if got[0].Active() {
		t.Error("sentinel must read back as retrieved")
	}
}

func TestSnapshotRepository_Periods(t *testing.T) {
	repo := sqlite.NewSnapshotRepository(setupTestDB(t))
	ctx := context.Background()

	for _, p := range []string{"202610", "202512", "202601"} {
		if err := repo.Save(ctx, mustPeriod(t, p), nil); err != nil {
			t.Fatalf("Save %s failed: %v", p, err)
		}
	}

	periods, err := repo.Periods(ctx)
	if err != nil {
		t.Fatalf("Periods failed: %v", err)
	}
	want := []string{"202512", "202601", "202610"}
	if len(periods) != len(want) {
		t.Fatalf("expected %d periods, got %d", len(want), len(periods))
	}
	for i, p := range periods {
		if p.String() != want[i] {
			t.Errorf("periods[%d] = %s, want %s", i, p, want[i])
		}
	}
}
