package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/boxkeep/internal/core/ledger"
	"github.com/example/boxkeep/internal/ports/secondary"
)

// RecordStore owns the in-memory record set of one period and its
// round-trips through a SnapshotStore. Mutations stay in memory until Save.
type RecordStore struct {
	snapshots secondary.SnapshotStore
	reports   secondary.ReportWriter

	period  ledger.Period
	loaded  bool
	records []*secondary.InventoryRecord // insertion order, sentinel excluded
	dirty   bool
}

// InitResult describes what InitPeriod did.
type InitResult struct {
	Created  bool
	Carried  int
	Sentinel bool
}

// NewRecordStore creates a RecordStore over the given ports.
func NewRecordStore(snapshots secondary.SnapshotStore, reports secondary.ReportWriter) *RecordStore {
	return &RecordStore{
		snapshots: snapshots,
		reports:   reports,
	}
}

// InitPeriod seeds the period snapshot if it does not exist yet. Still-active
// records of the previous period carry forward; with nothing to carry, a
// single sentinel row is written instead.
func (s *RecordStore) InitPeriod(ctx context.Context, period ledger.Period) (*InitResult, error) {
	exists, err := s.snapshots.Exists(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("failed to check snapshot %s: %w", period, err)
	}

	input := ledger.RolloverPlanInput{Target: period, SnapshotExists: exists}
	var prior []*secondary.InventoryRecord
	if !exists {
		prev := period.Prev()
		input.PriorExists, err = s.snapshots.Exists(ctx, prev)
		if err != nil {
			return nil, fmt.Errorf("failed to check snapshot %s: %w", prev, err)
		}
		if input.PriorExists {
			prior, err = s.snapshots.Load(ctx, prev)
			if err != nil {
				return nil, fmt.Errorf("failed to load snapshot %s: %w", prev, err)
			}
			for _, r := range prior {
				if r.Active() && !r.IsSentinel() {
					input.PriorActiveIDs = append(input.PriorActiveIDs, r.ID)
				}
			}
		}
	}

	plan := ledger.GenerateRolloverPlan(input)
	if plan.Skip {
		return &InitResult{}, nil
	}

	var seed []*secondary.InventoryRecord
	if plan.Sentinel {
		seed = []*secondary.InventoryRecord{secondary.SentinelRecord()}
	} else {
		carry := make(map[int]bool, len(plan.CarryIDs))
		for _, id := range plan.CarryIDs {
			carry[id] = true
		}
		for _, r := range prior {
			if carry[r.ID] && r.Active() && !r.IsSentinel() {
				seed = append(seed, r.Clone())
			}
		}
	}

	if err := s.snapshots.Save(ctx, period, seed); err != nil {
		return nil, fmt.Errorf("failed to seed snapshot %s: %w", period, err)
	}

	return &InitResult{Created: true, Carried: len(plan.CarryIDs), Sentinel: plan.Sentinel}, nil
}

// Load replaces the in-memory set with the period snapshot, sentinel rows
// filtered out. Fails with ledger.SnapshotNotFoundError if none exists.
func (s *RecordStore) Load(ctx context.Context, period ledger.Period) ([]*secondary.InventoryRecord, error) {
	exists, err := s.snapshots.Exists(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("failed to check snapshot %s: %w", period, err)
	}
	if !exists {
		return nil, &ledger.SnapshotNotFoundError{Period: period}
	}

	rows, err := s.snapshots.Load(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %s: %w", period, err)
	}

	records := make([]*secondary.InventoryRecord, 0, len(rows))
	for _, r := range rows {
		if r.IsSentinel() {
			continue
		}
		records = append(records, r)
	}

	s.period = period
	s.records = records
	s.loaded = true
	s.dirty = false

	return s.Records(), nil
}

// Loaded reports whether a period is open.
func (s *RecordStore) Loaded() bool { return s.loaded }

// Period returns the open period.
func (s *RecordStore) Period() ledger.Period { return s.period }

// Dirty reports whether the set changed since the last load or save.
func (s *RecordStore) Dirty() bool { return s.dirty }

// Records returns copies of every record, in insertion order.
func (s *RecordStore) Records() []*secondary.InventoryRecord {
	return s.Select(func(*secondary.InventoryRecord) bool { return true })
}

// Active returns copies of records still occupying a slot.
func (s *RecordStore) Active() []*secondary.InventoryRecord {
	return s.Select((*secondary.InventoryRecord).Active)
}

// Pending returns copies of records in the working batch.
func (s *RecordStore) Pending() []*secondary.InventoryRecord {
	return s.Select(func(r *secondary.InventoryRecord) bool { return !r.ReportGenerated })
}

// Select returns copies of the records matching pred.
func (s *RecordStore) Select(pred func(*secondary.InventoryRecord) bool) []*secondary.InventoryRecord {
	var out []*secondary.InventoryRecord
	for _, r := range s.records {
		if pred(r) {
			out = append(out, r.Clone())
		}
	}
	return out
}

// Find returns a copy of the record with id, or nil.
func (s *RecordStore) Find(id int) *secondary.InventoryRecord {
	if r := s.find(id); r != nil {
		return r.Clone()
	}
	return nil
}

// Create appends a new working-batch record and returns a copy of it.
func (s *RecordStore) Create(serial string, box, cell int, now time.Time) *secondary.InventoryRecord {
	maxID := 0
	for _, r := range s.records {
		if r.ID > maxID {
			maxID = r.ID
		}
	}

	record := &secondary.InventoryRecord{
		ID:              ledger.NextRecordID(maxID),
		Serial:          serial,
		Box:             box,
		Cell:            cell,
		PlacedAt:        stamp(now),
		ReportGenerated: false,
	}
	s.records = append(s.records, record)
	s.dirty = true

	return record.Clone()
}

// MarkRetrieved sets retrieved_at on every listed record that passes the
// retrieval guard. Ids that fail it, or are unknown, come back as skipped.
func (s *RecordStore) MarkRetrieved(ids []int, now time.Time) (updated, skipped []int) {
	at := stamp(now)
	for _, id := range ids {
		r := s.find(id)
		if r == nil {
			skipped = append(skipped, id)
			continue
		}
		guard := ledger.CanRetrieve(ledger.RetrieveContext{
			RecordID:        r.ID,
			ReportGenerated: r.ReportGenerated,
			Retrieved:       !r.Active(),
		})
		if !guard.Allowed {
			skipped = append(skipped, id)
			continue
		}
		t := at
		r.RetrievedAt = &t
		updated = append(updated, id)
	}
	if len(updated) > 0 {
		s.dirty = true
	}
	return updated, skipped
}

// CommitReports moves the working batch into the ledger and returns how many
// records were committed.
func (s *RecordStore) CommitReports() int {
	n := 0
	for _, r := range s.records {
		if !r.ReportGenerated {
			r.ReportGenerated = true
			n++
		}
	}
	if n > 0 {
		s.dirty = true
	}
	return n
}

// Delete removes the listed records and returns copies of what was removed.
// Callers release the grid cells of active records first.
func (s *RecordStore) Delete(ids []int) []*secondary.InventoryRecord {
	drop := make(map[int]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	var removed []*secondary.InventoryRecord
	kept := s.records[:0]
	for _, r := range s.records {
		if drop[r.ID] {
			removed = append(removed, r.Clone())
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	if len(removed) > 0 {
		s.dirty = true
	}
	return removed
}

// Save overwrites the period snapshot with the full in-memory set,
// retrieved history included.
func (s *RecordStore) Save(ctx context.Context, period ledger.Period) error {
	if err := s.snapshots.Save(ctx, period, s.Records()); err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", period, err)
	}
	if period == s.period {
		s.dirty = false
	}
	return nil
}

// ExportSubset writes the records matching pred to destination without
// touching the period snapshot. Returns the number of rows written.
func (s *RecordStore) ExportSubset(ctx context.Context, pred func(*secondary.InventoryRecord) bool, destination string) (int, error) {
	if destination == "" {
		return 0, fmt.Errorf("%w: report destination", ledger.ErrMissingInput)
	}
	subset := s.Select(pred)
	if err := s.reports.WriteReport(ctx, destination, subset); err != nil {
		return 0, fmt.Errorf("failed to write report %s: %w", destination, err)
	}
	return len(subset), nil
}

func (s *RecordStore) find(id int) *secondary.InventoryRecord {
	for _, r := range s.records {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// stamp truncates to the second precision snapshots keep.
func stamp(t time.Time) time.Time {
	return t.Truncate(time.Second)
}
