package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/boxkeep/internal/config"
	"github.com/example/boxkeep/internal/core/grid"
	"github.com/example/boxkeep/internal/core/ledger"
	"github.com/example/boxkeep/internal/ctxutil"
	"github.com/example/boxkeep/internal/ports/primary"
	"github.com/example/boxkeep/internal/ports/secondary"
)

// WarehouseServiceImpl implements the WarehouseService interface.
// It keeps the occupancy grid consistent with the record store's active
// subset: every mutation either adjusts both or rebuilds the grid.
type WarehouseServiceImpl struct {
	settings config.Settings
	store    *RecordStore
	grid     *grid.Grid
	log      zerolog.Logger
}

// NewWarehouseService creates a new WarehouseService with injected dependencies.
func NewWarehouseService(settings config.Settings, store *RecordStore, log zerolog.Logger) *WarehouseServiceImpl {
	return &WarehouseServiceImpl{
		settings: settings,
		store:    store,
		log:      log.With().Str("component", "warehouse").Logger(),
	}
}

// InitializePeriod opens the period containing now.
func (s *WarehouseServiceImpl) InitializePeriod(ctx context.Context, now time.Time) (*primary.PeriodHandle, error) {
	period := ledger.PeriodOf(now)

	res, err := s.store.InitPeriod(ctx, period)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.Load(ctx, period); err != nil {
		return nil, err
	}
	if err := s.rebuild(); err != nil {
		s.grid = nil
		return nil, err
	}

	if res.Created {
		s.logger(ctx).Info().
			Int("carried", res.Carried).
			Bool("sentinel", res.Sentinel).
			Msg("period snapshot created")
	}

	return &primary.PeriodHandle{
		Period:    period.String(),
		Created:   res.Created,
		Carried:   res.Carried,
		Records:   len(s.store.Records()),
		Capacity:  s.grid.Len(),
		Available: s.grid.Free(),
	}, nil
}

// CurrentGrid returns the occupancy view of the open period.
func (s *WarehouseServiceImpl) CurrentGrid(ctx context.Context) (*primary.GridView, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	rows := s.grid.Rows()
	view := &primary.GridView{
		Boxes:  s.grid.Boxes(),
		Cells:  s.grid.Cells(),
		Rows:   make([][]bool, len(rows)),
		Tokens: s.grid.Render(s.settings.Markers()),
		Used:   s.grid.Used(),
		Free:   s.grid.Free(),
	}
	for i, row := range rows {
		view.Rows[i] = make([]bool, len(row))
		for j, st := range row {
			view.Rows[i][j] = st == grid.Full
		}
	}
	return view, nil
}

// PlaceItem assigns the next free slot to a new item.
func (s *WarehouseServiceImpl) PlaceItem(ctx context.Context, req primary.PlaceItemRequest) (*primary.Item, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	serial := strings.TrimSpace(req.Serial)
	if err := ledger.CanPlace(ledger.PlaceContext{Serial: serial}).Error(); err != nil {
		return nil, err
	}

	slot, ok := s.grid.AllocateSlot()
	if !ok {
		s.logger(ctx).Warn().Str("serial", serial).Int("capacity", s.grid.Len()).Msg("no free slot")
		return nil, ledger.ErrSlotsFull
	}

	record := s.store.Create(serial, slot.Box, slot.Cell, req.Now)
	if err := s.rebuild(); err != nil {
		return nil, err
	}

	s.logger(ctx).Info().
		Int("record_id", record.ID).
		Str("serial", record.Serial).
		Int("box", record.Box).
		Int("cell", record.Cell).
		Msg("item placed")

	return recordToItem(record), nil
}

// RetrieveItems marks committed items as taken out of storage.
func (s *WarehouseServiceImpl) RetrieveItems(ctx context.Context, ids []int, now time.Time) (*primary.RetrieveResult, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: record ids", ledger.ErrMissingInput)
	}

	updated, skipped := s.store.MarkRetrieved(ids, now)
	if err := s.rebuild(); err != nil {
		return nil, err
	}

	s.logger(ctx).Info().Ints("updated", updated).Ints("skipped", skipped).Msg("items retrieved")

	return &primary.RetrieveResult{Updated: updated, Skipped: skipped}, nil
}

// DeleteItems releases the items' slots and removes their records.
// Unknown ids are ignored.
func (s *WarehouseServiceImpl) DeleteItems(ctx context.Context, ids []int) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: record ids", ledger.ErrMissingInput)
	}

	for _, id := range ids {
		r := s.store.Find(id)
		if r == nil || !r.Active() {
			continue
		}
		if err := s.grid.Release(r.Box, r.Cell); err != nil {
			return fmt.Errorf("failed to release slot of record %d: %w", id, err)
		}
	}

	removed := s.store.Delete(ids)
	if err := s.rebuild(); err != nil {
		return err
	}

	for _, r := range removed {
		s.logger(ctx).Info().Int("record_id", r.ID).Int("box", r.Box).Int("cell", r.Cell).Msg("item deleted")
	}
	return nil
}

// CommitAndSave commits the working batch and persists the period.
// The open period is saved even when now falls in a later month; the next
// InitializePeriod performs the rollover.
func (s *WarehouseServiceImpl) CommitAndSave(ctx context.Context, now time.Time) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}

	period := s.store.Period()
	if current := ledger.PeriodOf(now); current != period {
		s.logger(ctx).Warn().Str("current", current.String()).Msg("saving into a past period")
	}

	committed := s.store.CommitReports()
	if err := s.store.Save(ctx, period); err != nil {
		return err
	}

	s.logger(ctx).Info().Int("committed", committed).Msg("period saved")
	return nil
}

// Save persists the period without committing the working batch.
func (s *WarehouseServiceImpl) Save(ctx context.Context) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	if err := s.store.Save(ctx, s.store.Period()); err != nil {
		return err
	}
	s.logger(ctx).Debug().Msg("period saved")
	return nil
}

// GenerateReport exports every record placed on date's calendar day, then
// re-persists the period snapshot.
func (s *WarehouseServiceImpl) GenerateReport(ctx context.Context, date time.Time, destination string) (*primary.ReportResult, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	n, err := s.store.ExportSubset(ctx, placedOn(date), destination)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, s.store.Period()); err != nil {
		return nil, err
	}

	s.logger(ctx).Info().Str("destination", destination).Int("rows", n).Msg("report generated")

	return &primary.ReportResult{
		Destination: destination,
		Date:        date.Format("2006-01-02"),
		Count:       n,
	}, nil
}

// ListPending returns the working batch.
func (s *WarehouseServiceImpl) ListPending(ctx context.Context) ([]*primary.Item, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}
	return recordsToItems(s.store.Pending()), nil
}

// SearchItems returns committed items still in storage matching filters.
// The serial filter matches from the start of the serial.
func (s *WarehouseServiceImpl) SearchItems(ctx context.Context, filters primary.SearchFilters) ([]*primary.Item, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}
	if filters.SerialPrefix == "" && filters.PlacedOn == nil {
		return nil, fmt.Errorf("%w: set a serial or a date to search", ledger.ErrMissingInput)
	}

	var onDate func(*secondary.InventoryRecord) bool
	if filters.PlacedOn != nil {
		onDate = placedOn(*filters.PlacedOn)
	}

	records := s.store.Select(func(r *secondary.InventoryRecord) bool {
		if !r.Active() || !r.ReportGenerated {
			return false
		}
		if filters.SerialPrefix != "" && !strings.HasPrefix(r.Serial, filters.SerialPrefix) {
			return false
		}
		if onDate != nil && !onDate(r) {
			return false
		}
		return true
	})
	return recordsToItems(records), nil
}

// Dirty reports whether there are unsaved changes.
func (s *WarehouseServiceImpl) Dirty() bool {
	return s.store.Dirty()
}

// Helper methods

func (s *WarehouseServiceImpl) ensureOpen() error {
	if !s.store.Loaded() || s.grid == nil {
		return ledger.ErrPeriodNotInitialized
	}
	return nil
}

// rebuild derives the grid from the active subset.
func (s *WarehouseServiceImpl) rebuild() error {
	active := s.store.Active()
	slots := make([]grid.Slot, len(active))
	for i, r := range active {
		slots[i] = grid.Slot{ID: r.ID, Box: r.Box, Cell: r.Cell}
	}

	g, err := grid.Build(slots, s.settings.BoxAmount, s.settings.CellAmount)
	if err != nil {
		return fmt.Errorf("failed to build grid for period %s: %w", s.store.Period(), err)
	}
	s.grid = g
	return nil
}

func (s *WarehouseServiceImpl) logger(ctx context.Context) *zerolog.Logger {
	l := s.log.With().Str("period", s.store.Period().String())
	if op := ctxutil.OperatorFromContext(ctx); op != "" {
		l = l.Str("operator", op)
	}
	logger := l.Logger()
	return &logger
}

// placedOn matches records placed on date's calendar day in date's location.
func placedOn(date time.Time) func(*secondary.InventoryRecord) bool {
	y, m, d := date.Date()
	return func(r *secondary.InventoryRecord) bool {
		ry, rm, rd := r.PlacedAt.In(date.Location()).Date()
		return ry == y && rm == m && rd == d
	}
}

func recordToItem(r *secondary.InventoryRecord) *primary.Item {
	item := &primary.Item{
		ID:              r.ID,
		Serial:          r.Serial,
		Box:             r.Box,
		Cell:            r.Cell,
		PlacedAt:        r.PlacedAt,
		ReportGenerated: r.ReportGenerated,
	}
	if r.RetrievedAt != nil {
		t := *r.RetrievedAt
		item.RetrievedAt = &t
	}
	return item
}

func recordsToItems(records []*secondary.InventoryRecord) []*primary.Item {
	items := make([]*primary.Item, len(records))
	for i, r := range records {
		items[i] = recordToItem(r)
	}
	return items
}

// Ensure WarehouseServiceImpl implements the interface.
var _ primary.WarehouseService = (*WarehouseServiceImpl)(nil)
