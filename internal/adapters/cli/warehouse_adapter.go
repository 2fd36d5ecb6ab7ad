// Package cli contains thin adapters that translate CLI operations into
// primary port calls and render their results.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/example/boxkeep/internal/core/ledger"
	"github.com/example/boxkeep/internal/ports/primary"
	"github.com/example/boxkeep/internal/ports/secondary"
)

// WarehouseAdapter is a thin adapter that translates CLI operations to WarehouseService calls.
// It depends only on the WarehouseService interface, enabling easy testing with mocks.
type WarehouseAdapter struct {
	service primary.WarehouseService
	out     io.Writer
}

// NewWarehouseAdapter creates a new WarehouseAdapter with the given service.
func NewWarehouseAdapter(service primary.WarehouseService, out io.Writer) *WarehouseAdapter {
	return &WarehouseAdapter{
		service: service,
		out:     out,
	}
}

var (
	emptyColor = color.New(color.FgGreen)
	fullColor  = color.New(color.FgRed)
	warnColor  = color.New(color.FgYellow)
)

// Init opens the period containing now.
func (a *WarehouseAdapter) Init(ctx context.Context, now time.Time) (*primary.PeriodHandle, error) {
	h, err := a.service.InitializePeriod(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize period: %w", err)
	}

	if h.Created {
		fmt.Fprintf(a.out, "✓ Period %s created (%d carried over)\n", h.Period, h.Carried)
	} else {
		fmt.Fprintf(a.out, "✓ Period %s opened\n", h.Period)
	}
	fmt.Fprintf(a.out, "  Records:   %d\n", h.Records)
	fmt.Fprintf(a.out, "  Available: %d of %d\n", h.Available, h.Capacity)

	return h, nil
}

// Grid prints the occupancy grid, one line per box.
func (a *WarehouseAdapter) Grid(ctx context.Context) (*primary.GridView, error) {
	view, err := a.service.CurrentGrid(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load grid: %w", err)
	}

	width := len(fmt.Sprint(view.Boxes))
	for b, row := range view.Rows {
		var sb strings.Builder
		for c, full := range row {
			if c > 0 {
				sb.WriteByte(' ')
			}
			token := view.Tokens[b*view.Cells+c]
			if full {
				sb.WriteString(fullColor.Sprint(token))
			} else {
				sb.WriteString(emptyColor.Sprint(token))
			}
		}
		fmt.Fprintf(a.out, "Box %0*d  %s\n", width, b+1, sb.String())
	}
	fmt.Fprintf(a.out, "\n%d used, %d free\n", view.Used, view.Free)

	return view, nil
}

// Place places each serial in turn and prints its slot. It stops at the
// first failure; items placed before it are returned.
func (a *WarehouseAdapter) Place(ctx context.Context, serials []string, now time.Time) ([]*primary.Item, error) {
	var placed []*primary.Item
	for _, serial := range serials {
		item, err := a.service.PlaceItem(ctx, primary.PlaceItemRequest{Serial: serial, Now: now})
		if errors.Is(err, ledger.ErrSlotsFull) {
			fmt.Fprintln(a.out, warnColor.Sprint("All boxes are full."))
			return placed, err
		}
		if err != nil {
			return placed, err
		}
		fmt.Fprintf(a.out, "✓ %s placed in box %d cell %d (id %d)\n", item.Serial, item.Box, item.Cell, item.ID)
		placed = append(placed, item)
	}
	return placed, nil
}

// Retrieve marks items as retrieved and reports any ids that were skipped.
func (a *WarehouseAdapter) Retrieve(ctx context.Context, ids []int, now time.Time) (*primary.RetrieveResult, error) {
	res, err := a.service.RetrieveItems(ctx, ids, now)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve items: %w", err)
	}

	if len(res.Updated) > 0 {
		fmt.Fprintf(a.out, "✓ Retrieved %s\n", joinIDs(res.Updated))
	}
	if len(res.Skipped) > 0 {
		fmt.Fprintf(a.out, "%s %s (not committed, unknown or already retrieved)\n",
			warnColor.Sprint("Skipped"), joinIDs(res.Skipped))
	}
	return res, nil
}

// Delete removes items and frees their slots.
func (a *WarehouseAdapter) Delete(ctx context.Context, ids []int) error {
	if err := a.service.DeleteItems(ctx, ids); err != nil {
		return fmt.Errorf("failed to delete items: %w", err)
	}
	fmt.Fprintf(a.out, "✓ Deleted %s\n", joinIDs(ids))
	return nil
}

// Pending lists the working batch.
func (a *WarehouseAdapter) Pending(ctx context.Context) ([]*primary.Item, error) {
	items, err := a.service.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending items: %w", err)
	}

	if len(items) == 0 {
		fmt.Fprintln(a.out, "No pending items.")
		return items, nil
	}
	a.printItems(items)
	return items, nil
}

// Search lists committed items in storage matching filters.
func (a *WarehouseAdapter) Search(ctx context.Context, filters primary.SearchFilters) ([]*primary.Item, error) {
	items, err := a.service.SearchItems(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}

	if len(items) == 0 {
		fmt.Fprintln(a.out, "No matching items.")
		return items, nil
	}
	a.printItems(items)
	return items, nil
}

// Commit commits the working batch and saves the period.
func (a *WarehouseAdapter) Commit(ctx context.Context, now time.Time) error {
	pending, err := a.service.ListPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pending items: %w", err)
	}
	if err := a.service.CommitAndSave(ctx, now); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	fmt.Fprintf(a.out, "✓ Committed %d item(s) and saved\n", len(pending))
	return nil
}

// Save persists the period without committing.
func (a *WarehouseAdapter) Save(ctx context.Context) error {
	if err := a.service.Save(ctx); err != nil {
		return fmt.Errorf("failed to save: %w", err)
	}
	fmt.Fprintln(a.out, "✓ Saved")
	return nil
}

// Report exports the items placed on date.
func (a *WarehouseAdapter) Report(ctx context.Context, date time.Time, destination string) (*primary.ReportResult, error) {
	res, err := a.service.GenerateReport(ctx, date, destination)
	if err != nil {
		return nil, fmt.Errorf("failed to generate report: %w", err)
	}
	fmt.Fprintf(a.out, "✓ Report for %s written to %s (%d row(s))\n", res.Date, res.Destination, res.Count)
	return res, nil
}

func (a *WarehouseAdapter) printItems(items []*primary.Item) {
	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tSERIAL\tBOX\tCELL\tPLACED\tREPORTED\tRETRIEVED")
	fmt.Fprintln(w, "--\t------\t---\t----\t------\t--------\t---------")

	for _, item := range items {
		retrieved := "-"
		if item.RetrievedAt != nil {
			retrieved = secondary.FormatTimestamp(*item.RetrievedAt)
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\t%t\t%s\n",
			item.ID,
			item.Serial,
			item.Box,
			item.Cell,
			secondary.FormatTimestamp(item.PlacedAt),
			item.ReportGenerated,
			retrieved,
		)
	}

	w.Flush()
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}
