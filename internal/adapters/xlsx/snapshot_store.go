package xlsx

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/example/boxkeep/internal/core/ledger"
	"github.com/example/boxkeep/internal/ports/secondary"
)

const extension = ".xlsx"

// SnapshotStore implements secondary.SnapshotStore with one workbook per
// period, named YYYYMM.xlsx, under a data directory.
type SnapshotStore struct {
	dir string
}

// NewSnapshotStore creates a workbook-backed snapshot store rooted at dir.
func NewSnapshotStore(dir string) *SnapshotStore {
	return &SnapshotStore{dir: dir}
}

// Path returns the workbook path of a period.
func (s *SnapshotStore) Path(period ledger.Period) string {
	return filepath.Join(s.dir, period.String()+extension)
}

// Exists reports whether the period workbook is present.
func (s *SnapshotStore) Exists(ctx context.Context, period ledger.Period) (bool, error) {
	info, err := os.Stat(s.Path(period))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat snapshot: %w", err)
	}
	return !info.IsDir(), nil
}

// Load reads every row of the period workbook.
func (s *SnapshotStore) Load(ctx context.Context, period ledger.Period) ([]*secondary.InventoryRecord, error) {
	exists, err := s.Exists(ctx, period)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &ledger.SnapshotNotFoundError{Period: period}
	}
	return readWorkbook(s.Path(period))
}

// Save rewrites the period workbook.
func (s *SnapshotStore) Save(ctx context.Context, period ledger.Period, records []*secondary.InventoryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeWorkbook(s.Path(period), records)
}

// Periods lists periods with a workbook in the data directory, oldest first.
// Files whose name is not a period are ignored.
func (s *SnapshotStore) Periods(ctx context.Context) ([]ledger.Period, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*"+extension))
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	var periods []ledger.Period
	for _, m := range matches {
		name := strings.TrimSuffix(filepath.Base(m), extension)
		if len(name) != 6 {
			continue
		}
		p, err := ledger.ParsePeriod(name)
		if err != nil {
			continue
		}
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })
	return periods, nil
}

// Ensure SnapshotStore implements the interface
var _ secondary.SnapshotStore = (*SnapshotStore)(nil)
