package xlsx

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/example/boxkeep/internal/ports/secondary"
)

// ReportWriter implements secondary.ReportWriter, writing reports in the
// same workbook layout as snapshots.
type ReportWriter struct{}

// NewReportWriter creates a workbook report writer.
func NewReportWriter() *ReportWriter {
	return &ReportWriter{}
}

// WriteReport writes records to destination, which must end in .xlsx.
func (w *ReportWriter) WriteReport(ctx context.Context, destination string, records []*secondary.InventoryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !strings.EqualFold(filepath.Ext(destination), extension) {
		return fmt.Errorf("report destination %q must end in %s", destination, extension)
	}
	if err := writeWorkbook(destination, records); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// Ensure ReportWriter implements the interface
var _ secondary.ReportWriter = (*ReportWriter)(nil)
