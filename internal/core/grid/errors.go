package grid

import "fmt"

// OutOfRangeSlotError reports a box/cell outside the configured grid.
// During Build it means an upstream record is corrupted.
type OutOfRangeSlotError struct {
	RecordID int
	Box      int
	Cell     int
	Boxes    int
	Cells    int
}

func (e *OutOfRangeSlotError) Error() string {
	if e.RecordID != 0 {
		return fmt.Sprintf("record %d references box %d cell %d outside grid %dx%d",
			e.RecordID, e.Box, e.Cell, e.Boxes, e.Cells)
	}
	return fmt.Sprintf("box %d cell %d outside grid %dx%d", e.Box, e.Cell, e.Boxes, e.Cells)
}
