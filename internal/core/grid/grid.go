// Package grid contains the pure slot-allocation logic for the box/cell grid.
// A Grid is a flat, row-major view of every cell in the warehouse. It is
// always derived from the active record subset and never persisted.
//
// Addressing boundaries:
//   - box and cell are 1-based: box in [1, boxes], cell in [1, cells]
//   - grid indexes are 0-based: index in [0, boxes*cells)
//   - ordinals are 1-based positions (index + 1), as handed back by the
//     allocator in the original ledger format
package grid

import "fmt"

// State is the occupancy of a single cell.
type State uint8

const (
	Empty State = iota
	Full
)

// Slot addresses a single cell. ID is the record occupying it, carried only
// so corrupted records can be reported.
type Slot struct {
	ID   int
	Box  int
	Cell int
}

// Markers are the display tokens for the two cell states.
type Markers struct {
	Empty string
	Full  string
}

// Validate checks the markers are usable as distinct symbols.
func (m Markers) Validate() error {
	if m.Empty == "" || m.Full == "" {
		return fmt.Errorf("grid markers must be non-empty")
	}
	if m.Empty == m.Full {
		return fmt.Errorf("grid markers must differ (both %q)", m.Empty)
	}
	return nil
}

// Grid is the occupancy view of boxes*cells slots.
type Grid struct {
	boxes int
	cells int
	state []State
}

// New returns an all-empty grid.
func New(boxes, cells int) (*Grid, error) {
	if boxes < 1 || cells < 1 {
		return nil, fmt.Errorf("invalid grid dimensions %dx%d", boxes, cells)
	}
	return &Grid{
		boxes: boxes,
		cells: cells,
		state: make([]State, boxes*cells),
	}, nil
}

// Build creates a grid with every given slot marked full.
// A slot outside the configured bounds returns *OutOfRangeSlotError.
func Build(slots []Slot, boxes, cells int) (*Grid, error) {
	g, err := New(boxes, cells)
	if err != nil {
		return nil, err
	}
	for _, s := range slots {
		if !g.contains(s.Box, s.Cell) {
			return nil, &OutOfRangeSlotError{RecordID: s.ID, Box: s.Box, Cell: s.Cell, Boxes: boxes, Cells: cells}
		}
		g.state[Index(s.Box, s.Cell, cells)] = Full
	}
	return g, nil
}

// Boxes returns the configured box count.
func (g *Grid) Boxes() int { return g.boxes }

// Cells returns the configured cells per box.
func (g *Grid) Cells() int { return g.cells }

// Len returns the total number of slots.
func (g *Grid) Len() int { return len(g.state) }

// At returns the state at a 0-based index.
func (g *Grid) At(index int) State { return g.state[index] }

// StateOf returns the state of the given (box, cell).
func (g *Grid) StateOf(box, cell int) (State, error) {
	if !g.contains(box, cell) {
		return Empty, &OutOfRangeSlotError{Box: box, Cell: cell, Boxes: g.boxes, Cells: g.cells}
	}
	return g.state[Index(box, cell, g.cells)], nil
}

// States returns a copy of the flat state sequence.
func (g *Grid) States() []State {
	out := make([]State, len(g.state))
	copy(out, g.state)
	return out
}

// Used counts full cells.
func (g *Grid) Used() int {
	n := 0
	for _, s := range g.state {
		if s == Full {
			n++
		}
	}
	return n
}

// Free counts empty cells.
func (g *Grid) Free() int { return g.Len() - g.Used() }

// Rows splits the grid per box, row i holding box i+1.
func (g *Grid) Rows() [][]State {
	rows := make([][]State, g.boxes)
	for b := 0; b < g.boxes; b++ {
		row := make([]State, g.cells)
		copy(row, g.state[b*g.cells:(b+1)*g.cells])
		rows[b] = row
	}
	return rows
}

// Render maps every cell to its marker token.
func (g *Grid) Render(m Markers) []string {
	out := make([]string, len(g.state))
	for i, s := range g.state {
		if s == Full {
			out[i] = m.Full
		} else {
			out[i] = m.Empty
		}
	}
	return out
}

// Allocate claims a free cell and returns its 0-based index.
// ok is false when every cell is full; that is a normal outcome.
//
// The scan resumes right after the rightmost full cell. When the rightmost
// full cell is the last slot of the grid the scan restarts from index 0 and
// takes the first empty cell. An all-empty grid allocates index 0.
func (g *Grid) Allocate() (index int, ok bool) {
	firstEmpty := -1
	lastFull := -1
	for i, s := range g.state {
		if s == Empty && firstEmpty < 0 {
			firstEmpty = i
		}
		if s == Full {
			lastFull = i
		}
	}
	if firstEmpty < 0 {
		return 0, false
	}

	switch {
	case lastFull < 0:
		index = 0
	case lastFull == len(g.state)-1:
		index = firstEmpty
	default:
		index = lastFull + 1
	}
	g.state[index] = Full
	return index, true
}

// AllocateSlot is Allocate converted to a (box, cell) address.
func (g *Grid) AllocateSlot() (Slot, bool) {
	index, ok := g.Allocate()
	if !ok {
		return Slot{}, false
	}
	box, cell := SlotAt(index, g.cells)
	return Slot{Box: box, Cell: cell}, true
}

// Release marks (box, cell) empty. Releasing an empty cell is a no-op.
func (g *Grid) Release(box, cell int) error {
	if !g.contains(box, cell) {
		return &OutOfRangeSlotError{Box: box, Cell: cell, Boxes: g.boxes, Cells: g.cells}
	}
	g.state[Index(box, cell, g.cells)] = Empty
	return nil
}

func (g *Grid) contains(box, cell int) bool {
	return box >= 1 && box <= g.boxes && cell >= 1 && cell <= g.cells
}

// Index converts a 1-based (box, cell) into a 0-based grid index.
func Index(box, cell, cells int) int {
	return (box-1)*cells + (cell - 1)
}

// SlotAt converts a 0-based grid index into a 1-based (box, cell).
func SlotAt(index, cells int) (box, cell int) {
	return SlotFromOrdinal(index+1, cells)
}

// SlotFromOrdinal converts a 1-based ordinal into (box, cell) using the
// ledger's historical formula: cell = n % cells, where a zero remainder means
// the last cell of box n/cells.
func SlotFromOrdinal(n, cells int) (box, cell int) {
	cell = n % cells
	if cell == 0 {
		return n / cells, cells
	}
	return n/cells + 1, cell
}
