package grid

import (
	"errors"
	"reflect"
	"testing"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name  string
		slots []Slot
		want  []State
	}{
		{
			name: "no records leaves grid empty",
			want: []State{Empty, Empty, Empty, Empty, Empty, Empty},
		},
		{
			name:  "records mark their cells full",
			slots: []Slot{{ID: 1, Box: 1, Cell: 2}, {ID: 2, Box: 2, Cell: 3}},
			want:  []State{Empty, Full, Empty, Empty, Empty, Full},
		},
		{
			name:  "first and last cell",
			slots: []Slot{{ID: 1, Box: 1, Cell: 1}, {ID: 2, Box: 2, Cell: 3}},
			want:  []State{Full, Empty, Empty, Empty, Empty, Full},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Build(tt.slots, 2, 3)
			if err != nil {
				t.Fatalf("Build failed: %v", err)
			}
			if got := g.States(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("States() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuild_OutOfRange(t *testing.T) {
	tests := []struct {
		name string
		slot Slot
	}{
		{"box zero", Slot{ID: 7, Box: 0, Cell: 1}},
		{"cell zero", Slot{ID: 7, Box: 1, Cell: 0}},
		{"box past end", Slot{ID: 7, Box: 3, Cell: 1}},
		{"cell past end", Slot{ID: 7, Box: 1, Cell: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build([]Slot{tt.slot}, 2, 3)
			var oor *OutOfRangeSlotError
			if !errors.As(err, &oor) {
				t.Fatalf("expected OutOfRangeSlotError, got %v", err)
			}
			if oor.RecordID != 7 {
				t.Errorf("RecordID = %d, want 7", oor.RecordID)
			}
		})
	}
}

func TestNew_InvalidDimensions(t *testing.T) {
	if _, err := New(0, 3); err == nil {
		t.Error("expected error for zero boxes")
	}
	if _, err := New(3, 0); err == nil {
		t.Error("expected error for zero cells")
	}
}

func TestAllocate(t *testing.T) {
	tests := []struct {
		name      string
		initial   []State
		wantIndex int
		wantOK    bool
	}{
		{
			name:      "empty grid allocates index zero",
			initial:   []State{Empty, Empty, Empty, Empty},
			wantIndex: 0,
			wantOK:    true,
		},
		{
			name:    "full grid has no slot",
			initial: []State{Full, Full, Full, Full},
			wantOK:  false,
		},
		{
			name:      "resumes after rightmost full cell",
			initial:   []State{Empty, Full, Empty, Empty},
			wantIndex: 2,
			wantOK:    true,
		},
		{
			name:      "skips holes before rightmost full cell",
			initial:   []State{Full, Empty, Full, Empty},
			wantIndex: 3,
			wantOK:    true,
		},
		{
			name:      "last cell full wraps to first empty",
			initial:   []State{Full, Empty, Empty, Full},
			wantIndex: 1,
			wantOK:    true,
		},
		{
			name:      "only last cell full wraps to index zero",
			initial:   []State{Empty, Empty, Empty, Full},
			wantIndex: 0,
			wantOK:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &Grid{boxes: 2, cells: 2, state: append([]State(nil), tt.initial...)}
			index, ok := g.Allocate()
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				if !reflect.DeepEqual(g.States(), tt.initial) {
					t.Errorf("full grid was mutated: %v", g.States())
				}
				return
			}
			if index != tt.wantIndex {
				t.Errorf("index = %d, want %d", index, tt.wantIndex)
			}
			if g.At(index) != Full {
				t.Errorf("allocated cell %d not marked full", index)
			}
		})
	}
}

func TestAllocateSlot_FillsInOrder(t *testing.T) {
	g, err := New(2, 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	want := []Slot{{Box: 1, Cell: 1}, {Box: 1, Cell: 2}, {Box: 2, Cell: 1}, {Box: 2, Cell: 2}}
	for i, w := range want {
		got, ok := g.AllocateSlot()
		if !ok {
			t.Fatalf("allocation %d: grid reported full", i)
		}
		if got != w {
			t.Errorf("allocation %d = %+v, want %+v", i, got, w)
		}
	}

	if _, ok := g.AllocateSlot(); ok {
		t.Error("expected full grid after four allocations")
	}
}

func TestRelease(t *testing.T) {
	g, err := Build([]Slot{{ID: 1, Box: 1, Cell: 1}, {ID: 2, Box: 2, Cell: 1}}, 2, 2)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if err := g.Release(2, 1); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if s, _ := g.StateOf(2, 1); s != Empty {
		t.Errorf("released cell state = %v, want Empty", s)
	}

	// idempotent
	if err := g.Release(2, 1); err != nil {
		t.Fatalf("second Release failed: %v", err)
	}
	if g.Used() != 1 {
		t.Errorf("Used() = %d, want 1", g.Used())
	}

	var oor *OutOfRangeSlotError
	if err := g.Release(3, 1); !errors.As(err, &oor) {
		t.Errorf("expected OutOfRangeSlotError, got %v", err)
	}
}

func TestRelease_MatchesRebuild(t *testing.T) {
	slots := []Slot{{ID: 1, Box: 1, Cell: 1}, {ID: 2, Box: 1, Cell: 2}, {ID: 3, Box: 2, Cell: 1}}
	g, _ := Build(slots, 2, 2)
	_ = g.Release(1, 2)

	rebuilt, _ := Build([]Slot{slots[0], slots[2]}, 2, 2)
	if !reflect.DeepEqual(g.States(), rebuilt.States()) {
		t.Errorf("released grid %v != rebuilt grid %v", g.States(), rebuilt.States())
	}
}

func TestIndexConversions(t *testing.T) {
	tests := []struct {
		box, cell, cells, index int
	}{
		{1, 1, 4, 0},
		{1, 4, 4, 3},
		{2, 1, 4, 4},
		{3, 2, 4, 9},
		{1, 1, 1, 0},
		{5, 1, 1, 4},
	}

	for _, tt := range tests {
		if got := Index(tt.box, tt.cell, tt.cells); got != tt.index {
			t.Errorf("Index(%d, %d, %d) = %d, want %d", tt.box, tt.cell, tt.cells, got, tt.index)
		}
		box, cell := SlotAt(tt.index, tt.cells)
		if box != tt.box || cell != tt.cell {
			t.Errorf("SlotAt(%d, %d) = (%d, %d), want (%d, %d)", tt.index, tt.cells, box, cell, tt.box, tt.cell)
		}
	}
}

func TestSlotFromOrdinal(t *testing.T) {
	tests := []struct {
		n, cells, box, cell int
	}{
		{1, 3, 1, 1},
		{3, 3, 1, 3},
		{4, 3, 2, 1},
		{6, 3, 2, 3},
	}
	for _, tt := range tests {
		box, cell := SlotFromOrdinal(tt.n, tt.cells)
		if box != tt.box || cell != tt.cell {
			t.Errorf("SlotFromOrdinal(%d, %d) = (%d, %d), want (%d, %d)", tt.n, tt.cells, box, cell, tt.box, tt.cell)
		}
	}
}

func TestRowsAndRender(t *testing.T) {
	g, _ := Build([]Slot{{ID: 1, Box: 2, Cell: 2}}, 2, 2)

	rows := g.Rows()
	if len(rows) != 2 || !reflect.DeepEqual(rows[1], []State{Empty, Full}) {
		t.Errorf("Rows() = %v", rows)
	}

	got := g.Render(Markers{Empty: "o", Full: "x"})
	if !reflect.DeepEqual(got, []string{"o", "o", "o", "x"}) {
		t.Errorf("Render() = %v", got)
	}
}

func TestMarkers_Validate(t *testing.T) {
	tests := []struct {
		name    string
		markers Markers
		wantErr bool
	}{
		{"distinct", Markers{Empty: "0", Full: "1"}, false},
		{"same", Markers{Empty: "x", Full: "x"}, true},
		{"empty token", Markers{Empty: "", Full: "1"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.markers.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
