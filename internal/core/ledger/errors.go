package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrSlotsFull means the allocator found no empty cell.
	ErrSlotsFull = errors.New("all boxes full")

	// ErrMissingInput means a required identifier was not supplied.
	ErrMissingInput = errors.New("missing required input")

	// ErrReservedSerial means the serial collides with the period placeholder.
	ErrReservedSerial = errors.New("reserved serial number")

	// ErrSnapshotNotFound means the requested period has no persisted snapshot.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrPeriodNotInitialized means no period has been opened yet.
	ErrPeriodNotInitialized = errors.New("period not initialized")
)

// SnapshotNotFoundError wraps ErrSnapshotNotFound with the period.
type SnapshotNotFoundError struct {
	Period Period
}

func (e *SnapshotNotFoundError) Error() string {
	return fmt.Sprintf("snapshot for period %s not found; run init first", e.Period)
}

func (e *SnapshotNotFoundError) Unwrap() error { return ErrSnapshotNotFound }
