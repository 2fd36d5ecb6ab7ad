package ledger

import (
	"fmt"
	"strings"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
	Err     error
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	if r.Err != nil {
		return fmt.Errorf("%w: %s", r.Err, r.Reason)
	}
	return fmt.Errorf("%s", r.Reason)
}

// PlaceContext provides context for placement guards.
type PlaceContext struct {
	Serial string
}

// CanPlace evaluates whether an item can be placed.
// Rules:
// - Serial must be non-blank
// - Serial must not be the placeholder serial
func CanPlace(ctx PlaceContext) GuardResult {
	serial := strings.TrimSpace(ctx.Serial)
	if serial == "" {
		return GuardResult{Allowed: false, Reason: "please enter a serial number", Err: ErrMissingInput}
	}
	if serial == SentinelSerial {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("%q is reserved for the period placeholder", serial),
			Err:     ErrReservedSerial,
		}
	}
	return GuardResult{Allowed: true}
}

// RetrieveContext provides context for retrieval guards.
type RetrieveContext struct {
	RecordID        int
	ReportGenerated bool
	Retrieved       bool
}

// CanRetrieve evaluates whether a record can be marked retrieved.
// Rules:
// - Record must have been committed into a report
// - Record must still be in storage
func CanRetrieve(ctx RetrieveContext) GuardResult {
	if !ctx.ReportGenerated {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("record %d is not committed yet", ctx.RecordID),
		}
	}
	if ctx.Retrieved {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("record %d already retrieved", ctx.RecordID),
		}
	}
	return GuardResult{Allowed: true}
}

// NextRecordID returns the id for a new record given the current maximum.
// An empty ledger has max 0, so the first record gets id 1.
func NextRecordID(currentMax int) int {
	if currentMax < 0 {
		currentMax = 0
	}
	return currentMax + 1
}
