package ledger

import "time"

// Sentinel row values. The sentinel keeps an otherwise empty period snapshot
// non-empty and is filtered out of every normal read.
const (
	SentinelSerial = "init"
	SentinelID     = 0
)

// SentinelTime is both placed_at and retrieved_at of the sentinel row.
var SentinelTime = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

// IsSentinel reports whether a row is the bootstrap placeholder. A row is
// the placeholder only with the sentinel serial, id and the 0/0 slot.
func IsSentinel(serial string, id, box, cell int) bool {
	return serial == SentinelSerial && id == SentinelID && box == 0 && cell == 0
}

// RolloverPlanInput contains pre-fetched data for opening a period.
type RolloverPlanInput struct {
	Target         Period
	SnapshotExists bool
	PriorExists    bool
	// PriorActiveIDs are ids of prior-period rows still in storage,
	// in snapshot order, sentinel excluded.
	PriorActiveIDs []int
}

// RolloverPlan describes how the target period's first snapshot is seeded.
type RolloverPlan struct {
	Target Period
	// Skip is set when the target already has a snapshot.
	Skip bool
	// CarryIDs lists prior rows to copy forward, in order.
	CarryIDs []int
	// Sentinel is set when nothing is carried forward.
	Sentinel bool
}

// GenerateRolloverPlan decides how to seed a period.
// This is a pure function - all input data must be pre-fetched.
func GenerateRolloverPlan(input RolloverPlanInput) RolloverPlan {
	plan := RolloverPlan{Target: input.Target}
	if input.SnapshotExists {
		plan.Skip = true
		return plan
	}
	if input.PriorExists && len(input.PriorActiveIDs) > 0 {
		plan.CarryIDs = append([]int(nil), input.PriorActiveIDs...)
		return plan
	}
	plan.Sentinel = true
	return plan
}
