// Package ledger contains the pure business logic for the inventory ledger:
// period arithmetic, record id rules, retrieval guards and rollover planning.
// Nothing here performs I/O.
package ledger

import (
	"fmt"
	"time"
)

// Period is a calendar year-month partition of the ledger.
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf returns the period containing t, in t's location.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// ParsePeriod parses the YYYYMM form used in snapshot names.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("200601", s)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q (want YYYYMM): %w", s, err)
	}
	return PeriodOf(t), nil
}

// String formats the period as YYYYMM.
func (p Period) String() string {
	return fmt.Sprintf("%04d%02d", p.Year, int(p.Month))
}

// Prev returns the preceding calendar month.
func (p Period) Prev() Period {
	if p.Month == time.January {
		return Period{Year: p.Year - 1, Month: time.December}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}

// Before reports whether p is earlier than o.
func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}
