package tsfmt

import (
	"fmt"
	"time"
)

// Parse parses value against f, backfilling a missing year from
// currentYear (the current UTC year, passed in for determinism in
// tests) and a missing timezone from f.LocalOffset.
func (f Format) Parse(value string, currentYear int) (time.Time, error) {
	loc := time.FixedZone("local-snapshot", f.LocalOffset)
	t, err := time.ParseInLocation(f.Layout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("tsfmt: parse %q with layout %q: %w", value, f.Layout, err)
	}
	if !f.HasYear {
		t = time.Date(currentYear, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	}
	return t, nil
}
