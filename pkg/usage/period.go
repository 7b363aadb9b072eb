package usage

import (
	"fmt"
	"time"
)

// Period identifies the calendar-month window over which counters accumulate,
// in "YYYY-MM" form.
type Period string

// CurrentPeriod returns the period for the current wall-clock time in UTC.
func CurrentPeriod() Period {
	return PeriodOf(time.Now())
}

// PeriodOf returns the period containing t (evaluated in UTC).
func PeriodOf(t time.Time) Period {
	return Period(t.UTC().Format("2006-01"))
}

// Valid reports whether p is a well-formed YYYY-MM period.
func (p Period) Valid() bool {
	_, err := time.Parse("2006-01", string(p))
	return err == nil
}

func (p Period) String() string { return string(p) }

// validatePeriod guards Store entry points against malformed period strings,
// which would silently create orphan records.
func validatePeriod(p Period) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPeriod, p)
	}
	return nil
}
