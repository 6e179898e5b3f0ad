package alerts

import "time"

// Clock supplies "today". Staleness only ever looks at the calendar day of Now().
type Clock interface {
	Now() time.Time
}

// SystemClock wall clock in the local zone.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// FixedDay clock pinned to noon of the given day in UTC.
func FixedDay(year int, month time.Month, day int) FixedClock {
	return FixedClock{T: time.Date(year, month, day, 12, 0, 0, 0, time.UTC)}
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
