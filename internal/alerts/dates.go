package alerts

import (
	"strconv"
	"strings"
	"time"
)

const isoLayout = "2006-01-02"

// IsFilled a date field is filled iff it is non-empty after trimming and not the "-" sentinel.
func IsFilled(value string) bool {
	s := strings.TrimSpace(value)
	return s != "" && s != "-"
}

// ParseDate accepts ISO YYYY-MM-DD (a trailing time part is ignored), DD/MM, DD/MM/YY and
// DD/MM/YYYY. The result is at midnight in today's location.
//
// DD/MM uses today's year; when that lands in the future and its month is after today's month
// the previous year is used instead.
func ParseDate(value string, today time.Time) (time.Time, bool) {
	s := strings.TrimSpace(value)
	if !IsFilled(s) {
		return time.Time{}, false
	}
	loc := today.Location()

	if strings.Contains(s, "-") {
		if len(s) < len(isoLayout) {
			return time.Time{}, false
		}
		t, err := time.ParseInLocation(isoLayout, s[:len(isoLayout)], loc)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}

	parts := strings.Split(s, "/")
	if len(parts) < 2 || len(parts) > 3 {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, false
	}

	today = midnight(today)
	year := today.Year()
	shortForm := len(parts) == 2
	if !shortForm {
		year, err = strconv.Atoi(parts[2])
		if err != nil || year < 0 {
			return time.Time{}, false
		}
		if year < 100 {
			year += 2000
		}
	}

	t, ok := calendarDate(year, month, day, loc)
	if !ok {
		return time.Time{}, false
	}
	if shortForm && t.After(today) && t.Month() > today.Month() {
		t, ok = calendarDate(year-1, month, day, loc)
		if !ok {
			// 29/02 rolled into a non-leap year
			return time.Time{}, false
		}
	}
	return t, true
}

// calendarDate rejects dates time.Date would normalize (31/02, 00/05, ...).
func calendarDate(year, month, day int, loc *time.Location) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

// DaysSince whole days between the date and today, both truncated to midnight.
// Future dates are negative; unfilled or unparsable dates yield 0.
func DaysSince(value string, clock Clock) int {
	today := clock.Now()
	t, ok := ParseDate(value, today)
	if !ok {
		return 0
	}
	return daysBetween(t, today)
}

// daysBetween counts calendar days so DST transitions never shift the result.
func daysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a) / (24 * time.Hour))
}

// IsTodayOrPast filled date that is not in the future.
func IsTodayOrPast(value string, clock Clock) bool {
	today := clock.Now()
	t, ok := ParseDate(value, today)
	if !ok {
		return false
	}
	return daysBetween(t, today) >= 0
}
