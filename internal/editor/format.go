package editor

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ToEditFormat YYYY-MM-DD → DD/MM/YY. Anything that is not an ISO date is returned unchanged.
func ToEditFormat(iso string) string {
	s := strings.TrimSpace(iso)
	if len(s) < 10 {
		return s
	}
	t, err := time.Parse("2006-01-02", s[:10])
	if err != nil {
		return s
	}
	return t.Format("02/01/06")
}

// FromEditFormat DD/MM/YY or DD/MM/YYYY → YYYY-MM-DD. Two-digit years are 20YY.
func FromEditFormat(short string) (string, bool) {
	parts := strings.Split(strings.TrimSpace(short), "/")
	if len(parts) != 3 {
		return "", false
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return "", false
		}
		nums[i] = n
	}
	day, month, year := nums[0], nums[1], nums[2]
	if year < 100 {
		year += 2000
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}
