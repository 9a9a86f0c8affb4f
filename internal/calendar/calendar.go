// Package calendar lays out the days of a roster month.
package calendar

import (
	"fmt"
	"time"

	"github.com/wardroster/engine/internal/domain"
)

// FallbackDays is the month length used when year/month cannot be resolved.
const FallbackDays = 30

// MonthDays returns the ordered days of the month. For an invalid year or
// month it returns FallbackDays placeholder days and fallback = true.
func MonthDays(year, month int) (days []domain.Day, fallback bool) {
	if year < 1 || year > 9999 || month < 1 || month > 12 {
		days = make([]domain.Day, FallbackDays)
		for i := range days {
			days[i] = domain.Day{
				Index: i,
				Label: fmt.Sprintf("%d/%d (?)", month, i+1),
			}
		}
		return days, true
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	n := first.AddDate(0, 1, -1).Day()
	days = make([]domain.Day, n)
	for i := 0; i < n; i++ {
		d := first.AddDate(0, 0, i)
		wd := d.Weekday()
		days[i] = domain.Day{
			Index:   i,
			Date:    d,
			Weekday: wd,
			Weekend: wd == time.Saturday || wd == time.Sunday,
			Label:   fmt.Sprintf("%d/%d (%s)", month, i+1, wd.String()[:3]),
		}
	}
	return days, false
}

// CountWeekdays returns the number of non-weekend days.
func CountWeekdays(days []domain.Day) int {
	n := 0
	for _, d := range days {
		if !d.Weekend {
			n++
		}
	}
	return n
}

// MonthKey formats the store key for a roster month, e.g. "2025-03".
func MonthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// ParseMonthKey parses a "YYYY-MM" key.
func ParseMonthKey(key string) (year, month int, err error) {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return 0, 0, domain.WrapEngineError(domain.ErrInvalidMonth.Code, domain.ErrInvalidMonth.Message, err)
	}
	return t.Year(), int(t.Month()), nil
}

// PreviousMonth returns the month before (year, month).
func PreviousMonth(year, month int) (int, int) {
	if month <= 1 {
		return year - 1, 12
	}
	return year, month - 1
}
