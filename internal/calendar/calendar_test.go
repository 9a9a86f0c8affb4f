package calendar

import (
	"testing"
	"time"
)

func TestMonthDays_March2025(t *testing.T) {
	days, fallback := MonthDays(2025, 3)
	if fallback {
		t.Fatal("unexpected fallback for a valid month")
	}
	if len(days) != 31 {
		t.Fatalf("len = %d, want 31", len(days))
	}
	// 2025-03-01 is a Saturday.
	if days[0].Weekday != time.Saturday || !days[0].Weekend {
		t.Errorf("day 0 = %v weekend=%v, want Saturday weekend", days[0].Weekday, days[0].Weekend)
	}
	if days[2].Weekend {
		t.Error("2025-03-03 (Monday) marked as weekend")
	}
	if days[0].Label != "3/1 (Sat)" {
		t.Errorf("Label = %q, want %q", days[0].Label, "3/1 (Sat)")
	}
	for i, d := range days {
		if d.Index != i {
			t.Fatalf("days[%d].Index = %d", i, d.Index)
		}
	}
}

func TestMonthDays_LeapFebruary(t *testing.T) {
	days, _ := MonthDays(2024, 2)
	if len(days) != 29 {
		t.Errorf("len = %d, want 29", len(days))
	}
	days, _ = MonthDays(2025, 2)
	if len(days) != 28 {
		t.Errorf("len = %d, want 28", len(days))
	}
}

func TestMonthDays_InvalidFallsBack(t *testing.T) {
	for _, tc := range []struct{ year, month int }{{2025, 0}, {2025, 13}, {0, 5}, {-3, 1}} {
		days, fallback := MonthDays(tc.year, tc.month)
		if !fallback {
			t.Errorf("(%d,%d): expected fallback", tc.year, tc.month)
		}
		if len(days) != FallbackDays {
			t.Errorf("(%d,%d): len = %d, want %d", tc.year, tc.month, len(days), FallbackDays)
		}
	}
}

func TestCountWeekdays(t *testing.T) {
	days, _ := MonthDays(2025, 6)
	// June 2025: 30 days, 9 weekend days.
	if got := CountWeekdays(days); got != 21 {
		t.Errorf("CountWeekdays = %d, want 21", got)
	}
}

func TestMonthKey_RoundTrip(t *testing.T) {
	key := MonthKey(2025, 3)
	if key != "2025-03" {
		t.Fatalf("MonthKey = %q", key)
	}
	y, m, err := ParseMonthKey(key)
	if err != nil {
		t.Fatalf("ParseMonthKey: %v", err)
	}
	if y != 2025 || m != 3 {
		t.Errorf("got %d-%d, want 2025-3", y, m)
	}
	if _, _, err := ParseMonthKey("2025/03"); err == nil {
		t.Error("expected error for malformed key")
	}
}

func TestPreviousMonth(t *testing.T) {
	if y, m := PreviousMonth(2025, 1); y != 2024 || m != 12 {
		t.Errorf("PreviousMonth(2025,1) = %d-%d, want 2024-12", y, m)
	}
	if y, m := PreviousMonth(2025, 7); y != 2025 || m != 6 {
		t.Errorf("PreviousMonth(2025,7) = %d-%d, want 2025-6", y, m)
	}
}
