package types

import (
	"testing"
	"time"
)

func TestCompletionPercentage(t *testing.T) {
	cases := []struct {
		name      string
		target    int
		completed int
		want      float64
	}{
		{"zero_target_is_zero_percent", 0, 0, 0.0},
		{"zero_target_ignores_progress", 0, 3, 0.0},
		{"no_progress", 5, 0, 0.0},
		{"partial", 5, 3, 60.0},
		{"full", 5, 5, 100.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			di := &DailyIntention{TargetQuantity: tc.target, CompletedQuantity: tc.completed}
			if got := di.CompletionPercentage(); got != tc.want {
				t.Fatalf("CompletionPercentage() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDayKey(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)
	// 23:30 EST is already the next UTC day.
	local := time.Date(2026, 3, 14, 23, 30, 0, 0, est)
	if got := DayKey(local); got != "2026-03-15" {
		t.Fatalf("DayKey(%v) = %q, want 2026-03-15", local, got)
	}
}
