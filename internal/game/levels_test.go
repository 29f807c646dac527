package game

import "testing"

func TestLevel(t *testing.T) {
	cases := []struct {
		name string
		xp   int
		want int
	}{
		{name: "zero_xp", xp: 0, want: 1},
		{name: "negative_xp", xp: -50, want: 1},
		{name: "just_below_level_two", xp: 99, want: 1},
		{name: "level_two_threshold", xp: 100, want: 2},
		{name: "mid_level_two", xp: 250, want: 2},
		{name: "level_three_threshold", xp: 400, want: 3},
		{name: "level_four_threshold", xp: 900, want: 4},
		{name: "deep_progression", xp: 10000, want: 11},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Level(tc.xp)
			if got != tc.want {
				t.Fatalf("Level(%d)=%d, want %d", tc.xp, got, tc.want)
			}
		})
	}
}

func TestXPRequiredForLevel(t *testing.T) {
	cases := []struct {
		level int
		want  int
	}{
		{level: 0, want: 0},
		{level: 1, want: 0},
		{level: 2, want: 100},
		{level: 3, want: 400},
		{level: 5, want: 1600},
	}

	for _, tc := range cases {
		got := XPRequiredForLevel(tc.level)
		if got != tc.want {
			t.Fatalf("XPRequiredForLevel(%d)=%d, want %d", tc.level, got, tc.want)
		}
	}
}

func TestXPNeededToLevel(t *testing.T) {
	// At 250 XP the user is level 2; level 3 needs 400 total.
	if got := XPForNextLevel(250); got != 400 {
		t.Fatalf("XPForNextLevel(250)=%d, want 400", got)
	}
	if got := XPNeededToLevel(250); got != 150 {
		t.Fatalf("XPNeededToLevel(250)=%d, want 150", got)
	}
	// Thresholds are exclusive upward: exactly 100 XP is level 2, next is 400.
	if got := XPNeededToLevel(100); got != 300 {
		t.Fatalf("XPNeededToLevel(100)=%d, want 300", got)
	}
}
