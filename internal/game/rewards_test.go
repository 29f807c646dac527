package game

import "testing"

func TestXPWithStreakBonus(t *testing.T) {
	cases := []struct {
		name   string
		base   int
		streak int
		want   int
	}{
		{name: "no_streak_is_identity", base: 10, streak: 0, want: 10},
		{name: "negative_streak_is_identity", base: 10, streak: -3, want: 10},
		{name: "ten_day_streak", base: 10, streak: 10, want: 11},
		{name: "one_day_streak_rounds_half_to_even", base: 50, streak: 1, want: 50}, // 50.5 -> 50
		{name: "three_day_streak_rounds_half_to_even", base: 50, streak: 3, want: 52}, // 51.5 -> 52
		{name: "intention_base_with_five_day_streak", base: 20, streak: 5, want: 21},
		{name: "recovery_base_with_twenty_day_streak", base: 15, streak: 20, want: 18},
		{name: "hundred_day_streak_doubles", base: 10, streak: 100, want: 20},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := XPWithStreakBonus(tc.base, tc.streak)
			if got != tc.want {
				t.Fatalf("XPWithStreakBonus(%d, %d)=%d, want %d", tc.base, tc.streak, got, tc.want)
			}
		})
	}
}

func TestRewardTable(t *testing.T) {
	if BaseXPFocusBlockCompleted != 10 {
		t.Fatalf("focus block base XP = %d, want 10", BaseXPFocusBlockCompleted)
	}
	if BaseXPIntentionCompleted != 20 {
		t.Fatalf("intention base XP = %d, want 20", BaseXPIntentionCompleted)
	}
	if BaseXPRecoveryQuestCompleted != 15 {
		t.Fatalf("recovery quest base XP = %d, want 15", BaseXPRecoveryQuestCompleted)
	}
}
