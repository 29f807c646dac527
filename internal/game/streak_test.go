package game

import (
	"testing"
	"time"

	"github.com/xecuteapp/becoming-backend/internal/types"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func tsPtr(s string) *time.Time {
	t := ts(s)
	return &t
}

func TestUpdateStreakIgnition(t *testing.T) {
	u := &types.User{}
	now := ts("2025-08-26T14:00:00Z")

	if !UpdateStreak(u, now) {
		t.Fatal("first-ever update should mutate")
	}
	if u.CurrentStreak != 1 {
		t.Fatalf("current_streak=%d, want 1", u.CurrentStreak)
	}
	if u.LongestStreak != 1 {
		t.Fatalf("longest_streak=%d, want 1", u.LongestStreak)
	}
	if u.LastStreakUpdate == nil || !u.LastStreakUpdate.Equal(now) {
		t.Fatalf("last_streak_update=%v, want %v", u.LastStreakUpdate, now)
	}
}

func TestUpdateStreakSameDayIsNoop(t *testing.T) {
	u := &types.User{
		CurrentStreak:    3,
		LongestStreak:    5,
		LastStreakUpdate: tsPtr("2025-08-26T08:00:00Z"),
	}

	if UpdateStreak(u, ts("2025-08-26T23:59:59Z")) {
		t.Fatal("second update on the same day should be a no-op")
	}
	if u.CurrentStreak != 3 || u.LongestStreak != 5 {
		t.Fatalf("streaks mutated on no-op: current=%d longest=%d", u.CurrentStreak, u.LongestStreak)
	}
}

func TestUpdateStreakFutureStampIsNoop(t *testing.T) {
	u := &types.User{
		CurrentStreak:    2,
		LongestStreak:    2,
		LastStreakUpdate: tsPtr("2025-08-27T00:00:00Z"),
	}

	if UpdateStreak(u, ts("2025-08-26T12:00:00Z")) {
		t.Fatal("a future last_streak_update should not be overwritten")
	}
}

func TestUpdateStreakContinuation(t *testing.T) {
	u := &types.User{
		CurrentStreak:    4,
		LongestStreak:    4,
		LastStreakUpdate: tsPtr("2025-08-25T22:00:00Z"),
	}

	if !UpdateStreak(u, ts("2025-08-26T06:00:00Z")) {
		t.Fatal("next-day update should mutate")
	}
	if u.CurrentStreak != 5 {
		t.Fatalf("current_streak=%d, want 5", u.CurrentStreak)
	}
	if u.LongestStreak != 5 {
		t.Fatalf("longest_streak=%d, want 5", u.LongestStreak)
	}
}

func TestUpdateStreakBrokenChainResetsToOne(t *testing.T) {
	u := &types.User{
		CurrentStreak:    9,
		LongestStreak:    12,
		LastStreakUpdate: tsPtr("2025-08-24T10:00:00Z"),
	}

	// Two days later: the chain is broken, but this action seeds day 1.
	if !UpdateStreak(u, ts("2025-08-26T10:00:00Z")) {
		t.Fatal("reset should still mutate")
	}
	if u.CurrentStreak != 1 {
		t.Fatalf("current_streak=%d, want 1", u.CurrentStreak)
	}
	if u.LongestStreak != 12 {
		t.Fatalf("longest_streak=%d, want 12 (unchanged)", u.LongestStreak)
	}
}

func TestUpdateStreakLongestInvariantAcrossSequence(t *testing.T) {
	u := &types.User{}
	days := []string{
		"2025-08-20T09:00:00Z",
		"2025-08-21T09:00:00Z",
		"2025-08-22T09:00:00Z",
		"2025-08-25T09:00:00Z", // gap, resets
		"2025-08-26T09:00:00Z",
	}

	for _, d := range days {
		UpdateStreak(u, ts(d))
		if u.LongestStreak < u.CurrentStreak {
			t.Fatalf("invariant violated at %s: longest=%d current=%d", d, u.LongestStreak, u.CurrentStreak)
		}
	}
	if u.CurrentStreak != 2 {
		t.Fatalf("current_streak=%d, want 2", u.CurrentStreak)
	}
	if u.LongestStreak != 3 {
		t.Fatalf("longest_streak=%d, want 3", u.LongestStreak)
	}
}
