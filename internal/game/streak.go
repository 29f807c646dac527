package game

import (
	"time"

	"github.com/xecuteapp/becoming-backend/internal/types"
)

// UpdateStreak is the Streak Guardian. Given the caller's clock it decides
// whether a qualifying action advances, resets, or ignites the user's
// day-streak, mutating the streak fields on the user. It reports whether a
// mutation occurred.
//
// Rules, in order:
//   - already credited today (or a future date): no-op
//   - exactly one calendar day since the last credit: streak continues
//   - more than one day, or no credit ever: streak resets to 1; the
//     qualifying action itself counts as day 1 of the new chain
//
// longest_streak is raised to match before last_streak_update is stamped, so
// longest_streak >= current_streak holds after every call.
func UpdateStreak(u *types.User, now time.Time) bool {
	now = now.UTC()
	today := dateOf(now)

	if u.LastStreakUpdate != nil {
		last := dateOf(u.LastStreakUpdate.UTC())
		if !last.Before(today) {
			return false
		}
		daysSince := int(today.Sub(last).Hours() / 24)
		if daysSince == 1 {
			u.CurrentStreak++
		} else {
			u.CurrentStreak = 1
		}
	} else {
		// First qualifying action ever.
		u.CurrentStreak = 1
	}

	if u.CurrentStreak > u.LongestStreak {
		u.LongestStreak = u.CurrentStreak
	}

	stamp := now
	u.LastStreakUpdate = &stamp
	return true
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
