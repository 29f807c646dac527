package game

import "math"

// Base XP rewards, the single source of truth for the reward rules. Every
// grant passes through XPWithStreakBonus before being applied.
const (
	BaseXPFocusBlockCompleted    = 10
	BaseXPIntentionCompleted     = 20
	BaseXPRecoveryQuestCompleted = 15
)

// StreakBonusRate is the multiplicative bonus per streak day (1%).
const StreakBonusRate = 0.01

// XPWithStreakBonus applies the streak multiplier to a base reward,
// rounding half to even.
func XPWithStreakBonus(baseXP, currentStreak int) int {
	if currentStreak <= 0 {
		return baseXP
	}
	bonus := 1.0 + float64(currentStreak)*StreakBonusRate
	return int(math.RoundToEven(float64(baseXP) * bonus))
}
