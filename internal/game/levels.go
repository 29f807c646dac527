package game

import "math"

// Level derives a level from total XP: floor(sqrt(xp/100)) + 1. Negative XP
// cannot occur through normal play but still maps to level 1.
func Level(xp int) int {
	if xp < 0 {
		return 1
	}
	return int(math.Floor(math.Sqrt(float64(xp)/100.0))) + 1
}

// XPRequiredForLevel returns the total XP threshold for a level:
// 100 * (L-1)^2, with level 1 and below requiring nothing.
func XPRequiredForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return 100 * (level - 1) * (level - 1)
}

// XPForNextLevel is the total XP threshold of the level after the one the
// given XP sits in.
func XPForNextLevel(xp int) int {
	return XPRequiredForLevel(Level(xp) + 1)
}

// XPNeededToLevel is how much more XP the user must earn to level up.
func XPNeededToLevel(xp int) int {
	return XPForNextLevel(xp) - xp
}
