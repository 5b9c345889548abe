package models

import "math"

// XPForDuration is floor(minutes * 1.5). Negative durations earn nothing.
func XPForDuration(minutes int) int {
	if minutes <= 0 {
		return 0
	}
	return minutes * 3 / 2
}

// LevelForXP is floor(sqrt(xp/100)) + 1.
func LevelForXP(xp int) int {
	if xp <= 0 {
		return 1
	}
	return int(math.Floor(math.Sqrt(float64(xp)/100))) + 1
}

// ApplyXP adds xp and raises the level when the new total warrants it.
// It reports whether the level went up.
func (p *Progression) ApplyXP(gained int) bool {
	if gained > 0 {
		p.XP += gained
	}
	if lvl := LevelForXP(p.XP); lvl > p.Level {
		p.Level = lvl
		return true
	}
	return false
}
