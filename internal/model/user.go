package model

import "time"

// UserID uniquely identifies a user across the system
type UserID int64

// XPPerLevel is the amount of XP that separates consecutive levels.
const XPPerLevel = 100

// User represents a player account with accumulated experience
type User struct {
	ID        UserID
	Username  string
	XP        int
	Level     int
	CreatedAt time.Time
}

// LevelForXP returns the level derived from an XP total.
// Level is always 1 + xp/100 and never stored independently.
func LevelForXP(xp int) int {
	return 1 + xp/XPPerLevel
}

// ApplyXP adds delta XP and recomputes the level in the same step,
// keeping the level invariant intact. delta must already be validated
// as non-negative by the caller.
func (u *User) ApplyXP(delta int) {
	u.XP += delta
	u.Level = LevelForXP(u.XP)
}

// ResetXP zeroes the XP total and drops the user back to level 1.
func (u *User) ResetXP() {
	u.XP = 0
	u.Level = 1
}

// XPToNextLevel returns how much XP is missing to reach the next level
func (u *User) XPToNextLevel() int {
	return u.Level*XPPerLevel - u.XP
}

// RankingEntry is one row of the top ranking table, ordered by XP descending
type RankingEntry struct {
	Username     string
	XP           int
	Level        int
	RoundsPlayed int
	AvgScore     float64
	LastRoundAt  time.Time
}
