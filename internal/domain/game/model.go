package game

import "time"

// Game is one scheduled matchup inside a week's slate. Difficulty is the
// point value a correct pick earns; WinnerID stays nil until the game
// concludes and is set exactly once. A cancelled game is permanently
// excluded from scoring.
type Game struct {
	ID         string
	Week       int
	HomeTeamID string
	AwayTeamID string
	Difficulty int
	WinnerID   *string
	Cancelled  bool
	KickoffAt  time.Time
	LockAt     time.Time
}

// Scorable reports whether the game counts toward points and accuracy:
// it must not be cancelled and must have a known winner.
func (g Game) Scorable() bool {
	return !g.Cancelled && g.WinnerID != nil
}

// Locked reports whether picks for this game are frozen.
func (g Game) Locked(now time.Time) bool {
	return !g.LockAt.IsZero() && !now.Before(g.LockAt)
}
