package scoring

import (
	"math"

	"github.com/gridironpool/pickem/internal/domain/game"
)

// Game is the canonical tuple scoring operates on. A nil *Game means the
// pick's game relation was absent; such picks are void.
type Game struct {
	ID         string
	WinnerID   *string
	Difficulty int
	Cancelled  bool
}

// Pick carries the two pick attributes scoring cares about.
type Pick struct {
	SelectedTeamID string
	DoubleDown     bool
}

// ScoredPick is the outcome of scoring one pick against one game.
type ScoredPick struct {
	Points    int
	IsCorrect bool
}

// ResolveGame normalizes a raw game record into the canonical scoring
// tuple. Absence is modeled as nil, never as an error.
func ResolveGame(g *game.Game) *Game {
	if g == nil {
		return nil
	}
	return &Game{
		ID:         g.ID,
		WinnerID:   g.WinnerID,
		Difficulty: g.Difficulty,
		Cancelled:  g.Cancelled,
	}
}

// ScorePick computes the point delta and correctness flag for one pick.
//
// A correct pick earns the game's difficulty, doubled when the pick is a
// double down. An incorrect double down loses the full difficulty; an
// incorrect plain pick scores zero. Cancelled or absent games void the
// pick. Callers must not feed non-cancelled games without a winner to a
// double-down pick: the result would be a penalty for a game that has not
// happened, so aggregators exclude unresolved games before scoring.
func ScorePick(p Pick, g *Game) ScoredPick {
	if g == nil || g.Cancelled {
		return ScoredPick{}
	}

	difficulty := g.Difficulty
	correct := g.WinnerID != nil && p.SelectedTeamID == *g.WinnerID
	if correct {
		if p.DoubleDown {
			return ScoredPick{Points: difficulty * 2, IsCorrect: true}
		}
		return ScoredPick{Points: difficulty, IsCorrect: true}
	}

	if p.DoubleDown {
		return ScoredPick{Points: -difficulty}
	}
	return ScoredPick{}
}

// AccuracyPercent is the rounded percentage of correct picks over
// attempts. Zero attempts yields zero, never a division error.
func AccuracyPercent(correct, attempts int) int {
	if attempts <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(attempts) * 100))
}
