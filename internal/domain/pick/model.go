package pick

import (
	"time"

	"github.com/gridironpool/pickem/internal/domain/game"
)

// Pick is one user's choice for one game. (UserID, GameID) is the natural
// key; submissions up to the game's lock time replace the previous row.
type Pick struct {
	UserID         string
	GameID         string
	SelectedTeamID string
	DoubleDown     bool
	SubmittedAt    time.Time
}

// WithGame is a pick joined to its canonical game tuple. Game is nil when
// the relation could not be resolved; callers treat such picks as void
// rather than erroring.
type WithGame struct {
	Pick Pick
	Game *game.Game
}
