package pick

import "context"

type Repository interface {
	List(ctx context.Context) ([]Pick, error)
	ListByGameIDs(ctx context.Context, gameIDs []string) ([]Pick, error)
	ListByUser(ctx context.Context, userID string, gameIDs []string) ([]Pick, error)
	// ListByUserWithGames returns the user's picks joined to their games,
	// optionally restricted to one week. Picks whose game cannot be
	// resolved carry a nil Game.
	ListByUserWithGames(ctx context.Context, userID string, weekID *int) ([]WithGame, error)
	Upsert(ctx context.Context, picks []Pick) error
}
