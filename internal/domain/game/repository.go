package game

import "context"

type Repository interface {
	List(ctx context.Context) ([]Game, error)
	ListByWeek(ctx context.Context, weekID int) ([]Game, error)
	GetByID(ctx context.Context, id string) (Game, bool, error)
	SetWinner(ctx context.Context, gameID, winnerTeamID string) error
	SetCancelled(ctx context.Context, gameID string) error
}
