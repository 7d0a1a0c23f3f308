package supastore

import (
	"context"
	"time"

	"github.com/gridironpool/pickem/internal/domain/game"
	"github.com/gridironpool/pickem/internal/domain/pick"
	"github.com/gridironpool/pickem/internal/domain/team"
	"github.com/gridironpool/pickem/internal/domain/user"
	"github.com/gridironpool/pickem/internal/domain/week"
)

// Per-entity views over one shared client, so each satisfies its domain
// repository interface.

type UserRepository struct{ c *Client }
type TeamRepository struct{ c *Client }
type WeekRepository struct{ c *Client }
type GameRepository struct{ c *Client }
type PickRepository struct{ c *Client }

func (c *Client) Users() *UserRepository { return &UserRepository{c: c} }
func (c *Client) Teams() *TeamRepository { return &TeamRepository{c: c} }
func (c *Client) Weeks() *WeekRepository { return &WeekRepository{c: c} }
func (c *Client) Games() *GameRepository { return &GameRepository{c: c} }
func (c *Client) Picks() *PickRepository { return &PickRepository{c: c} }

func (r *UserRepository) List(ctx context.Context) ([]user.User, error) {
	return r.c.ListUsers(ctx)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (user.User, bool, error) {
	return r.c.GetUserByID(ctx, id)
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	return r.c.ListTeams(ctx)
}

func (r *TeamRepository) GetByID(ctx context.Context, id string) (team.Team, bool, error) {
	return r.c.GetTeamByID(ctx, id)
}

func (r *WeekRepository) List(ctx context.Context) ([]week.Week, error) {
	return r.c.ListWeeks(ctx)
}

func (r *WeekRepository) GetByTime(ctx context.Context, at time.Time) (week.Week, bool, error) {
	return r.c.GetWeekByTime(ctx, at)
}

func (r *GameRepository) List(ctx context.Context) ([]game.Game, error) {
	return r.c.ListGames(ctx)
}

func (r *GameRepository) ListByWeek(ctx context.Context, weekID int) ([]game.Game, error) {
	return r.c.ListGamesByWeek(ctx, weekID)
}

func (r *GameRepository) GetByID(ctx context.Context, id string) (game.Game, bool, error) {
	return r.c.GetGameByID(ctx, id)
}

func (r *GameRepository) SetWinner(ctx context.Context, gameID, winnerTeamID string) error {
	return r.c.SetGameWinner(ctx, gameID, winnerTeamID)
}

func (r *GameRepository) SetCancelled(ctx context.Context, gameID string) error {
	return r.c.SetGameCancelled(ctx, gameID)
}

func (r *PickRepository) List(ctx context.Context) ([]pick.Pick, error) {
	return r.c.ListPicks(ctx)
}

func (r *PickRepository) ListByGameIDs(ctx context.Context, gameIDs []string) ([]pick.Pick, error) {
	return r.c.ListPicksByGameIDs(ctx, gameIDs)
}

func (r *PickRepository) ListByUser(ctx context.Context, userID string, gameIDs []string) ([]pick.Pick, error) {
	return r.c.ListPicksByUser(ctx, userID, gameIDs)
}

func (r *PickRepository) ListByUserWithGames(ctx context.Context, userID string, weekID *int) ([]pick.WithGame, error) {
	return r.c.ListPicksByUserWithGames(ctx, userID, weekID)
}

func (r *PickRepository) Upsert(ctx context.Context, picks []pick.Pick) error {
	return r.c.UpsertPicks(ctx, picks)
}
