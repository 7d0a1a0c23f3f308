package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/gridironpool/pickem/internal/domain/game"
	qb "github.com/gridironpool/pickem/internal/platform/querybuilder"
)

type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) List(ctx context.Context) ([]game.Game, error) {
	query, args, err := qb.Select("*").From("games").
		OrderBy("week", "kickoff_time", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select games query: %w", err)
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select games: %w", err)
	}

	return gamesFromRows(rows), nil
}

func (r *GameRepository) ListByWeek(ctx context.Context, weekID int) ([]game.Game, error) {
	query, args, err := qb.Select("*").From("games").
		Where(qb.Eq("week", weekID)).
		OrderBy("kickoff_time", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select games by week query: %w", err)
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select games by week: %w", err)
	}

	return gamesFromRows(rows), nil
}

func (r *GameRepository) GetByID(ctx context.Context, id string) (game.Game, bool, error) {
	query, args, err := qb.Select("*").From("games").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build get game by id query: %w", err)
	}

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("get game by id: %w", err)
	}

	return gameFromRow(row), true, nil
}

// SetWinner is guarded at the SQL level as well: the row must still be
// unresolved and not cancelled, so two racing writers cannot both win.
func (r *GameRepository) SetWinner(ctx context.Context, gameID, winnerTeamID string) error {
	query, args, err := qb.Update("games").
		Set("winner_id", winnerTeamID).
		Where(
			qb.Eq("id", gameID),
			qb.Eq("cancelled", false),
			qb.IsNull("winner_id"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set winner query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set winner: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set winner rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("game %s is not open for a result", gameID)
	}

	return nil
}

func (r *GameRepository) SetCancelled(ctx context.Context, gameID string) error {
	query, args, err := qb.Update("games").
		Set("cancelled", true).
		Where(
			qb.Eq("id", gameID),
			qb.IsNull("winner_id"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build cancel game query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("cancel game: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("cancel game rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("game %s cannot be cancelled", gameID)
	}

	return nil
}

func gamesFromRows(rows []gameTableModel) []game.Game {
	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, gameFromRow(row))
	}
	return out
}

func gameFromRow(row gameTableModel) game.Game {
	return game.Game{
		ID:         row.ID,
		Week:       row.Week,
		HomeTeamID: row.HomeTeamID,
		AwayTeamID: row.AwayTeamID,
		Difficulty: row.Difficulty,
		WinnerID:   nullStringToPtr(row.WinnerID),
		Cancelled:  row.Cancelled,
		KickoffAt:  row.KickoffTime,
		LockAt:     row.LockTime,
	}
}
