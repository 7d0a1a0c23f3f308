package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/gridironpool/pickem/internal/domain/pick"
	qb "github.com/gridironpool/pickem/internal/platform/querybuilder"
)

type PickRepository struct {
	db *sqlx.DB
}

func NewPickRepository(db *sqlx.DB) *PickRepository {
	return &PickRepository{db: db}
}

func (r *PickRepository) List(ctx context.Context) ([]pick.Pick, error) {
	query, args, err := pickBaseSelectBuilder().ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select picks query: %w", err)
	}

	var rows []pickTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select picks: %w", err)
	}

	return picksFromRows(rows), nil
}

func (r *PickRepository) ListByGameIDs(ctx context.Context, gameIDs []string) ([]pick.Pick, error) {
	if len(gameIDs) == 0 {
		return []pick.Pick{}, nil
	}

	query, args, err := pickBaseSelectBuilder().
		Where(qb.In("game_id", anySlice(gameIDs))).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select picks by games query: %w", err)
	}

	var rows []pickTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select picks by games: %w", err)
	}

	return picksFromRows(rows), nil
}

func (r *PickRepository) ListByUser(ctx context.Context, userID string, gameIDs []string) ([]pick.Pick, error) {
	conditions := []qb.Condition{qb.Eq("user_id", userID)}
	if len(gameIDs) > 0 {
		conditions = append(conditions, qb.In("game_id", anySlice(gameIDs)))
	}

	query, args, err := pickBaseSelectBuilder().
		Where(conditions...).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select picks by user query: %w", err)
	}

	var rows []pickTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select picks by user: %w", err)
	}

	return picksFromRows(rows), nil
}

// ListByUserWithGames composes two builder queries instead of a SQL join;
// the builder has no join support and pick volumes per user are small.
func (r *PickRepository) ListByUserWithGames(ctx context.Context, userID string, weekID *int) ([]pick.WithGame, error) {
	picks, err := r.ListByUser(ctx, userID, nil)
	if err != nil {
		return nil, err
	}
	if len(picks) == 0 {
		return []pick.WithGame{}, nil
	}

	gameIDs := make([]any, 0, len(picks))
	for _, p := range picks {
		gameIDs = append(gameIDs, p.GameID)
	}

	gameConditions := []qb.Condition{qb.In("id", gameIDs)}
	if weekID != nil {
		gameConditions = append(gameConditions, qb.Eq("week", *weekID))
	}
	query, args, err := qb.Select("*").From("games").
		Where(gameConditions...).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select games for picks query: %w", err)
	}

	var gameRows []gameTableModel
	if err := r.db.SelectContext(ctx, &gameRows, query, args...); err != nil {
		return nil, fmt.Errorf("select games for picks: %w", err)
	}

	gamesByID := make(map[string]gameTableModel, len(gameRows))
	for _, row := range gameRows {
		gamesByID[row.ID] = row
	}

	out := make([]pick.WithGame, 0, len(picks))
	for _, p := range picks {
		row, found := gamesByID[p.GameID]
		if !found {
			if weekID != nil {
				continue
			}
			out = append(out, pick.WithGame{Pick: p})
			continue
		}
		g := gameFromRow(row)
		out = append(out, pick.WithGame{Pick: p, Game: &g})
	}

	return out, nil
}

func (r *PickRepository) Upsert(ctx context.Context, picks []pick.Pick) error {
	if len(picks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert picks tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, p := range picks {
		model := pickInsertModel{
			UserID:         p.UserID,
			GameID:         p.GameID,
			SelectedTeamID: p.SelectedTeamID,
			DoubleDown:     p.DoubleDown,
			SubmittedAt:    p.SubmittedAt,
		}
		query, args, err := qb.InsertModel("picks", model, `ON CONFLICT (user_id, game_id)
DO UPDATE SET
    selected_team_id = EXCLUDED.selected_team_id,
    double_down = EXCLUDED.double_down,
    submitted_at = EXCLUDED.submitted_at`)
		if err != nil {
			return fmt.Errorf("build upsert pick query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert pick user=%s game=%s: %w", p.UserID, p.GameID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert picks tx: %w", err)
	}

	return nil
}

func pickBaseSelectBuilder() *qb.SelectBuilder {
	return qb.Select("*").From("picks").OrderBy("user_id", "game_id")
}

func picksFromRows(rows []pickTableModel) []pick.Pick {
	out := make([]pick.Pick, 0, len(rows))
	for _, row := range rows {
		out = append(out, pick.Pick{
			UserID:         row.UserID,
			GameID:         row.GameID,
			SelectedTeamID: row.SelectedTeamID,
			DoubleDown:     row.DoubleDown,
			SubmittedAt:    row.SubmittedAt,
		})
	}
	return out
}

func anySlice(values []string) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}
