package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gridironpool/pickem/internal/domain/week"
	qb "github.com/gridironpool/pickem/internal/platform/querybuilder"
)

type WeekRepository struct {
	db *sqlx.DB
}

func NewWeekRepository(db *sqlx.DB) *WeekRepository {
	return &WeekRepository{db: db}
}

func (r *WeekRepository) List(ctx context.Context) ([]week.Week, error) {
	query, args, err := qb.Select("*").From("weeks").
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select weeks query: %w", err)
	}

	var rows []weekTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select weeks: %w", err)
	}

	out := make([]week.Week, 0, len(rows))
	for _, row := range rows {
		out = append(out, weekFromRow(row))
	}

	return out, nil
}

func (r *WeekRepository) GetByTime(ctx context.Context, at time.Time) (week.Week, bool, error) {
	query, args, err := qb.Select("*").From("weeks").
		Where(
			qb.Expr("start_date <= ?", at),
			qb.Expr("end_date >= ?", at),
		).
		OrderBy("id").
		Limit(1).
		ToSQL()
	if err != nil {
		return week.Week{}, false, fmt.Errorf("build get week by time query: %w", err)
	}

	var row weekTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return week.Week{}, false, nil
		}
		return week.Week{}, false, fmt.Errorf("get week by time: %w", err)
	}

	return weekFromRow(row), true, nil
}

func weekFromRow(row weekTableModel) week.Week {
	return week.Week{
		ID:      row.ID,
		StartAt: row.StartDate,
		EndAt:   row.EndDate,
	}
}
