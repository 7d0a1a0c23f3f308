package postgres

import (
	"database/sql"
	"time"
)

type userTableModel struct {
	ID        string    `db:"id"`
	Username  string    `db:"username"`
	CreatedAt time.Time `db:"created_at"`
}

type teamTableModel struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	ShortName string `db:"short_name"`
	LogoURL   string `db:"logo_url"`
	Color     string `db:"color"`
}

type weekTableModel struct {
	ID        int       `db:"id"`
	StartDate time.Time `db:"start_date"`
	EndDate   time.Time `db:"end_date"`
}

type gameTableModel struct {
	ID          string         `db:"id"`
	Week        int            `db:"week"`
	HomeTeamID  string         `db:"home_team_id"`
	AwayTeamID  string         `db:"away_team_id"`
	Difficulty  int            `db:"difficulty"`
	WinnerID    sql.NullString `db:"winner_id"`
	Cancelled   bool           `db:"cancelled"`
	KickoffTime time.Time      `db:"kickoff_time"`
	LockTime    time.Time      `db:"lock_time"`
}

type pickTableModel struct {
	UserID         string    `db:"user_id"`
	GameID         string    `db:"game_id"`
	SelectedTeamID string    `db:"selected_team_id"`
	DoubleDown     bool      `db:"double_down"`
	SubmittedAt    time.Time `db:"submitted_at"`
}

type pickInsertModel struct {
	UserID         string    `db:"user_id"`
	GameID         string    `db:"game_id"`
	SelectedTeamID string    `db:"selected_team_id"`
	DoubleDown     bool      `db:"double_down"`
	SubmittedAt    time.Time `db:"submitted_at"`
}
