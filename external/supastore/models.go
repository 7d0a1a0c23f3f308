package supastore

import (
	"bytes"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/gridironpool/pickem/internal/domain/game"
	"github.com/gridironpool/pickem/internal/domain/pick"
	"github.com/gridironpool/pickem/internal/domain/team"
	"github.com/gridironpool/pickem/internal/domain/user"
	"github.com/gridironpool/pickem/internal/domain/week"
)

type userRow struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (r userRow) toDomain() user.User {
	return user.User{ID: r.ID, Username: r.Username}
}

type teamRow struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	LogoURL   string `json:"logo_url"`
	Color     string `json:"color"`
}

func (r teamRow) toDomain() team.Team {
	return team.Team{
		ID:        r.ID,
		Name:      r.Name,
		ShortName: r.ShortName,
		LogoURL:   r.LogoURL,
		Color:     r.Color,
	}
}

type weekRow struct {
	ID        int    `json:"id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (r weekRow) toDomain() week.Week {
	return week.Week{
		ID:      r.ID,
		StartAt: parsePostgrestTime(r.StartDate),
		EndAt:   parsePostgrestTime(r.EndDate),
	}
}

type gameRow struct {
	ID          string  `json:"id"`
	Week        int     `json:"week"`
	HomeTeamID  string  `json:"home_team_id"`
	AwayTeamID  string  `json:"away_team_id"`
	Difficulty  int     `json:"difficulty"`
	WinnerID    *string `json:"winner_id"`
	Cancelled   bool    `json:"cancelled"`
	KickoffTime string  `json:"kickoff_time"`
	LockTime    string  `json:"lock_time"`
}

func (r gameRow) toDomain() game.Game {
	return game.Game{
		ID:         r.ID,
		Week:       r.Week,
		HomeTeamID: r.HomeTeamID,
		AwayTeamID: r.AwayTeamID,
		Difficulty: r.Difficulty,
		WinnerID:   r.WinnerID,
		Cancelled:  r.Cancelled,
		KickoffAt:  parsePostgrestTime(r.KickoffTime),
		LockAt:     parsePostgrestTime(r.LockTime),
	}
}

// gameEmbed absorbs the three shapes PostgREST uses for an embedded game
// relation: a bare object, a singleton array, or null. All call sites see
// the same resolved pointer and never branch on shape.
type gameEmbed struct {
	row *gameRow
}

func (e *gameEmbed) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		e.row = nil
		return nil
	}

	switch trimmed[0] {
	case '[':
		var rows []gameRow
		if err := sonic.Unmarshal(trimmed, &rows); err != nil {
			return crerr.Wrap(err, "unmarshal embedded game list")
		}
		if len(rows) == 0 {
			e.row = nil
			return nil
		}
		e.row = &rows[0]
	case '{':
		var row gameRow
		if err := sonic.Unmarshal(trimmed, &row); err != nil {
			return crerr.Wrap(err, "unmarshal embedded game object")
		}
		e.row = &row
	default:
		return crerr.Newf("unexpected embedded game shape: %s", previewJSON(trimmed))
	}

	return nil
}

// Resolve returns the embedded game, or nil when the relation is absent.
func (e *gameEmbed) Resolve() *game.Game {
	if e.row == nil {
		return nil
	}
	g := e.row.toDomain()
	return &g
}

type pickRow struct {
	UserID         string    `json:"user_id"`
	GameID         string    `json:"game_id"`
	SelectedTeamID string    `json:"selected_team_id"`
	DoubleDown     bool      `json:"double_down"`
	SubmittedAt    string    `json:"submitted_at"`
	Game           gameEmbed `json:"games"`
}

func (r pickRow) toDomain() pick.Pick {
	return pick.Pick{
		UserID:         r.UserID,
		GameID:         r.GameID,
		SelectedTeamID: r.SelectedTeamID,
		DoubleDown:     r.DoubleDown,
		SubmittedAt:    parsePostgrestTime(r.SubmittedAt),
	}
}

func (r pickRow) toDomainWithGame() pick.WithGame {
	return pick.WithGame{
		Pick: r.toDomain(),
		Game: r.Game.Resolve(),
	}
}

type pickInsertRow struct {
	UserID         string `json:"user_id"`
	GameID         string `json:"game_id"`
	SelectedTeamID string `json:"selected_team_id"`
	DoubleDown     bool   `json:"double_down"`
	SubmittedAt    string `json:"submitted_at"`
}

var postgrestTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parsePostgrestTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range postgrestTimeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func formatPostgrestTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func previewJSON(data []byte) string {
	const max = 120
	if len(data) <= max {
		return string(data)
	}
	return string(data[:max]) + "..."
}
