package postgres

import (
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	qb "github.com/gridironpool/pickem/internal/platform/querybuilder"
)

func TestIsNotFound(t *testing.T) {
	if !isNotFound(sql.ErrNoRows) {
		t.Fatal("expected true for sql.ErrNoRows")
	}
	if isNotFound(errors.New("pq: relation picks does not exist")) {
		t.Fatal("expected false for unrelated error")
	}
}

func TestNullStringToPtr(t *testing.T) {
	if got := nullStringToPtr(sql.NullString{}); got != nil {
		t.Fatalf("expected nil for null, got %v", *got)
	}
	got := nullStringToPtr(sql.NullString{String: "tm-hawks", Valid: true})
	if got == nil || *got != "tm-hawks" {
		t.Fatalf("unexpected pointer value: %v", got)
	}
}

func TestPickUpsertQueryShape(t *testing.T) {
	model := pickInsertModel{
		UserID:         "u1",
		GameID:         "g1",
		SelectedTeamID: "tm-hawks",
		DoubleDown:     true,
		SubmittedAt:    time.Date(2026, time.September, 12, 9, 0, 0, 0, time.UTC),
	}

	query, args, err := qb.InsertModel("picks", model, `ON CONFLICT (user_id, game_id)
DO UPDATE SET
    selected_team_id = EXCLUDED.selected_team_id,
    double_down = EXCLUDED.double_down,
    submitted_at = EXCLUDED.submitted_at`)
	if err != nil {
		t.Fatalf("InsertModel error: %v", err)
	}

	if !strings.HasPrefix(query, "INSERT INTO picks") {
		t.Fatalf("unexpected query prefix: %s", query)
	}
	if !strings.Contains(query, "ON CONFLICT (user_id, game_id)") {
		t.Fatalf("missing conflict clause: %s", query)
	}
	if len(args) != 5 {
		t.Fatalf("expected 5 args, got %d", len(args))
	}
}

func TestGameListByWeekQueryShape(t *testing.T) {
	query, args, err := qb.Select("*").From("games").
		Where(qb.Eq("week", 3)).
		OrderBy("kickoff_time", "id").
		ToSQL()
	if err != nil {
		t.Fatalf("ToSQL error: %v", err)
	}

	if !strings.Contains(query, "WHERE week = $1") {
		t.Fatalf("unexpected where clause: %s", query)
	}
	if !strings.Contains(query, "ORDER BY kickoff_time, id") {
		t.Fatalf("unexpected order clause: %s", query)
	}
	if len(args) != 1 || args[0] != 3 {
		t.Fatalf("unexpected args: %v", args)
	}
}
