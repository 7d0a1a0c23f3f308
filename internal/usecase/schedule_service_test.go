package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gridironpool/pickem/internal/domain/game"
	"github.com/gridironpool/pickem/internal/domain/team"
	"github.com/gridironpool/pickem/internal/domain/week"
	"github.com/gridironpool/pickem/internal/platform/cache"
)

func TestScheduleService_CurrentWeek(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.September, 15, 12, 0, 0, 0, time.UTC)
	weeks := &stubWeekRepository{weeks: []week.Week{
		{ID: 1, StartAt: now.Add(-10 * 24 * time.Hour), EndAt: now.Add(-4 * 24 * time.Hour)},
		{ID: 2, StartAt: now.Add(-3 * 24 * time.Hour), EndAt: now.Add(3 * 24 * time.Hour)},
	}}

	service := NewScheduleService(weeks, &stubGameRepository{}, &stubTeamRepository{}, cache.NewStore(time.Minute))
	service.now = func() time.Time { return now }

	current, err := service.CurrentWeek(context.Background())
	if err != nil {
		t.Fatalf("CurrentWeek error: %v", err)
	}
	if current.ID != 2 {
		t.Fatalf("expected week 2, got %d", current.ID)
	}

	// Second call is served from cache.
	weeks.err = errors.New("backend down")
	cached, err := service.CurrentWeek(context.Background())
	if err != nil {
		t.Fatalf("cached CurrentWeek error: %v", err)
	}
	if cached.ID != 2 {
		t.Fatalf("expected cached week 2, got %d", cached.ID)
	}
}

func TestScheduleService_CurrentWeek_OffSeason(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	weeks := &stubWeekRepository{weeks: []week.Week{
		{ID: 1, StartAt: now.Add(60 * 24 * time.Hour), EndAt: now.Add(67 * 24 * time.Hour)},
	}}

	service := NewScheduleService(weeks, &stubGameRepository{}, &stubTeamRepository{}, cache.NewStore(time.Minute))
	service.now = func() time.Time { return now }

	if _, err := service.CurrentWeek(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound off season, got %v", err)
	}
}

func TestScheduleService_GamesByWeek_SortsByDifficulty(t *testing.T) {
	t.Parallel()

	games := &stubGameRepository{games: []game.Game{
		{ID: "g1", Week: 1, HomeTeamID: "team-a", AwayTeamID: "team-b", Difficulty: 7},
		{ID: "g2", Week: 1, HomeTeamID: "team-c", AwayTeamID: "team-d", Difficulty: 3},
		{ID: "g3", Week: 2, HomeTeamID: "team-a", AwayTeamID: "team-c", Difficulty: 1},
	}}
	teams := &stubTeamRepository{teams: []team.Team{
		{ID: "team-a", Name: "Hawks", ShortName: "HAW"},
		{ID: "team-b", Name: "Bears", ShortName: "BEA"},
		{ID: "team-c", Name: "Colts", ShortName: "COL"},
		{ID: "team-d", Name: "Lions", ShortName: "LIO"},
	}}

	service := NewScheduleService(&stubWeekRepository{}, games, teams, cache.NewStore(time.Minute))

	slate, err := service.GamesByWeek(context.Background(), 1)
	if err != nil {
		t.Fatalf("GamesByWeek error: %v", err)
	}
	if len(slate) != 2 {
		t.Fatalf("expected 2 games, got %d", len(slate))
	}
	if slate[0].ID != "g2" || slate[1].ID != "g1" {
		t.Fatalf("expected difficulty order g2,g1 got %s,%s", slate[0].ID, slate[1].ID)
	}
	if slate[0].Home.Name != "Colts" || slate[0].Away.Name != "Lions" {
		t.Fatalf("unexpected resolved teams: %+v", slate[0])
	}
}

func TestScheduleService_GamesByWeek_EmptyWeek(t *testing.T) {
	t.Parallel()

	service := NewScheduleService(&stubWeekRepository{}, &stubGameRepository{}, &stubTeamRepository{}, cache.NewStore(time.Minute))

	slate, err := service.GamesByWeek(context.Background(), 42)
	if err != nil {
		t.Fatalf("GamesByWeek error: %v", err)
	}
	if slate == nil || len(slate) != 0 {
		t.Fatalf("expected empty slate, got %#v", slate)
	}
}

func TestScheduleService_ListTeams_Cached(t *testing.T) {
	t.Parallel()

	teams := &stubTeamRepository{teams: []team.Team{
		{ID: "team-b", Name: "Bears"},
		{ID: "team-a", Name: "Hawks"},
	}}

	service := NewScheduleService(&stubWeekRepository{}, &stubGameRepository{}, teams, cache.NewStore(time.Minute))

	first, err := service.ListTeams(context.Background())
	if err != nil {
		t.Fatalf("ListTeams error: %v", err)
	}
	if len(first) != 2 || first[0].ID != "team-a" {
		t.Fatalf("expected teams sorted by id, got %+v", first)
	}

	teams.err = errors.New("backend down")
	cached, err := service.ListTeams(context.Background())
	if err != nil {
		t.Fatalf("cached ListTeams error: %v", err)
	}
	if len(cached) != 2 {
		t.Fatalf("expected cached catalog, got %+v", cached)
	}
}
