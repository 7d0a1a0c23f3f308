package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gridironpool/pickem/internal/domain/game"
	"github.com/gridironpool/pickem/internal/domain/team"
	"github.com/gridironpool/pickem/internal/domain/week"
	"github.com/gridironpool/pickem/internal/platform/cache"
)

const (
	cacheKeyCurrentWeek = "schedule:week:current"
	cacheKeyTeams       = "schedule:teams"
)

// GameWithTeams is a slate entry with both sides resolved for display.
type GameWithTeams struct {
	game.Game
	Home team.Team
	Away team.Team
}

// ScheduleService serves the read-mostly season fixtures: weeks, the week
// slate, and the team catalog. Current week and teams sit behind a
// short-TTL cache; scores never do.
type ScheduleService struct {
	weekRepo week.Repository
	gameRepo game.Repository
	teamRepo team.Repository
	store    *cache.Store
	now      func() time.Time
}

func NewScheduleService(
	weekRepo week.Repository,
	gameRepo game.Repository,
	teamRepo team.Repository,
	store *cache.Store,
) *ScheduleService {
	return &ScheduleService{
		weekRepo: weekRepo,
		gameRepo: gameRepo,
		teamRepo: teamRepo,
		store:    store,
		now:      time.Now,
	}
}

// CurrentWeek returns the week whose date range contains now, or
// ErrNotFound outside the season.
func (s *ScheduleService) CurrentWeek(ctx context.Context) (week.Week, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.CurrentWeek")
	defer span.End()

	value, err := s.store.GetOrLoad(ctx, cacheKeyCurrentWeek, func(ctx context.Context) (any, error) {
		current, found, err := s.weekRepo.GetByTime(ctx, s.now())
		if err != nil {
			return nil, fmt.Errorf("resolve current week: %w", err)
		}
		if !found {
			return nil, fmt.Errorf("%w: no week contains the current time", ErrNotFound)
		}
		return current, nil
	})
	if err != nil {
		return week.Week{}, err
	}

	current, ok := value.(week.Week)
	if !ok {
		return week.Week{}, fmt.Errorf("unexpected cached current week type %T", value)
	}

	return current, nil
}

// ListWeeks returns all weeks ordered by id.
func (s *ScheduleService) ListWeeks(ctx context.Context) ([]week.Week, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.ListWeeks")
	defer span.End()

	weeks, err := s.weekRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list weeks: %w", err)
	}

	sort.Slice(weeks, func(i, j int) bool { return weeks[i].ID < weeks[j].ID })
	return weeks, nil
}

// GamesByWeek returns the week's slate with both teams resolved, easiest
// game first. An unknown team id leaves a zero Team rather than failing
// the whole slate.
func (s *ScheduleService) GamesByWeek(ctx context.Context, weekID int) ([]GameWithTeams, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.GamesByWeek")
	defer span.End()

	games, err := s.gameRepo.ListByWeek(ctx, weekID)
	if err != nil {
		return nil, fmt.Errorf("list games for week %d: %w", weekID, err)
	}
	if len(games) == 0 {
		return []GameWithTeams{}, nil
	}

	teams, err := s.ListTeams(ctx)
	if err != nil {
		return nil, err
	}
	teamsByID := make(map[string]team.Team, len(teams))
	for _, tm := range teams {
		teamsByID[tm.ID] = tm
	}

	slate := make([]GameWithTeams, 0, len(games))
	for _, g := range games {
		slate = append(slate, GameWithTeams{
			Game: g,
			Home: teamsByID[g.HomeTeamID],
			Away: teamsByID[g.AwayTeamID],
		})
	}

	sort.SliceStable(slate, func(i, j int) bool {
		if slate[i].Difficulty != slate[j].Difficulty {
			return slate[i].Difficulty < slate[j].Difficulty
		}
		if !slate[i].KickoffAt.Equal(slate[j].KickoffAt) {
			return slate[i].KickoffAt.Before(slate[j].KickoffAt)
		}
		return slate[i].ID < slate[j].ID
	})

	return slate, nil
}

// ListTeams returns the team catalog, cached.
func (s *ScheduleService) ListTeams(ctx context.Context) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.ListTeams")
	defer span.End()

	value, err := s.store.GetOrLoad(ctx, cacheKeyTeams, func(ctx context.Context) (any, error) {
		teams, err := s.teamRepo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list teams: %w", err)
		}
		sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
		return teams, nil
	})
	if err != nil {
		return nil, err
	}

	teams, ok := value.([]team.Team)
	if !ok {
		return nil, fmt.Errorf("unexpected cached teams type %T", value)
	}

	return teams, nil
}
