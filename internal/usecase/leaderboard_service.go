package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/pool"

	"github.com/gridironpool/pickem/internal/domain/game"
	"github.com/gridironpool/pickem/internal/domain/pick"
	"github.com/gridironpool/pickem/internal/domain/scoring"
	"github.com/gridironpool/pickem/internal/domain/user"
)

const defaultSeasonWorkers = 4

// LeaderboardService computes weekly and season standings. Results are
// derived fresh from whatever rows are currently persisted; nothing is
// cached or written back, so concurrent requests are independent
// snapshots.
type LeaderboardService struct {
	userRepo      user.Repository
	gameRepo      game.Repository
	pickRepo      pick.Repository
	seasonWorkers int
}

func NewLeaderboardService(
	userRepo user.Repository,
	gameRepo game.Repository,
	pickRepo pick.Repository,
	seasonWorkers int,
) *LeaderboardService {
	if seasonWorkers < 1 {
		seasonWorkers = defaultSeasonWorkers
	}

	return &LeaderboardService{
		userRepo:      userRepo,
		gameRepo:      gameRepo,
		pickRepo:      pickRepo,
		seasonWorkers: seasonWorkers,
	}
}

// LeaderboardRow is one ranked user on a leaderboard.
type LeaderboardRow struct {
	ID       string
	Username string
	Total    int
	Correct  int
	Attempts int
	Accuracy int
	Rank     int
}

// WeeklyRow adds the user's raw picks so a display collaborator can render
// the week grid without a second round trip.
type WeeklyRow struct {
	LeaderboardRow
	Picks []pick.Pick
}

// Weekly produces one ranked row per roster user for a single week. Only
// scorable games (not cancelled, winner known) contribute points or count
// toward the accuracy denominator; every user shares the same weekly
// denominator. Unresolved games are excluded before the scorer runs so an
// undecided double down is never penalized.
func (s *LeaderboardService) Weekly(ctx context.Context, weekID int) ([]WeeklyRow, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Weekly")
	defer span.End()

	var users []user.User
	var games []game.Game

	fetch := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	fetch.Go(func(ctx context.Context) error {
		var err error
		if users, err = s.userRepo.List(ctx); err != nil {
			return fmt.Errorf("list users for weekly leaderboard: %w", err)
		}
		return nil
	})
	fetch.Go(func(ctx context.Context) error {
		var err error
		if games, err = s.gameRepo.ListByWeek(ctx, weekID); err != nil {
			return fmt.Errorf("list games for week %d: %w", weekID, err)
		}
		return nil
	})
	if err := fetch.Wait(); err != nil {
		return nil, err
	}

	if len(users) == 0 || len(games) == 0 {
		return []WeeklyRow{}, nil
	}

	gameIDs := make([]string, 0, len(games))
	for _, g := range games {
		gameIDs = append(gameIDs, g.ID)
	}

	picks, err := s.pickRepo.ListByGameIDs(ctx, gameIDs)
	if err != nil {
		return nil, fmt.Errorf("list picks for week %d: %w", weekID, err)
	}

	scorable, attempts := scorableGames(games)
	picksByUser := groupPicksByUser(picks)

	entries := make([]scoring.Entry, 0, len(users))
	for _, u := range users {
		total, correct := scoreUserPicks(picksByUser[u.ID], scorable)
		entries = append(entries, scoring.Entry{
			ID:       u.ID,
			Username: u.Username,
			Total:    total,
			Correct:  correct,
			Attempts: attempts,
			Accuracy: scoring.AccuracyPercent(correct, attempts),
		})
	}

	ranked := scoring.Rank(entries)
	rows := make([]WeeklyRow, 0, len(ranked))
	for _, e := range ranked {
		rows = append(rows, WeeklyRow{
			LeaderboardRow: rowFromEntry(e),
			Picks:          picksByUser[e.ID],
		})
	}

	return rows, nil
}

// Season produces one ranked row per roster user across all weeks. Weeks
// are independent, so their aggregation fans out over a worker pool and
// the per-user partials are summed afterwards; the result is numerically
// identical to a single pass over all picks.
//
// The season accuracy denominator is the number of scorable games the user
// actually picked, not the season-wide scorable count.
func (s *LeaderboardService) Season(ctx context.Context) ([]LeaderboardRow, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Season")
	defer span.End()

	var users []user.User
	var games []game.Game
	var picks []pick.Pick

	fetch := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	fetch.Go(func(ctx context.Context) error {
		var err error
		if users, err = s.userRepo.List(ctx); err != nil {
			return fmt.Errorf("list users for season leaderboard: %w", err)
		}
		return nil
	})
	fetch.Go(func(ctx context.Context) error {
		var err error
		if games, err = s.gameRepo.List(ctx); err != nil {
			return fmt.Errorf("list games for season leaderboard: %w", err)
		}
		return nil
	})
	fetch.Go(func(ctx context.Context) error {
		var err error
		if picks, err = s.pickRepo.List(ctx); err != nil {
			return fmt.Errorf("list picks for season leaderboard: %w", err)
		}
		return nil
	})
	if err := fetch.Wait(); err != nil {
		return nil, err
	}

	if len(users) == 0 {
		return []LeaderboardRow{}, nil
	}

	totals, err := s.aggregateSeason(games, picks)
	if err != nil {
		return nil, err
	}

	entries := make([]scoring.Entry, 0, len(users))
	for _, u := range users {
		agg := totals[u.ID]
		entries = append(entries, scoring.Entry{
			ID:       u.ID,
			Username: u.Username,
			Total:    agg.total,
			Correct:  agg.correct,
			Attempts: agg.attempts,
			Accuracy: scoring.AccuracyPercent(agg.correct, agg.attempts),
		})
	}

	ranked := scoring.Rank(entries)
	rows := make([]LeaderboardRow, 0, len(ranked))
	for _, e := range ranked {
		rows = append(rows, rowFromEntry(e))
	}

	return rows, nil
}

type seasonAggregate struct {
	total    int
	correct  int
	attempts int
}

func (s *LeaderboardService) aggregateSeason(games []game.Game, picks []pick.Pick) (map[string]seasonAggregate, error) {
	byWeek := make(map[int][]game.Game)
	weeks := make([]int, 0)
	for _, g := range games {
		if _, exists := byWeek[g.Week]; !exists {
			weeks = append(weeks, g.Week)
		}
		byWeek[g.Week] = append(byWeek[g.Week], g)
	}
	sort.Ints(weeks)

	picksByGame := make(map[string][]pick.Pick, len(games))
	for _, p := range picks {
		picksByGame[p.GameID] = append(picksByGame[p.GameID], p)
	}

	totals := make(map[string]seasonAggregate)
	if len(weeks) == 0 {
		return totals, nil
	}

	workerCount := s.seasonWorkers
	if workerCount > len(weeks) {
		workerCount = len(weeks)
	}

	workerPool, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, fmt.Errorf("create season worker pool: %w", err)
	}
	defer workerPool.Release()

	partials := make(chan map[string]seasonAggregate, len(weeks))

	var workers sync.WaitGroup
	for _, weekID := range weeks {
		weekGames := byWeek[weekID]
		workers.Add(1)
		if err := workerPool.Submit(func() {
			defer workers.Done()
			partials <- aggregateWeek(weekGames, picksByGame)
		}); err != nil {
			workers.Done()
			return nil, fmt.Errorf("submit week aggregation to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(partials)

	for partial := range partials {
		for userID, agg := range partial {
			merged := totals[userID]
			merged.total += agg.total
			merged.correct += agg.correct
			merged.attempts += agg.attempts
			totals[userID] = merged
		}
	}

	return totals, nil
}

func aggregateWeek(games []game.Game, picksByGame map[string][]pick.Pick) map[string]seasonAggregate {
	out := make(map[string]seasonAggregate)
	for i := range games {
		if !games[i].Scorable() {
			continue
		}
		resolved := scoring.ResolveGame(&games[i])
		for _, p := range picksByGame[games[i].ID] {
			scored := scoring.ScorePick(scoring.Pick{
				SelectedTeamID: p.SelectedTeamID,
				DoubleDown:     p.DoubleDown,
			}, resolved)

			agg := out[p.UserID]
			agg.total += scored.Points
			if scored.IsCorrect {
				agg.correct++
			}
			agg.attempts++
			out[p.UserID] = agg
		}
	}
	return out
}

func scorableGames(games []game.Game) (map[string]*scoring.Game, int) {
	scorable := make(map[string]*scoring.Game, len(games))
	for i := range games {
		if games[i].Scorable() {
			scorable[games[i].ID] = scoring.ResolveGame(&games[i])
		}
	}
	return scorable, len(scorable)
}

func scoreUserPicks(picks []pick.Pick, scorable map[string]*scoring.Game) (int, int) {
	total, correct := 0, 0
	for _, p := range picks {
		g, ok := scorable[p.GameID]
		if !ok {
			// cancelled or not yet resolved: contributes nothing
			continue
		}
		scored := scoring.ScorePick(scoring.Pick{
			SelectedTeamID: p.SelectedTeamID,
			DoubleDown:     p.DoubleDown,
		}, g)
		total += scored.Points
		if scored.IsCorrect {
			correct++
		}
	}
	return total, correct
}

func groupPicksByUser(picks []pick.Pick) map[string][]pick.Pick {
	out := make(map[string][]pick.Pick)
	for _, p := range picks {
		out[p.UserID] = append(out[p.UserID], p)
	}
	for userID := range out {
		userPicks := out[userID]
		sort.SliceStable(userPicks, func(i, j int) bool {
			return userPicks[i].GameID < userPicks[j].GameID
		})
		out[userID] = userPicks
	}
	return out
}

func rowFromEntry(e scoring.Entry) LeaderboardRow {
	return LeaderboardRow{
		ID:       e.ID,
		Username: e.Username,
		Total:    e.Total,
		Correct:  e.Correct,
		Attempts: e.Attempts,
		Accuracy: e.Accuracy,
		Rank:     e.Rank,
	}
}
