package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/gridironpool/pickem/internal/domain/game"
	idgen "github.com/gridironpool/pickem/internal/platform/id"
	"github.com/gridironpool/pickem/internal/platform/logging"
)

type RecomputeResult struct {
	RunID       string `json:"run_id"`
	WeekCount   int    `json:"week_count"`
	WeeklyRows  int    `json:"weekly_rows"`
	SeasonRows  int    `json:"season_rows"`
	FailedWeeks int    `json:"failed_weeks"`
	WorkerCount int    `json:"worker_count"`
	DurationMs  int64  `json:"duration_ms"`
}

// RecomputeService runs the stateless aggregation sweep behind the
// internal recompute job. Leaderboards are derived per request and never
// stored, so the sweep writes nothing; it exists to keep derived views
// warm in logs and to surface data problems before users do.
type RecomputeService struct {
	gameRepo    game.Repository
	leaderboard *LeaderboardService
	idGen       idgen.Generator
	logger      *logging.Logger
	workers     int
	now         func() time.Time
}

func NewRecomputeService(
	gameRepo game.Repository,
	leaderboard *LeaderboardService,
	idGen idgen.Generator,
	logger *logging.Logger,
	workers int,
) *RecomputeService {
	if idGen == nil {
		idGen = idgen.NewRandomGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if workers < 1 {
		workers = defaultSeasonWorkers
	}

	return &RecomputeService{
		gameRepo:    gameRepo,
		leaderboard: leaderboard,
		idGen:       idGen,
		logger:      logger,
		workers:     workers,
		now:         time.Now,
	}
}

// Sweep recomputes every weekly board plus the season board and logs a
// summary. Individual week failures are counted, not fatal; the season
// pass failing fails the sweep.
func (s *RecomputeService) Sweep(ctx context.Context) (RecomputeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecomputeService.Sweep")
	defer span.End()

	started := s.now()

	runID, err := s.idGen.NewID()
	if err != nil {
		runID = fmt.Sprintf("sweep-%d", started.UnixNano())
	}

	games, err := s.gameRepo.List(ctx)
	if err != nil {
		return RecomputeResult{}, fmt.Errorf("list games for recompute sweep: %w", err)
	}

	weekSet := make(map[int]struct{})
	for _, g := range games {
		weekSet[g.Week] = struct{}{}
	}
	weeks := make([]int, 0, len(weekSet))
	for weekID := range weekSet {
		weeks = append(weeks, weekID)
	}
	sort.Ints(weeks)

	workerCount := s.workers
	if len(weeks) > 0 && workerCount > len(weeks) {
		workerCount = len(weeks)
	}

	var weeklyRows, failedWeeks atomic.Int64

	if len(weeks) > 0 {
		workerPool, err := ants.NewPool(workerCount)
		if err != nil {
			return RecomputeResult{}, fmt.Errorf("create recompute worker pool: %w", err)
		}
		defer workerPool.Release()

		var wg sync.WaitGroup
		for _, weekID := range weeks {
			wg.Add(1)
			if err := workerPool.Submit(func() {
				defer wg.Done()
				rows, err := s.leaderboard.Weekly(ctx, weekID)
				if err != nil {
					failedWeeks.Add(1)
					s.logger.WarnContext(ctx, "weekly recompute failed", "run_id", runID, "week", weekID, "error", err)
					return
				}
				weeklyRows.Add(int64(len(rows)))
			}); err != nil {
				wg.Done()
				return RecomputeResult{}, fmt.Errorf("submit week %d to recompute pool: %w", weekID, err)
			}
		}
		wg.Wait()
	}

	seasonRows, err := s.leaderboard.Season(ctx)
	if err != nil {
		return RecomputeResult{}, fmt.Errorf("season recompute: %w", err)
	}

	result := RecomputeResult{
		RunID:       runID,
		WeekCount:   len(weeks),
		WeeklyRows:  int(weeklyRows.Load()),
		SeasonRows:  len(seasonRows),
		FailedWeeks: int(failedWeeks.Load()),
		WorkerCount: workerCount,
		DurationMs:  s.now().Sub(started).Milliseconds(),
	}

	s.logger.InfoContext(ctx, "recompute sweep finished",
		"run_id", result.RunID,
		"weeks", result.WeekCount,
		"weekly_rows", result.WeeklyRows,
		"season_rows", result.SeasonRows,
		"failed_weeks", result.FailedWeeks,
		"duration_ms", result.DurationMs,
	)

	return result, nil
}
