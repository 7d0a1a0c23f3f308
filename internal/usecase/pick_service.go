package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/gridironpool/pickem/internal/domain/game"
	"github.com/gridironpool/pickem/internal/domain/pick"
	"github.com/gridironpool/pickem/internal/domain/user"
)

// PickSubmission is one requested pick inside a Submit call.
type PickSubmission struct {
	GameID         string
	SelectedTeamID string
	DoubleDown     bool
}

// PickService writes user picks. Identity is supplied by the caller; the
// service enforces game state rules (lock time, cancellation) and the
// one-double-down-per-week invariant.
type PickService struct {
	userRepo user.Repository
	gameRepo game.Repository
	pickRepo pick.Repository
	now      func() time.Time
}

func NewPickService(userRepo user.Repository, gameRepo game.Repository, pickRepo pick.Repository) *PickService {
	return &PickService{
		userRepo: userRepo,
		gameRepo: gameRepo,
		pickRepo: pickRepo,
		now:      time.Now,
	}
}

// Submit upserts the given picks for one user. All-or-nothing validation:
// a single bad entry rejects the whole batch before anything is written.
//
// Rules:
//   - every game must exist, not be cancelled, and not be past lock time
//   - the selected team must be one of the game's two sides
//   - at most one double down per week across the batch
//   - setting a double down clears the user's previous double down in the
//     same week, unless that previous pick's game is already locked
func (s *PickService) Submit(ctx context.Context, userID string, entries []PickSubmission) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.Submit")
	defer span.End()

	if userID == "" || len(entries) == 0 {
		return fmt.Errorf("%w: user id and at least one pick are required", ErrInvalidInput)
	}

	_, found, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user %s: %w", userID, err)
	}
	if !found {
		return fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}

	now := s.now()

	games := make(map[string]game.Game, len(entries))
	doubleDownWeeks := make(map[int]string)
	seen := make(map[string]struct{}, len(entries))

	for _, entry := range entries {
		if _, dup := seen[entry.GameID]; dup {
			return fmt.Errorf("%w: duplicate pick for game %s", ErrInvalidInput, entry.GameID)
		}
		seen[entry.GameID] = struct{}{}

		g, found, err := s.gameRepo.GetByID(ctx, entry.GameID)
		if err != nil {
			return fmt.Errorf("get game %s: %w", entry.GameID, err)
		}
		if !found {
			return fmt.Errorf("%w: game %s", ErrNotFound, entry.GameID)
		}
		if g.Cancelled {
			return fmt.Errorf("%w: game %s is cancelled", ErrInvalidInput, entry.GameID)
		}
		if g.Locked(now) {
			return fmt.Errorf("%w: game %s", ErrPickLocked, entry.GameID)
		}
		if entry.SelectedTeamID != g.HomeTeamID && entry.SelectedTeamID != g.AwayTeamID {
			return fmt.Errorf("%w: team %s is not playing in game %s", ErrInvalidInput, entry.SelectedTeamID, entry.GameID)
		}

		if entry.DoubleDown {
			if other, exists := doubleDownWeeks[g.Week]; exists {
				return fmt.Errorf("%w: double down already set on game %s for week %d", ErrInvalidInput, other, g.Week)
			}
			doubleDownWeeks[g.Week] = entry.GameID
		}

		games[entry.GameID] = g
	}

	batch := make([]pick.Pick, 0, len(entries))
	for _, entry := range entries {
		batch = append(batch, pick.Pick{
			UserID:         userID,
			GameID:         entry.GameID,
			SelectedTeamID: entry.SelectedTeamID,
			DoubleDown:     entry.DoubleDown,
			SubmittedAt:    now,
		})
	}

	cleared, err := s.clearDisplacedDoubleDowns(ctx, userID, doubleDownWeeks, now)
	if err != nil {
		return err
	}
	batch = append(batch, cleared...)

	if err := s.pickRepo.Upsert(ctx, batch); err != nil {
		return fmt.Errorf("upsert picks for user %s: %w", userID, err)
	}

	return nil
}

// clearDisplacedDoubleDowns finds the user's existing double down in each
// week that just received a new one, and returns the same pick with the
// flag dropped. A locked previous double down pins the week: the new one
// cannot displace it.
func (s *PickService) clearDisplacedDoubleDowns(
	ctx context.Context,
	userID string,
	doubleDownWeeks map[int]string,
	now time.Time,
) ([]pick.Pick, error) {
	cleared := make([]pick.Pick, 0)

	for weekID, newGameID := range doubleDownWeeks {
		weekGames, err := s.gameRepo.ListByWeek(ctx, weekID)
		if err != nil {
			return nil, fmt.Errorf("list games for week %d: %w", weekID, err)
		}

		gameIDs := make([]string, 0, len(weekGames))
		lockedGames := make(map[string]bool, len(weekGames))
		for _, g := range weekGames {
			gameIDs = append(gameIDs, g.ID)
			lockedGames[g.ID] = g.Locked(now)
		}

		existing, err := s.pickRepo.ListByUser(ctx, userID, gameIDs)
		if err != nil {
			return nil, fmt.Errorf("list existing picks for week %d: %w", weekID, err)
		}

		for _, p := range existing {
			if !p.DoubleDown || p.GameID == newGameID {
				continue
			}
			if lockedGames[p.GameID] {
				return nil, fmt.Errorf("%w: double down locked on game %s", ErrPickLocked, p.GameID)
			}
			p.DoubleDown = false
			p.SubmittedAt = now
			cleared = append(cleared, p)
		}
	}

	return cleared, nil
}

// ListByUser returns a user's picks joined to their games, optionally
// restricted to one week.
func (s *PickService) ListByUser(ctx context.Context, userID string, weekID *int) ([]pick.WithGame, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.ListByUser")
	defer span.End()

	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	_, found, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}

	picks, err := s.pickRepo.ListByUserWithGames(ctx, userID, weekID)
	if err != nil {
		return nil, fmt.Errorf("list picks for user %s: %w", userID, err)
	}

	return picks, nil
}
