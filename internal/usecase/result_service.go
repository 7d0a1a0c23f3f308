package usecase

import (
	"context"
	"fmt"

	"github.com/gridironpool/pickem/internal/domain/game"
)

// ResultService records game outcomes. Winners are written once and
// cancellation is terminal; the scoring side only ever reads.
type ResultService struct {
	gameRepo game.Repository
}

func NewResultService(gameRepo game.Repository) *ResultService {
	return &ResultService{gameRepo: gameRepo}
}

// SetWinner records the winning team for a game. The winner must be one of
// the game's two sides, the game must not be cancelled, and a winner can
// only be set once.
func (s *ResultService) SetWinner(ctx context.Context, gameID, winnerTeamID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.SetWinner")
	defer span.End()

	if gameID == "" || winnerTeamID == "" {
		return fmt.Errorf("%w: game id and winner team id are required", ErrInvalidInput)
	}

	g, found, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("get game %s: %w", gameID, err)
	}
	if !found {
		return fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}
	if g.Cancelled {
		return fmt.Errorf("%w: game %s is cancelled", ErrInvalidInput, gameID)
	}
	if g.WinnerID != nil {
		return fmt.Errorf("%w: game %s already has a winner", ErrInvalidInput, gameID)
	}
	if winnerTeamID != g.HomeTeamID && winnerTeamID != g.AwayTeamID {
		return fmt.Errorf("%w: team %s is not playing in game %s", ErrInvalidInput, winnerTeamID, gameID)
	}

	if err := s.gameRepo.SetWinner(ctx, gameID, winnerTeamID); err != nil {
		return fmt.Errorf("set winner for game %s: %w", gameID, err)
	}

	return nil
}

// Cancel marks a game as cancelled, permanently excluding it from scoring.
// A game with a recorded winner cannot be cancelled.
func (s *ResultService) Cancel(ctx context.Context, gameID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.Cancel")
	defer span.End()

	if gameID == "" {
		return fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}

	g, found, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("get game %s: %w", gameID, err)
	}
	if !found {
		return fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}
	if g.Cancelled {
		return nil // already cancelled, idempotent
	}
	if g.WinnerID != nil {
		return fmt.Errorf("%w: game %s is already resolved", ErrInvalidInput, gameID)
	}

	if err := s.gameRepo.SetCancelled(ctx, gameID); err != nil {
		return fmt.Errorf("cancel game %s: %w", gameID, err)
	}

	return nil
}
