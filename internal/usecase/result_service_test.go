package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/gridironpool/pickem/internal/domain/game"
)

func TestResultService_SetWinner(t *testing.T) {
	t.Parallel()

	games := &stubGameRepository{games: []game.Game{
		{ID: "g1", Week: 1, HomeTeamID: "team-a", AwayTeamID: "team-b"},
	}}

	service := NewResultService(games)

	if err := service.SetWinner(context.Background(), "g1", "team-a"); err != nil {
		t.Fatalf("SetWinner error: %v", err)
	}
	if len(games.setWinnerCalls) != 1 || games.setWinnerCalls[0] != "g1:team-a" {
		t.Fatalf("unexpected repo calls: %v", games.setWinnerCalls)
	}

	// Winner is write-once.
	if err := service.SetWinner(context.Background(), "g1", "team-b"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput on second write, got %v", err)
	}
}

func TestResultService_SetWinner_Rejections(t *testing.T) {
	t.Parallel()

	games := &stubGameRepository{games: []game.Game{
		{ID: "g1", Week: 1, HomeTeamID: "team-a", AwayTeamID: "team-b"},
		{ID: "g2", Week: 1, HomeTeamID: "team-c", AwayTeamID: "team-d", Cancelled: true},
	}}

	service := NewResultService(games)

	if err := service.SetWinner(context.Background(), "ghost", "team-a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := service.SetWinner(context.Background(), "g2", "team-c"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for cancelled game, got %v", err)
	}
	if err := service.SetWinner(context.Background(), "g1", "team-z"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for foreign team, got %v", err)
	}
	if len(games.setWinnerCalls) != 0 {
		t.Fatalf("no writes expected, got %v", games.setWinnerCalls)
	}
}

func TestResultService_Cancel(t *testing.T) {
	t.Parallel()

	games := &stubGameRepository{games: []game.Game{
		{ID: "g1", Week: 1, HomeTeamID: "team-a", AwayTeamID: "team-b"},
		{ID: "g2", Week: 1, HomeTeamID: "team-c", AwayTeamID: "team-d", WinnerID: winnerOf("team-c")},
		{ID: "g3", Week: 1, HomeTeamID: "team-e", AwayTeamID: "team-f", Cancelled: true},
	}}

	service := NewResultService(games)

	if err := service.Cancel(context.Background(), "g1"); err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	if len(games.setCancelledCalls) != 1 || games.setCancelledCalls[0] != "g1" {
		t.Fatalf("unexpected repo calls: %v", games.setCancelledCalls)
	}

	// Resolved games stay resolved.
	if err := service.Cancel(context.Background(), "g2"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for resolved game, got %v", err)
	}

	// Cancelling twice is a no-op, not an error.
	if err := service.Cancel(context.Background(), "g3"); err != nil {
		t.Fatalf("expected idempotent cancel, got %v", err)
	}

	if err := service.Cancel(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
