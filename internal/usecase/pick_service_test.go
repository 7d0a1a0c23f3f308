package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gridironpool/pickem/internal/domain/game"
	"github.com/gridironpool/pickem/internal/domain/pick"
	"github.com/gridironpool/pickem/internal/domain/user"
)

func newPickServiceAt(t *testing.T, now time.Time, users *stubUserRepository, games *stubGameRepository, picks *stubPickRepository) *PickService {
	t.Helper()
	service := NewPickService(users, games, picks)
	service.now = func() time.Time { return now }
	return service
}

func TestPickService_Submit_UpsertsPicks(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.September, 12, 10, 0, 0, 0, time.UTC)
	users := &stubUserRepository{users: []user.User{{ID: "u1", Username: "ana"}}}
	games := &stubGameRepository{games: []game.Game{
		{ID: "g1", Week: 1, HomeTeamID: "team-a", AwayTeamID: "team-b", LockAt: now.Add(time.Hour)},
		{ID: "g2", Week: 1, HomeTeamID: "team-c", AwayTeamID: "team-d", LockAt: now.Add(2 * time.Hour)},
	}}
	picks := &stubPickRepository{}

	service := newPickServiceAt(t, now, users, games, picks)

	err := service.Submit(context.Background(), "u1", []PickSubmission{
		{GameID: "g1", SelectedTeamID: "team-a", DoubleDown: true},
		{GameID: "g2", SelectedTeamID: "team-d"},
	})
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}

	if len(picks.picks) != 2 {
		t.Fatalf("expected 2 stored picks, got %d", len(picks.picks))
	}
	for _, p := range picks.picks {
		if !p.SubmittedAt.Equal(now) {
			t.Fatalf("expected submitted_at stamped to now, got %v", p.SubmittedAt)
		}
	}
}

func TestPickService_Submit_ReSubmitReplacesExisting(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.September, 12, 10, 0, 0, 0, time.UTC)
	users := &stubUserRepository{users: []user.User{{ID: "u1", Username: "ana"}}}
	games := &stubGameRepository{games: []game.Game{
		{ID: "g1", Week: 1, HomeTeamID: "team-a", AwayTeamID: "team-b", LockAt: now.Add(time.Hour)},
	}}
	picks := &stubPickRepository{picks: []pick.Pick{
		{UserID: "u1", GameID: "g1", SelectedTeamID: "team-a"},
	}}

	service := newPickServiceAt(t, now, users, games, picks)

	err := service.Submit(context.Background(), "u1", []PickSubmission{
		{GameID: "g1", SelectedTeamID: "team-b"},
	})
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}

	if len(picks.picks) != 1 {
		t.Fatalf("expected upsert to replace, got %d picks", len(picks.picks))
	}
	if picks.picks[0].SelectedTeamID != "team-b" {
		t.Fatalf("expected selection switched to team-b, got %s", picks.picks[0].SelectedTeamID)
	}
}

func TestPickService_Submit_RejectsLockedGame(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.September, 12, 10, 0, 0, 0, time.UTC)
	users := &stubUserRepository{users: []user.User{{ID: "u1", Username: "ana"}}}
	games := &stubGameRepository{games: []game.Game{
		{ID: "g1", Week: 1, HomeTeamID: "team-a", AwayTeamID: "team-b", LockAt: now.Add(-time.Minute)},
	}}
	picks := &stubPickRepository{}

	service := newPickServiceAt(t, now, users, games, picks)

	err := service.Submit(context.Background(), "u1", []PickSubmission{
		{GameID: "g1", SelectedTeamID: "team-a"},
	})
	if !errors.Is(err, ErrPickLocked) {
		t.Fatalf("expected ErrPickLocked, got %v", err)
	}
	if len(picks.picks) != 0 {
		t.Fatalf("nothing should be written on rejection, got %d picks", len(picks.picks))
	}
}

func TestPickService_Submit_RejectsCancelledAndForeignTeam(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.September, 12, 10, 0, 0, 0, time.UTC)
	users := &stubUserRepository{users: []user.User{{ID: "u1", Username: "ana"}}}
	games := &stubGameRepository{games: []game.Game{
		{ID: "g1", Week: 1, HomeTeamID: "team-a", AwayTeamID: "team-b", Cancelled: true},
		{ID: "g2", Week: 1, HomeTeamID: "team-c", AwayTeamID: "team-d", LockAt: now.Add(time.Hour)},
	}}

	service := newPickServiceAt(t, now, users, games, &stubPickRepository{})

	err := service.Submit(context.Background(), "u1", []PickSubmission{
		{GameID: "g1", SelectedTeamID: "team-a"},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for cancelled game, got %v", err)
	}

	err = service.Submit(context.Background(), "u1", []PickSubmission{
		{GameID: "g2", SelectedTeamID: "team-z"},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for foreign team, got %v", err)
	}
}

func TestPickService_Submit_RejectsTwoDoubleDownsSameWeek(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.September, 12, 10, 0, 0, 0, time.UTC)
	users := &stubUserRepository{users: []user.User{{ID: "u1", Username: "ana"}}}
	games := &stubGameRepository{games: []game.Game{
		{ID: "g1", Week: 1, HomeTeamID: "team-a", AwayTeamID: "team-b", LockAt: now.Add(time.Hour)},
		{ID: "g2", Week: 1, HomeTeamID: "team-c", AwayTeamID: "team-d", LockAt: now.Add(time.Hour)},
	}}

	service := newPickServiceAt(t, now, users, games, &stubPickRepository{})

	err := service.Submit(context.Background(), "u1", []PickSubmission{
		{GameID: "g1", SelectedTeamID: "team-a", DoubleDown: true},
		{GameID: "g2", SelectedTeamID: "team-c", DoubleDown: true},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPickService_Submit_NewDoubleDownClearsOldOne(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.September, 12, 10, 0, 0, 0, time.UTC)
	users := &stubUserRepository{users: []user.User{{ID: "u1", Username: "ana"}}}
	games := &stubGameRepository{games: []game.Game{
		{ID: "g1", Week: 1, HomeTeamID: "team-a", AwayTeamID: "team-b", LockAt: now.Add(time.Hour)},
		{ID: "g2", Week: 1, HomeTeamID: "team-c", AwayTeamID: "team-d", LockAt: now.Add(time.Hour)},
	}}
	picks := &stubPickRepository{picks: []pick.Pick{
		{UserID: "u1", GameID: "g1", SelectedTeamID: "team-a", DoubleDown: true},
	}}

	service := newPickServiceAt(t, now, users, games, picks)

	err := service.Submit(context.Background(), "u1", []PickSubmission{
		{GameID: "g2", SelectedTeamID: "team-c", DoubleDown: true},
	})
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}

	ddCount := 0
	for _, p := range picks.picks {
		if p.DoubleDown {
			ddCount++
			if p.GameID != "g2" {
				t.Fatalf("double down should have moved to g2, found on %s", p.GameID)
			}
		}
	}
	if ddCount != 1 {
		t.Fatalf("expected exactly one double down in the week, got %d", ddCount)
	}
}

func TestPickService_Submit_LockedDoubleDownCannotMove(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.September, 12, 10, 0, 0, 0, time.UTC)
	users := &stubUserRepository{users: []user.User{{ID: "u1", Username: "ana"}}}
	games := &stubGameRepository{games: []game.Game{
		{ID: "g1", Week: 1, HomeTeamID: "team-a", AwayTeamID: "team-b", LockAt: now.Add(-time.Hour)},
		{ID: "g2", Week: 1, HomeTeamID: "team-c", AwayTeamID: "team-d", LockAt: now.Add(time.Hour)},
	}}
	picks := &stubPickRepository{picks: []pick.Pick{
		{UserID: "u1", GameID: "g1", SelectedTeamID: "team-a", DoubleDown: true},
	}}

	service := newPickServiceAt(t, now, users, games, picks)

	err := service.Submit(context.Background(), "u1", []PickSubmission{
		{GameID: "g2", SelectedTeamID: "team-c", DoubleDown: true},
	})
	if !errors.Is(err, ErrPickLocked) {
		t.Fatalf("expected ErrPickLocked, got %v", err)
	}
	if !picks.picks[0].DoubleDown {
		t.Fatal("locked double down must stay in place")
	}
}

func TestPickService_Submit_UnknownUserAndGame(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.September, 12, 10, 0, 0, 0, time.UTC)
	users := &stubUserRepository{users: []user.User{{ID: "u1", Username: "ana"}}}
	games := &stubGameRepository{games: []game.Game{
		{ID: "g1", Week: 1, HomeTeamID: "team-a", AwayTeamID: "team-b", LockAt: now.Add(time.Hour)},
	}}

	service := newPickServiceAt(t, now, users, games, &stubPickRepository{})

	err := service.Submit(context.Background(), "ghost", []PickSubmission{
		{GameID: "g1", SelectedTeamID: "team-a"},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}

	err = service.Submit(context.Background(), "u1", []PickSubmission{
		{GameID: "ghost", SelectedTeamID: "team-a"},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown game, got %v", err)
	}
}

func TestPickService_ListByUser(t *testing.T) {
	t.Parallel()

	users := &stubUserRepository{users: []user.User{{ID: "u1", Username: "ana"}}}
	games := []game.Game{
		{ID: "g1", Week: 1, HomeTeamID: "team-a", AwayTeamID: "team-b"},
		{ID: "g2", Week: 2, HomeTeamID: "team-c", AwayTeamID: "team-d"},
	}
	picks := &stubPickRepository{
		games: games,
		picks: []pick.Pick{
			{UserID: "u1", GameID: "g1", SelectedTeamID: "team-a"},
			{UserID: "u1", GameID: "g2", SelectedTeamID: "team-d"},
		},
	}

	service := NewPickService(users, &stubGameRepository{games: games}, picks)

	all, err := service.ListByUser(context.Background(), "u1", nil)
	if err != nil {
		t.Fatalf("ListByUser error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 picks, got %d", len(all))
	}

	weekOne := 1
	scoped, err := service.ListByUser(context.Background(), "u1", &weekOne)
	if err != nil {
		t.Fatalf("ListByUser error: %v", err)
	}
	if len(scoped) != 1 || scoped[0].Pick.GameID != "g1" {
		t.Fatalf("expected only the week 1 pick, got %+v", scoped)
	}
	if scoped[0].Game == nil || scoped[0].Game.ID != "g1" {
		t.Fatalf("expected joined game, got %+v", scoped[0].Game)
	}

	if _, err := service.ListByUser(context.Background(), "ghost", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
