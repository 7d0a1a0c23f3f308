package usecase

import (
	"context"
	"time"

	"github.com/gridironpool/pickem/internal/domain/game"
	"github.com/gridironpool/pickem/internal/domain/pick"
	"github.com/gridironpool/pickem/internal/domain/team"
	"github.com/gridironpool/pickem/internal/domain/user"
	"github.com/gridironpool/pickem/internal/domain/week"
)

type stubUserRepository struct {
	users []user.User
	err   error
}

func (s *stubUserRepository) List(ctx context.Context) ([]user.User, error) {
	return s.users, s.err
}

func (s *stubUserRepository) GetByID(ctx context.Context, id string) (user.User, bool, error) {
	if s.err != nil {
		return user.User{}, false, s.err
	}
	for _, u := range s.users {
		if u.ID == id {
			return u, true, nil
		}
	}
	return user.User{}, false, nil
}

type stubTeamRepository struct {
	teams []team.Team
	err   error
}

func (s *stubTeamRepository) List(ctx context.Context) ([]team.Team, error) {
	return s.teams, s.err
}

func (s *stubTeamRepository) GetByID(ctx context.Context, id string) (team.Team, bool, error) {
	if s.err != nil {
		return team.Team{}, false, s.err
	}
	for _, tm := range s.teams {
		if tm.ID == id {
			return tm, true, nil
		}
	}
	return team.Team{}, false, nil
}

type stubWeekRepository struct {
	weeks []week.Week
	err   error
}

func (s *stubWeekRepository) List(ctx context.Context) ([]week.Week, error) {
	return s.weeks, s.err
}

func (s *stubWeekRepository) GetByTime(ctx context.Context, at time.Time) (week.Week, bool, error) {
	if s.err != nil {
		return week.Week{}, false, s.err
	}
	for _, w := range s.weeks {
		if w.Contains(at) {
			return w, true, nil
		}
	}
	return week.Week{}, false, nil
}

type stubGameRepository struct {
	games []game.Game
	err   error

	setWinnerCalls    []string
	setCancelledCalls []string
}

func (s *stubGameRepository) List(ctx context.Context) ([]game.Game, error) {
	return s.games, s.err
}

func (s *stubGameRepository) ListByWeek(ctx context.Context, weekID int) ([]game.Game, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]game.Game, 0)
	for _, g := range s.games {
		if g.Week == weekID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *stubGameRepository) GetByID(ctx context.Context, id string) (game.Game, bool, error) {
	if s.err != nil {
		return game.Game{}, false, s.err
	}
	for _, g := range s.games {
		if g.ID == id {
			return g, true, nil
		}
	}
	return game.Game{}, false, nil
}

func (s *stubGameRepository) SetWinner(ctx context.Context, gameID, winnerTeamID string) error {
	if s.err != nil {
		return s.err
	}
	s.setWinnerCalls = append(s.setWinnerCalls, gameID+":"+winnerTeamID)
	for i := range s.games {
		if s.games[i].ID == gameID {
			winner := winnerTeamID
			s.games[i].WinnerID = &winner
		}
	}
	return nil
}

func (s *stubGameRepository) SetCancelled(ctx context.Context, gameID string) error {
	if s.err != nil {
		return s.err
	}
	s.setCancelledCalls = append(s.setCancelledCalls, gameID)
	for i := range s.games {
		if s.games[i].ID == gameID {
			s.games[i].Cancelled = true
		}
	}
	return nil
}

type stubPickRepository struct {
	picks []pick.Pick
	games []game.Game
	err   error

	upsertErr error
}

func (s *stubPickRepository) List(ctx context.Context) ([]pick.Pick, error) {
	return s.picks, s.err
}

func (s *stubPickRepository) ListByGameIDs(ctx context.Context, gameIDs []string) ([]pick.Pick, error) {
	if s.err != nil {
		return nil, s.err
	}
	wanted := make(map[string]struct{}, len(gameIDs))
	for _, id := range gameIDs {
		wanted[id] = struct{}{}
	}
	out := make([]pick.Pick, 0)
	for _, p := range s.picks {
		if _, ok := wanted[p.GameID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubPickRepository) ListByUser(ctx context.Context, userID string, gameIDs []string) ([]pick.Pick, error) {
	if s.err != nil {
		return nil, s.err
	}
	wanted := make(map[string]struct{}, len(gameIDs))
	for _, id := range gameIDs {
		wanted[id] = struct{}{}
	}
	out := make([]pick.Pick, 0)
	for _, p := range s.picks {
		if p.UserID != userID {
			continue
		}
		if len(gameIDs) > 0 {
			if _, ok := wanted[p.GameID]; !ok {
				continue
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *stubPickRepository) ListByUserWithGames(ctx context.Context, userID string, weekID *int) ([]pick.WithGame, error) {
	if s.err != nil {
		return nil, s.err
	}
	gamesByID := make(map[string]game.Game, len(s.games))
	for _, g := range s.games {
		gamesByID[g.ID] = g
	}
	out := make([]pick.WithGame, 0)
	for _, p := range s.picks {
		if p.UserID != userID {
			continue
		}
		joined := pick.WithGame{Pick: p}
		if g, ok := gamesByID[p.GameID]; ok {
			if weekID != nil && g.Week != *weekID {
				continue
			}
			joined.Game = &g
		} else if weekID != nil {
			continue
		}
		out = append(out, joined)
	}
	return out, nil
}

func (s *stubPickRepository) Upsert(ctx context.Context, picks []pick.Pick) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	if s.err != nil {
		return s.err
	}
	for _, incoming := range picks {
		replaced := false
		for i := range s.picks {
			if s.picks[i].UserID == incoming.UserID && s.picks[i].GameID == incoming.GameID {
				s.picks[i] = incoming
				replaced = true
				break
			}
		}
		if !replaced {
			s.picks = append(s.picks, incoming)
		}
	}
	return nil
}
