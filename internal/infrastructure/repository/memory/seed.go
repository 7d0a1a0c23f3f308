package memory

import (
	"time"

	"github.com/gridironpool/pickem/internal/domain/game"
	"github.com/gridironpool/pickem/internal/domain/pick"
	"github.com/gridironpool/pickem/internal/domain/team"
	"github.com/gridironpool/pickem/internal/domain/user"
	"github.com/gridironpool/pickem/internal/domain/week"
)

func SeedUsers() []user.User {
	return []user.User{
		{ID: "usr-ana", Username: "ana"},
		{ID: "usr-ben", Username: "ben"},
		{ID: "usr-cam", Username: "cam"},
		{ID: "usr-dee", Username: "dee"},
	}
}

func SeedTeams() []team.Team {
	return []team.Team{
		{ID: "tm-hawks", Name: "Harbor Hawks", ShortName: "HAW", LogoURL: "https://cdn.gridironpool.dev/logos/haw.svg", Color: "#14532d"},
		{ID: "tm-bears", Name: "Brookside Bears", ShortName: "BEA", LogoURL: "https://cdn.gridironpool.dev/logos/bea.svg", Color: "#7c2d12"},
		{ID: "tm-colts", Name: "Canyon Colts", ShortName: "COL", LogoURL: "https://cdn.gridironpool.dev/logos/col.svg", Color: "#1e3a8a"},
		{ID: "tm-lions", Name: "Lakeside Lions", ShortName: "LIO", LogoURL: "https://cdn.gridironpool.dev/logos/lio.svg", Color: "#713f12"},
		{ID: "tm-rams", Name: "Ridgeview Rams", ShortName: "RAM", LogoURL: "https://cdn.gridironpool.dev/logos/ram.svg", Color: "#111827"},
		{ID: "tm-stars", Name: "Summit Stars", ShortName: "STA", LogoURL: "https://cdn.gridironpool.dev/logos/sta.svg", Color: "#581c87"},
	}
}

func SeedWeeks() []week.Week {
	opening := time.Date(2026, time.September, 10, 0, 0, 0, 0, time.UTC)

	weeks := make([]week.Week, 0, 18)
	for i := 0; i < 18; i++ {
		start := opening.Add(time.Duration(i) * 7 * 24 * time.Hour)
		weeks = append(weeks, week.Week{
			ID:      i + 1,
			StartAt: start,
			EndAt:   start.Add(7*24*time.Hour - time.Second),
		})
	}

	return weeks
}

func SeedGames() []game.Game {
	kickoffWeek1 := time.Date(2026, time.September, 13, 17, 0, 0, 0, time.UTC)
	kickoffWeek2 := kickoffWeek1.Add(7 * 24 * time.Hour)

	hawksWin := "tm-hawks"
	coltsWin := "tm-colts"

	return []game.Game{
		{
			ID: "gm-2026-w1-haw-bea", Week: 1,
			HomeTeamID: "tm-hawks", AwayTeamID: "tm-bears",
			Difficulty: 10, WinnerID: &hawksWin,
			KickoffAt: kickoffWeek1, LockAt: kickoffWeek1,
		},
		{
			ID: "gm-2026-w1-col-lio", Week: 1,
			HomeTeamID: "tm-colts", AwayTeamID: "tm-lions",
			Difficulty: 5, WinnerID: &coltsWin,
			KickoffAt: kickoffWeek1.Add(3 * time.Hour), LockAt: kickoffWeek1.Add(3 * time.Hour),
		},
		{
			ID: "gm-2026-w1-ram-sta", Week: 1,
			HomeTeamID: "tm-rams", AwayTeamID: "tm-stars",
			Difficulty: 7, Cancelled: true,
			KickoffAt: kickoffWeek1.Add(6 * time.Hour), LockAt: kickoffWeek1.Add(6 * time.Hour),
		},
		{
			ID: "gm-2026-w2-bea-col", Week: 2,
			HomeTeamID: "tm-bears", AwayTeamID: "tm-colts",
			Difficulty: 4,
			KickoffAt:  kickoffWeek2, LockAt: kickoffWeek2,
		},
		{
			ID: "gm-2026-w2-sta-haw", Week: 2,
			HomeTeamID: "tm-stars", AwayTeamID: "tm-hawks",
			Difficulty: 8,
			KickoffAt:  kickoffWeek2.Add(3 * time.Hour), LockAt: kickoffWeek2.Add(3 * time.Hour),
		},
	}
}

func SeedPicks() []pick.Pick {
	submitted := time.Date(2026, time.September, 12, 9, 30, 0, 0, time.UTC)

	return []pick.Pick{
		{UserID: "usr-ana", GameID: "gm-2026-w1-haw-bea", SelectedTeamID: "tm-hawks", DoubleDown: true, SubmittedAt: submitted},
		{UserID: "usr-ana", GameID: "gm-2026-w1-col-lio", SelectedTeamID: "tm-lions", SubmittedAt: submitted},
		{UserID: "usr-ben", GameID: "gm-2026-w1-haw-bea", SelectedTeamID: "tm-bears", SubmittedAt: submitted},
		{UserID: "usr-ben", GameID: "gm-2026-w1-col-lio", SelectedTeamID: "tm-colts", DoubleDown: true, SubmittedAt: submitted},
		{UserID: "usr-cam", GameID: "gm-2026-w1-ram-sta", SelectedTeamID: "tm-rams", DoubleDown: true, SubmittedAt: submitted},
		{UserID: "usr-cam", GameID: "gm-2026-w2-bea-col", SelectedTeamID: "tm-colts", SubmittedAt: submitted},
	}
}
