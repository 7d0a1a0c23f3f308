package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gridironpool/pickem/internal/domain/team"
	"github.com/gridironpool/pickem/internal/domain/week"
	"github.com/gridironpool/pickem/internal/usecase"
)

type weekDTO struct {
	ID      int       `json:"id"`
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
}

type teamDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	LogoURL   string `json:"logo_url,omitempty"`
	Color     string `json:"color,omitempty"`
}

type gameDTO struct {
	ID         string    `json:"id"`
	Week       int       `json:"week"`
	Home       teamDTO   `json:"home"`
	Away       teamDTO   `json:"away"`
	Difficulty int       `json:"difficulty"`
	WinnerID   *string   `json:"winner_id,omitempty"`
	Cancelled  bool      `json:"cancelled"`
	KickoffAt  time.Time `json:"kickoff_at"`
	LockAt     time.Time `json:"lock_at"`
}

func (h *Handler) GetCurrentWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCurrentWeek")
	defer span.End()

	current, err := h.scheduleService.CurrentWeek(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "current week lookup failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, weekToDTO(ctx, current))
}

func (h *Handler) ListWeeks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListWeeks")
	defer span.End()

	weeks, err := h.scheduleService.ListWeeks(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list weeks failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]weekDTO, 0, len(weeks))
	for _, wk := range weeks {
		items = append(items, weekToDTO(ctx, wk))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListGamesByWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGamesByWeek")
	defer span.End()

	weekID, err := parseWeekID(r.PathValue("weekID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	games, err := h.scheduleService.GamesByWeek(ctx, weekID)
	if err != nil {
		h.logger.WarnContext(ctx, "list games failed", "week_id", weekID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]gameDTO, 0, len(games))
	for _, g := range games {
		items = append(items, gameWithTeamsToDTO(ctx, g))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	teams, err := h.scheduleService.ListTeams(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list teams failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]teamDTO, 0, len(teams))
	for _, t := range teams {
		items = append(items, teamToDTO(ctx, t))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func weekToDTO(ctx context.Context, wk week.Week) weekDTO {
	_, span := startSpan(ctx, "httpapi.weekToDTO")
	defer span.End()

	return weekDTO{
		ID:      wk.ID,
		StartAt: wk.StartAt,
		EndAt:   wk.EndAt,
	}
}

func teamToDTO(ctx context.Context, t team.Team) teamDTO {
	_, span := startSpan(ctx, "httpapi.teamToDTO")
	defer span.End()

	return teamDTO{
		ID:        t.ID,
		Name:      t.Name,
		ShortName: t.ShortName,
		LogoURL:   t.LogoURL,
		Color:     t.Color,
	}
}

func gameWithTeamsToDTO(ctx context.Context, g usecase.GameWithTeams) gameDTO {
	_, span := startSpan(ctx, "httpapi.gameWithTeamsToDTO")
	defer span.End()

	return gameDTO{
		ID:         g.ID,
		Week:       g.Week,
		Home:       teamToDTO(ctx, g.Home),
		Away:       teamToDTO(ctx, g.Away),
		Difficulty: g.Difficulty,
		WinnerID:   g.WinnerID,
		Cancelled:  g.Cancelled,
		KickoffAt:  g.KickoffAt,
		LockAt:     g.LockAt,
	}
}
