package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gridironpool/pickem/internal/domain/pick"
	"github.com/gridironpool/pickem/internal/usecase"
)

type leaderboardRowDTO struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	Rank        int    `json:"rank"`
	TotalPoints int    `json:"total_points"`
	Correct     int    `json:"correct"`
	Attempts    int    `json:"attempts"`
	AccuracyPct int    `json:"accuracy_pct"`
}

type weeklyLeaderboardRowDTO struct {
	leaderboardRowDTO
	Picks []pickDTO `json:"picks"`
}

type pickDTO struct {
	GameID         string    `json:"game_id"`
	SelectedTeamID string    `json:"selected_team_id"`
	DoubleDown     bool      `json:"double_down"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

func (h *Handler) GetWeeklyLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetWeeklyLeaderboard")
	defer span.End()

	weekID, err := parseWeekID(r.PathValue("weekID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rows, err := h.leaderboardService.Weekly(ctx, weekID)
	if err != nil {
		h.logger.WarnContext(ctx, "weekly leaderboard failed", "week_id", weekID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]weeklyLeaderboardRowDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, weeklyLeaderboardRowDTO{
			leaderboardRowDTO: leaderboardRowToDTO(ctx, row.LeaderboardRow),
			Picks:             picksToDTO(ctx, row.Picks),
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetSeasonLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSeasonLeaderboard")
	defer span.End()

	rows, err := h.leaderboardService.Season(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "season leaderboard failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leaderboardRowDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, leaderboardRowToDTO(ctx, row))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func leaderboardRowToDTO(ctx context.Context, row usecase.LeaderboardRow) leaderboardRowDTO {
	_, span := startSpan(ctx, "httpapi.leaderboardRowToDTO")
	defer span.End()

	return leaderboardRowDTO{
		UserID:      row.ID,
		Username:    row.Username,
		Rank:        row.Rank,
		TotalPoints: row.Total,
		Correct:     row.Correct,
		Attempts:    row.Attempts,
		AccuracyPct: row.Accuracy,
	}
}

func picksToDTO(ctx context.Context, picks []pick.Pick) []pickDTO {
	_, span := startSpan(ctx, "httpapi.picksToDTO")
	defer span.End()

	items := make([]pickDTO, 0, len(picks))
	for _, p := range picks {
		items = append(items, pickDTO{
			GameID:         p.GameID,
			SelectedTeamID: p.SelectedTeamID,
			DoubleDown:     p.DoubleDown,
			SubmittedAt:    p.SubmittedAt,
		})
	}

	return items
}

func parseWeekID(raw string) (int, error) {
	weekID, err := strconv.Atoi(raw)
	if err != nil || weekID < 1 {
		return 0, fmt.Errorf("%w: week id %q must be a positive integer", usecase.ErrInvalidInput, raw)
	}

	return weekID, nil
}
