package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gridironpool/pickem/internal/domain/pick"
	"github.com/gridironpool/pickem/internal/usecase"
)

type submitPicksRequest struct {
	UserID string             `json:"user_id" validate:"required"`
	Picks  []pickEntryRequest `json:"picks" validate:"required,min=1,dive"`
}

type pickEntryRequest struct {
	GameID         string `json:"game_id" validate:"required"`
	SelectedTeamID string `json:"selected_team_id" validate:"required"`
	DoubleDown     bool   `json:"double_down"`
}

type pickWithGameDTO struct {
	GameID         string     `json:"game_id"`
	SelectedTeamID string     `json:"selected_team_id"`
	DoubleDown     bool       `json:"double_down"`
	SubmittedAt    time.Time  `json:"submitted_at"`
	Week           *int       `json:"week,omitempty"`
	WinnerID       *string    `json:"winner_id,omitempty"`
	Cancelled      *bool      `json:"cancelled,omitempty"`
	KickoffAt      *time.Time `json:"kickoff_at,omitempty"`
	LockAt         *time.Time `json:"lock_at,omitempty"`
}

func (h *Handler) SubmitPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitPicks")
	defer span.End()

	var req submitPicksRequest
	if err := decodeStrictJSON(r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	entries := make([]usecase.PickSubmission, 0, len(req.Picks))
	for _, entry := range req.Picks {
		entries = append(entries, usecase.PickSubmission{
			GameID:         entry.GameID,
			SelectedTeamID: entry.SelectedTeamID,
			DoubleDown:     entry.DoubleDown,
		})
	}

	if err := h.pickService.Submit(ctx, req.UserID, entries); err != nil {
		h.logger.WarnContext(ctx, "submit picks failed", "user_id", req.UserID, "picks", len(entries), "error", err)
		writeError(ctx, w, err)
		return
	}

	stored, err := h.pickService.ListByUser(ctx, req.UserID, nil)
	if err != nil {
		h.logger.WarnContext(ctx, "reload picks after submit failed", "user_id", req.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, picksWithGamesToDTO(ctx, stored))
}

func (h *Handler) ListPicksByUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPicksByUser")
	defer span.End()

	userID := strings.TrimSpace(r.PathValue("userID"))

	var weekFilter *int
	if raw := strings.TrimSpace(r.URL.Query().Get("week")); raw != "" {
		weekID, err := parseWeekID(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: query parameter week %q must be a positive integer", usecase.ErrInvalidInput, raw))
			return
		}
		weekFilter = &weekID
	}

	picks, err := h.pickService.ListByUser(ctx, userID, weekFilter)
	if err != nil {
		h.logger.WarnContext(ctx, "list picks failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, picksWithGamesToDTO(ctx, picks))
}

func picksWithGamesToDTO(ctx context.Context, picks []pick.WithGame) []pickWithGameDTO {
	_, span := startSpan(ctx, "httpapi.picksWithGamesToDTO")
	defer span.End()

	items := make([]pickWithGameDTO, 0, len(picks))
	for _, p := range picks {
		item := pickWithGameDTO{
			GameID:         p.Pick.GameID,
			SelectedTeamID: p.Pick.SelectedTeamID,
			DoubleDown:     p.Pick.DoubleDown,
			SubmittedAt:    p.Pick.SubmittedAt,
		}
		if p.Game != nil {
			weekID := p.Game.Week
			cancelled := p.Game.Cancelled
			kickoffAt := p.Game.KickoffAt
			lockAt := p.Game.LockAt
			item.Week = &weekID
			item.WinnerID = p.Game.WinnerID
			item.Cancelled = &cancelled
			item.KickoffAt = &kickoffAt
			item.LockAt = &lockAt
		}
		items = append(items, item)
	}

	return items
}
