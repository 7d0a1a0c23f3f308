package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gridironpool/pickem/internal/usecase"
)

type recordResultRequest struct {
	GameID       string `json:"game_id" validate:"required"`
	WinnerTeamID string `json:"winner_team_id"`
	Cancelled    bool   `json:"cancelled"`
}

// RunRecomputeJob is the QStash callback target. It executes one full
// aggregation sweep, then re-arms the next delivery so the chain keeps
// itself alive without an external scheduler.
func (h *Handler) RunRecomputeJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRecomputeJob")
	defer span.End()

	if h.recomputeService == nil {
		writeError(ctx, w, fmt.Errorf("%w: recompute service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	result, err := h.recomputeService.Sweep(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "recompute sweep failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	if h.jobOrchestrator != nil {
		if _, err := h.jobOrchestrator.EnqueueRecompute(ctx, h.jobOrchestrator.Interval()); err != nil {
			// The sweep itself succeeded; a failed re-arm is recoverable
			// on the next manual or scheduled dispatch.
			h.logger.WarnContext(ctx, "re-arm recompute job failed", "error", err)
		}
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RecordResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordResult")
	defer span.End()

	var req recordResultRequest
	if err := decodeStrictJSON(r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if req.Cancelled == (req.WinnerTeamID != "") {
		writeError(ctx, w, fmt.Errorf("%w: exactly one of winner_team_id and cancelled must be set", usecase.ErrInvalidInput))
		return
	}

	var err error
	if req.Cancelled {
		err = h.resultService.Cancel(ctx, req.GameID)
	} else {
		err = h.resultService.SetWinner(ctx, req.GameID, req.WinnerTeamID)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "record result failed",
			"game_id", req.GameID,
			"winner_team_id", req.WinnerTeamID,
			"cancelled", req.Cancelled,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "recorded"})
}
