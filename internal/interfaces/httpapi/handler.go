package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/gridironpool/pickem/internal/platform/logging"
	"github.com/gridironpool/pickem/internal/usecase"
)

type Handler struct {
	leaderboardService *usecase.LeaderboardService
	pickService        *usecase.PickService
	scheduleService    *usecase.ScheduleService
	resultService      *usecase.ResultService
	recomputeService   *usecase.RecomputeService
	jobOrchestrator    *usecase.JobOrchestratorService
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	leaderboardService *usecase.LeaderboardService,
	pickService *usecase.PickService,
	scheduleService *usecase.ScheduleService,
	resultService *usecase.ResultService,
	recomputeService *usecase.RecomputeService,
	jobOrchestrator *usecase.JobOrchestratorService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		leaderboardService: leaderboardService,
		pickService:        pickService,
		scheduleService:    scheduleService,
		resultService:      resultService,
		recomputeService:   recomputeService,
		jobOrchestrator:    jobOrchestrator,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeStrictJSON rejects unknown fields so payload typos surface as 400s
// instead of silently dropped options.
func decodeStrictJSON(body io.Reader, target any) error {
	decoder := sonic.ConfigDefault.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
