package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/gridironpool/pickem/internal/platform/logging"
)

// JobQueue publishes delayed HTTP callbacks to our own internal job
// endpoints via an external scheduler.
type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type noopJobQueue struct{}

func (noopJobQueue) Enqueue(_ context.Context, _ string, _ any, _ time.Duration, _ string) error {
	return nil
}

func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}

const recomputeJobPath = "/v1/internal/jobs/recompute"

type JobOrchestratorConfig struct {
	RecomputeInterval time.Duration
}

type JobDispatchResult struct {
	JobPath         string `json:"job_path"`
	DeduplicationID string `json:"deduplication_id"`
}

// JobOrchestratorService keeps the recompute sweep on a cadence. Scheduling
// lives outside the engine: the orchestrator only publishes the next
// callback, the queue delivers it back over HTTP.
type JobOrchestratorService struct {
	queue  JobQueue
	cfg    JobOrchestratorConfig
	logger *logging.Logger
	now    func() time.Time
}

var dedupUnsafeCharRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func NewJobOrchestratorService(queue JobQueue, cfg JobOrchestratorConfig, logger *logging.Logger) *JobOrchestratorService {
	if queue == nil {
		queue = NewNoopJobQueue()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.RecomputeInterval <= 0 {
		cfg.RecomputeInterval = 30 * time.Second
	}

	return &JobOrchestratorService{
		queue:  queue,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Interval reports the normalized recompute cadence.
func (s *JobOrchestratorService) Interval() time.Duration {
	return s.cfg.RecomputeInterval
}

// EnqueueRecompute publishes the next recompute callback. The
// deduplication id is bucketed by the recompute interval so overlapping
// triggers collapse into one delivery.
func (s *JobOrchestratorService) EnqueueRecompute(ctx context.Context, delay time.Duration) (JobDispatchResult, error) {
	now := s.now().UTC()
	dedupID := dedupKey("recompute", now.Add(delay), s.cfg.RecomputeInterval)
	payload := map[string]any{
		"dispatch_id": dedupID,
	}

	if err := s.queue.Enqueue(ctx, recomputeJobPath, payload, delay, dedupID); err != nil {
		return JobDispatchResult{}, fmt.Errorf("enqueue recompute: %w", err)
	}

	return JobDispatchResult{
		JobPath:         recomputeJobPath,
		DeduplicationID: dedupID,
	}, nil
}

// Run re-enqueues the recompute callback on every tick until the context
// is cancelled. Used when no external scheduler does the ticking for us.
func (s *JobOrchestratorService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RecomputeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.EnqueueRecompute(ctx, 0); err != nil {
				s.logger.WarnContext(ctx, "enqueue recompute failed", "error", err)
			}
		}
	}
}

func dedupKey(prefix string, at time.Time, bucket time.Duration) string {
	if bucket <= 0 {
		bucket = time.Minute
	}
	slot := at.UTC().Truncate(bucket).Format("20060102T150405Z")
	return sanitizeDedupSegment(prefix) + "-" + slot
}

func sanitizeDedupSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return dedupUnsafeCharRegex.ReplaceAllString(value, "-")
}
