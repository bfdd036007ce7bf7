package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mocworks/curricula-backend/internal/contentmap"
	"github.com/mocworks/curricula-backend/internal/logger"
	"github.com/mocworks/curricula-backend/internal/repos"
	"github.com/mocworks/curricula-backend/internal/scheduler"
	"github.com/mocworks/curricula-backend/internal/types"
)

// ScheduleService resolves an attempt to its manifest and computes the full
// curriculum schedule.
type ScheduleService interface {
	GetSchedule(ctx context.Context, attemptID uuid.UUID, opts ScheduleOptions) (*types.ComputedManifest, error)
}

// ScheduleOptions carries the per-request knobs: output format and the
// testing overrides.
type ScheduleOptions struct {
	Format     string
	TestParams types.TestParams
}

type scheduleService struct {
	log      *logger.Logger
	content  contentmap.Map
	attempts repos.AttemptRepo
	sched    *scheduler.CurriculumScheduler
}

func NewScheduleService(log *logger.Logger, content contentmap.Map, attempts repos.AttemptRepo, sched *scheduler.CurriculumScheduler) ScheduleService {
	return &scheduleService{
		log:      log.With("service", "ScheduleService"),
		content:  content,
		attempts: attempts,
		sched:    sched,
	}
}

func (s *scheduleService) GetSchedule(ctx context.Context, attemptID uuid.UUID, opts ScheduleOptions) (*types.ComputedManifest, error) {
	attempt, err := s.attempts.GetByID(ctx, nil, attemptID)
	if err != nil {
		return nil, fmt.Errorf("load attempt %s: %w", attemptID, err)
	}
	if attempt == nil {
		return nil, scheduler.ErrAttemptNotFound
	}

	req := scheduler.Request{
		AttemptID:  attemptID,
		Attempt:    attempt,
		Format:     opts.Format,
		TestParams: opts.TestParams,
	}

	// test_manifest points the run at an alternate manifest URL; otherwise
	// the attempt's manifest id is resolved through the content map.
	if opts.TestParams.Manifest != "" {
		req.ManifestURL = opts.TestParams.Manifest
	} else {
		entry, ok := s.content.ByManifestID(attempt.ManifestID)
		if !ok {
			return nil, fmt.Errorf("no content map entry for manifest %q", attempt.ManifestID)
		}
		req.ManifestURL = entry.Manifest
		req.Lang = entry.Lang
	}
	if lang := scheduler.NormalizeLang(opts.TestParams.Lang); lang != "" {
		req.Lang = lang
	}

	return s.sched.Schedule(ctx, req)
}
