package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mocworks/curricula-backend/internal/logger"
	"github.com/mocworks/curricula-backend/internal/manifest"
	"github.com/mocworks/curricula-backend/internal/repos"
	"github.com/mocworks/curricula-backend/internal/types"
	"github.com/mocworks/curricula-backend/internal/utils"
)

// ErrAttemptNotFound marks a scheduling request for an attempt id with no
// record. Single-attempt requests fail on it; batch sweeps isolate it.
var ErrAttemptNotFound = errors.New("attempt not found, the user did not start the course")

// Config carries the content-service endpoints the scheduler embeds into
// launch links.
type Config struct {
	CSBaseURL                   string
	LaunchPresentationReturnURL string
}

// Request is one scheduling unit of work. Attempt and Progress may be
// pre-fetched by the caller (the batch sweeper does this); otherwise they
// are loaded from the datastore. Exactly one of Manifest and ManifestURL
// must be set.
type Request struct {
	AttemptID   uuid.UUID
	Attempt     *types.Attempt
	Manifest    *types.Manifest
	ManifestURL string
	Progress    []*types.Progress
	Lang        string
	Format      string
	TestParams  types.TestParams
}

// CurriculumScheduler computes the full schedule for one attempt: course
// instances across all elapsed recurrence cycles, lock state, the
// compliance verdict and the aggregate dates. Every run recomputes from raw
// inputs; nothing derived is persisted, which is what makes repeated runs
// idempotent.
type CurriculumScheduler struct {
	log       *logger.Logger
	attempts  repos.AttemptRepo
	progress  repos.ProgressRepo
	manifests manifest.Fetcher
	cfg       Config
	clock     Clock
}

func New(log *logger.Logger, attempts repos.AttemptRepo, progress repos.ProgressRepo, manifests manifest.Fetcher, cfg Config, clock Clock) *CurriculumScheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	return &CurriculumScheduler{
		log:       log.With("service", "CurriculumScheduler"),
		attempts:  attempts,
		progress:  progress,
		manifests: manifests,
		cfg:       cfg,
		clock:     clock,
	}
}

// Schedule runs the full pipeline: resolve attempt context, fetch inputs,
// expand instances, apply locks, derive compliance.
func (s *CurriculumScheduler) Schedule(ctx context.Context, req Request) (*types.ComputedManifest, error) {
	attempt := req.Attempt
	if attempt == nil {
		var err error
		attempt, err = s.attempts.GetByID(ctx, nil, req.AttemptID)
		if err != nil {
			return nil, fmt.Errorf("load attempt %s: %w", req.AttemptID, err)
		}
	}
	if attempt == nil {
		return nil, ErrAttemptNotFound
	}

	loc, err := LoadLocation(attempt.OrgTimeZone)
	if err != nil {
		return nil, err
	}
	today, err := ResolveToday(s.clock, req.TestParams.TodayDate, loc)
	if err != nil {
		return nil, err
	}

	man := req.Manifest
	if man == nil {
		man, err = s.manifests.Fetch(ctx, req.ManifestURL)
		if err != nil {
			return nil, err
		}
	}

	anchor, err := firstAttemptDate(man, attempt, loc)
	if err != nil {
		return nil, err
	}

	progress := req.Progress
	if progress == nil {
		progress, err = s.progress.GetByAttemptID(ctx, nil, attempt.ID)
		if err != nil {
			return nil, fmt.Errorf("load progress for attempt %s: %w", attempt.ID, err)
		}
	}

	cm := s.initComputed(man, attempt, anchor, loc, req)
	cm.Today = today

	jsonFormat := strings.EqualFold(req.Format, "json")
	exp := newExpander(cm, man.Courses, progress, loc, today, s.cfg.CSBaseURL, jsonFormat)
	exp.run()

	resolveLocks(cm, today)
	evaluateCompliance(cm, today)

	return cm, nil
}

func (s *CurriculumScheduler) initComputed(man *types.Manifest, attempt *types.Attempt, anchor time.Time, loc *time.Location, req Request) *types.ComputedManifest {
	compliantUntil := time.Date(1970, time.January, 1, 0, 0, 0, 0, loc)
	if attempt.CompliantUntil != nil {
		compliantUntil = attempt.CompliantUntil.In(loc)
	}

	cm := &types.ComputedManifest{
		Manifest:            *man,
		AttemptID:           attempt.ID.String(),
		Courses:             []*types.CourseInstance{},
		FirstAttemptDate:    anchor,
		CompliantUntil:      compliantUntil,
		LastCompliantUntil:  compliantUntil,
		CurrentCycle:        1,
		AllCoursesCompleted: true,
		Lang:                req.Lang,
		TestParams:          req.TestParams,
	}
	cm.TestParams.Lang = NormalizeLang(cm.TestParams.Lang)

	if attempt.User != nil {
		u := attempt.User
		cm.User = &types.LearnerView{
			ID:              u.ID.String(),
			Name:            utils.FormatLearnerName(u.LMSUserName),
			FullName:        u.LMSUserName,
			Email:           u.Email,
			EmailValidated:  u.ValidationCode == nil,
			OrgID:           attempt.OrgID,
			OrgName:         attempt.OrgName,
			OrgTimeZone:     attempt.OrgTimeZone,
			InstitutionID:   attempt.InstitutionID,
			InstitutionName: attempt.InstitutionName,
			DepartmentID:    attempt.DepartmentID,
			EmailPref:       types.UnpackEmailPref(u.Notifications),
		}
	}
	return cm
}

// firstAttemptDate resolves the curriculum anchor. "learner" anchors on the
// learner's own enrollment date, "organization" on the org's curriculum
// start; a bare month number 0-11 anchors on that month of the org start
// year. Anything else is a configuration error that aborts the run.
func firstAttemptDate(man *types.Manifest, attempt *types.Attempt, loc *time.Location) (time.Time, error) {
	kind := strings.TrimSpace(man.StartDate)
	switch kind {
	case "learner":
		return attempt.StartDate.In(loc), nil
	case "organization":
		return attempt.OrgStartDate.In(loc), nil
	}
	if n, err := strconv.Atoi(kind); err == nil && n >= 0 && n <= 11 {
		return time.Date(attempt.OrgStartDate.In(loc).Year(), time.Month(n+1), 1, 0, 0, 0, 0, loc), nil
	}
	return time.Time{}, fmt.Errorf("wrong configuration value of `start_date` in the manifest: %q", man.StartDate)
}
