package notify

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mocworks/curricula-backend/internal/contentmap"
	"github.com/mocworks/curricula-backend/internal/logger"
	"github.com/mocworks/curricula-backend/internal/manifest"
	"github.com/mocworks/curricula-backend/internal/platform/envutil"
	"github.com/mocworks/curricula-backend/internal/repos"
	"github.com/mocworks/curricula-backend/internal/scheduler"
	"github.com/mocworks/curricula-backend/internal/types"
)

// Sweeper walks every published MOC manifest, recomputes the schedule of
// each notifiable attempt and assembles the reminder emails that fire on
// the sweep date. One failing attempt never aborts the sweep; its error is
// recorded and the remaining attempts proceed.
type Sweeper struct {
	log       *logger.Logger
	content   contentmap.Map
	attempts  repos.AttemptRepo
	manifests manifest.Fetcher
	sched     *scheduler.CurriculumScheduler
	sender    Sender
	workers   int
}

func NewSweeper(log *logger.Logger, content contentmap.Map, attempts repos.AttemptRepo, manifests manifest.Fetcher, sched *scheduler.CurriculumScheduler, sender Sender) *Sweeper {
	workers := envutil.Int("NOTIFY_MAX_WORKERS", 8)
	if workers < 1 {
		workers = 1
	}
	return &Sweeper{
		log:       log.With("service", "NotificationSweeper"),
		content:   content,
		attempts:  attempts,
		manifests: manifests,
		sched:     sched,
		sender:    sender,
		workers:   workers,
	}
}

// AttemptError records one attempt the sweep could not schedule.
type AttemptError struct {
	AttemptID string `json:"attemptId"`
	Manifest  string `json:"manifest"`
	Error     string `json:"error"`
}

// Result summarizes one sweep.
type Result struct {
	Emails            EmailSet       `json:"-"`
	ManifestsSwept    int            `json:"manifestsSwept"`
	AttemptsProcessed int            `json:"attemptsProcessed"`
	AttemptErrors     []AttemptError `json:"attemptErrors,omitempty"`
	EmailsSent        int            `json:"emailsSent"`
	SendErrors        []string       `json:"sendErrors,omitempty"`
}

// Run executes a full sweep: select reminders across all MOC manifests,
// then deliver them. The returned error covers only infrastructure failures
// that prevent the sweep from running at all.
func (s *Sweeper) Run(ctx context.Context, params types.TestParams) (*Result, error) {
	res := &Result{Emails: EmailSet{}}
	var mu sync.Mutex

	// Reject a malformed override up front instead of failing every attempt.
	if params.TodayDate != "" {
		if _, err := scheduler.ResolveToday(scheduler.SystemClock{}, params.TodayDate, time.UTC); err != nil {
			return res, err
		}
	}

	for _, entry := range s.content.MOCEntries() {
		if err := s.sweepManifest(ctx, entry, params, res, &mu); err != nil {
			return res, err
		}
		res.ManifestsSwept++
	}

	s.deliver(ctx, res)
	return res, nil
}

// RunForAttempt selects and delivers reminders for a single attempt. Used
// by the on-demand notification endpoint.
func (s *Sweeper) RunForAttempt(ctx context.Context, attempt *types.Attempt, params types.TestParams) (*Result, error) {
	res := &Result{Emails: EmailSet{}}

	entry, ok := s.content.ByManifestID(attempt.ManifestID)
	if !ok {
		s.log.Warn("No content map entry for manifest", "manifest_id", attempt.ManifestID)
		return res, nil
	}

	man, tmpl, err := s.fetchManifest(ctx, entry)
	if err != nil {
		return res, err
	}

	cm, err := s.sched.Schedule(ctx, scheduler.Request{
		AttemptID:  attempt.ID,
		Attempt:    attempt,
		Manifest:   man,
		Lang:       entry.Lang,
		TestParams: params,
	})
	if err != nil {
		return res, err
	}
	cm.MailTemplate = tmpl
	SelectReminders(res.Emails, cm)
	res.AttemptsProcessed = 1

	s.deliver(ctx, res)
	return res, nil
}

func (s *Sweeper) sweepManifest(ctx context.Context, entry contentmap.Entry, params types.TestParams, res *Result, mu *sync.Mutex) error {
	man, tmpl, err := s.fetchManifest(ctx, entry)
	if err != nil {
		// A broken manifest blocks its own attempts, not the sweep.
		s.log.Error("Skipping manifest, fetch failed", "manifest_id", entry.ManifestID, "error", err.Error())
		mu.Lock()
		res.AttemptErrors = append(res.AttemptErrors, AttemptError{Manifest: entry.ManifestID, Error: err.Error()})
		mu.Unlock()
		return nil
	}

	// Attempt rows store manifest ids with the content-service prefix.
	attempts, err := s.attempts.GetNotifiableByManifestID(ctx, nil, "manifest/"+entry.ManifestID)
	if err != nil {
		return err
	}
	if len(attempts) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, attempt := range attempts {
		attempt := attempt
		g.Go(func() error {
			cm, err := s.sched.Schedule(gctx, scheduler.Request{
				AttemptID:  attempt.ID,
				Attempt:    attempt,
				Manifest:   man,
				Lang:       entry.Lang,
				TestParams: params,
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.log.Warn("Attempt skipped in sweep",
					"attempt_id", attempt.ID.String(),
					"manifest_id", entry.ManifestID,
					"error", err.Error(),
				)
				res.AttemptErrors = append(res.AttemptErrors, AttemptError{
					AttemptID: attempt.ID.String(),
					Manifest:  entry.ManifestID,
					Error:     err.Error(),
				})
				return nil
			}
			cm.MailTemplate = tmpl
			SelectReminders(res.Emails, cm)
			res.AttemptsProcessed++
			return nil
		})
	}
	return g.Wait()
}

func (s *Sweeper) fetchManifest(ctx context.Context, entry contentmap.Entry) (*types.Manifest, string, error) {
	man, err := s.manifests.Fetch(ctx, entry.Manifest)
	if err != nil {
		return nil, "", err
	}
	var tmpl string
	if man.Notifications.Template != "" {
		tmpl, err = s.manifests.FetchTemplate(ctx, man.Notifications.Template)
		if err != nil {
			return nil, "", err
		}
	}
	return man, tmpl, nil
}

// deliver sends the assembled emails in stable address order so retries and
// logs line up run to run.
func (s *Sweeper) deliver(ctx context.Context, res *Result) {
	if s.sender == nil || len(res.Emails) == 0 {
		return
	}
	addrs := make([]string, 0, len(res.Emails))
	for addr := range res.Emails {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)

	for _, addr := range addrs {
		if err := s.sender.Send(ctx, res.Emails[addr]); err != nil {
			s.log.Error("Reminder send failed", "email", addr, "error", err.Error())
			res.SendErrors = append(res.SendErrors, err.Error())
			continue
		}
		res.EmailsSent++
	}
}
