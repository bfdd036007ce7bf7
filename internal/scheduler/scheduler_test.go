package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mocworks/curricula-backend/internal/logger"
	"github.com/mocworks/curricula-backend/internal/types"
)

type fakeAttempts struct {
	byID map[uuid.UUID]*types.Attempt
}

func (f *fakeAttempts) Create(ctx context.Context, tx *gorm.DB, rows []*types.Attempt) ([]*types.Attempt, error) {
	return rows, nil
}

func (f *fakeAttempts) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Attempt, error) {
	return f.byID[id], nil
}

func (f *fakeAttempts) GetNotifiableByManifestID(ctx context.Context, tx *gorm.DB, manifestID string) ([]*types.Attempt, error) {
	var out []*types.Attempt
	for _, a := range f.byID {
		if a.ManifestID == manifestID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeProgress struct {
	rows []*types.Progress
}

func (f *fakeProgress) Create(ctx context.Context, tx *gorm.DB, rows []*types.Progress) ([]*types.Progress, error) {
	f.rows = append(f.rows, rows...)
	return rows, nil
}

func (f *fakeProgress) GetByAttemptID(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) ([]*types.Progress, error) {
	var out []*types.Progress
	for _, p := range f.rows {
		if p.AttemptID == attemptID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeFetcher struct {
	manifest *types.Manifest
	template string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*types.Manifest, error) {
	if f.manifest == nil {
		return nil, errors.New("no manifest configured")
	}
	return f.manifest, nil
}

func (f *fakeFetcher) FetchTemplate(ctx context.Context, url string) (string, error) {
	return f.template, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func testAttempt(start time.Time) *types.Attempt {
	return &types.Attempt{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		ManifestID:   "manifest/moc-basic",
		OrgTimeZone:  "UTC",
		StartDate:    start,
		OrgStartDate: start,
		Active:       true,
		User: &types.User{
			ID:            uuid.New(),
			LMSUserName:   "jdoe|Jane Doe",
			Email:         "jane@example.org",
			Notifications: types.EmailPrefAll,
			Active:        true,
		},
	}
}

func newTestScheduler(t *testing.T, attempt *types.Attempt, progress []*types.Progress, man *types.Manifest) (*CurriculumScheduler, Request) {
	t.Helper()
	attempts := &fakeAttempts{byID: map[uuid.UUID]*types.Attempt{attempt.ID: attempt}}
	prog := &fakeProgress{rows: progress}
	sched := New(testLogger(t), attempts, prog, &fakeFetcher{manifest: man}, Config{CSBaseURL: "https://cs.example.org"}, SystemClock{})
	return sched, Request{AttemptID: attempt.ID, ManifestURL: "https://cs.example.org/manifest/moc-basic.json"}
}

func singleCourseManifest(repeatCycle int) *types.Manifest {
	return &types.Manifest{
		ID:          "moc-basic",
		Title:       "Basic Curriculum",
		RepeatCycle: repeatCycle,
		StartDate:   "learner",
		Courses: []types.CourseTemplate{
			{
				ID:         "intro",
				Title:      "Introduction",
				StartDates: []int{0},
				DuePeriod:  3,
				Launch:     types.LaunchInfo{LTILink: "intro-course"},
			},
		},
	}
}

func TestScheduleUnknownAttempt(t *testing.T) {
	attempt := testAttempt(time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC))
	sched, _ := newTestScheduler(t, attempt, nil, singleCourseManifest(0))

	_, err := sched.Schedule(context.Background(), Request{AttemptID: uuid.New()})
	if !errors.Is(err, ErrAttemptNotFound) {
		t.Fatalf("err = %v, want ErrAttemptNotFound", err)
	}
}

func TestScheduleSingleCourseInWindow(t *testing.T) {
	attempt := testAttempt(time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC))
	sched, req := newTestScheduler(t, attempt, nil, singleCourseManifest(0))
	req.TestParams.TodayDate = "2024-02-01"

	cm, err := sched.Schedule(context.Background(), req)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if len(cm.Courses) != 1 {
		t.Fatalf("got %d instances, want 1", len(cm.Courses))
	}
	inst := cm.Courses[0]
	if !inst.StartDate.Equal(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start = %v, want 2024-01-01", inst.StartDate)
	}
	if inst.Status != types.StatusNotStarted {
		t.Fatalf("status = %q, want notStarted", inst.Status)
	}
	if !inst.CanLaunch {
		t.Fatal("course inside its window must be launchable")
	}
	if cm.ComplianceStatus != types.ComplianceCompliant {
		t.Fatalf("compliance = %q, want compliant", cm.ComplianceStatus)
	}
	if cm.CurrentCycle != 1 {
		t.Fatalf("current cycle = %d, want 1", cm.CurrentCycle)
	}
	if len(cm.CurrentCourses) != 1 || len(cm.FutureCourses) != 0 || len(cm.PastCourses) != 0 {
		t.Fatalf("partition = %d/%d/%d, want 1/0/0",
			len(cm.CurrentCourses), len(cm.FutureCourses), len(cm.PastCourses))
	}
}

func TestSchedulePastDueUncompliant(t *testing.T) {
	attempt := testAttempt(time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC))
	sched, req := newTestScheduler(t, attempt, nil, singleCourseManifest(0))
	req.TestParams.TodayDate = "2024-05-01"

	cm, err := sched.Schedule(context.Background(), req)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	inst := cm.Courses[0]
	if inst.Status != types.StatusPastDueNotStarted {
		t.Fatalf("status = %q, want pastDueNotStarted", inst.Status)
	}
	if !inst.CanLaunch {
		t.Fatal("past-due course must remain launchable")
	}
	if cm.ComplianceStatus != types.ComplianceUncompliant {
		t.Fatalf("compliance = %q, want uncompliant", cm.ComplianceStatus)
	}
}

func TestScheduleLockedByPastDue(t *testing.T) {
	man := singleCourseManifest(0)
	man.Courses = append(man.Courses, types.CourseTemplate{
		ID:         "advanced",
		Title:      "Advanced Topics",
		StartDates: []int{6},
		DuePeriod:  3,
	})
	attempt := testAttempt(time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC))
	sched, req := newTestScheduler(t, attempt, nil, man)
	req.TestParams.TodayDate = "2024-08-01"

	cm, err := sched.Schedule(context.Background(), req)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	byID := map[string]*types.CourseInstance{}
	for _, inst := range cm.Courses {
		byID[inst.ID] = inst
	}
	if byID["intro"].Status != types.StatusPastDueNotStarted {
		t.Fatalf("intro status = %q, want pastDueNotStarted", byID["intro"].Status)
	}
	adv := byID["advanced"]
	if adv.Status != types.StatusLockedByPastDue {
		t.Fatalf("advanced status = %q, want lockedByPastDue", adv.Status)
	}
	if adv.CanLaunch || !adv.Locked {
		t.Fatal("course behind an unresolved obligation must be locked")
	}
	if cm.ComplianceStatus != types.ComplianceUncompliant {
		t.Fatalf("compliance = %q, want uncompliant", cm.ComplianceStatus)
	}
}

func TestScheduleLockedByDependencies(t *testing.T) {
	man := singleCourseManifest(0)
	man.Courses[0].DuePeriod = 6
	man.Courses = append(man.Courses, types.CourseTemplate{
		ID:         "followup",
		Title:      "Follow Up",
		StartDates: []int{0},
		DuePeriod:  6,
		DependsOn:  []string{"intro"},
	})
	attempt := testAttempt(time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC))
	sched, req := newTestScheduler(t, attempt, nil, man)
	req.TestParams.TodayDate = "2024-02-01"

	cm, err := sched.Schedule(context.Background(), req)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	byID := map[string]*types.CourseInstance{}
	for _, inst := range cm.Courses {
		byID[inst.ID] = inst
	}
	if byID["intro"].Status != types.StatusNotStarted {
		t.Fatalf("intro status = %q, want notStarted", byID["intro"].Status)
	}
	fu := byID["followup"]
	if fu.Status != types.StatusLockedByDependencies {
		t.Fatalf("followup status = %q, want lockedByDependencies", fu.Status)
	}
	if fu.CanLaunch {
		t.Fatal("dependency-locked course must not be launchable")
	}
}

func TestScheduleDependencySatisfiedByCompletion(t *testing.T) {
	man := singleCourseManifest(0)
	man.Courses[0].DuePeriod = 6
	man.Courses = append(man.Courses, types.CourseTemplate{
		ID:         "followup",
		Title:      "Follow Up",
		StartDates: []int{0},
		DuePeriod:  6,
		DependsOn:  []string{"intro"},
	})
	attempt := testAttempt(time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC))
	completed := time.Date(2024, time.January, 20, 10, 0, 0, 0, time.UTC)
	progress := []*types.Progress{
		{
			AttemptID:   attempt.ID,
			CourseID:    "intro",
			StartDate:   time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			CompletedAt: &completed,
			CreatedAt:   completed,
		},
	}
	sched, req := newTestScheduler(t, attempt, progress, man)
	req.TestParams.TodayDate = "2024-02-01"

	cm, err := sched.Schedule(context.Background(), req)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	byID := map[string]*types.CourseInstance{}
	for _, inst := range cm.Courses {
		byID[inst.ID] = inst
	}
	if byID["intro"].Status != types.StatusCompleted {
		t.Fatalf("intro status = %q, want completed", byID["intro"].Status)
	}
	if byID["followup"].Status != types.StatusNotStarted {
		t.Fatalf("followup status = %q, want notStarted", byID["followup"].Status)
	}
	if !cm.AnyCourseCompleted {
		t.Fatal("AnyCourseCompleted must be set")
	}
	if len(cm.PastCourses) != 1 {
		t.Fatalf("past partition = %d, want 1", len(cm.PastCourses))
	}
}

func TestScheduleCycleRolloverAfterCompletion(t *testing.T) {
	man := singleCourseManifest(12)
	attempt := testAttempt(time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC))
	completed := time.Date(2024, time.February, 10, 9, 0, 0, 0, time.UTC)
	progress := []*types.Progress{
		{
			AttemptID:   attempt.ID,
			CourseID:    "intro",
			StartDate:   time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			CompletedAt: &completed,
			CreatedAt:   completed,
		},
	}
	sched, req := newTestScheduler(t, attempt, progress, man)
	req.TestParams.TodayDate = "2024-06-01"

	cm, err := sched.Schedule(context.Background(), req)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if len(cm.Courses) != 2 {
		t.Fatalf("got %d instances, want completed current cycle + upcoming next", len(cm.Courses))
	}
	if cm.CurrentCycle != 2 {
		t.Fatalf("current cycle = %d, want 2", cm.CurrentCycle)
	}
	byCycle := map[int]*types.CourseInstance{}
	for _, inst := range cm.Courses {
		byCycle[inst.Cycle] = inst
	}
	if byCycle[1] == nil || byCycle[1].Status != types.StatusCompleted {
		t.Fatalf("cycle 1 instance missing or not completed")
	}
	next := byCycle[2]
	if next == nil || next.Status != types.StatusUpcoming {
		t.Fatalf("cycle 2 instance missing or not upcoming")
	}
	if !next.StartDate.Equal(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("next cycle start = %v, want 2025-01-01", next.StartDate)
	}
	if next.Instance != 1 {
		t.Fatalf("next cycle instance number = %d, want 1", next.Instance)
	}
}

func TestScheduleDropsStaleInstances(t *testing.T) {
	man := singleCourseManifest(0)
	attempt := testAttempt(time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC))
	// The stored watermark says the learner is covered well past the only
	// instance's due date; with no progress on it, the instance is a leftover
	// of a manifest change and disappears.
	until := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
	attempt.CompliantUntil = &until

	sched, req := newTestScheduler(t, attempt, nil, man)
	req.TestParams.TodayDate = "2024-02-01"

	cm, err := sched.Schedule(context.Background(), req)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if len(cm.Courses) != 0 {
		t.Fatalf("got %d instances, want stale instance dropped", len(cm.Courses))
	}
}

func TestScheduleCompliantUntilTightensToClosestDue(t *testing.T) {
	// Template order is deliberate: the first incomplete due date at or past
	// the stored watermark is the annual one, then the midterm instance with
	// an earlier due date must pull the watermark down to it. The legacy
	// instance is due before the stored watermark and must never be adopted.
	man := &types.Manifest{
		ID:        "moc-basic",
		Title:     "Basic Curriculum",
		StartDate: "learner",
		Courses: []types.CourseTemplate{
			{ID: "legacy", Title: "Legacy Module", StartDates: []int{0}, DuePeriod: 1},
			{ID: "annual", Title: "Annual Review", StartDates: []int{0}, DuePeriod: 12},
			{ID: "midterm", Title: "Midterm Check", StartDates: []int{3}, DuePeriod: 3},
		},
	}
	attempt := testAttempt(time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC))
	until := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	attempt.CompliantUntil = &until

	sched, req := newTestScheduler(t, attempt, nil, man)
	req.TestParams.TodayDate = "2024-05-01"

	cm, err := sched.Schedule(context.Background(), req)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	wantUntil := time.Date(2024, time.June, 30, 23, 59, 59, 999*int(time.Millisecond), time.UTC)
	if !cm.CompliantUntil.Equal(wantUntil) {
		t.Fatalf("compliant-until = %v, want midterm due %v", cm.CompliantUntil, wantUntil)
	}
	if !cm.LastCompliantUntil.Equal(until) {
		t.Fatalf("last compliant-until = %v, want stored %v", cm.LastCompliantUntil, until)
	}
	if cm.CompliantUntil.Before(cm.LastCompliantUntil) {
		t.Fatal("compliant-until must never drop below the stored watermark")
	}
}

func TestScheduleRepeatWithoutStartDatesStopsExpanding(t *testing.T) {
	man := singleCourseManifest(12)
	man.Courses[0].StartDates = nil
	attempt := testAttempt(time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC))
	sched, req := newTestScheduler(t, attempt, nil, man)
	req.TestParams.TodayDate = "2024-06-01"

	cm, err := sched.Schedule(context.Background(), req)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if len(cm.Courses) != 0 {
		t.Fatalf("got %d instances, want none without start dates", len(cm.Courses))
	}
	if cm.CurrentCycle != 1 {
		t.Fatalf("current cycle = %d, want 1 on an empty schedule", cm.CurrentCycle)
	}
}

func TestScheduleIgnoresOtherAttemptsProgress(t *testing.T) {
	attempt := testAttempt(time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC))
	sched, req := newTestScheduler(t, attempt, nil, singleCourseManifest(0))
	completed := time.Date(2024, time.January, 20, 10, 0, 0, 0, time.UTC)
	// Caller-supplied slice with another attempt's record for the same
	// course and window.
	req.Progress = []*types.Progress{
		{
			AttemptID:   uuid.New(),
			CourseID:    "intro",
			StartDate:   time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			CompletedAt: &completed,
			CreatedAt:   completed,
		},
	}
	req.TestParams.TodayDate = "2024-02-01"

	cm, err := sched.Schedule(context.Background(), req)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	inst := cm.Courses[0]
	if inst.Progress != nil {
		t.Fatalf("matched foreign progress record: %+v", inst.Progress)
	}
	if inst.Status != types.StatusNotStarted {
		t.Fatalf("status = %q, want notStarted", inst.Status)
	}
}

func TestScheduleRunsAreIdempotent(t *testing.T) {
	attempt := testAttempt(time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC))
	sched, req := newTestScheduler(t, attempt, nil, singleCourseManifest(12))
	req.TestParams.TodayDate = "2026-02-01"

	first, err := sched.Schedule(context.Background(), req)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := sched.Schedule(context.Background(), req)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(first.Courses) != len(second.Courses) {
		t.Fatalf("instance count changed between runs: %d then %d", len(first.Courses), len(second.Courses))
	}
	for i := range first.Courses {
		a, b := first.Courses[i], second.Courses[i]
		if a.ID != b.ID || a.Cycle != b.Cycle || a.Status != b.Status || !a.StartDate.Equal(b.StartDate) || !a.DueDate.Equal(b.DueDate) {
			t.Fatalf("instance %d differs between runs: %+v vs %+v", i, a, b)
		}
	}
	if !first.CompliantUntil.Equal(second.CompliantUntil) {
		t.Fatalf("compliant-until differs between runs")
	}
}

func TestScheduleFixedMonthAnchor(t *testing.T) {
	man := singleCourseManifest(0)
	man.StartDate = "5"
	attempt := testAttempt(time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC))
	sched, req := newTestScheduler(t, attempt, nil, man)
	req.TestParams.TodayDate = "2024-07-01"

	cm, err := sched.Schedule(context.Background(), req)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if !cm.FirstAttemptDate.Equal(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("anchor = %v, want 2024-06-01", cm.FirstAttemptDate)
	}
}

func TestScheduleRejectsBadStartDateConfig(t *testing.T) {
	man := singleCourseManifest(0)
	man.StartDate = "whenever"
	attempt := testAttempt(time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC))
	sched, req := newTestScheduler(t, attempt, nil, man)

	if _, err := sched.Schedule(context.Background(), req); err == nil {
		t.Fatal("expected configuration error for bad start_date")
	}
}

func TestScheduleJSONFormatDerivesLaunchIdentifiers(t *testing.T) {
	attempt := testAttempt(time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC))
	sched, req := newTestScheduler(t, attempt, nil, singleCourseManifest(0))
	req.Format = "json"
	req.TestParams.TodayDate = "2024-02-01"

	cm, err := sched.Schedule(context.Background(), req)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	inst := cm.Courses[0]
	want := cm.AttemptID + "|intro|2024-01-01T00:00:00Z|2024-03-31T23:59:59Z"
	if inst.Launch.ResourceLinkID != want {
		t.Fatalf("resource_link_id = %q, want %q", inst.Launch.ResourceLinkID, want)
	}
	if inst.Launch.ContextID != want || inst.Launch.LisResultSourcedID != want {
		t.Fatal("context_id and lis_result_sourcedid must match resource_link_id")
	}
	if inst.Launch.LisOutcomeServiceURL != "https://cs.example.org/moc_lis_endpoint" {
		t.Fatalf("lis_outcome_service_url = %q", inst.Launch.LisOutcomeServiceURL)
	}
	if inst.Launch.LTILink != "https://cs.example.org/launch_lti?manifest=manifest/intro-course" {
		t.Fatalf("lti_link = %q", inst.Launch.LTILink)
	}
}
