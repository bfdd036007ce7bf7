package scheduler

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mocworks/curricula-backend/internal/types"
)

// maxCyclePasses bounds the "expand the next cycle while everything is
// completed" loop. A learner cannot legitimately have completed more cycles
// than this in one curriculum lifetime.
const maxCyclePasses = 64

// expander walks the manifest's course templates and materializes every
// dated course instance for the attempt: one per offset per elapsed
// recurrence cycle, with matched progress, lifecycle status and the running
// compliant-until aggregate.
type expander struct {
	cm         *types.ComputedManifest
	templates  []types.CourseTemplate
	progress   []*types.Progress
	loc        *time.Location
	today      time.Time
	csURL      string
	jsonFormat bool

	// set once the first incomplete due date at or past the stored
	// compliant-until has been adopted; later merges may only tighten.
	nextCompliantFound bool
}

func newExpander(cm *types.ComputedManifest, templates []types.CourseTemplate, progress []*types.Progress, loc *time.Location, today time.Time, csURL string, jsonFormat bool) *expander {
	return &expander{
		cm:         cm,
		templates:  templates,
		progress:   progress,
		loc:        loc,
		today:      today,
		csURL:      csURL,
		jsonFormat: jsonFormat,
	}
}

// run expands cycles until one contains incomplete work or the curriculum
// does not repeat. Each pass appends to cm.Courses; nothing is filtered
// here (the resolver does that afterwards). A pass that appends nothing
// means the manifest has no schedulable offsets, so there is no next cycle
// to expand either.
func (e *expander) run() {
	anchor := e.cm.FirstAttemptDate
	for pass := 0; ; pass++ {
		before := len(e.cm.Courses)
		e.populate(anchor)
		if len(e.cm.Courses) == before {
			return
		}
		if !(e.cm.AllCoursesCompleted && e.cm.RepeatCycle > 0) || pass >= maxCyclePasses {
			return
		}
		anchor = e.cm.FirstAttemptDate.AddDate(0, e.cm.CurrentCycle*e.cm.RepeatCycle, 0)
		e.cm.CurrentCycle++
	}
}

func (e *expander) populate(anchor time.Time) {
	passCycle := e.cm.CurrentCycle
	for ti := range e.templates {
		tpl := &e.templates[ti]
		if len(tpl.StartDates) == 0 {
			continue
		}
		offsets := append([]int(nil), tpl.StartDates...)
		sort.Ints(offsets)
		for pos, offset := range offsets {
			occs := ComputeOccurrences(offset, tpl.DuePeriod, anchor, e.today, e.cm.RepeatCycle, e.cm.StartAlignment, e.loc)
			for _, occ := range occs {
				cycle := occ.Cycle
				if cycle == 0 {
					cycle = passCycle
				}
				if cycle > e.cm.CurrentCycle {
					e.cm.CurrentCycle = cycle
				}
				inst := e.buildInstance(tpl, pos, len(offsets), offset, occ, cycle)
				e.mergeCompliantUntil(inst)
				e.classify(inst)
				e.setLaunch(inst)
				e.cm.Courses = append(e.cm.Courses, inst)
			}
		}
	}
}

func (e *expander) buildInstance(tpl *types.CourseTemplate, pos, offsetCount, offset int, occ Occurrence, cycle int) *types.CourseInstance {
	inst := &types.CourseInstance{
		ID:                  tpl.ID,
		Title:               tpl.Title,
		Launch:              tpl.Launch,
		DuePeriod:           tpl.DuePeriod,
		DependsOn:           append([]string(nil), tpl.DependsOn...),
		LTIExtra:            tpl.LTIExtra,
		Instance:            pos + offsetCount*(cycle-1),
		InstanceStartPeriod: offset,
		Cycle:               cycle,
		StartDate:           occ.StartDate,
		DueDate:             occ.DueDate,
		DueDaysLeft:         occ.DueDaysLeft,
	}
	inst.Progress = e.matchProgress(tpl.ID, occ.StartDate)
	return inst
}

// matchProgress finds the attempt's progress record for this course whose
// start date names the same instant as the instance's window. At most one
// record can match; the first wins. The attempt-id check guards against a
// caller-supplied slice holding records for other attempts.
func (e *expander) matchProgress(courseID string, start time.Time) *types.ProgressView {
	for _, p := range e.progress {
		if p.AttemptID.String() != e.cm.AttemptID {
			continue
		}
		if p.CourseID != courseID {
			continue
		}
		if !p.StartDate.In(e.loc).Equal(start) {
			continue
		}
		view := &types.ProgressView{
			AttemptID: p.AttemptID.String(),
			CourseID:  p.CourseID,
			StartDate: p.StartDate.In(e.loc),
			StartedAt: p.CreatedAt.In(e.loc),
		}
		if p.CompletedAt != nil {
			completed := p.CompletedAt.In(e.loc)
			view.CompletedAt = &completed
		}
		return view
	}
	return nil
}

// mergeCompliantUntil advances the aggregate compliant-until watermark. The
// first incomplete due date at or past the stored watermark is adopted; any
// later incomplete due date that is still at or past the last stored value
// but closer than the adopted one tightens the watermark downward. Ties keep
// the first instance seen in template-then-offset order, which makes the
// result independent of progress ordering.
func (e *expander) mergeCompliantUntil(inst *types.CourseInstance) {
	if inst.Completed() {
		return
	}
	switch {
	case !e.nextCompliantFound && !inst.DueDate.Before(e.cm.CompliantUntil):
		e.cm.CompliantUntil = inst.DueDate
		e.nextCompliantFound = true
	case e.nextCompliantFound &&
		!inst.DueDate.After(e.cm.CompliantUntil) &&
		!inst.DueDate.Before(e.cm.LastCompliantUntil):
		e.cm.CompliantUntil = inst.DueDate
	}
}

func (e *expander) classify(inst *types.CourseInstance) {
	switch {
	case inst.Completed():
		inst.Status = types.StatusCompleted
		e.cm.AnyCourseCompleted = true
		completed := *inst.Progress.CompletedAt
		if e.cm.LastCompletionDate == nil || completed.After(*e.cm.LastCompletionDate) {
			e.cm.LastCompletionDate = &completed
		}
	case inst.DueDaysLeft <= 0 && inst.Progress == nil:
		inst.Status = types.StatusPastDueNotStarted
		e.cm.AllCoursesCompleted = false
	case inst.DueDaysLeft <= 0:
		inst.Status = types.StatusPastDueStarted
		e.cm.AllCoursesCompleted = false
	case inst.Progress == nil:
		inst.Status = types.StatusNotStarted
		e.cm.AllCoursesCompleted = false
	default:
		inst.Status = types.StatusStarted
		e.cm.AllCoursesCompleted = false
	}
}

// setLaunch decides launchability and normalizes the launch URL. A course
// can be launched when its due date has passed (review of a previous cycle)
// or today falls inside its window; future instances are never launchable.
func (e *expander) setLaunch(inst *types.CourseInstance) {
	if !inst.DueDate.After(e.today) ||
		(!e.today.Before(inst.StartDate) && !e.today.After(inst.DueDate)) {
		inst.CanLaunch = true
	}

	if link := inst.Launch.LTILink; link != "" && !strings.HasPrefix(link, "http") {
		inst.Launch.LTILink = e.csURL + "/launch_lti?manifest=manifest/" + link
	}

	if e.jsonFormat {
		resourceLinkID := fmt.Sprintf("%s|%s|%s|%s",
			e.cm.AttemptID,
			inst.ID,
			inst.StartDate.UTC().Format(time.RFC3339),
			inst.DueDate.UTC().Format(time.RFC3339),
		)
		inst.Launch.ResourceLinkID = resourceLinkID
		inst.Launch.ContextID = resourceLinkID
		inst.Launch.LisResultSourcedID = resourceLinkID
		inst.Launch.ToolConsumerInfoProductFamilyCode = "moc_lti_launch"
		inst.Launch.LisOutcomeServiceURL = e.csURL + "/moc_lis_endpoint"
		inst.Launch.CustomStartDate = inst.StartDate.Format(time.RFC3339)
		inst.Launch.CustomDueDate = inst.DueDate.Format(time.RFC3339)
	}
}
