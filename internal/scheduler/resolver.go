package scheduler

import (
	"sort"
	"time"

	"github.com/mocworks/curricula-backend/internal/types"
)

// resolveLocks post-processes the expanded instance set: drops stale
// instances left behind by manifest edits, applies the past-due and
// dependency lockouts, marks upcoming work, then orders the remainder for
// display and partitions it into current/future/past.
func resolveLocks(cm *types.ComputedManifest, today time.Time) {
	all := cm.Courses
	kept := make([]*types.CourseInstance, 0, len(all))
	for _, inst := range all {
		// Instances with no progress due before the final compliant-until
		// can only come from a manifest change; they are removed outright.
		if inst.Progress == nil && cm.CompliantUntil.After(inst.DueDate) {
			continue
		}

		// An unresolved prior obligation blocks all later work. Any progress
		// matched onto such an instance is a miscalculation artifact of the
		// manifest change, so it is cleared.
		if cm.CompliantUntil.Before(inst.StartDate) {
			inst.Progress = nil
			inst.Locked = true
			inst.CanLaunch = false
			inst.Status = types.StatusLockedByPastDue
		}

		if inst.Status != types.StatusLockedByPastDue &&
			(!inst.StartDate.After(today) || !inst.DueDate.After(today)) {
			if !dependenciesComplete(inst, all) {
				inst.CanLaunch = false
				inst.Locked = true
				inst.Status = types.StatusLockedByDependencies
			}
		}

		if inst.Progress == nil && inst.StartDate.After(today) {
			inst.Locked = true
			inst.Status = types.StatusUpcoming
		}

		kept = append(kept, inst)
	}

	sortForDisplay(kept)

	current := []*types.CourseInstance{}
	future := []*types.CourseInstance{}
	past := []*types.CourseInstance{}
	for i, inst := range kept {
		inst.AllCourseMapIndex = i
		switch {
		case inst.Completed():
			past = append(past, inst)
		case inst.StartDate.After(today):
			future = append(future, inst)
		default:
			current = append(current, inst)
		}
	}

	cm.Courses = kept
	cm.CurrentCourses = current
	cm.FutureCourses = future
	cm.PastCourses = past
}

// dependenciesComplete reports whether every prerequisite of the instance is
// satisfied. A prerequisite counts only through instances whose window
// overlaps this instance's start date; such an instance without completed
// progress leaves the dependency unmet.
func dependenciesComplete(inst *types.CourseInstance, all []*types.CourseInstance) bool {
	if len(inst.DependsOn) == 0 {
		return true
	}
	for _, dep := range inst.DependsOn {
		for _, other := range all {
			if other.ID != dep {
				continue
			}
			if inst.StartDate.Before(other.StartDate) || inst.StartDate.After(other.DueDate) {
				continue
			}
			if !other.Completed() {
				return false
			}
		}
	}
	return true
}

func statusRank(s types.CourseStatus) int {
	for i, v := range types.StatusSortOrder {
		if v == s {
			return i
		}
	}
	return len(types.StatusSortOrder)
}

// sortForDisplay imposes the stable presentation order: status rank, start
// date, due date, due period, title.
func sortForDisplay(courses []*types.CourseInstance) {
	sort.SliceStable(courses, func(i, j int) bool {
		a, b := courses[i], courses[j]
		if ra, rb := statusRank(a.Status), statusRank(b.Status); ra != rb {
			return ra < rb
		}
		if !a.StartDate.Equal(b.StartDate) {
			return a.StartDate.Before(b.StartDate)
		}
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}
		if a.DuePeriod != b.DuePeriod {
			return a.DuePeriod < b.DuePeriod
		}
		return a.Title < b.Title
	})
}
