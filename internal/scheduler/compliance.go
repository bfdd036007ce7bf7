package scheduler

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/mocworks/curricula-backend/internal/types"
)

// evaluateCompliance derives the aggregate verdict from the final
// compliant-until watermark and the manifest's compliance policy.
//
// Policy parameters that cannot be parsed fail open to "compliant". That is
// a deliberate availability-over-safety choice: a broken manifest must not
// lock learners out of their training.
func evaluateCompliance(cm *types.ComputedManifest, today time.Time) {
	policy := parsePolicy(cm.Compliant)

	from := "start"
	if policy != nil && strings.TrimSpace(policy.From) != "" {
		from = strings.ToLower(strings.TrimSpace(policy.From))
	}

	status := types.ComplianceCompliant
	switch from {
	case "date":
		if cm.CompliantUntil.Before(today) {
			status = types.ComplianceUncompliant
			break
		}
		monthDate := cm.FirstAttemptDate.AddDate(0, policyMonthOffset(policy), 0)
		if !cm.AnyCourseCompleted || anyIncompleteDueBefore(cm.Courses, monthDate) {
			status = types.ComplianceInterim
		}
	case "coursecompletion":
		if cm.CompliantUntil.Before(today) {
			status = types.ComplianceUncompliant
			break
		}
		var deps []types.CourseDependency
		if policy != nil {
			deps = policy.Courses
		}
		if len(deps) == 0 {
			status = types.ComplianceInterim
			break
		}
		if !cm.AnyCourseCompleted || anyDependencyIncomplete(cm.Courses, deps) {
			status = types.ComplianceInterim
		}
	default:
		// "start" and anything unrecognized: compliant from the beginning,
		// only an overdue obligation demotes.
		if cm.CompliantUntil.Before(today) {
			status = types.ComplianceUncompliant
		}
	}
	cm.ComplianceStatus = status
}

// parsePolicy decodes the raw compliance block. nil means absent or
// unparseable, which callers treat as the fail-open default.
func parsePolicy(raw json.RawMessage) *types.CompliancePolicy {
	if len(raw) == 0 {
		return nil
	}
	var policy types.CompliancePolicy
	if err := json.Unmarshal(raw, &policy); err != nil {
		return nil
	}
	return &policy
}

func policyMonthOffset(policy *types.CompliancePolicy) int {
	if policy == nil {
		return 0
	}
	s := strings.TrimSpace(policy.Date.String())
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

func anyIncompleteDueBefore(courses []*types.CourseInstance, cutoff time.Time) bool {
	for _, c := range courses {
		if c.DueDate.Before(cutoff) && c.Status != types.StatusCompleted {
			return true
		}
	}
	return false
}

// anyDependencyIncomplete checks the configured dependency list against the
// instance set. Dependencies are deduplicated by course id (first entry
// wins) and pinned to their instance number, defaulting to instance 0.
func anyDependencyIncomplete(courses []*types.CourseInstance, deps []types.CourseDependency) bool {
	seen := make(map[string]types.CourseDependency, len(deps))
	order := make([]string, 0, len(deps))
	for _, dep := range deps {
		id := strings.ToLower(dep.ID)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = dep
		order = append(order, id)
	}
	for _, id := range order {
		dep := seen[id]
		for _, c := range courses {
			if strings.ToLower(c.ID) != id || c.Instance != dep.Instance {
				continue
			}
			if c.Status != types.StatusCompleted {
				return true
			}
		}
	}
	return false
}
