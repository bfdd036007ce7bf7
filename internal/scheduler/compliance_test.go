package scheduler

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mocworks/curricula-backend/internal/types"
)

func complianceFixture(compliantUntil time.Time) *types.ComputedManifest {
	return &types.ComputedManifest{
		FirstAttemptDate:   date(2024, time.January, 1),
		CompliantUntil:     compliantUntil,
		LastCompliantUntil: compliantUntil,
	}
}

func TestEvaluateComplianceStartPolicy(t *testing.T) {
	today := date(2024, time.June, 1)

	cm := complianceFixture(date(2024, time.September, 30))
	evaluateCompliance(cm, today)
	if cm.ComplianceStatus != types.ComplianceCompliant {
		t.Fatalf("status = %q, want compliant", cm.ComplianceStatus)
	}

	cm = complianceFixture(date(2024, time.March, 31))
	evaluateCompliance(cm, today)
	if cm.ComplianceStatus != types.ComplianceUncompliant {
		t.Fatalf("status = %q, want uncompliant", cm.ComplianceStatus)
	}
}

func TestEvaluateComplianceDatePolicy(t *testing.T) {
	today := date(2024, time.February, 1)
	policy := json.RawMessage(`{"from":"date","date":6}`)

	// Nothing completed yet inside the grace period: interim, not compliant.
	cm := complianceFixture(date(2024, time.March, 31))
	cm.Compliant = policy
	cm.Courses = []*types.CourseInstance{
		{DueDate: date(2024, time.March, 31), Status: types.StatusNotStarted},
	}
	evaluateCompliance(cm, today)
	if cm.ComplianceStatus != types.ComplianceInterim {
		t.Fatalf("status = %q, want interim", cm.ComplianceStatus)
	}

	// Everything due before the cutoff completed: fully compliant.
	cm = complianceFixture(date(2024, time.December, 31))
	cm.Compliant = policy
	cm.AnyCourseCompleted = true
	cm.Courses = []*types.CourseInstance{
		{DueDate: date(2024, time.March, 31), Status: types.StatusCompleted},
	}
	evaluateCompliance(cm, today)
	if cm.ComplianceStatus != types.ComplianceCompliant {
		t.Fatalf("status = %q, want compliant", cm.ComplianceStatus)
	}

	// Overdue work demotes regardless of the grace period.
	cm = complianceFixture(date(2024, time.January, 15))
	cm.Compliant = policy
	evaluateCompliance(cm, today)
	if cm.ComplianceStatus != types.ComplianceUncompliant {
		t.Fatalf("status = %q, want uncompliant", cm.ComplianceStatus)
	}
}

func TestEvaluateComplianceCourseCompletionPolicy(t *testing.T) {
	today := date(2024, time.February, 1)
	policy := json.RawMessage(`{"from":"coursecompletion","courses":[{"id":"intro"}]}`)

	cm := complianceFixture(date(2024, time.June, 30))
	cm.Compliant = policy
	cm.AnyCourseCompleted = true
	cm.Courses = []*types.CourseInstance{
		{ID: "intro", Instance: 0, Status: types.StatusCompleted, DueDate: date(2024, time.June, 30)},
	}
	evaluateCompliance(cm, today)
	if cm.ComplianceStatus != types.ComplianceCompliant {
		t.Fatalf("status = %q, want compliant", cm.ComplianceStatus)
	}

	// The pinned instance incomplete keeps the learner interim.
	cm = complianceFixture(date(2024, time.June, 30))
	cm.Compliant = policy
	cm.AnyCourseCompleted = true
	cm.Courses = []*types.CourseInstance{
		{ID: "intro", Instance: 0, Status: types.StatusStarted, DueDate: date(2024, time.June, 30)},
	}
	evaluateCompliance(cm, today)
	if cm.ComplianceStatus != types.ComplianceInterim {
		t.Fatalf("status = %q, want interim", cm.ComplianceStatus)
	}

	// Course id matching is case-insensitive.
	cm = complianceFixture(date(2024, time.June, 30))
	cm.Compliant = json.RawMessage(`{"from":"coursecompletion","courses":[{"id":"INTRO"}]}`)
	cm.AnyCourseCompleted = true
	cm.Courses = []*types.CourseInstance{
		{ID: "Intro", Instance: 0, Status: types.StatusCompleted, DueDate: date(2024, time.June, 30)},
	}
	evaluateCompliance(cm, today)
	if cm.ComplianceStatus != types.ComplianceCompliant {
		t.Fatalf("status = %q, want compliant", cm.ComplianceStatus)
	}
}

func TestEvaluateComplianceEmptyDependencyList(t *testing.T) {
	cm := complianceFixture(date(2024, time.June, 30))
	cm.Compliant = json.RawMessage(`{"from":"coursecompletion"}`)
	cm.AnyCourseCompleted = true
	evaluateCompliance(cm, date(2024, time.February, 1))
	if cm.ComplianceStatus != types.ComplianceInterim {
		t.Fatalf("status = %q, want interim for empty dependency list", cm.ComplianceStatus)
	}
}

func TestEvaluateComplianceFailsOpenOnBadPolicy(t *testing.T) {
	cm := complianceFixture(date(2024, time.June, 30))
	cm.Compliant = json.RawMessage(`{"from":["not","a","string"]`)
	evaluateCompliance(cm, date(2024, time.February, 1))
	if cm.ComplianceStatus != types.ComplianceCompliant {
		t.Fatalf("status = %q, want compliant when policy is unparseable", cm.ComplianceStatus)
	}
}
