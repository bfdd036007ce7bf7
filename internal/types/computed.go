package types

import "time"

// ComplianceStatus is the aggregate verdict for one attempt.
type ComplianceStatus string

const (
	ComplianceCompliant   ComplianceStatus = "compliant"
	ComplianceInterim     ComplianceStatus = "interim"
	ComplianceUncompliant ComplianceStatus = "uncompliant"
)

// ComputedManifest is the manifest augmented with the resolved course
// instances and aggregate state for one attempt. It is derived on every run
// and never stored.
type ComputedManifest struct {
	Manifest
	AttemptID           string            `json:"attemptId"`
	User                *LearnerView      `json:"user,omitempty"`
	Courses             []*CourseInstance `json:"courses"`
	CurrentCourses      []*CourseInstance `json:"currentCourses"`
	FutureCourses       []*CourseInstance `json:"futureCourses"`
	PastCourses         []*CourseInstance `json:"pastCourses"`
	ComplianceStatus    ComplianceStatus  `json:"complianceStatus"`
	Today               time.Time         `json:"today"`
	FirstAttemptDate    time.Time         `json:"firstAttemptDate"`
	CompliantUntil      time.Time         `json:"compliantUntil"`
	LastCompliantUntil  time.Time         `json:"lastCompliantUntil"`
	LastCompletionDate  *time.Time        `json:"lastCompletionDate,omitempty"`
	CurrentCycle        int               `json:"currentCycle"`
	AllCoursesCompleted bool              `json:"allCoursesCompleted"`
	AnyCourseCompleted  bool              `json:"anyCourseCompleted"`
	Lang                string            `json:"lang,omitempty"`
	MailTemplate        string            `json:"mailTemplate,omitempty"`
	TestParams          TestParams        `json:"testParams"`
}

// LearnerView is the learner context echoed on a computed manifest.
type LearnerView struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	FullName        string           `json:"fullName"`
	Email           string           `json:"email"`
	EmailValidated  bool             `json:"emailValidated"`
	OrgID           string           `json:"orgId"`
	OrgName         string           `json:"orgName"`
	OrgTimeZone     string           `json:"orgTimeZone"`
	InstitutionID   string           `json:"institutionId"`
	InstitutionName string           `json:"institutionName"`
	DepartmentID    string           `json:"departmentId"`
	EmailPref       EmailPreferences `json:"emailPref"`
}
