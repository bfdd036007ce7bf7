package types

import "time"

// CourseStatus is the lifecycle state of one course instance.
type CourseStatus string

const (
	StatusCompleted            CourseStatus = "completed"
	StatusPastDueStarted       CourseStatus = "pastDueStarted"
	StatusPastDueNotStarted    CourseStatus = "pastDueNotStarted"
	StatusLockedByPastDue      CourseStatus = "lockedByPastDue"
	StatusStarted              CourseStatus = "started"
	StatusNotStarted           CourseStatus = "notStarted"
	StatusLockedByDependencies CourseStatus = "lockedByDependencies"
	StatusUpcoming             CourseStatus = "upcoming"
)

// StatusSortOrder is the fixed display rank used when ordering a computed
// schedule. Presentation only; never consulted by the lock rules.
var StatusSortOrder = []CourseStatus{
	StatusCompleted,
	StatusPastDueStarted,
	StatusPastDueNotStarted,
	StatusLockedByPastDue,
	StatusStarted,
	StatusNotStarted,
	StatusLockedByDependencies,
	StatusUpcoming,
}

// CourseInstance is one dated occurrence of a course template for a specific
// offset and recurrence cycle. Instances are built fresh on every scheduling
// run and never persisted.
type CourseInstance struct {
	ID                  string         `json:"id"`
	Title               string         `json:"title"`
	Launch              LaunchInfo     `json:"launch"`
	DuePeriod           int            `json:"due_period"`
	DependsOn           []string       `json:"depends_on,omitempty"`
	LTIExtra            map[string]any `json:"lti_launch_info_extra,omitempty"`
	Instance            int            `json:"instance"`
	InstanceStartPeriod int            `json:"instanceStartPeriod"`
	Cycle               int            `json:"cycle,omitempty"`
	StartDate           time.Time      `json:"startDate"`
	DueDate             time.Time      `json:"dueDate"`
	DueDaysLeft         int            `json:"dueDaysLeft"`
	Status              CourseStatus   `json:"status"`
	Locked              bool           `json:"locked"`
	CanLaunch           bool           `json:"canLaunch"`
	Progress            *ProgressView  `json:"progress,omitempty"`
	AllCourseMapIndex   int            `json:"allCourseMapIndex"`
}

// Completed reports whether the instance carries completed progress.
func (c *CourseInstance) Completed() bool {
	return c.Progress != nil && c.Progress.CompletedAt != nil
}

// ProgressView is the matched progress record with its timestamps converted
// into the org timezone for presentation.
type ProgressView struct {
	AttemptID   string     `json:"attemptId"`
	CourseID    string     `json:"courseId"`
	StartDate   time.Time  `json:"startDate"`
	StartedAt   time.Time  `json:"startedDate"`
	CompletedAt *time.Time `json:"completedDate,omitempty"`
}
