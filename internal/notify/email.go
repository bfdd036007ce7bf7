package notify

// CourseReminder is one course line inside a reminder email. The day
// offsets are measured from today: DiffStartDay 0 means the course starts
// today, DiffDueDay -3 means due in three days, +2 means two days past due.
// A nil offset means that channel did not fire for this course.
type CourseReminder struct {
	Name         string `json:"name"`
	StartDate    string `json:"startDate"`
	DueDate      string `json:"dueDate"`
	DiffStartDay *int   `json:"diffStartDay,omitempty"`
	DiffDueDay   *int   `json:"diffDueDay,omitempty"`
}

// AttemptReminders groups the reminders of one attempt (one curriculum)
// inside a learner's email.
type AttemptReminders struct {
	Title   string           `json:"mocTitle"`
	Courses []CourseReminder `json:"courses"`
}

// EmailParams is the render context handed to the mail-template
// collaborator.
type EmailParams struct {
	Name     string                       `json:"name"`
	Lang     string                       `json:"lang,omitempty"`
	Attempts map[string]*AttemptReminders `json:"mocs"`
}

// Email is one assembled reminder message for one learner, possibly
// covering several attempts.
type Email struct {
	To           string      `json:"to"`
	From         string      `json:"from,omitempty"`
	Subject      string      `json:"subject"`
	MailTemplate string      `json:"mailTemplate,omitempty"`
	Params       EmailParams `json:"params"`
}

// EmailSet accumulates reminder emails keyed by learner address across a
// sweep.
type EmailSet map[string]*Email

// DefaultSubject is used when a manifest does not override the reminder
// subject line.
const DefaultSubject = "MOC course Notification"
