package notify

import (
	"math"
	"time"

	"github.com/mocworks/curricula-backend/internal/types"
)

const reminderDateLayout = "Jan 2, 2006"

// SelectReminders inspects one attempt's computed schedule and merges any
// reminders that fire today into the email set, one email per learner
// address. A course contributes at most one start reminder (only on its
// start day) and one due reminder (on the configured offsets before or
// after the due date); the learner's preference bitmask gates each channel
// independently.
func SelectReminders(emails EmailSet, cm *types.ComputedManifest) {
	if cm.User == nil || cm.User.Email == "" || !cm.User.EmailValidated {
		return
	}
	pref := cm.User.EmailPref
	if !pref.OnStart && !pref.BeforeDue && !pref.PastDue {
		return
	}

	var reminders []CourseReminder
	for _, inst := range cm.Courses {
		if inst.Completed() {
			continue
		}
		if !inst.CanLaunch && inst.Status != types.StatusPastDueNotStarted {
			continue
		}

		diffStart := daysFrom(inst.StartDate, cm.Today)
		diffDue := daysFrom(inst.DueDate, cm.Today)

		r := CourseReminder{
			Name:      inst.Title,
			StartDate: inst.StartDate.Format(reminderDateLayout),
			DueDate:   inst.DueDate.Format(reminderDateLayout),
		}
		fired := false

		if pref.OnStart && diffStart == 0 && containsOffset(cm.Notifications.RelativeToStartDate, diffStart) {
			d := diffStart
			r.DiffStartDay = &d
			fired = true
		}
		if containsOffset(cm.Notifications.RelativeToDueDate, diffDue) {
			if (diffDue <= 0 && pref.BeforeDue) || (diffDue > 0 && pref.PastDue) {
				d := diffDue
				r.DiffDueDay = &d
				fired = true
			}
		}
		if fired {
			reminders = append(reminders, r)
		}
	}
	if len(reminders) == 0 {
		return
	}

	email, ok := emails[cm.User.Email]
	if !ok {
		email = &Email{
			To:           cm.User.Email,
			Subject:      DefaultSubject,
			MailTemplate: cm.MailTemplate,
			Params: EmailParams{
				Name:     cm.User.Name,
				Lang:     cm.Lang,
				Attempts: map[string]*AttemptReminders{},
			},
		}
		emails[cm.User.Email] = email
	}

	ar, ok := email.Params.Attempts[cm.AttemptID]
	if !ok {
		ar = &AttemptReminders{Title: cm.Title}
		email.Params.Attempts[cm.AttemptID] = ar
	}
	ar.Courses = append(ar.Courses, reminders...)
}

// daysFrom counts the signed whole days from t to today, rounding a partial
// day up. Zero on the day itself, negative before it, positive after.
func daysFrom(t, today time.Time) int {
	return int(math.Ceil(today.Sub(t).Hours() / 24))
}

func containsOffset(offsets []int, d int) bool {
	for _, o := range offsets {
		if o == d {
			return true
		}
	}
	return false
}
