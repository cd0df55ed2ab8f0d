package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/hearthhq/hearth/internal/shared/domain"
	tasks "github.com/hearthhq/hearth/internal/tasks/domain"
)

// DerivePriority computes the reminder priority for a task. Deadline
// pressure only ever upgrades the nominal priority, never downgrades it:
// overdue tasks and tasks due within 24 hours are promoted to at least
// high, and urgent tasks stay urgent.
func DerivePriority(t tasks.Task, now time.Time) tasks.Priority {
	p := t.Priority
	if t.Deadline != nil {
		untilDeadline := t.Deadline.Sub(now)
		if untilDeadline < 0 || untilDeadline <= 24*time.Hour {
			p = tasks.MaxPriority(p, tasks.PriorityHigh)
		}
	}
	return p
}

// NewReminder builds a reminder of the given type scheduled at the given
// time, with content localized per the user's preferences.
func NewReminder(t tasks.Task, typ Type, prefs UserPreferences, at, now time.Time) Reminder {
	return Reminder{
		ID:          uuid.New(),
		TaskID:      t.ID,
		UserID:      prefs.UserID,
		Type:        typ,
		Priority:    DerivePriority(t, now),
		Content:     GenerateContent(t, typ, prefs.Language),
		ScheduledAt: at,
		Status:      StatusScheduled,
		Channels:    append([]sharedDomain.Channel(nil), prefs.Channels...),
		CreatedAt:   now,
	}
}

// CreateDeadlineReminder schedules a reminder ahead of the task's deadline
// by the user's configured lead time, never in the past. It returns false
// for tasks that are finished, cancelled or have no deadline; callers must
// treat that as a normal outcome, not a failure.
func CreateDeadlineReminder(t tasks.Task, prefs UserPreferences, now time.Time) (Reminder, bool) {
	if t.Status.IsTerminal() || t.Deadline == nil {
		return Reminder{}, false
	}

	at := t.Deadline.Add(-prefs.LeadTime(TypeDeadline))
	if at.Before(now) {
		at = now
	}
	return NewReminder(t, TypeDeadline, prefs, at, now), true
}

// CreateOverdueReminder schedules an immediate reminder for a task whose
// deadline has passed. It returns false when the task is not overdue or is
// already finished or cancelled.
func CreateOverdueReminder(t tasks.Task, prefs UserPreferences, now time.Time) (Reminder, bool) {
	if t.Status.IsTerminal() || !t.IsOverdue(now) {
		return Reminder{}, false
	}
	return NewReminder(t, TypeOverdue, prefs, now, now), true
}

// IsQuietTime reports whether the given time falls inside the user's quiet
// hours. A start hour greater than the end hour means the window wraps
// midnight, running from the start through the end of the following day.
func IsQuietTime(prefs UserPreferences, t time.Time) bool {
	if !prefs.QuietHoursEnabled {
		return false
	}
	hour := t.Hour()
	if prefs.QuietStartHour <= prefs.QuietEndHour {
		return hour >= prefs.QuietStartHour && hour < prefs.QuietEndHour
	}
	return hour >= prefs.QuietStartHour || hour < prefs.QuietEndHour
}

// NextSendTime defers a proposed send time out of the user's quiet hours.
// Quiet times move to the end of the quiet window, on the same day when
// the window ends later that day and on the next day when it wraps past
// midnight. Times outside quiet hours come back unchanged.
func NextSendTime(prefs UserPreferences, proposed time.Time) time.Time {
	if !IsQuietTime(prefs, proposed) {
		return proposed
	}

	end := time.Date(proposed.Year(), proposed.Month(), proposed.Day(),
		prefs.QuietEndHour, 0, 0, 0, proposed.Location())
	if !end.After(proposed) {
		end = end.AddDate(0, 0, 1)
	}
	return end
}

// ApplyDailyLimit partitions reminders into the ones allowed to go out
// today and the ones deferred. Admission favors higher reminder priority,
// breaking ties by earliest scheduled time, and admits at most limit
// reminders.
func ApplyDailyLimit(reminders []Reminder, limit int) (allowed, deferred []Reminder) {
	if limit <= 0 {
		return nil, append([]Reminder(nil), reminders...)
	}

	ordered := make([]Reminder, len(reminders))
	copy(ordered, reminders)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority.Rank() > ordered[j].Priority.Rank()
		}
		return ordered[i].ScheduledAt.Before(ordered[j].ScheduledAt)
	})

	if limit >= len(ordered) {
		return ordered, nil
	}
	return ordered[:limit], ordered[limit:]
}
