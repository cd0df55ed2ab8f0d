// Package domain implements the reminder lifecycle: creation from task
// snapshots, quiet-hours adjustment, snoozing, daily caps and metrics.
// Reminders are immutable values; every transition returns a new copy.
package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/hearthhq/hearth/internal/shared/domain"
	tasks "github.com/hearthhq/hearth/internal/tasks/domain"
)

var (
	ErrInvalidTransition = errors.New("invalid reminder status transition")
	ErrNotSnoozed        = errors.New("reminder is not snoozed")
)

// Type classifies why a reminder exists.
type Type string

const (
	TypeDeadline Type = "deadline"
	TypeOverdue  Type = "overdue"
	TypeFollowUp Type = "follow_up"
	TypeCheckIn  Type = "check_in"
)

// DeliveryStatus is the reminder's position in its delivery lifecycle.
type DeliveryStatus string

const (
	StatusScheduled DeliveryStatus = "scheduled"
	StatusSent      DeliveryStatus = "sent"
	StatusDelivered DeliveryStatus = "delivered"
	StatusFailed    DeliveryStatus = "failed"
	StatusCancelled DeliveryStatus = "cancelled"
	StatusSnoozed   DeliveryStatus = "snoozed"
)

// IsTerminal returns true for statuses a reminder can never leave.
func (s DeliveryStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusFailed || s == StatusCancelled
}

// Reminder is a single scheduled nudge about a task.
type Reminder struct {
	ID           uuid.UUID
	TaskID       uuid.UUID
	UserID       uuid.UUID
	Type         Type
	Priority     tasks.Priority
	Content      Content
	ScheduledAt  time.Time
	Status       DeliveryStatus
	Channels     []sharedDomain.Channel
	SnoozeCount  int
	SnoozedUntil *time.Time
	SentAt       *time.Time
	DeliveredAt  *time.Time
	CreatedAt    time.Time
}

// IsDue reports whether the reminder should be delivered at the given time.
func (r Reminder) IsDue(now time.Time) bool {
	return r.Status == StatusScheduled && !r.ScheduledAt.After(now)
}

// MarkSent transitions a scheduled reminder to sent.
func (r Reminder) MarkSent(now time.Time) (Reminder, error) {
	if r.Status != StatusScheduled {
		return r, ErrInvalidTransition
	}
	r.Status = StatusSent
	r.SentAt = &now
	return r, nil
}

// MarkDelivered transitions a sent reminder to delivered.
func (r Reminder) MarkDelivered(now time.Time) (Reminder, error) {
	if r.Status != StatusSent {
		return r, ErrInvalidTransition
	}
	r.Status = StatusDelivered
	r.DeliveredAt = &now
	return r, nil
}

// MarkFailed records a delivery failure for a scheduled or sent reminder.
func (r Reminder) MarkFailed() (Reminder, error) {
	if r.Status != StatusScheduled && r.Status != StatusSent {
		return r, ErrInvalidTransition
	}
	r.Status = StatusFailed
	return r, nil
}

// Cancel transitions any non-terminal reminder to cancelled.
func (r Reminder) Cancel() (Reminder, error) {
	if r.Status.IsTerminal() {
		return r, ErrInvalidTransition
	}
	r.Status = StatusCancelled
	return r, nil
}

// Snooze puts a scheduled reminder to sleep until the given time and
// increments the snooze counter.
func (r Reminder) Snooze(until time.Time) (Reminder, error) {
	if r.Status != StatusScheduled {
		return r, ErrInvalidTransition
	}
	r.Status = StatusSnoozed
	r.SnoozedUntil = &until
	r.SnoozeCount++
	return r, nil
}

// Unsnooze returns a snoozed reminder to the schedule and clears its
// snooze timestamp. The snooze counter keeps its value.
func (r Reminder) Unsnooze() (Reminder, error) {
	if r.Status != StatusSnoozed {
		return r, ErrNotSnoozed
	}
	r.Status = StatusScheduled
	r.SnoozedUntil = nil
	return r, nil
}
