// Package domain holds the task snapshot types the scheduling engine reads.
// Tasks are owned and mutated by the surrounding task-management system;
// this engine only ever sees immutable snapshots of them.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the task lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// IsValid returns true if the status is a known lifecycle state.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true for states that no longer need reminders.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Task is a read-only snapshot of a household task.
type Task struct {
	ID                uuid.UUID
	Title             string
	Priority          Priority
	Deadline          *time.Time
	EstimatedDuration *time.Duration
	AssigneeID        *uuid.UUID
	CreatedAt         time.Time
	Status            Status
	DependencyCount   int
	BlockedTaskCount  int
	LastActivityAt    *time.Time
	// CompletionRate is the historical completion rate in [0,1] for
	// recurring tasks; nil for one-off tasks.
	CompletionRate *float64
}

// IsRecurring reports whether the task carries recurring-completion history.
func (t Task) IsRecurring() bool {
	return t.CompletionRate != nil
}

// IsOverdue reports whether the task's deadline has passed at the given time.
func (t Task) IsOverdue(now time.Time) bool {
	return t.Deadline != nil && t.Deadline.Before(now)
}

// Age returns how long the task has existed at the given time.
func (t Task) Age(now time.Time) time.Duration {
	return now.Sub(t.CreatedAt)
}
