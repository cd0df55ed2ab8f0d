package domain

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists reminder values between scheduling sweeps.
type Repository interface {
	// Save upserts a reminder.
	Save(ctx context.Context, r Reminder) error
	// FindByID returns a reminder by id.
	FindByID(ctx context.Context, id uuid.UUID) (Reminder, error)
	// FindByUser returns all reminders for a user.
	FindByUser(ctx context.Context, userID uuid.UUID) ([]Reminder, error)
	// FindByTask returns all reminders for a task.
	FindByTask(ctx context.Context, taskID uuid.UUID) ([]Reminder, error)
	// LoadStore rebuilds the in-memory store for a user.
	LoadStore(ctx context.Context, userID uuid.UUID) (*Store, error)
}
