// Package persistence stores reminder values between scheduling sweeps.
package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/hearthhq/hearth/internal/reminders/domain"
	sharedDomain "github.com/hearthhq/hearth/internal/shared/domain"
	tasks "github.com/hearthhq/hearth/internal/tasks/domain"
)

// ErrReminderNotFound is returned when a reminder id has no row.
var ErrReminderNotFound = errors.New("reminder not found")

// PostgresReminderRepository implements domain.Repository on PostgreSQL.
type PostgresReminderRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresReminderRepository creates a new repository.
func NewPostgresReminderRepository(pool *pgxpool.Pool) *PostgresReminderRepository {
	return &PostgresReminderRepository{pool: pool}
}

const reminderColumns = `
	id, task_id, user_id, type, priority, title, body,
	scheduled_at, status, channels, snooze_count, snoozed_until,
	sent_at, delivered_at, created_at
`

// Save upserts a reminder.
func (r *PostgresReminderRepository) Save(ctx context.Context, rem domain.Reminder) error {
	query := `
		INSERT INTO reminders (
			id, task_id, user_id, type, priority, title, body,
			scheduled_at, status, channels, snooze_count, snoozed_until,
			sent_at, delivered_at, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			scheduled_at = EXCLUDED.scheduled_at,
			status = EXCLUDED.status,
			channels = EXCLUDED.channels,
			snooze_count = EXCLUDED.snooze_count,
			snoozed_until = EXCLUDED.snoozed_until,
			sent_at = EXCLUDED.sent_at,
			delivered_at = EXCLUDED.delivered_at
	`

	_, err := r.pool.Exec(ctx, query,
		rem.ID,
		rem.TaskID,
		rem.UserID,
		string(rem.Type),
		rem.Priority.String(),
		rem.Content.Title,
		rem.Content.Body,
		rem.ScheduledAt,
		string(rem.Status),
		channelStrings(rem.Channels),
		rem.SnoozeCount,
		rem.SnoozedUntil,
		rem.SentAt,
		rem.DeliveredAt,
		rem.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save reminder: %w", err)
	}
	return nil
}

// FindByID returns a reminder by id.
func (r *PostgresReminderRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE id = $1`

	rem, err := scanReminder(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Reminder{}, ErrReminderNotFound
	}
	return rem, err
}

// FindByUser returns all reminders for a user.
func (r *PostgresReminderRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]domain.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE user_id = $1 ORDER BY scheduled_at`
	return r.query(ctx, query, userID)
}

// FindByTask returns all reminders for a task.
func (r *PostgresReminderRepository) FindByTask(ctx context.Context, taskID uuid.UUID) ([]domain.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE task_id = $1 ORDER BY scheduled_at`
	return r.query(ctx, query, taskID)
}

// LoadStore rebuilds the in-memory store for a user.
func (r *PostgresReminderRepository) LoadStore(ctx context.Context, userID uuid.UUID) (*domain.Store, error) {
	reminders, err := r.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	store := domain.NewStore()
	for _, rem := range reminders {
		if err := store.Add(rem); err != nil {
			return nil, fmt.Errorf("rebuild store: %w", err)
		}
	}
	return store, nil
}

func (r *PostgresReminderRepository) query(ctx context.Context, query string, arg any) ([]domain.Reminder, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query reminders: %w", err)
	}
	defer rows.Close()

	var reminders []domain.Reminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, rem)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return reminders, nil
}

func scanReminder(row pgx.Row) (domain.Reminder, error) {
	var (
		rem      domain.Reminder
		typ      string
		priority string
		status   string
		channels []string
	)
	err := row.Scan(
		&rem.ID,
		&rem.TaskID,
		&rem.UserID,
		&typ,
		&priority,
		&rem.Content.Title,
		&rem.Content.Body,
		&rem.ScheduledAt,
		&status,
		&channels,
		&rem.SnoozeCount,
		&rem.SnoozedUntil,
		&rem.SentAt,
		&rem.DeliveredAt,
		&rem.CreatedAt,
	)
	if err != nil {
		return domain.Reminder{}, err
	}

	rem.Type = domain.Type(typ)
	rem.Status = domain.DeliveryStatus(status)
	if rem.Priority, err = tasks.ParsePriority(priority); err != nil {
		return domain.Reminder{}, fmt.Errorf("reminder %s: %w", rem.ID, err)
	}
	for _, c := range channels {
		rem.Channels = append(rem.Channels, sharedDomain.ParseChannel(c))
	}
	return rem, nil
}

func channelStrings(channels []sharedDomain.Channel) []string {
	out := make([]string, 0, len(channels))
	for _, c := range channels {
		out = append(out, string(c))
	}
	return out
}
