package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	domain "github.com/hearthhq/hearth/internal/reminders/domain"
	sharedDomain "github.com/hearthhq/hearth/internal/shared/domain"
	tasks "github.com/hearthhq/hearth/internal/tasks/domain"
)

// SQLiteReminderRepository implements domain.Repository on SQLite for
// single-household deployments without a PostgreSQL server.
type SQLiteReminderRepository struct {
	db *sql.DB
}

// NewSQLiteReminderRepository creates a new SQLite reminder repository.
func NewSQLiteReminderRepository(db *sql.DB) *SQLiteReminderRepository {
	return &SQLiteReminderRepository{db: db}
}

// OpenSQLite opens (and creates if needed) the reminder database at path.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the reminders table when missing.
func (r *SQLiteReminderRepository) EnsureSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS reminders (
			id TEXT PRIMARY KEY,
			task_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			type TEXT NOT NULL,
			priority TEXT NOT NULL,
			title TEXT NOT NULL,
			body TEXT NOT NULL,
			scheduled_at TEXT NOT NULL,
			status TEXT NOT NULL,
			channels TEXT NOT NULL,
			snooze_count INTEGER NOT NULL DEFAULT 0,
			snoozed_until TEXT,
			sent_at TEXT,
			delivered_at TEXT,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_reminders_user ON reminders(user_id);
		CREATE INDEX IF NOT EXISTS idx_reminders_task ON reminders(task_id);
		CREATE INDEX IF NOT EXISTS idx_reminders_scheduled ON reminders(scheduled_at);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure reminder schema: %w", err)
	}
	return nil
}

// Save upserts a reminder.
func (r *SQLiteReminderRepository) Save(ctx context.Context, rem domain.Reminder) error {
	query := `
		INSERT INTO reminders (
			id, task_id, user_id, type, priority, title, body,
			scheduled_at, status, channels, snooze_count, snoozed_until,
			sent_at, delivered_at, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			scheduled_at = excluded.scheduled_at,
			status = excluded.status,
			channels = excluded.channels,
			snooze_count = excluded.snooze_count,
			snoozed_until = excluded.snoozed_until,
			sent_at = excluded.sent_at,
			delivered_at = excluded.delivered_at
	`

	_, err := r.db.ExecContext(ctx, query,
		rem.ID.String(),
		rem.TaskID.String(),
		rem.UserID.String(),
		string(rem.Type),
		rem.Priority.String(),
		rem.Content.Title,
		rem.Content.Body,
		rem.ScheduledAt.Format(time.RFC3339Nano),
		string(rem.Status),
		strings.Join(channelStrings(rem.Channels), ","),
		rem.SnoozeCount,
		nullTime(rem.SnoozedUntil),
		nullTime(rem.SentAt),
		nullTime(rem.DeliveredAt),
		rem.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save reminder: %w", err)
	}
	return nil
}

// FindByID returns a reminder by id.
func (r *SQLiteReminderRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE id = ?`

	rem, err := scanSQLiteReminder(r.db.QueryRowContext(ctx, query, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Reminder{}, ErrReminderNotFound
	}
	return rem, err
}

// FindByUser returns all reminders for a user.
func (r *SQLiteReminderRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]domain.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE user_id = ? ORDER BY scheduled_at`
	return r.query(ctx, query, userID.String())
}

// FindByTask returns all reminders for a task.
func (r *SQLiteReminderRepository) FindByTask(ctx context.Context, taskID uuid.UUID) ([]domain.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE task_id = ? ORDER BY scheduled_at`
	return r.query(ctx, query, taskID.String())
}

// LoadStore rebuilds the in-memory store for a user.
func (r *SQLiteReminderRepository) LoadStore(ctx context.Context, userID uuid.UUID) (*domain.Store, error) {
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

func (r *SQLiteReminderRepository) query(ctx context.Context, query string, arg any) ([]domain.Reminder, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query reminders: %w", err)
	}
	defer rows.Close()

	var reminders []domain.Reminder
	for rows.Next() {
		rem, err := scanSQLiteReminder(rows)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteReminder(row rowScanner) (domain.Reminder, error) {
	var (
		rem          domain.Reminder
		id           string
		taskID       string
		userID       string
		typ          string
		priority     string
		status       string
		channels     string
		scheduledAt  string
		createdAt    string
		snoozedUntil sql.NullString
		sentAt       sql.NullString
		deliveredAt  sql.NullString
	)
	err := row.Scan(
		&id, &taskID, &userID, &typ, &priority,
		&rem.Content.Title, &rem.Content.Body,
		&scheduledAt, &status, &channels, &rem.SnoozeCount,
		&snoozedUntil, &sentAt, &deliveredAt, &createdAt,
	)
	if err != nil {
		return domain.Reminder{}, err
	}

	if rem.ID, err = uuid.Parse(id); err != nil {
		return domain.Reminder{}, fmt.Errorf("reminder id: %w", err)
	}
	if rem.TaskID, err = uuid.Parse(taskID); err != nil {
		return domain.Reminder{}, fmt.Errorf("reminder task id: %w", err)
	}
	if rem.UserID, err = uuid.Parse(userID); err != nil {
		return domain.Reminder{}, fmt.Errorf("reminder user id: %w", err)
	}
	rem.Type = domain.Type(typ)
	rem.Status = domain.DeliveryStatus(status)
	if rem.Priority, err = tasks.ParsePriority(priority); err != nil {
		return domain.Reminder{}, fmt.Errorf("reminder %s: %w", rem.ID, err)
	}
	if rem.ScheduledAt, err = time.Parse(time.RFC3339Nano, scheduledAt); err != nil {
		return domain.Reminder{}, fmt.Errorf("reminder scheduled time: %w", err)
	}
	if rem.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return domain.Reminder{}, fmt.Errorf("reminder created time: %w", err)
	}
	if rem.SnoozedUntil, err = parseNullTime(snoozedUntil); err != nil {
		return domain.Reminder{}, err
	}
	if rem.SentAt, err = parseNullTime(sentAt); err != nil {
		return domain.Reminder{}, err
	}
	if rem.DeliveredAt, err = parseNullTime(deliveredAt); err != nil {
		return domain.Reminder{}, err
	}
	for _, c := range strings.Split(channels, ",") {
		if c == "" {
			continue
		}
		rem.Channels = append(rem.Channels, sharedDomain.ParseChannel(c))
	}
	return rem, nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339Nano), Valid: true}
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil, fmt.Errorf("parse stored time: %w", err)
	}
	return &t, nil
}
