// Package persistence reads task snapshots from the task-management
// database. The scheduling engine never writes tasks.
package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hearthhq/hearth/internal/tasks/domain"
)

const taskColumns = `
	t.id, t.title, t.priority, t.deadline, t.estimated_minutes,
	t.assignee_id, t.created_at, t.status,
	t.dependency_count, t.blocked_task_count,
	t.last_activity_at, t.completion_rate`

// PostgresTaskRepository loads task snapshots for scoring sweeps.
type PostgresTaskRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresTaskRepository(pool *pgxpool.Pool) *PostgresTaskRepository {
	return &PostgresTaskRepository{pool: pool}
}

// OpenTasksForUser returns the user's non-terminal tasks.
func (r *PostgresTaskRepository) OpenTasksForUser(ctx context.Context, userID uuid.UUID) ([]domain.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks t
		WHERE t.assignee_id = $1
		  AND t.status IN ('pending', 'in_progress')
		ORDER BY t.deadline NULLS LAST, t.created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query open tasks: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

// ActiveUserIDs returns the ids of users with at least one open task,
// capped at limit. Sweeps page through users with this.
func (r *PostgresTaskRepository) ActiveUserIDs(ctx context.Context, limit int) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT assignee_id
		FROM tasks
		WHERE assignee_id IS NOT NULL
		  AND status IN ('pending', 'in_progress')
		ORDER BY assignee_id
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query active users: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate active users: %w", err)
	}
	return ids, nil
}

func scanTasks(rows pgx.Rows) ([]domain.Task, error) {
	var tasks []domain.Task
	for rows.Next() {
		var (
			t                domain.Task
			priority         string
			status           string
			estimatedMinutes *int
		)
		err := rows.Scan(
			&t.ID, &t.Title, &priority, &t.Deadline, &estimatedMinutes,
			&t.AssigneeID, &t.CreatedAt, &status,
			&t.DependencyCount, &t.BlockedTaskCount,
			&t.LastActivityAt, &t.CompletionRate,
		)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}

		parsed, err := domain.ParsePriority(priority)
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", t.ID, err)
		}
		t.Priority = parsed
		t.Status = domain.Status(status)
		if !t.Status.IsValid() {
			return nil, fmt.Errorf("task %s: unknown status %q", t.ID, status)
		}
		if estimatedMinutes != nil {
			d := time.Duration(*estimatedMinutes) * time.Minute
			t.EstimatedDuration = &d
		}

		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}
