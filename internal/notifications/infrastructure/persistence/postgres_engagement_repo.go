// Package persistence reads user engagement history from PostgreSQL.
// The rows are written by the analytics pipeline; this side only reads.
package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hearthhq/hearth/internal/notifications/domain"
	sharedDomain "github.com/hearthhq/hearth/internal/shared/domain"
)

// PostgresEngagementRepository loads engagement metrics and activity
// profiles for the optimizer.
type PostgresEngagementRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresEngagementRepository(pool *pgxpool.Pool) *PostgresEngagementRepository {
	return &PostgresEngagementRepository{pool: pool}
}

// MetricsForUser returns all recorded engagement observations for a
// user. An empty slice means the optimizer falls back to neutral scores.
func (r *PostgresEngagementRepository) MetricsForUser(ctx context.Context, userID uuid.UUID) ([]domain.EngagementMetric, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT hour_of_day, day_of_week, channel, open_rate, response_rate, sample_size
		FROM engagement_metrics
		WHERE user_id = $1
		ORDER BY day_of_week, hour_of_day`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query engagement metrics: %w", err)
	}
	defer rows.Close()

	var metrics []domain.EngagementMetric
	for rows.Next() {
		var (
			m       domain.EngagementMetric
			weekday int
			channel string
		)
		if err := rows.Scan(&m.Hour, &weekday, &channel, &m.OpenRate, &m.ResponseRate, &m.SampleSize); err != nil {
			return nil, fmt.Errorf("scan engagement metric: %w", err)
		}
		m.Weekday = time.Weekday(weekday)
		m.Channel = sharedDomain.Channel(channel)
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate engagement metrics: %w", err)
	}

	return metrics, nil
}

// ActivityForUser returns a user's activity profile, or the default
// profile when none has been recorded yet.
func (r *PostgresEngagementRepository) ActivityForUser(ctx context.Context, userID uuid.UUID) (domain.UserActivity, error) {
	activity := domain.UserActivity{UserID: userID}

	var (
		activeHours []int
		activeDays  []int
		channels    []string
		devices     []string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT active_hours, active_days, avg_session_minutes, preferred_channels, device_types
		FROM user_activity
		WHERE user_id = $1`,
		userID,
	).Scan(&activeHours, &activeDays, &activity.AverageSessionMinutes, &channels, &devices)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.DefaultUserActivity(userID), nil
		}
		return activity, fmt.Errorf("query user activity: %w", err)
	}

	activity.ActiveHours = activeHours
	for _, d := range activeDays {
		activity.ActiveDays = append(activity.ActiveDays, time.Weekday(d))
	}
	for _, c := range channels {
		parsed := sharedDomain.ParseChannel(c)
		if !parsed.IsValid() {
			continue
		}
		activity.PreferredChannels = append(activity.PreferredChannels, parsed)
	}
	activity.DeviceTypes = devices

	return activity, nil
}
