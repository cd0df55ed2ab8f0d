package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/hearthhq/hearth/internal/reminders/domain"
	sharedDomain "github.com/hearthhq/hearth/internal/shared/domain"
)

// PostgresPreferencesRepository reads per-user delivery settings. Users
// without a row get the default preferences.
type PostgresPreferencesRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresPreferencesRepository(pool *pgxpool.Pool) *PostgresPreferencesRepository {
	return &PostgresPreferencesRepository{pool: pool}
}

// ForUser returns the user's preferences, falling back to defaults when
// none are stored.
func (r *PostgresPreferencesRepository) ForUser(ctx context.Context, userID uuid.UUID) (domain.UserPreferences, error) {
	prefs := domain.DefaultPreferences(userID)

	var (
		channels         []string
		leadDeadlineMins *int
		leadOverdueMins  *int
		leadFollowUpMins *int
		leadCheckInMins  *int
	)
	err := r.pool.QueryRow(ctx, `
		SELECT channels, quiet_hours_enabled, quiet_start_hour, quiet_end_hour,
		       timezone, language, max_per_day,
		       lead_deadline_minutes, lead_overdue_minutes,
		       lead_follow_up_minutes, lead_check_in_minutes
		FROM notification_preferences
		WHERE user_id = $1`,
		userID,
	).Scan(
		&channels, &prefs.QuietHoursEnabled, &prefs.QuietStartHour, &prefs.QuietEndHour,
		&prefs.Timezone, &prefs.Language, &prefs.MaxPerDay,
		&leadDeadlineMins, &leadOverdueMins, &leadFollowUpMins, &leadCheckInMins,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return prefs, nil
		}
		return prefs, fmt.Errorf("query preferences: %w", err)
	}

	if len(channels) > 0 {
		prefs.Channels = prefs.Channels[:0]
		for _, c := range channels {
			parsed := sharedDomain.ParseChannel(c)
			if parsed.IsValid() {
				prefs.Channels = append(prefs.Channels, parsed)
			}
		}
	}

	setLead := func(t domain.Type, minutes *int) {
		if minutes != nil {
			prefs.LeadTimes[t] = time.Duration(*minutes) * time.Minute
		}
	}
	setLead(domain.TypeDeadline, leadDeadlineMins)
	setLead(domain.TypeOverdue, leadOverdueMins)
	setLead(domain.TypeFollowUp, leadFollowUpMins)
	setLead(domain.TypeCheckIn, leadCheckInMins)

	return prefs, nil
}
