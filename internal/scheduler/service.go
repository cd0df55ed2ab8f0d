// Package scheduler runs the periodic sweep that turns task state into
// scored urgencies, scheduled reminders and optimized notification
// batches.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	notifications "github.com/hearthhq/hearth/internal/notifications/domain"
	reminders "github.com/hearthhq/hearth/internal/reminders/domain"
	tasks "github.com/hearthhq/hearth/internal/tasks/domain"
	"github.com/hearthhq/hearth/internal/urgency"
)

// TaskSource provides task snapshots for sweeps.
type TaskSource interface {
	OpenTasksForUser(ctx context.Context, userID uuid.UUID) ([]tasks.Task, error)
	ActiveUserIDs(ctx context.Context, limit int) ([]uuid.UUID, error)
}

// PreferencesSource provides per-user delivery settings.
type PreferencesSource interface {
	ForUser(ctx context.Context, userID uuid.UUID) (reminders.UserPreferences, error)
}

// EngagementSource provides the history the optimizer scores against.
type EngagementSource interface {
	MetricsForUser(ctx context.Context, userID uuid.UUID) ([]notifications.EngagementMetric, error)
	ActivityForUser(ctx context.Context, userID uuid.UUID) (notifications.UserActivity, error)
}

// RateLimitStore persists per-user send counters between sweeps.
type RateLimitStore interface {
	Load(ctx context.Context, userID uuid.UUID) (notifications.RateLimitState, error)
	Save(ctx context.Context, state notifications.RateLimitState) error
}

// BatchDispatcher hands finished batches to the delivery transport.
type BatchDispatcher interface {
	DispatchBatch(ctx context.Context, batch notifications.Batch) error
}

// Config bounds one sweep.
type Config struct {
	// UserLimit caps how many users one sweep visits.
	UserLimit int

	// FollowUpMinLevel is the urgency level at or above which a stale
	// task earns a follow-up reminder.
	FollowUpMinLevel urgency.Level
}

// DefaultConfig returns sweep settings suitable for production.
func DefaultConfig() Config {
	return Config{
		UserLimit:        500,
		FollowUpMinLevel: urgency.LevelHigh,
	}
}

// Service wires the scoring, reminder and optimization stages over the
// persistence and transport adapters.
type Service struct {
	tasks      TaskSource
	prefs      PreferencesSource
	reminders  reminders.Repository
	engagement EngagementSource
	rateStates RateLimitStore
	dispatcher BatchDispatcher
	scorer     *urgency.Scorer
	optimizer  *notifications.Optimizer
	config     Config
	logger     *slog.Logger
}

func NewService(
	taskSource TaskSource,
	prefsSource PreferencesSource,
	reminderRepo reminders.Repository,
	engagementSource EngagementSource,
	rateStates RateLimitStore,
	dispatcher BatchDispatcher,
	scorer *urgency.Scorer,
	optimizer *notifications.Optimizer,
	cfg Config,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		tasks:      taskSource,
		prefs:      prefsSource,
		reminders:  reminderRepo,
		engagement: engagementSource,
		rateStates: rateStates,
		dispatcher: dispatcher,
		scorer:     scorer,
		optimizer:  optimizer,
		config:     cfg,
		logger:     logger,
	}
}

// SweepResult summarizes one sweep across all visited users.
type SweepResult struct {
	UsersProcessed          int
	UsersFailed             int
	TasksScored             int
	RemindersCreated        int
	RemindersDeferred       int
	RateLimited             int
	BatchesDispatched       int
	NotificationsDispatched int
}

// Sweep visits every active user and runs the full pipeline for each.
// Per-user failures are logged and skipped so one broken user cannot
// stall the rest.
func (s *Service) Sweep(ctx context.Context, now time.Time) (SweepResult, error) {
	var result SweepResult

	userIDs, err := s.tasks.ActiveUserIDs(ctx, s.config.UserLimit)
	if err != nil {
		return result, fmt.Errorf("list active users: %w", err)
	}

	for _, userID := range userIDs {
		userResult, err := s.SweepUser(ctx, userID, now)
		if err != nil {
			result.UsersFailed++
			s.logger.Error("user sweep failed",
				"user_id", userID,
				"error", err,
			)
			continue
		}
		result.UsersProcessed++
		result.TasksScored += userResult.TasksScored
		result.RemindersCreated += userResult.RemindersCreated
		result.RemindersDeferred += userResult.RemindersDeferred
		result.RateLimited += userResult.RateLimited
		result.BatchesDispatched += userResult.BatchesDispatched
		result.NotificationsDispatched += userResult.NotificationsDispatched
	}

	s.logger.Info("sweep finished",
		"users", result.UsersProcessed,
		"failed", result.UsersFailed,
		"tasks_scored", result.TasksScored,
		"reminders_created", result.RemindersCreated,
		"notifications", result.NotificationsDispatched,
		"batches", result.BatchesDispatched,
	)

	return result, nil
}

// UserSweepResult summarizes the pipeline stages for one user.
type UserSweepResult struct {
	TasksScored             int
	RemindersCreated        int
	RemindersDeferred       int
	RateLimited             int
	BatchesDispatched       int
	NotificationsDispatched int
}

// SweepUser runs one user through the full pipeline: score open tasks,
// ensure reminders exist, enforce quiet hours and the daily cap, turn
// due reminders into notifications, optimize them against engagement
// history and the rate limiter, then batch and dispatch.
func (s *Service) SweepUser(ctx context.Context, userID uuid.UUID, now time.Time) (UserSweepResult, error) {
	var result UserSweepResult

	prefs, err := s.prefs.ForUser(ctx, userID)
	if err != nil {
		return result, fmt.Errorf("load preferences: %w", err)
	}

	openTasks, err := s.tasks.OpenTasksForUser(ctx, userID)
	if err != nil {
		return result, fmt.Errorf("load tasks: %w", err)
	}

	store, err := s.reminders.LoadStore(ctx, userID)
	if err != nil {
		return result, fmt.Errorf("load reminders: %w", err)
	}

	scores := s.scorer.ScoreBatch(openTasks, now)
	result.TasksScored = len(scores)

	created, err := s.ensureReminders(ctx, openTasks, scores, prefs, store, now)
	if err != nil {
		return result, err
	}
	result.RemindersCreated = created

	deferred, err := s.enforceDailyCap(ctx, prefs, store, now)
	if err != nil {
		return result, err
	}
	result.RemindersDeferred = deferred

	dispatched, batches, limited, err := s.deliverDue(ctx, userID, prefs, store, now)
	if err != nil {
		return result, err
	}
	result.NotificationsDispatched = dispatched
	result.BatchesDispatched = batches
	result.RateLimited = limited

	metrics := reminders.Aggregate(store.All())
	s.logger.Debug("user sweep complete",
		"user_id", userID,
		"tasks", len(openTasks),
		"reminders_created", created,
		"reminders_deferred", deferred,
		"dispatched", dispatched,
		"rate_limited", limited,
		"delivery_rate", metrics.DeliveryRate(),
	)

	return result, nil
}

// ensureReminders creates the reminders each scored task still needs:
// a deadline reminder for tasks with deadlines, an overdue reminder for
// tasks past them, and a follow-up for stale tasks scored at or above
// the configured level. Existing non-terminal reminders of the same
// type suppress new ones.
func (s *Service) ensureReminders(ctx context.Context, openTasks []tasks.Task,
	scores []urgency.Score, prefs reminders.UserPreferences,
	store *reminders.Store, now time.Time) (int, error) {

	scoreByTask := make(map[uuid.UUID]urgency.Score, len(scores))
	for _, sc := range scores {
		scoreByTask[sc.TaskID] = sc
	}

	created := 0
	for _, t := range openTasks {
		sc := scoreByTask[t.ID]

		if rem, ok := reminders.CreateDeadlineReminder(t, prefs, now); ok {
			n, err := s.addReminder(ctx, store, prefs, rem)
			if err != nil {
				return created, err
			}
			created += n
		}

		if rem, ok := reminders.CreateOverdueReminder(t, prefs, now); ok {
			n, err := s.addReminder(ctx, store, prefs, rem)
			if err != nil {
				return created, err
			}
			created += n
		}

		stale := sc.Factors.Staleness > 0
		if stale && sc.Level.AtLeast(s.config.FollowUpMinLevel) {
			rem := reminders.NewReminder(t, reminders.TypeFollowUp, prefs, now, now)
			n, err := s.addReminder(ctx, store, prefs, rem)
			if err != nil {
				return created, err
			}
			created += n
		}
	}
	return created, nil
}

// addReminder adds one reminder unless an active one of the same type
// already exists for the task, shifting it out of quiet hours first.
// It returns how many reminders were actually added (0 or 1).
func (s *Service) addReminder(ctx context.Context, store *reminders.Store,
	prefs reminders.UserPreferences, rem reminders.Reminder) (int, error) {

	for _, existing := range store.ByTask(rem.TaskID) {
		if existing.Type == rem.Type && !existing.Status.IsTerminal() {
			return 0, nil
		}
	}

	rem.ScheduledAt = reminders.NextSendTime(prefs, rem.ScheduledAt)

	if err := store.Add(rem); err != nil {
		return 0, fmt.Errorf("add reminder: %w", err)
	}
	if err := s.reminders.Save(ctx, rem); err != nil {
		return 0, fmt.Errorf("save reminder: %w", err)
	}
	return 1, nil
}

// enforceDailyCap defers today's excess scheduled reminders to the next
// day, keeping the highest-priority ones.
func (s *Service) enforceDailyCap(ctx context.Context, prefs reminders.UserPreferences,
	store *reminders.Store, now time.Time) (int, error) {

	endOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)

	var today []reminders.Reminder
	for _, rem := range store.Scheduled() {
		if rem.ScheduledAt.Before(endOfDay) {
			today = append(today, rem)
		}
	}

	_, deferred := reminders.ApplyDailyLimit(today, prefs.MaxPerDay)
	for i, rem := range deferred {
		rem.ScheduledAt = reminders.NextSendTime(prefs, endOfDay)
		if err := store.Update(rem); err != nil {
			return i, fmt.Errorf("defer reminder: %w", err)
		}
		if err := s.reminders.Save(ctx, rem); err != nil {
			return i, fmt.Errorf("save deferred reminder: %w", err)
		}
	}
	return len(deferred), nil
}

// deliverDue turns due reminders into notifications, optimizes them,
// and dispatches the resulting batches. Rate-limited notifications push
// their reminder to the next allowed time instead of going out.
func (s *Service) deliverDue(ctx context.Context, userID uuid.UUID,
	prefs reminders.UserPreferences, store *reminders.Store,
	now time.Time) (dispatched, batchCount, limited int, err error) {

	due := store.Due(now)
	if len(due) == 0 {
		return 0, 0, 0, nil
	}

	activity, err := s.engagement.ActivityForUser(ctx, userID)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("load activity: %w", err)
	}
	metrics, err := s.engagement.MetricsForUser(ctx, userID)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("load engagement metrics: %w", err)
	}
	state, err := s.rateStates.Load(ctx, userID)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("load rate-limit state: %w", err)
	}

	pending := make([]notifications.Notification, 0, len(due))
	remByNotification := make(map[uuid.UUID]reminders.Reminder, len(due))
	for _, rem := range due {
		n := notifications.NewNotification(
			userID,
			"reminder."+string(rem.Type),
			rem.Priority,
			rem.Channels,
			notifications.Content{
				Title:    rem.Content.Title,
				Body:     rem.Content.Body,
				Metadata: map[string]string{"reminder_id": rem.ID.String(), "task_id": rem.TaskID.String()},
			},
			rem.ScheduledAt,
		)
		pending = append(pending, n)
		remByNotification[n.ID] = rem
	}

	results, state := s.optimizer.OptimizeBatch(pending, activity, metrics, state, now)

	var ready []notifications.Notification
	for _, res := range results {
		rem := remByNotification[res.Notification.ID]

		if res.RateLimited || res.Notification.ScheduledAt.After(now) {
			if res.RateLimited {
				limited++
			}
			rem.ScheduledAt = res.Notification.ScheduledAt
			if err := store.Update(rem); err != nil {
				return dispatched, batchCount, limited, fmt.Errorf("reschedule reminder: %w", err)
			}
			if err := s.reminders.Save(ctx, rem); err != nil {
				return dispatched, batchCount, limited, fmt.Errorf("save rescheduled reminder: %w", err)
			}
			continue
		}
		ready = append(ready, res.Notification)
	}

	batches := notifications.CreateBatches(ready,
		s.optimizer.Config().BatchWindow, s.optimizer.Config().MaxBatchSize)

	for _, batch := range batches {
		if err := s.dispatcher.DispatchBatch(ctx, batch); err != nil {
			return dispatched, batchCount, limited, fmt.Errorf("dispatch batch: %w", err)
		}
		batchCount++

		for _, n := range batch.Notifications {
			rem := remByNotification[n.ID]
			sent, err := rem.MarkSent(now)
			if err != nil {
				return dispatched, batchCount, limited, fmt.Errorf("mark reminder sent: %w", err)
			}
			if err := store.Update(sent); err != nil {
				return dispatched, batchCount, limited, fmt.Errorf("update sent reminder: %w", err)
			}
			if err := s.reminders.Save(ctx, sent); err != nil {
				return dispatched, batchCount, limited, fmt.Errorf("save sent reminder: %w", err)
			}
			dispatched++
		}
	}

	if err := s.rateStates.Save(ctx, state); err != nil {
		return dispatched, batchCount, limited, fmt.Errorf("save rate-limit state: %w", err)
	}

	return dispatched, batchCount, limited, nil
}
