package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	notifications "github.com/hearthhq/hearth/internal/notifications/domain"
	reminders "github.com/hearthhq/hearth/internal/reminders/domain"
	tasks "github.com/hearthhq/hearth/internal/tasks/domain"
	"github.com/hearthhq/hearth/internal/urgency"
)

// Tuesday noon, inside the default delivery window and outside quiet hours.
var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeTaskSource struct {
	tasksByUser map[uuid.UUID][]tasks.Task
}

func (f *fakeTaskSource) OpenTasksForUser(_ context.Context, userID uuid.UUID) ([]tasks.Task, error) {
	return f.tasksByUser[userID], nil
}

func (f *fakeTaskSource) ActiveUserIDs(_ context.Context, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id := range f.tasksByUser {
		if len(ids) >= limit {
			break
		}
		ids = append(ids, id)
	}
	return ids, nil
}

type fakePrefsSource struct {
	prefs map[uuid.UUID]reminders.UserPreferences
}

func (f *fakePrefsSource) ForUser(_ context.Context, userID uuid.UUID) (reminders.UserPreferences, error) {
	if p, ok := f.prefs[userID]; ok {
		return p, nil
	}
	return reminders.DefaultPreferences(userID), nil
}

type memoryReminderRepo struct {
	saved map[uuid.UUID]reminders.Reminder
}

func newMemoryReminderRepo() *memoryReminderRepo {
	return &memoryReminderRepo{saved: make(map[uuid.UUID]reminders.Reminder)}
}

func (r *memoryReminderRepo) Save(_ context.Context, rem reminders.Reminder) error {
	r.saved[rem.ID] = rem
	return nil
}

func (r *memoryReminderRepo) FindByID(_ context.Context, id uuid.UUID) (reminders.Reminder, error) {
	rem, ok := r.saved[id]
	if !ok {
		return reminders.Reminder{}, errors.New("not found")
	}
	return rem, nil
}

func (r *memoryReminderRepo) FindByUser(_ context.Context, userID uuid.UUID) ([]reminders.Reminder, error) {
	var out []reminders.Reminder
	for _, rem := range r.saved {
		if rem.UserID == userID {
			out = append(out, rem)
		}
	}
	return out, nil
}

func (r *memoryReminderRepo) FindByTask(_ context.Context, taskID uuid.UUID) ([]reminders.Reminder, error) {
	var out []reminders.Reminder
	for _, rem := range r.saved {
		if rem.TaskID == taskID {
			out = append(out, rem)
		}
	}
	return out, nil
}

func (r *memoryReminderRepo) LoadStore(ctx context.Context, userID uuid.UUID) (*reminders.Store, error) {
	store := reminders.NewStore()
	rems, _ := r.FindByUser(ctx, userID)
	for _, rem := range rems {
		if err := store.Add(rem); err != nil {
			return nil, err
		}
	}
	return store, nil
}

type fakeEngagementSource struct {
	activity notifications.UserActivity
	metrics  []notifications.EngagementMetric
}

func (f *fakeEngagementSource) MetricsForUser(_ context.Context, _ uuid.UUID) ([]notifications.EngagementMetric, error) {
	return f.metrics, nil
}

func (f *fakeEngagementSource) ActivityForUser(_ context.Context, userID uuid.UUID) (notifications.UserActivity, error) {
	if f.activity.UserID == userID {
		return f.activity, nil
	}
	return notifications.DefaultUserActivity(userID), nil
}

type memoryRateStore struct {
	states map[uuid.UUID]notifications.RateLimitState
}

func newMemoryRateStore() *memoryRateStore {
	return &memoryRateStore{states: make(map[uuid.UUID]notifications.RateLimitState)}
}

func (s *memoryRateStore) Load(_ context.Context, userID uuid.UUID) (notifications.RateLimitState, error) {
	if st, ok := s.states[userID]; ok {
		return st, nil
	}
	return notifications.NewRateLimitState(userID), nil
}

func (s *memoryRateStore) Save(_ context.Context, state notifications.RateLimitState) error {
	s.states[state.UserID] = state
	return nil
}

type fakeDispatcher struct {
	batches []notifications.Batch
	err     error
}

func (f *fakeDispatcher) DispatchBatch(_ context.Context, batch notifications.Batch) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, batch)
	return nil
}

type fixture struct {
	service    *Service
	tasks      *fakeTaskSource
	repo       *memoryReminderRepo
	rateStates *memoryRateStore
	dispatcher *fakeDispatcher
}

func newFixture() *fixture {
	taskSource := &fakeTaskSource{tasksByUser: make(map[uuid.UUID][]tasks.Task)}
	repo := newMemoryReminderRepo()
	rateStates := newMemoryRateStore()
	dispatcher := &fakeDispatcher{}

	service := NewService(
		taskSource,
		&fakePrefsSource{prefs: make(map[uuid.UUID]reminders.UserPreferences)},
		repo,
		&fakeEngagementSource{},
		rateStates,
		dispatcher,
		urgency.NewScorer(urgency.DefaultConfig()),
		notifications.NewOptimizer(notifications.DefaultOptimizerConfig()),
		DefaultConfig(),
		nil,
	)

	return &fixture{
		service:    service,
		tasks:      taskSource,
		repo:       repo,
		rateStates: rateStates,
		dispatcher: dispatcher,
	}
}

func overdueUrgentTask(userID uuid.UUID) tasks.Task {
	deadline := testNow.Add(-time.Hour)
	activity := testNow.Add(-time.Hour)
	return tasks.Task{
		ID:             uuid.New(),
		Title:          "Fix the boiler",
		Priority:       tasks.PriorityUrgent,
		Deadline:       &deadline,
		AssigneeID:     &userID,
		CreatedAt:      testNow.Add(-48 * time.Hour),
		Status:         tasks.StatusPending,
		LastActivityAt: &activity,
	}
}

func distantTask(userID uuid.UUID) tasks.Task {
	deadline := testNow.Add(7 * 24 * time.Hour)
	activity := testNow.Add(-time.Hour)
	return tasks.Task{
		ID:             uuid.New(),
		Title:          "Plan the garden",
		Priority:       tasks.PriorityMedium,
		Deadline:       &deadline,
		AssigneeID:     &userID,
		CreatedAt:      testNow.Add(-24 * time.Hour),
		Status:         tasks.StatusPending,
		LastActivityAt: &activity,
	}
}

func TestService_SweepUser(t *testing.T) {
	ctx := context.Background()

	t.Run("due reminders become dispatched batches", func(t *testing.T) {
		f := newFixture()
		userID := uuid.New()
		f.tasks.tasksByUser[userID] = []tasks.Task{overdueUrgentTask(userID), distantTask(userID)}

		result, err := f.service.SweepUser(ctx, userID, testNow)
		require.NoError(t, err)

		assert.Equal(t, 2, result.TasksScored)
		// Urgent task gets deadline + overdue reminders, both due now.
		// The distant task's deadline reminder sits in the future.
		assert.Equal(t, 3, result.RemindersCreated)
		assert.Equal(t, 2, result.NotificationsDispatched)
		// Urgent notifications ship alone.
		assert.Equal(t, 2, result.BatchesDispatched)
		assert.Zero(t, result.RateLimited)

		sentCount := 0
		for _, rem := range f.repo.saved {
			if rem.Status == reminders.StatusSent {
				sentCount++
			}
		}
		assert.Equal(t, 2, sentCount)

		state, err := f.rateStates.Load(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 2, state.DailyCount)
	})

	t.Run("sweep is idempotent for active reminders", func(t *testing.T) {
		f := newFixture()
		userID := uuid.New()
		f.tasks.tasksByUser[userID] = []tasks.Task{overdueUrgentTask(userID), distantTask(userID)}

		first, err := f.service.SweepUser(ctx, userID, testNow)
		require.NoError(t, err)
		require.Equal(t, 3, first.RemindersCreated)

		second, err := f.service.SweepUser(ctx, userID, testNow.Add(time.Minute))
		require.NoError(t, err)
		assert.Zero(t, second.RemindersCreated)
		assert.Zero(t, second.NotificationsDispatched)
	})

	t.Run("hourly limit defers instead of dispatching", func(t *testing.T) {
		f := newFixture()
		userID := uuid.New()
		f.tasks.tasksByUser[userID] = []tasks.Task{overdueUrgentTask(userID)}

		state := notifications.NewRateLimitState(userID)
		state.HourlyCount = notifications.DefaultRateLimitConfig().MaxPerHour
		require.NoError(t, f.rateStates.Save(ctx, state))

		result, err := f.service.SweepUser(ctx, userID, testNow)
		require.NoError(t, err)

		assert.Zero(t, result.NotificationsDispatched)
		assert.Equal(t, 2, result.RateLimited)
		assert.Empty(t, f.dispatcher.batches)

		nextHour := testNow.Truncate(time.Hour).Add(time.Hour)
		for _, rem := range f.repo.saved {
			assert.Equal(t, reminders.StatusScheduled, rem.Status)
			assert.True(t, nextHour.Equal(rem.ScheduledAt),
				"reminder should move to the top of the next hour")
		}
	})

	t.Run("daily cap defers the lowest priority reminders", func(t *testing.T) {
		f := newFixture()
		userID := uuid.New()

		prefsSource := &fakePrefsSource{prefs: map[uuid.UUID]reminders.UserPreferences{}}
		prefs := reminders.DefaultPreferences(userID)
		prefs.MaxPerDay = 1
		prefsSource.prefs[userID] = prefs
		f.service.prefs = prefsSource

		f.tasks.tasksByUser[userID] = []tasks.Task{overdueUrgentTask(userID)}

		result, err := f.service.SweepUser(ctx, userID, testNow)
		require.NoError(t, err)

		// Two reminders created, one over the cap. Quiet hours end at
		// 07:00, so the deferred one lands there the next morning.
		assert.Equal(t, 2, result.RemindersCreated)
		assert.Equal(t, 1, result.RemindersDeferred)
		assert.Equal(t, 1, result.NotificationsDispatched)

		nextMorning := time.Date(2026, 3, 11, 7, 0, 0, 0, time.UTC)
		deferredSeen := false
		for _, rem := range f.repo.saved {
			if rem.Status == reminders.StatusScheduled && nextMorning.Equal(rem.ScheduledAt) {
				deferredSeen = true
			}
		}
		assert.True(t, deferredSeen)
	})

	t.Run("dispatch failure surfaces the error", func(t *testing.T) {
		f := newFixture()
		userID := uuid.New()
		f.tasks.tasksByUser[userID] = []tasks.Task{overdueUrgentTask(userID)}
		f.dispatcher.err = errors.New("broker unavailable")

		_, err := f.service.SweepUser(ctx, userID, testNow)
		require.Error(t, err)
		assert.ErrorContains(t, err, "broker unavailable")
	})
}

func TestService_Sweep(t *testing.T) {
	ctx := context.Background()

	t.Run("aggregates across users", func(t *testing.T) {
		f := newFixture()
		alice := uuid.New()
		bob := uuid.New()
		f.tasks.tasksByUser[alice] = []tasks.Task{overdueUrgentTask(alice)}
		f.tasks.tasksByUser[bob] = []tasks.Task{distantTask(bob)}

		result, err := f.service.Sweep(ctx, testNow)
		require.NoError(t, err)

		assert.Equal(t, 2, result.UsersProcessed)
		assert.Zero(t, result.UsersFailed)
		assert.Equal(t, 3, result.RemindersCreated)
		assert.Equal(t, 2, result.NotificationsDispatched)
	})

	t.Run("empty user list is a no-op", func(t *testing.T) {
		f := newFixture()

		result, err := f.service.Sweep(ctx, testNow)
		require.NoError(t, err)
		assert.Zero(t, result.UsersProcessed)
		assert.Empty(t, f.dispatcher.batches)
	})
}
