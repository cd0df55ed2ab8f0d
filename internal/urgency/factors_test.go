package urgency

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	tasks "github.com/hearthhq/hearth/internal/tasks/domain"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func taskDueIn(d time.Duration) tasks.Task {
	deadline := testNow.Add(d)
	return tasks.Task{
		Title:     "take out recycling",
		Priority:  tasks.PriorityMedium,
		Status:    tasks.StatusPending,
		CreatedAt: testNow.Add(-24 * time.Hour),
		Deadline:  &deadline,
	}
}

func TestDeadlineFactor(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("no deadline scores zero", func(t *testing.T) {
		task := taskDueIn(time.Hour)
		task.Deadline = nil
		f, overdue := DeadlineFactor(task, cfg, testNow)
		assert.Zero(t, f)
		assert.False(t, overdue)
	})

	t.Run("overdue grows half a point per hour", func(t *testing.T) {
		f10, overdue := DeadlineFactor(taskDueIn(-10*time.Hour), cfg, testNow)
		assert.True(t, overdue)
		assert.InDelta(t, 105.0, f10, 0.001)

		f20, _ := DeadlineFactor(taskDueIn(-20*time.Hour), cfg, testNow)
		assert.Greater(t, f20, f10, "more overdue must score strictly higher")
	})

	t.Run("inside critical window scores 100", func(t *testing.T) {
		f, overdue := DeadlineFactor(taskDueIn(time.Hour), cfg, testNow)
		assert.Equal(t, 100.0, f)
		assert.False(t, overdue)
	})

	t.Run("interpolates between critical and high windows", func(t *testing.T) {
		// Halfway between 4h and 24h.
		f, _ := DeadlineFactor(taskDueIn(14*time.Hour), cfg, testNow)
		assert.InDelta(t, 85.0, f, 0.001)
	})

	t.Run("interpolates between high and medium windows", func(t *testing.T) {
		// Halfway between 24h and 72h.
		f, _ := DeadlineFactor(taskDueIn(48*time.Hour), cfg, testNow)
		assert.InDelta(t, 55.0, f, 0.001)
	})

	t.Run("beyond the low window scores zero", func(t *testing.T) {
		f, _ := DeadlineFactor(taskDueIn(200*time.Hour), cfg, testNow)
		assert.Zero(t, f)
	})
}

func TestPriorityFactor(t *testing.T) {
	assert.Equal(t, 100.0, PriorityFactor(tasks.PriorityUrgent))
	assert.Equal(t, 75.0, PriorityFactor(tasks.PriorityHigh))
	assert.Equal(t, 40.0, PriorityFactor(tasks.PriorityMedium))
	assert.Equal(t, 15.0, PriorityFactor(tasks.PriorityLow))

	t.Run("monotonic in priority rank", func(t *testing.T) {
		order := []tasks.Priority{tasks.PriorityLow, tasks.PriorityMedium, tasks.PriorityHigh, tasks.PriorityUrgent}
		for i := 1; i < len(order); i++ {
			assert.Greater(t, PriorityFactor(order[i]), PriorityFactor(order[i-1]))
		}
	})
}

func TestAgeFactor(t *testing.T) {
	t.Run("new task scores zero", func(t *testing.T) {
		task := tasks.Task{CreatedAt: testNow}
		assert.Zero(t, AgeFactor(task, testNow))
	})

	t.Run("saturates at 60 days", func(t *testing.T) {
		task := tasks.Task{CreatedAt: testNow.Add(-60 * 24 * time.Hour)}
		assert.InDelta(t, 100.0, AgeFactor(task, testNow), 0.001)

		older := tasks.Task{CreatedAt: testNow.Add(-120 * 24 * time.Hour)}
		assert.Equal(t, 100.0, AgeFactor(older, testNow))
	})

	t.Run("sub-linear early growth", func(t *testing.T) {
		task := tasks.Task{CreatedAt: testNow.Add(-30 * 24 * time.Hour)}
		f := AgeFactor(task, testNow)
		assert.Greater(t, f, 50.0, "half the horizon should score above half the cap")
		assert.Less(t, f, 100.0)
	})
}

func TestDependencyFactor(t *testing.T) {
	t.Run("blocking other tasks raises urgency", func(t *testing.T) {
		task := tasks.Task{BlockedTaskCount: 2}
		assert.Equal(t, 30.0, DependencyFactor(task))
	})

	t.Run("blocking bonus caps at 50", func(t *testing.T) {
		task := tasks.Task{BlockedTaskCount: 10}
		assert.Equal(t, 50.0, DependencyFactor(task))
	})

	t.Run("dependencies subtract with a floor at zero", func(t *testing.T) {
		task := tasks.Task{BlockedTaskCount: 1, DependencyCount: 2}
		assert.Equal(t, 5.0, DependencyFactor(task))

		waiting := tasks.Task{DependencyCount: 8}
		assert.Zero(t, DependencyFactor(waiting))
	})
}

func TestStalenessFactor(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("unknown activity scores a moderate 50", func(t *testing.T) {
		assert.Equal(t, 50.0, StalenessFactor(tasks.Task{}, cfg, testNow))
	})

	t.Run("recent activity scores zero", func(t *testing.T) {
		recent := testNow.Add(-2 * time.Hour)
		task := tasks.Task{LastActivityAt: &recent}
		assert.Zero(t, StalenessFactor(task, cfg, testNow))
	})

	t.Run("grows half a point per idle hour past the threshold", func(t *testing.T) {
		idle := testNow.Add(-time.Duration(cfg.StalenessThresholdHours+8) * time.Hour)
		task := tasks.Task{LastActivityAt: &idle}
		assert.InDelta(t, 4.0, StalenessFactor(task, cfg, testNow), 0.001)
	})

	t.Run("caps at 100", func(t *testing.T) {
		idle := testNow.Add(-10000 * time.Hour)
		task := tasks.Task{LastActivityAt: &idle}
		assert.Equal(t, 100.0, StalenessFactor(task, cfg, testNow))
	})
}

func TestCompletionFactor(t *testing.T) {
	t.Run("one-off tasks score zero", func(t *testing.T) {
		assert.Zero(t, CompletionFactor(tasks.Task{}))
	})

	t.Run("frequently skipped chores score high", func(t *testing.T) {
		rate := 0.25
		task := tasks.Task{CompletionRate: &rate}
		assert.InDelta(t, 75.0, CompletionFactor(task), 0.001)
	})

	t.Run("always completed chores score zero", func(t *testing.T) {
		rate := 1.0
		task := tasks.Task{CompletionRate: &rate}
		assert.Zero(t, CompletionFactor(task))
	})
}
