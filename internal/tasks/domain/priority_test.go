package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriority(t *testing.T) {
	t.Run("accepts known names case-insensitively", func(t *testing.T) {
		p, err := ParsePriority("URGENT")
		require.NoError(t, err)
		assert.Equal(t, PriorityUrgent, p)
	})

	t.Run("rejects unknown names", func(t *testing.T) {
		_, err := ParsePriority("someday")
		assert.ErrorIs(t, err, ErrInvalidPriority)
	})
}

func TestPriorityOrdering(t *testing.T) {
	assert.True(t, PriorityUrgent.Rank() > PriorityHigh.Rank())
	assert.Equal(t, PriorityHigh, MaxPriority(PriorityLow, PriorityHigh))
	assert.Equal(t, PriorityUrgent, MaxPriority(PriorityUrgent, PriorityMedium))
}

func TestTaskSnapshot(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("overdue only with a past deadline", func(t *testing.T) {
		past := now.Add(-time.Hour)
		future := now.Add(time.Hour)

		assert.True(t, Task{Deadline: &past}.IsOverdue(now))
		assert.False(t, Task{Deadline: &future}.IsOverdue(now))
		assert.False(t, Task{}.IsOverdue(now))
	})

	t.Run("recurring follows completion history", func(t *testing.T) {
		rate := 0.8
		assert.True(t, Task{CompletionRate: &rate}.IsRecurring())
		assert.False(t, Task{}.IsRecurring())
	})

	t.Run("terminal statuses", func(t *testing.T) {
		assert.True(t, StatusCompleted.IsTerminal())
		assert.True(t, StatusCancelled.IsTerminal())
		assert.False(t, StatusInProgress.IsTerminal())
	})
}
