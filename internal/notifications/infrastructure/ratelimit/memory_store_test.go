package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthhq/hearth/internal/notifications/domain"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown user yields zero state", func(t *testing.T) {
		store := NewMemoryStore()
		userID := uuid.New()

		state, err := store.Load(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, userID, state.UserID)
		assert.Zero(t, state.HourlyCount)
		assert.Nil(t, state.LastSentAt)
	})

	t.Run("save then load round trip", func(t *testing.T) {
		store := NewMemoryStore()
		now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

		state := domain.NewRateLimitState(uuid.New()).RecordSent(now).RecordFailure(now)
		require.NoError(t, store.Save(ctx, state))

		got, err := store.Load(ctx, state.UserID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.HourlyCount)
		assert.Equal(t, 1, got.DailyCount)
		require.NotNil(t, got.LastFailureAt)
		assert.True(t, now.Equal(*got.LastFailureAt))
	})

	t.Run("reset forgets the user", func(t *testing.T) {
		store := NewMemoryStore()
		now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

		state := domain.NewRateLimitState(uuid.New()).RecordSent(now)
		require.NoError(t, store.Save(ctx, state))
		require.NoError(t, store.Reset(ctx, state.UserID))

		got, err := store.Load(ctx, state.UserID)
		require.NoError(t, err)
		assert.Zero(t, got.DailyCount)
	})
}
