package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthhq/hearth/internal/notifications/domain"
	sharedDomain "github.com/hearthhq/hearth/internal/shared/domain"
	tasks "github.com/hearthhq/hearth/internal/tasks/domain"
)

type fakePublisher struct {
	published []publishedMessage
	err       error
}

type publishedMessage struct {
	routingKey string
	payload    []byte
}

func (f *fakePublisher) Publish(_ context.Context, routingKey string, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishedMessage{routingKey: routingKey, payload: payload})
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func testBatch(priority tasks.Priority, size int) domain.Batch {
	scheduled := time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)
	userID := uuid.New()

	batch := domain.Batch{
		ID:          uuid.New(),
		UserID:      userID,
		ScheduledAt: scheduled,
		Priority:    priority,
	}
	for i := 0; i < size; i++ {
		batch.Notifications = append(batch.Notifications, domain.Notification{
			ID:                  uuid.New(),
			UserID:              userID,
			Type:                "reminder.deadline",
			Priority:            priority,
			Channel:             sharedDomain.ChannelPush,
			Content:             domain.Content{Title: "Upcoming deadline", Body: "water the plants"},
			ScheduledAt:         scheduled,
			OriginalScheduledAt: scheduled,
		})
	}
	return batch
}

func TestDispatcher_DispatchBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes payload with priority routing key", func(t *testing.T) {
		pub := &fakePublisher{}
		d := NewDispatcher(pub, DefaultDispatcherConfig(), nil)

		batch := testBatch(tasks.PriorityHigh, 2)
		require.NoError(t, d.DispatchBatch(ctx, batch))

		require.Len(t, pub.published, 1)
		assert.Equal(t, "notifications.batch.high", pub.published[0].routingKey)

		var payload batchPayload
		require.NoError(t, json.Unmarshal(pub.published[0].payload, &payload))
		assert.Equal(t, batch.ID.String(), payload.BatchID)
		assert.Equal(t, batch.UserID.String(), payload.UserID)
		require.Len(t, payload.Notifications, 2)
		assert.Equal(t, "push", payload.Notifications[0].Channel)
		assert.Equal(t, "reminder.deadline", payload.Notifications[0].Type)
	})

	t.Run("empty batch publishes nothing", func(t *testing.T) {
		pub := &fakePublisher{}
		d := NewDispatcher(pub, DefaultDispatcherConfig(), nil)

		require.NoError(t, d.DispatchBatch(ctx, domain.Batch{ID: uuid.New()}))
		assert.Empty(t, pub.published)
	})

	t.Run("breaker opens after consecutive failures", func(t *testing.T) {
		pub := &fakePublisher{err: errors.New("broker unavailable")}
		cfg := DefaultDispatcherConfig()
		cfg.FailureThreshold = 3
		d := NewDispatcher(pub, cfg, nil)

		batch := testBatch(tasks.PriorityMedium, 1)
		for i := 0; i < 3; i++ {
			err := d.DispatchBatch(ctx, batch)
			require.Error(t, err)
			assert.ErrorContains(t, err, "broker unavailable")
		}

		// Breaker now rejects without touching the transport.
		pub.err = nil
		err := d.DispatchBatch(ctx, batch)
		require.Error(t, err)
		assert.Empty(t, pub.published)
	})

	t.Run("dispatch all stops at first failure", func(t *testing.T) {
		pub := &fakePublisher{}
		d := NewDispatcher(pub, DefaultDispatcherConfig(), nil)

		batches := []domain.Batch{
			testBatch(tasks.PriorityLow, 1),
			testBatch(tasks.PriorityUrgent, 1),
		}
		sent, err := d.DispatchAll(ctx, batches)
		require.NoError(t, err)
		assert.Equal(t, 2, sent)
		assert.Len(t, pub.published, 2)
	})
}
