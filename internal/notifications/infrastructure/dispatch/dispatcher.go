package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/hearthhq/hearth/internal/notifications/domain"
)

// DispatcherConfig tunes pacing and the transport circuit breaker.
type DispatcherConfig struct {
	// RatePerSecond caps publishes per second across all users.
	RatePerSecond float64

	// Burst is the rate limiter burst size.
	Burst int

	// FailureThreshold is how many consecutive publish failures trip
	// the breaker.
	FailureThreshold uint32

	// BreakerTimeout is how long the breaker stays open before probing.
	BreakerTimeout time.Duration
}

// DefaultDispatcherConfig returns conservative production pacing.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		RatePerSecond:    20,
		Burst:            50,
		FailureThreshold: 5,
		BreakerTimeout:   30 * time.Second,
	}
}

// Dispatcher publishes notification batches through a circuit breaker
// with global rate pacing, so a broker outage degrades into skipped
// sweeps instead of a connect storm.
type Dispatcher struct {
	publisher Publisher
	breaker   *gobreaker.CircuitBreaker[any]
	limiter   *rate.Limiter
	logger    *slog.Logger
}

func NewDispatcher(publisher Publisher, cfg DispatcherConfig, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}

	settings := gobreaker.Settings{
		Name:    "notification-dispatch",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &Dispatcher{
		publisher: publisher,
		breaker:   gobreaker.NewCircuitBreaker[any](settings),
		limiter:   rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		logger:    logger,
	}
}

type batchPayload struct {
	BatchID       string                `json:"batch_id"`
	UserID        string                `json:"user_id"`
	ScheduledAt   time.Time             `json:"scheduled_at"`
	Priority      string                `json:"priority"`
	Notifications []notificationPayload `json:"notifications"`
}

type notificationPayload struct {
	ID                  string            `json:"id"`
	Type                string            `json:"type"`
	Priority            string            `json:"priority"`
	Channel             string            `json:"channel"`
	Title               string            `json:"title"`
	Body                string            `json:"body"`
	Metadata            map[string]string `json:"metadata,omitempty"`
	ScheduledAt         time.Time         `json:"scheduled_at"`
	OriginalScheduledAt time.Time         `json:"original_scheduled_at"`
	OptimizationApplied bool              `json:"optimization_applied"`
}

// DispatchBatch publishes one batch. The routing key carries the batch
// priority so delivery workers can bind urgent traffic separately.
func (d *Dispatcher) DispatchBatch(ctx context.Context, batch domain.Batch) error {
	if len(batch.Notifications) == 0 {
		return nil
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("dispatch pacing: %w", err)
	}

	payload := batchPayload{
		BatchID:       batch.ID.String(),
		UserID:        batch.UserID.String(),
		ScheduledAt:   batch.ScheduledAt,
		Priority:      batch.Priority.String(),
		Notifications: make([]notificationPayload, 0, len(batch.Notifications)),
	}
	for _, n := range batch.Notifications {
		payload.Notifications = append(payload.Notifications, notificationPayload{
			ID:                  n.ID.String(),
			Type:                n.Type,
			Priority:            n.Priority.String(),
			Channel:             string(n.Channel),
			Title:               n.Content.Title,
			Body:                n.Content.Body,
			Metadata:            n.Content.Metadata,
			ScheduledAt:         n.ScheduledAt,
			OriginalScheduledAt: n.OriginalScheduledAt,
			OptimizationApplied: n.OptimizationApplied,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode batch payload: %w", err)
	}

	routingKey := fmt.Sprintf("notifications.batch.%s", batch.Priority.String())

	_, err = d.breaker.Execute(func() (any, error) {
		return nil, d.publisher.Publish(ctx, routingKey, body)
	})
	if err != nil {
		return fmt.Errorf("publish batch %s: %w", batch.ID, err)
	}

	d.logger.Debug("batch dispatched",
		"batch_id", batch.ID,
		"user_id", batch.UserID,
		"size", len(batch.Notifications),
		"routing_key", routingKey,
	)

	return nil
}

// DispatchAll publishes batches in order, stopping at the first
// transport error.
func (d *Dispatcher) DispatchAll(ctx context.Context, batches []domain.Batch) (int, error) {
	for i, batch := range batches {
		if err := d.DispatchBatch(ctx, batch); err != nil {
			return i, err
		}
	}
	return len(batches), nil
}

// Close releases the underlying transport.
func (d *Dispatcher) Close() error {
	return d.publisher.Close()
}
