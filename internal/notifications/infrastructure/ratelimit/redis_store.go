// Package ratelimit persists per-user send counters in Redis so that
// sweeps on different hosts see the same rate-limit state.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/hearthhq/hearth/internal/notifications/domain"
)

const (
	fieldHourlyCount     = "hourly_count"
	fieldDailyCount      = "daily_count"
	fieldLastSentAt      = "last_sent_at"
	fieldLastInteraction = "last_interaction_at"
	fieldLastFailure     = "last_failure_at"

	// Counters expire on their own so stale users do not accumulate
	// forever. CanSend resets logically via the hourly/daily windows;
	// the TTL is just garbage collection.
	stateTTL = 48 * time.Hour
)

// RedisStore loads and saves RateLimitState values keyed by user.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func stateKey(userID uuid.UUID) string {
	return fmt.Sprintf("hearth:ratelimit:%s", userID)
}

// Load returns the stored state for a user, or the zero state when the
// user has never been seen.
func (s *RedisStore) Load(ctx context.Context, userID uuid.UUID) (domain.RateLimitState, error) {
	state := domain.NewRateLimitState(userID)

	fields, err := s.rdb.HGetAll(ctx, stateKey(userID)).Result()
	if err != nil {
		return state, fmt.Errorf("load rate-limit state: %w", err)
	}
	if len(fields) == 0 {
		return state, nil
	}

	if v, ok := fields[fieldHourlyCount]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			state.HourlyCount = n
		}
	}
	if v, ok := fields[fieldDailyCount]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			state.DailyCount = n
		}
	}

	var parseErr error
	state.LastSentAt = parseTimeField(fields, fieldLastSentAt, &parseErr)
	state.LastInteractionAt = parseTimeField(fields, fieldLastInteraction, &parseErr)
	state.LastFailureAt = parseTimeField(fields, fieldLastFailure, &parseErr)
	if parseErr != nil {
		return state, fmt.Errorf("load rate-limit state: %w", parseErr)
	}

	return state, nil
}

// Save writes the full state back, replacing whatever was stored.
func (s *RedisStore) Save(ctx context.Context, state domain.RateLimitState) error {
	key := stateKey(state.UserID)

	fields := map[string]any{
		fieldHourlyCount: state.HourlyCount,
		fieldDailyCount:  state.DailyCount,
	}
	if state.LastSentAt != nil {
		fields[fieldLastSentAt] = state.LastSentAt.Format(time.RFC3339Nano)
	}
	if state.LastInteractionAt != nil {
		fields[fieldLastInteraction] = state.LastInteractionAt.Format(time.RFC3339Nano)
	}
	if state.LastFailureAt != nil {
		fields[fieldLastFailure] = state.LastFailureAt.Format(time.RFC3339Nano)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, stateTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save rate-limit state: %w", err)
	}
	return nil
}

// Reset drops a user's stored state entirely.
func (s *RedisStore) Reset(ctx context.Context, userID uuid.UUID) error {
	if err := s.rdb.Del(ctx, stateKey(userID)).Err(); err != nil {
		return fmt.Errorf("reset rate-limit state: %w", err)
	}
	return nil
}

func parseTimeField(fields map[string]string, name string, parseErr *error) *time.Time {
	v, ok := fields[name]
	if !ok || v == "" {
		return nil
	}
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		if *parseErr == nil {
			*parseErr = fmt.Errorf("field %s: %w", name, err)
		}
		return nil
	}
	return &ts
}
