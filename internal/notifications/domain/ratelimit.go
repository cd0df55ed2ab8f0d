package domain

import (
	"time"

	"github.com/google/uuid"
)

// RateLimitConfig bounds how often one user may be notified.
type RateLimitConfig struct {
	MaxPerHour          int
	MaxPerDay           int
	InteractionCooldown time.Duration
	FailureCooldown     time.Duration
}

// DefaultRateLimitConfig returns production-friendly limits.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxPerHour:          3,
		MaxPerDay:           12,
		InteractionCooldown: 30 * time.Minute,
		FailureCooldown:     2 * time.Hour,
	}
}

// RateLimitState carries one user's send counters and cooldown anchors.
// It is a pure value: every transition returns a new state, and the caller
// persists it across sweeps.
type RateLimitState struct {
	UserID            uuid.UUID
	HourlyCount       int
	DailyCount        int
	LastSentAt        *time.Time
	LastInteractionAt *time.Time
	LastFailureAt     *time.Time
}

// NewRateLimitState returns the zero state for a user.
func NewRateLimitState(userID uuid.UUID) RateLimitState {
	return RateLimitState{UserID: userID}
}

// SendDecision is the structured outcome of a rate-limit check. A refusal
// is normal control flow, not an error: Reason names the violated limit
// and NextAllowed is the earliest time a send could succeed.
type SendDecision struct {
	Allowed     bool
	Reason      string
	NextAllowed time.Time
}

const (
	ReasonHourlyLimit         = "hourly_limit_reached"
	ReasonDailyLimit          = "daily_limit_reached"
	ReasonInteractionCooldown = "interaction_cooldown"
	ReasonFailureCooldown     = "failure_cooldown"
)

// CanSend checks a user's rate-limit state against the configured limits.
// Checks run in a fixed order (hourly, daily, interaction cooldown,
// failure cooldown) and the first violation determines the reason and the
// next-allowed time. The daily next-allowed time is the start of the
// default delivery window on the following day; earlier preferred windows
// are deliberately not considered.
func CanSend(state RateLimitState, cfg RateLimitConfig, windows WindowConfig, now time.Time) SendDecision {
	if cfg.MaxPerHour > 0 && state.HourlyCount >= cfg.MaxPerHour {
		return SendDecision{
			Reason:      ReasonHourlyLimit,
			NextAllowed: now.Truncate(time.Hour).Add(time.Hour),
		}
	}

	if cfg.MaxPerDay > 0 && state.DailyCount >= cfg.MaxPerDay {
		nextDay := time.Date(now.Year(), now.Month(), now.Day(),
			windows.Default.StartHour, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
		return SendDecision{
			Reason:      ReasonDailyLimit,
			NextAllowed: nextDay,
		}
	}

	if state.LastInteractionAt != nil {
		until := state.LastInteractionAt.Add(cfg.InteractionCooldown)
		if now.Before(until) {
			return SendDecision{
				Reason:      ReasonInteractionCooldown,
				NextAllowed: until,
			}
		}
	}

	if state.LastFailureAt != nil {
		until := state.LastFailureAt.Add(cfg.FailureCooldown)
		if now.Before(until) {
			return SendDecision{
				Reason:      ReasonFailureCooldown,
				NextAllowed: until,
			}
		}
	}

	return SendDecision{Allowed: true, NextAllowed: now}
}

// RecordSent increments both counters and stamps the send time.
func (s RateLimitState) RecordSent(now time.Time) RateLimitState {
	s.HourlyCount++
	s.DailyCount++
	s.LastSentAt = &now
	return s
}

// RecordInteraction stamps a user interaction, starting the interaction
// cooldown.
func (s RateLimitState) RecordInteraction(now time.Time) RateLimitState {
	s.LastInteractionAt = &now
	return s
}

// RecordFailure stamps a failed delivery, starting the failure cooldown.
func (s RateLimitState) RecordFailure(now time.Time) RateLimitState {
	s.LastFailureAt = &now
	return s
}

// ResetHourly zeroes the hourly counter.
func (s RateLimitState) ResetHourly() RateLimitState {
	s.HourlyCount = 0
	return s
}

// ResetDaily zeroes both counters.
func (s RateLimitState) ResetDaily() RateLimitState {
	s.HourlyCount = 0
	s.DailyCount = 0
	return s
}
