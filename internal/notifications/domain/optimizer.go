package domain

import (
	"time"

	sharedDomain "github.com/hearthhq/hearth/internal/shared/domain"
	tasks "github.com/hearthhq/hearth/internal/tasks/domain"
)

// OptimizerConfig tunes time and channel selection.
type OptimizerConfig struct {
	Windows   WindowConfig
	RateLimit RateLimitConfig

	// KeepWindowWeight / KeepEngagement gate the fast path that leaves a
	// well-placed notification where it is.
	KeepWindowWeight float64
	KeepEngagement   float64

	// SearchHorizon bounds how far ahead the best-slot search looks.
	SearchHorizon time.Duration

	// MinChannelOpenRate is the open rate below which a channel is
	// deprioritized during channel selection.
	MinChannelOpenRate float64

	// BatchWindow and MaxBatchSize bound delivery batches.
	BatchWindow  time.Duration
	MaxBatchSize int
}

// DefaultOptimizerConfig returns production-friendly settings.
func DefaultOptimizerConfig() OptimizerConfig {
	return OptimizerConfig{
		Windows:            DefaultWindowConfig(),
		RateLimit:          DefaultRateLimitConfig(),
		KeepWindowWeight:   0.7,
		KeepEngagement:     0.6,
		SearchHorizon:      24 * time.Hour,
		MinChannelOpenRate: 0.2,
		BatchWindow:        30 * time.Minute,
		MaxBatchSize:       5,
	}
}

// Result is the outcome of optimizing one notification. RateLimited marks
// notifications that were deferred by the rate limiter; Reason then names
// the violated limit.
type Result struct {
	Notification Notification
	Confidence   float64
	Reason       string
	RateLimited  bool
}

const (
	ReasonUrgentBypass  = "urgent_bypass"
	ReasonAlreadyPlaced = "already_well_placed"
	ReasonRescheduled   = "rescheduled_to_better_slot"
)

// Optimizer shifts notifications to better times and channels based on
// delivery windows, engagement history and activity patterns.
type Optimizer struct {
	config OptimizerConfig
}

// NewOptimizer creates an optimizer with the given configuration.
func NewOptimizer(cfg OptimizerConfig) *Optimizer {
	return &Optimizer{config: cfg}
}

// Config returns the optimizer's configuration.
func (o *Optimizer) Config() OptimizerConfig {
	return o.config
}

// Optimize decides the final time and channel for one notification.
// Rate limiting takes precedence over everything: a throttled user's
// notification moves to the earliest permitted time untouched by any
// other rule. Urgent notifications never move for engagement reasons.
func (o *Optimizer) Optimize(n Notification, activity UserActivity,
	metrics []EngagementMetric, state RateLimitState, now time.Time) Result {

	if decision := CanSend(state, o.config.RateLimit, o.config.Windows, now); !decision.Allowed {
		n.ScheduledAt = decision.NextAllowed
		n.OptimizationApplied = true
		return Result{Notification: n, Confidence: 1, Reason: decision.Reason, RateLimited: true}
	}

	if n.Priority == tasks.PriorityUrgent {
		return Result{Notification: n, Confidence: 1, Reason: ReasonUrgentBypass}
	}

	n = o.optimizeTime(n, activity, metrics)
	n, channelFallback := o.optimizeChannel(n, activity, metrics)

	confidence := 1.0
	reason := ReasonAlreadyPlaced
	if !n.ScheduledAt.Equal(n.OriginalScheduledAt) {
		reason = ReasonRescheduled
		confidence = 0.9
		if !activity.IsLikelyActive(n.ScheduledAt) {
			confidence *= 0.7
		}
	}
	if channelFallback {
		confidence *= 0.5
	}
	return Result{Notification: n, Confidence: confidence, Reason: reason}
}

// OptimizeBatch runs Optimize over a slice, threading the rate-limit
// state through so earlier items do not hide the limits from later ones.
// Counters are charged only for notifications going out now; anything
// rescheduled into the future is charged by the sweep that sends it.
func (o *Optimizer) OptimizeBatch(ns []Notification, activity UserActivity,
	metrics []EngagementMetric, state RateLimitState, now time.Time) ([]Result, RateLimitState) {

	results := make([]Result, 0, len(ns))
	for _, n := range ns {
		res := o.Optimize(n, activity, metrics, state, now)
		if !res.RateLimited && !res.Notification.ScheduledAt.After(now) {
			state = state.RecordSent(now)
		}
		results = append(results, res)
	}
	return results, state
}

func (o *Optimizer) optimizeTime(n Notification, activity UserActivity, metrics []EngagementMetric) Notification {
	original := n.ScheduledAt

	wellPlaced := o.config.Windows.WindowWeight(original) > o.config.KeepWindowWeight &&
		EngagementScore(metrics, original) > o.config.KeepEngagement &&
		activity.IsLikelyActive(original)
	if wellPlaced {
		return n
	}

	best, _, found := BestTimeSlot(metrics, o.config.Windows, original, original.Add(o.config.SearchHorizon))
	if !found || best.Equal(original) {
		return n
	}
	n.ScheduledAt = best
	n.OptimizationApplied = true
	return n
}

// optimizeChannel picks the allowed channel with the best historical open
// rate, restricted to the user's preferred channels when any overlap.
// Channels under the configured minimum open rate score zero; when every
// candidate falls below it, the first candidate wins and the returned flag
// tells the caller to discount its confidence.
func (o *Optimizer) optimizeChannel(n Notification, activity UserActivity, metrics []EngagementMetric) (Notification, bool) {
	candidates := n.AllowedChannels
	if len(activity.PreferredChannels) > 0 {
		var preferred []sharedDomain.Channel
		for _, c := range candidates {
			if sharedDomain.ContainsChannel(activity.PreferredChannels, c) {
				preferred = append(preferred, c)
			}
		}
		if len(preferred) > 0 {
			candidates = preferred
		}
	}
	if len(candidates) == 0 {
		return n, false
	}

	best := candidates[0]
	bestRate := 0.0
	for _, c := range candidates {
		rate := ChannelOpenRate(metrics, c)
		if rate < o.config.MinChannelOpenRate {
			rate = 0
		}
		if rate > bestRate {
			best, bestRate = c, rate
		}
	}

	if best != n.Channel {
		n.Channel = best
		n.OptimizationApplied = true
	}
	return n, bestRate == 0
}
