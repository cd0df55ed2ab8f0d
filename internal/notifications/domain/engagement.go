package domain

import (
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/hearthhq/hearth/internal/shared/domain"
)

// EngagementMetric is one historical open/response observation for a user
// at a given hour of day and day of week.
type EngagementMetric struct {
	Hour         int
	Weekday      time.Weekday
	Channel      sharedDomain.Channel
	OpenRate     float64
	ResponseRate float64
	SampleSize   int
}

// UserActivity summarizes when and how a user tends to use the product.
type UserActivity struct {
	UserID                uuid.UUID
	ActiveHours           []int
	ActiveDays            []time.Weekday
	AverageSessionMinutes float64
	PreferredChannels     []sharedDomain.Channel
	DeviceTypes           []string
}

// DefaultUserActivity returns the activity profile assumed for users with
// no recorded history: weekday mornings and evenings on push.
func DefaultUserActivity(userID uuid.UUID) UserActivity {
	return UserActivity{
		UserID:      userID,
		ActiveHours: []int{8, 9, 12, 13, 18, 19, 20},
		ActiveDays: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday,
			time.Thursday, time.Friday, time.Saturday, time.Sunday,
		},
		AverageSessionMinutes: 5,
		PreferredChannels:     []sharedDomain.Channel{sharedDomain.ChannelPush, sharedDomain.ChannelInApp},
	}
}

// IsLikelyActive reports whether the user has historically been active at
// both the hour and the weekday of the given time.
func (a UserActivity) IsLikelyActive(t time.Time) bool {
	hourActive := false
	for _, h := range a.ActiveHours {
		if h == t.Hour() {
			hourActive = true
			break
		}
	}
	if !hourActive {
		return false
	}
	for _, d := range a.ActiveDays {
		if d == t.Weekday() {
			return true
		}
	}
	return false
}

// neutralEngagement is assumed when no history matches a candidate time.
const neutralEngagement = 0.5

// EngagementScore scores a candidate time by the sample-size-weighted
// average of (openRate+responseRate)/2 across metrics matching its hour
// and weekday. With no matching history it returns a neutral 0.5.
func EngagementScore(metrics []EngagementMetric, t time.Time) float64 {
	var weighted, samples float64
	for _, m := range metrics {
		if m.Hour != t.Hour() || m.Weekday != t.Weekday() {
			continue
		}
		n := float64(m.SampleSize)
		weighted += (m.OpenRate + m.ResponseRate) / 2 * n
		samples += n
	}
	if samples == 0 {
		return neutralEngagement
	}
	return weighted / samples
}

// ChannelOpenRate averages the open rate across all metrics recorded for
// a channel, weighted by sample size. No history returns a neutral 0.5.
func ChannelOpenRate(metrics []EngagementMetric, c sharedDomain.Channel) float64 {
	var weighted, samples float64
	for _, m := range metrics {
		if m.Channel != c {
			continue
		}
		n := float64(m.SampleSize)
		weighted += m.OpenRate * n
		samples += n
	}
	if samples == 0 {
		return neutralEngagement
	}
	return weighted / samples
}

// BestTimeSlot scans hourly between from and to for the time maximizing
// engagementScore * windowWeight, skipping hours outside every delivery
// window. The earliest candidate wins ties. The boolean is false when no
// hour in the range falls inside a window.
func BestTimeSlot(metrics []EngagementMetric, windows WindowConfig, from, to time.Time) (time.Time, float64, bool) {
	var (
		best      time.Time
		bestScore float64
		found     bool
	)
	for t := from; !t.After(to); t = t.Add(time.Hour) {
		weight := windows.WindowWeight(t)
		if weight == 0 {
			continue
		}
		score := EngagementScore(metrics, t) * weight
		if !found || score > bestScore {
			best, bestScore, found = t, score, true
		}
	}
	return best, bestScore, found
}
