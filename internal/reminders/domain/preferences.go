package domain

import (
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/hearthhq/hearth/internal/shared/domain"
)

// UserPreferences carries the per-user delivery settings the engine reads.
// Owned by the surrounding product; the engine never mutates it.
type UserPreferences struct {
	UserID            uuid.UUID
	Channels          []sharedDomain.Channel
	QuietHoursEnabled bool
	// QuietStartHour/QuietEndHour are local clock hours. A start greater
	// than the end means the window wraps midnight.
	QuietStartHour int
	QuietEndHour   int
	Timezone       string
	Language       string
	LeadTimes      map[Type]time.Duration
	MaxPerDay      int
}

// DefaultPreferences returns the settings applied to users who have not
// configured anything yet.
func DefaultPreferences(userID uuid.UUID) UserPreferences {
	return UserPreferences{
		UserID:            userID,
		Channels:          []sharedDomain.Channel{sharedDomain.ChannelPush, sharedDomain.ChannelInApp},
		QuietHoursEnabled: true,
		QuietStartHour:    22,
		QuietEndHour:      7,
		Timezone:          "UTC",
		Language:          "en",
		LeadTimes: map[Type]time.Duration{
			TypeDeadline: 24 * time.Hour,
			TypeOverdue:  2 * time.Hour,
			TypeFollowUp: 48 * time.Hour,
			TypeCheckIn:  7 * 24 * time.Hour,
		},
		MaxPerDay: 10,
	}
}

// LeadTime returns the configured lead time for a reminder type, falling
// back to the default preferences when unset.
func (p UserPreferences) LeadTime(t Type) time.Duration {
	if d, ok := p.LeadTimes[t]; ok {
		return d
	}
	return DefaultPreferences(p.UserID).LeadTimes[t]
}
