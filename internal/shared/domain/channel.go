// Package domain holds the small vocabulary shared across bounded contexts.
package domain

import "strings"

// Channel is a delivery medium for reminders and notifications.
type Channel string

const (
	ChannelPush  Channel = "push"
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelInApp Channel = "in_app"
)

// ParseChannel normalizes a string into a Channel; unknown strings come
// back as-is so forward-compatible channels survive round trips.
func ParseChannel(s string) Channel {
	return Channel(strings.ToLower(strings.TrimSpace(s)))
}

// IsValid returns true for the channels this engine knows how to reason
// about.
func (c Channel) IsValid() bool {
	switch c {
	case ChannelPush, ChannelEmail, ChannelSMS, ChannelInApp:
		return true
	}
	return false
}

// ContainsChannel reports whether the slice carries the given channel.
func ContainsChannel(channels []Channel, c Channel) bool {
	for _, candidate := range channels {
		if candidate == c {
			return true
		}
	}
	return false
}
