// Package domain optimizes when and how notifications reach a user:
// delivery-window and engagement-based time selection, channel choice,
// batching and per-user rate limiting. Everything here is a pure
// computation over immutable values; the caller persists state and
// performs the actual delivery.
package domain

import (
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/hearthhq/hearth/internal/shared/domain"
	tasks "github.com/hearthhq/hearth/internal/tasks/domain"
)

// Content is the rendered payload handed to the dispatch layer.
type Content struct {
	Title    string
	Body     string
	Metadata map[string]string
}

// Notification is a single deliverable message. OriginalScheduledAt keeps
// the pre-optimization time for auditing.
type Notification struct {
	ID                  uuid.UUID
	UserID              uuid.UUID
	Type                string
	Priority            tasks.Priority
	Channel             sharedDomain.Channel
	AllowedChannels     []sharedDomain.Channel
	Content             Content
	ScheduledAt         time.Time
	OriginalScheduledAt time.Time
	BatchID             *uuid.UUID
	OptimizationApplied bool
}

// NewNotification builds a notification scheduled at the given time. The
// first allowed channel starts as the chosen channel until optimization
// picks a better one.
func NewNotification(userID uuid.UUID, typ string, priority tasks.Priority,
	channels []sharedDomain.Channel, content Content, at time.Time) Notification {

	n := Notification{
		ID:                  uuid.New(),
		UserID:              userID,
		Type:                typ,
		Priority:            priority,
		AllowedChannels:     append([]sharedDomain.Channel(nil), channels...),
		Content:             content,
		ScheduledAt:         at,
		OriginalScheduledAt: at,
	}
	if len(n.AllowedChannels) > 0 {
		n.Channel = n.AllowedChannels[0]
	}
	return n
}
