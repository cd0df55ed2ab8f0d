package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"

	tasks "github.com/hearthhq/hearth/internal/tasks/domain"
)

// Batch is a group of one user's notifications collapsed into a single
// delivery. Its priority is the highest priority among its members.
type Batch struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Notifications []Notification
	ScheduledAt   time.Time
	Priority      tasks.Priority
}

// CreateBatches groups notifications per user into delivery batches.
// Within a user, notifications are taken in scheduled order; a non-urgent
// notification joins the current batch while it stays within the batch
// window of the batch's start and the batch has room, otherwise a new
// batch begins. Urgent notifications always ship alone, flushing any
// accumulating batch first. Every member of a finalized batch shares the
// batch's start time and id.
func CreateBatches(ns []Notification, window time.Duration, maxSize int) []Batch {
	byUser := make(map[uuid.UUID][]Notification)
	var userOrder []uuid.UUID
	for _, n := range ns {
		if _, seen := byUser[n.UserID]; !seen {
			userOrder = append(userOrder, n.UserID)
		}
		byUser[n.UserID] = append(byUser[n.UserID], n)
	}

	var batches []Batch
	for _, userID := range userOrder {
		batches = append(batches, batchForUser(userID, byUser[userID], window, maxSize)...)
	}
	return batches
}

func batchForUser(userID uuid.UUID, ns []Notification, window time.Duration, maxSize int) []Batch {
	sorted := make([]Notification, len(ns))
	copy(sorted, ns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ScheduledAt.Before(sorted[j].ScheduledAt)
	})

	var (
		batches []Batch
		current []Notification
	)
	flush := func() {
		if len(current) == 0 {
			return
		}
		batches = append(batches, finalizeBatch(userID, current))
		current = nil
	}

	for _, n := range sorted {
		if n.Priority == tasks.PriorityUrgent {
			flush()
			batches = append(batches, finalizeBatch(userID, []Notification{n}))
			continue
		}

		fits := len(current) > 0 &&
			len(current) < maxSize &&
			n.ScheduledAt.Sub(current[0].ScheduledAt) <= window
		if !fits {
			flush()
		}
		current = append(current, n)
	}
	flush()

	return batches
}

func finalizeBatch(userID uuid.UUID, members []Notification) Batch {
	batch := Batch{
		ID:          uuid.New(),
		UserID:      userID,
		ScheduledAt: members[0].ScheduledAt,
		Priority:    members[0].Priority,
	}
	for _, n := range members {
		n.ScheduledAt = batch.ScheduledAt
		id := batch.ID
		n.BatchID = &id
		batch.Priority = tasks.MaxPriority(batch.Priority, n.Priority)
		batch.Notifications = append(batch.Notifications, n)
	}
	return batch
}
