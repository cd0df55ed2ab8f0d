package domain

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
)

var (
	ErrDuplicateReminder = errors.New("reminder already exists")
	ErrUnknownReminder   = errors.New("reminder not found")
)

// Store is an in-memory index over reminders: a primary mapping by id plus
// secondary orderings by task, by user, and a scheduled queue sorted by
// time. Reminders are never removed; they leave circulation through the
// cancelled status. The store itself is not synchronized; callers serialize
// access per user.
type Store struct {
	byID   map[uuid.UUID]Reminder
	byTask map[uuid.UUID][]uuid.UUID
	byUser map[uuid.UUID][]uuid.UUID
	queue  []uuid.UUID
}

// NewStore creates an empty reminder store.
func NewStore() *Store {
	return &Store{
		byID:   make(map[uuid.UUID]Reminder),
		byTask: make(map[uuid.UUID][]uuid.UUID),
		byUser: make(map[uuid.UUID][]uuid.UUID),
	}
}

// Add inserts a new reminder into every index.
func (s *Store) Add(r Reminder) error {
	if _, exists := s.byID[r.ID]; exists {
		return ErrDuplicateReminder
	}
	s.byID[r.ID] = r
	s.byTask[r.TaskID] = append(s.byTask[r.TaskID], r.ID)
	s.byUser[r.UserID] = append(s.byUser[r.UserID], r.ID)
	s.queue = append(s.queue, r.ID)
	s.sortQueue()
	return nil
}

// Update replaces a stored reminder with a new value, reordering the
// scheduled queue when its time changed.
func (s *Store) Update(r Reminder) error {
	if _, exists := s.byID[r.ID]; !exists {
		return ErrUnknownReminder
	}
	s.byID[r.ID] = r
	s.sortQueue()
	return nil
}

// Get returns the reminder with the given id.
func (s *Store) Get(id uuid.UUID) (Reminder, bool) {
	r, ok := s.byID[id]
	return r, ok
}

// Len returns the number of stored reminders.
func (s *Store) Len() int {
	return len(s.byID)
}

// ByTask returns all reminders for a task, in insertion order.
func (s *Store) ByTask(taskID uuid.UUID) []Reminder {
	return s.collect(s.byTask[taskID])
}

// ByUser returns all reminders for a user, in insertion order.
func (s *Store) ByUser(userID uuid.UUID) []Reminder {
	return s.collect(s.byUser[userID])
}

// Scheduled returns every reminder ordered by scheduled time ascending.
func (s *Store) Scheduled() []Reminder {
	return s.collect(s.queue)
}

// Due returns the scheduled reminders whose time has arrived, ordered by
// scheduled time ascending.
func (s *Store) Due(now time.Time) []Reminder {
	var due []Reminder
	for _, id := range s.queue {
		r := s.byID[id]
		if r.ScheduledAt.After(now) {
			break
		}
		if r.IsDue(now) {
			due = append(due, r)
		}
	}
	return due
}

// All returns every stored reminder in unspecified order.
func (s *Store) All() []Reminder {
	out := make([]Reminder, 0, len(s.byID))
	for _, r := range s.byID {
		out = append(out, r)
	}
	return out
}

func (s *Store) collect(ids []uuid.UUID) []Reminder {
	out := make([]Reminder, 0, len(ids))
	for _, id := range ids {
		if r, ok := s.byID[id]; ok {
			out = append(out, r)
		}
	}
	return out
}

func (s *Store) sortQueue() {
	sort.SliceStable(s.queue, func(i, j int) bool {
		return s.byID[s.queue[i]].ScheduledAt.Before(s.byID[s.queue[j]].ScheduledAt)
	})
}
