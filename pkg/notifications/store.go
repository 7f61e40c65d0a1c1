package notifications

import (
	"sync"
)

// DefaultCapacity bounds the store when no explicit capacity is given.
const DefaultCapacity = 50

// Store keeps the most recent notifications, newest first. When the
// capacity is reached, ingesting a new notification evicts the oldest.
// All methods are safe for concurrent use; mutating methods are
// idempotent so callers never need to check membership first.
type Store struct {
	capacity int
	items    []Notification
	mu       sync.RWMutex
}

// NewStore creates a bounded notification store. Capacities below one
// fall back to DefaultCapacity.
func NewStore(capacity int) *Store {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Store{
		capacity: capacity,
		items:    make([]Notification, 0, capacity),
	}
}

// Add prepends n as the newest notification, evicting the oldest entry
// when the store is at capacity.
func (s *Store) Add(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == s.capacity {
		s.items = s.items[:s.capacity-1]
	}
	s.items = append([]Notification{n}, s.items...)
}

// List returns a copy of the stored notifications, newest first.
func (s *Store) List() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Notification, len(s.items))
	copy(out, s.items)
	return out
}

// Get returns the notification with the given id.
func (s *Store) Get(id string) (Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, n := range s.items {
		if n.ID == id {
			return n, true
		}
	}
	return Notification{}, false
}

// Len returns the number of stored notifications.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// UnreadCount returns how many stored notifications are unread.
func (s *Store) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.items {
		if !n.Read {
			count++
		}
	}
	return count
}

// MarkRead marks the notification with the given id as read. Unknown
// ids and already-read notifications are no-ops.
func (s *Store) MarkRead(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Read = true
			return
		}
	}
}

// MarkAllRead marks every stored notification as read.
func (s *Store) MarkAllRead() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		s.items[i].Read = true
	}
}

// Remove deletes the notification with the given id. Unknown ids are
// a no-op.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// Clear removes all stored notifications.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = s.items[:0]
}
