package notifications

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Priority orders notifications by urgency. The zero value is PriorityLow.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityUrgent
)

// Valid reports whether p is one of the defined priority levels.
func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityUrgent
}

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityUrgent:
		return "urgent"
	default:
		return "unknown"
	}
}

// ParsePriority maps a wire-level priority string to its Priority.
// It reports false for anything outside the four known levels.
func ParsePriority(s string) (Priority, bool) {
	switch s {
	case "low":
		return PriorityLow, true
	case "medium":
		return PriorityMedium, true
	case "high":
		return PriorityHigh, true
	case "urgent":
		return PriorityUrgent, true
	default:
		return PriorityLow, false
	}
}

// MarshalJSON encodes the priority as its lowercase string form.
func (p Priority) MarshalJSON() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid priority %d", int(p))
	}
	return []byte(`"` + p.String() + `"`), nil
}

// UnmarshalJSON decodes a lowercase priority string.
func (p *Priority) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("priority must be a string, got %s", data)
	}
	parsed, ok := ParsePriority(string(data[1 : len(data)-1]))
	if !ok {
		return fmt.Errorf("unknown priority %s", data)
	}
	*p = parsed
	return nil
}

// Notification is the domain model held by the Store and shown as toasts.
// Type carries the originating frame type (e.g. "deadline_reminder").
type Notification struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Priority  Priority       `json:"priority"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Read      bool           `json:"read"`
}

// newID returns a time-ordered unique identifier. UUIDv7 keeps IDs
// sortable by creation time; on entropy failure it falls back to v4.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
