package relay

import (
	"github.com/evalforge/notifykit/pkg/wire"
)

// Event is one notification to push to connected clients. Room and
// Session narrow the audience; with both empty the event goes to every
// connection. Events arrive from the /emit endpoint, the Redis bridge,
// or a scenario script, and leave the relay as §6-shaped wire frames.
type Event struct {
	Type     string         `json:"type" yaml:"type"`
	Title    string         `json:"title,omitempty" yaml:"title,omitempty"`
	Message  string         `json:"message,omitempty" yaml:"message,omitempty"`
	Priority string         `json:"priority,omitempty" yaml:"priority,omitempty"`
	Room     string         `json:"room,omitempty" yaml:"room,omitempty"`
	Session  string         `json:"session,omitempty" yaml:"session,omitempty"`
	Data     map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
}

// Validate reports whether the event can be delivered at all. The relay
// does not police the notification type vocabulary: clients drop
// unknown discriminators themselves, and a relay that rejected them
// could never be used to exercise that path.
func (e Event) Validate() error {
	if e.Type == "" {
		return ErrMissingEventType
	}
	return nil
}

// frame serializes the event into the wire form clients decode.
func (e Event) frame() ([]byte, error) {
	return wire.Encode(wire.Envelope{
		Type:     e.Type,
		Title:    e.Title,
		Message:  e.Message,
		Priority: e.Priority,
		RoomID:   e.Room,
		Data:     e.Data,
	})
}
