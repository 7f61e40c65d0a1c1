package wire

import (
	"encoding/json"
	"errors"
)

// Inbound frame types recognized by the protocol. Anything else is dropped
// by the router with a log line.
const (
	TypeConnectionEstablished = "connection_established"
	TypeAssignmentUpdate      = "assignment_update"
	TypeEvaluationComplete    = "evaluation_complete"
	TypeDeadlineReminder      = "deadline_reminder"
	TypeSystemMaintenance     = "system_maintenance"
	TypeProjectUpdate         = "project_update"
	TypePong                  = "pong"
)

// Outbound control frame types.
const (
	TypePing      = "ping"
	TypeJoinRoom  = "join_room"
	TypeLeaveRoom = "leave_room"
)

// Envelope is the decoded form of one inbound frame: the type discriminator
// plus the payload fields a notification frame may carry. It is transient
// and consumed by the router.
type Envelope struct {
	Type     string         `json:"type"`
	Title    string         `json:"title,omitempty"`
	Message  string         `json:"message,omitempty"`
	Priority string         `json:"priority,omitempty"`
	RoomID   string         `json:"room_id,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// Decode parses a raw inbound frame into an Envelope.
// It returns ErrMalformedFrame when the payload is not a JSON object and
// ErrMissingType when the object carries no type discriminator.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, errors.Join(ErrMalformedFrame, err)
	}
	if env.Type == "" {
		return Envelope{}, ErrMissingType
	}
	return env, nil
}
