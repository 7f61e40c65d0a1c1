package wire

import (
	"encoding/json"
	"errors"
)

// Frame is an outbound control frame. RoomID is only set for room
// membership frames.
type Frame struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id,omitempty"`
}

// Ping builds the heartbeat probe frame.
func Ping() Frame {
	return Frame{Type: TypePing}
}

// JoinRoom builds the frame announcing membership in a room.
func JoinRoom(roomID string) Frame {
	return Frame{Type: TypeJoinRoom, RoomID: roomID}
}

// LeaveRoom builds the frame revoking membership in a room.
func LeaveRoom(roomID string) Frame {
	return Frame{Type: TypeLeaveRoom, RoomID: roomID}
}

// Pong builds the heartbeat acknowledgment frame. Servers answer every
// ping with it; clients consume it silently.
func Pong() Frame {
	return Frame{Type: TypePong}
}

// Encode serializes an outbound frame to its wire form.
func Encode(frame any) ([]byte, error) {
	data, err := json.Marshal(frame)
	if err != nil {
		return nil, errors.Join(ErrEncodeFrame, err)
	}
	return data, nil
}
