package realtime

// State is the connection lifecycle state of a Manager.
type State int

const (
	// StateDisconnected is the initial and post-disconnect state. No
	// transport exists and nothing is scheduled.
	StateDisconnected State = iota

	// StateConnecting means a dial is in flight.
	StateConnecting

	// StateConnected means frames flow in both directions.
	StateConnected

	// StateReconnecting means the link was lost and a reconnect timer
	// is pending. At most one timer exists at a time.
	StateReconnecting

	// StateErrored is terminal until the next explicit Connect. The
	// manager lands here when automatic reconnection is disabled.
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// validTransitions lists, per state, the states it may move to. The
// loop consults it before every transition so an out-of-order event
// can never corrupt the lifecycle.
var validTransitions = map[State][]State{
	StateDisconnected: {StateConnecting},
	StateConnecting:   {StateConnected, StateReconnecting, StateErrored, StateDisconnected},
	StateConnected:    {StateReconnecting, StateErrored, StateDisconnected},
	StateReconnecting: {StateConnecting, StateDisconnected},
	StateErrored:      {StateConnecting, StateDisconnected},
}

func canTransition(from, to State) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
