package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateString(t *testing.T) {
	assert.Equal(t, "disconnected", StateDisconnected.String())
	assert.Equal(t, "connecting", StateConnecting.String())
	assert.Equal(t, "connected", StateConnected.String())
	assert.Equal(t, "reconnecting", StateReconnecting.String())
	assert.Equal(t, "errored", StateErrored.String())
	assert.Equal(t, "unknown", State(99).String())
}

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to State }{
		{StateDisconnected, StateConnecting},
		{StateConnecting, StateConnected},
		{StateConnecting, StateReconnecting},
		{StateConnecting, StateErrored},
		{StateConnecting, StateDisconnected},
		{StateConnected, StateReconnecting},
		{StateConnected, StateErrored},
		{StateConnected, StateDisconnected},
		{StateReconnecting, StateConnecting},
		{StateReconnecting, StateDisconnected},
		{StateErrored, StateConnecting},
		{StateErrored, StateDisconnected},
	}
	for _, tr := range allowed {
		assert.True(t, canTransition(tr.from, tr.to), "%s -> %s should be allowed", tr.from, tr.to)
	}

	denied := []struct{ from, to State }{
		{StateDisconnected, StateConnected},
		{StateDisconnected, StateReconnecting},
		{StateDisconnected, StateErrored},
		{StateConnected, StateConnecting},
		{StateReconnecting, StateConnected},
		{StateErrored, StateConnected},
		{StateErrored, StateReconnecting},
	}
	for _, tr := range denied {
		assert.False(t, canTransition(tr.from, tr.to), "%s -> %s should be denied", tr.from, tr.to)
	}
}
