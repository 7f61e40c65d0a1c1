package notifications

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalforge/notifykit/pkg/logger"
	"github.com/evalforge/notifykit/pkg/wire"
)

func TestRouter_DefaultPolicies(t *testing.T) {
	tests := []struct {
		frameType    string
		wantPriority Priority
		wantDuration time.Duration
	}{
		{wire.TypeConnectionEstablished, PriorityLow, 3 * time.Second},
		{wire.TypeAssignmentUpdate, PriorityMedium, 5 * time.Second},
		{wire.TypeEvaluationComplete, PriorityMedium, 5 * time.Second},
		{wire.TypeProjectUpdate, PriorityMedium, 5 * time.Second},
		{wire.TypeDeadlineReminder, PriorityHigh, 7 * time.Second},
		{wire.TypeSystemMaintenance, PriorityUrgent, 10 * time.Second},
	}

	r := NewRouter(WithRouterLogger(logger.NewNoop()))

	for _, tt := range tests {
		t.Run(tt.frameType, func(t *testing.T) {
			env := wire.Envelope{
				Type:    tt.frameType,
				Title:   "Round 3 update",
				Message: "Two evaluations were reassigned",
				Data:    map[string]any{"round": float64(3)},
			}

			n, policy, ok := r.Route(context.Background(), env)
			require.True(t, ok)

			assert.NotEmpty(t, n.ID)
			assert.Equal(t, tt.frameType, n.Type)
			assert.Equal(t, "Round 3 update", n.Title)
			assert.Equal(t, "Two evaluations were reassigned", n.Message)
			assert.Equal(t, tt.wantPriority, n.Priority)
			assert.Equal(t, env.Data, n.Data)
			assert.False(t, n.Read)
			assert.WithinDuration(t, time.Now(), n.Timestamp, time.Second)

			assert.Equal(t, tt.wantPriority, policy.Priority)
			assert.Equal(t, tt.wantDuration, policy.DisplayDuration)
		})
	}
}

func TestRouter_PongIsSilent(t *testing.T) {
	var buf bytes.Buffer
	r := NewRouter(WithRouterLogger(logger.New(logger.WithOutput(&buf))))

	_, _, ok := r.Route(context.Background(), wire.Envelope{Type: wire.TypePong})

	assert.False(t, ok, "pong must not produce a notification")
	assert.Empty(t, buf.String(), "pong must not be logged")
}

func TestRouter_UnknownTypeLoggedAndDropped(t *testing.T) {
	var buf bytes.Buffer
	r := NewRouter(WithRouterLogger(logger.New(logger.WithOutput(&buf))))

	_, _, ok := r.Route(context.Background(), wire.Envelope{Type: "billing_alert"})

	assert.False(t, ok)
	assert.Contains(t, buf.String(), "dropping frame with unknown type")
	assert.Contains(t, buf.String(), "billing_alert")
}

func TestRouter_EnvelopePriorityOverride(t *testing.T) {
	r := NewRouter(WithRouterLogger(logger.NewNoop()))

	t.Run("valid override wins", func(t *testing.T) {
		n, _, ok := r.Route(context.Background(), wire.Envelope{
			Type:     wire.TypeAssignmentUpdate,
			Priority: "urgent",
		})
		require.True(t, ok)
		assert.Equal(t, PriorityUrgent, n.Priority)
	})

	t.Run("invalid override falls back to policy", func(t *testing.T) {
		n, _, ok := r.Route(context.Background(), wire.Envelope{
			Type:     wire.TypeAssignmentUpdate,
			Priority: "critical",
		})
		require.True(t, ok)
		assert.Equal(t, PriorityMedium, n.Priority)
	})
}

func TestRouter_CustomPolicy(t *testing.T) {
	r := NewRouter(
		WithRouterLogger(logger.NewNoop()),
		WithPolicy("quality_flag", Policy{Priority: PriorityHigh, DisplayDuration: 4 * time.Second}),
	)

	n, policy, ok := r.Route(context.Background(), wire.Envelope{Type: "quality_flag"})
	require.True(t, ok)
	assert.Equal(t, PriorityHigh, n.Priority)
	assert.Equal(t, 4*time.Second, policy.DisplayDuration)
}
