package relay_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalforge/notifykit/pkg/relay"
	"github.com/evalforge/notifykit/pkg/wire"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []relay.Event
}

func (p *fakePublisher) Publish(event relay.Event) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return 1
}

func (p *fakePublisher) published() []relay.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]relay.Event, len(p.events))
	copy(out, p.events)
	return out
}

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadScenario(t *testing.T) {
	t.Run("valid script", func(t *testing.T) {
		path := writeScenario(t, `
loop: true
steps:
  - after: 2s
    type: deadline_reminder
    title: Evaluation due
    priority: high
    room: "project:alpha"
  - after: 500ms
    type: system_maintenance
    priority: urgent
`)
		sc, err := relay.LoadScenario(path)
		require.NoError(t, err)

		assert.True(t, sc.Loop)
		require.Len(t, sc.Steps, 2)
		assert.Equal(t, relay.Duration(2*time.Second), sc.Steps[0].After)
		assert.Equal(t, wire.TypeDeadlineReminder, sc.Steps[0].Event.Type)
		assert.Equal(t, "project:alpha", sc.Steps[0].Event.Room)
		assert.Equal(t, relay.Duration(500*time.Millisecond), sc.Steps[1].After)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := relay.LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
		require.ErrorIs(t, err, relay.ErrScenarioLoad)
	})

	t.Run("empty script", func(t *testing.T) {
		path := writeScenario(t, "steps: []")
		_, err := relay.LoadScenario(path)
		require.ErrorIs(t, err, relay.ErrScenarioLoad)
	})

	t.Run("step without type", func(t *testing.T) {
		path := writeScenario(t, `
steps:
  - after: 1s
    title: no discriminator
`)
		_, err := relay.LoadScenario(path)
		require.ErrorIs(t, err, relay.ErrScenarioLoad)
		require.ErrorIs(t, err, relay.ErrMissingEventType)
	})

	t.Run("bad duration", func(t *testing.T) {
		path := writeScenario(t, `
steps:
  - after: soon
    type: project_update
`)
		_, err := relay.LoadScenario(path)
		require.ErrorIs(t, err, relay.ErrScenarioLoad)
	})
}

func TestPlayer_RunsScriptInOrder(t *testing.T) {
	sc := relay.Scenario{Steps: []relay.Step{
		{After: relay.Duration(10 * time.Millisecond), Event: relay.Event{Type: wire.TypeProjectUpdate}},
		{After: relay.Duration(10 * time.Millisecond), Event: relay.Event{Type: wire.TypeDeadlineReminder}},
	}}
	pub := &fakePublisher{}

	err := relay.NewPlayer(sc, pub, nil).Run(context.Background())
	require.NoError(t, err)

	events := pub.published()
	require.Len(t, events, 2)
	assert.Equal(t, wire.TypeProjectUpdate, events[0].Type)
	assert.Equal(t, wire.TypeDeadlineReminder, events[1].Type)
}

func TestPlayer_LoopStopsOnCancel(t *testing.T) {
	sc := relay.Scenario{
		Loop: true,
		Steps: []relay.Step{
			{After: relay.Duration(5 * time.Millisecond), Event: relay.Event{Type: wire.TypeProjectUpdate}},
		},
	}
	pub := &fakePublisher{}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	err := relay.NewPlayer(sc, pub, nil).Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotEmpty(t, pub.published())
}
