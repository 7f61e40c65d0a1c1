package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/evalforge/notifykit/pkg/logger"
)

// Scenario is a timed script of notification events, used to drive
// demos and soak tests against connected clients.
//
// File format:
//
//	loop: true
//	steps:
//	  - after: 2s
//	    type: deadline_reminder
//	    title: Evaluation due
//	    message: "Project Alpha review closes in one hour"
//	    priority: high
//	    room: "project:alpha"
//	  - after: 500ms
//	    type: system_maintenance
//	    title: Maintenance window
//	    priority: urgent
type Scenario struct {
	// Loop restarts the script from the top after the last step.
	Loop bool `yaml:"loop"`

	Steps []Step `yaml:"steps"`
}

// Step is one scripted event, published After the previous step.
type Step struct {
	After Duration `yaml:"after"`
	Event Event    `yaml:",inline"`
}

// Duration wraps time.Duration with YAML decoding from strings like
// "1.5s" or "500ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// LoadScenario reads and validates a YAML scenario file.
func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, errors.Join(ErrScenarioLoad, err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return Scenario{}, errors.Join(ErrScenarioLoad, err)
	}
	if len(sc.Steps) == 0 {
		return Scenario{}, errors.Join(ErrScenarioLoad, errors.New("scenario has no steps"))
	}
	for i, step := range sc.Steps {
		if err := step.Event.Validate(); err != nil {
			return Scenario{}, errors.Join(ErrScenarioLoad, fmt.Errorf("step %d: %w", i, err))
		}
	}
	return sc, nil
}

// Player replays a scenario through a Publisher.
type Player struct {
	scenario Scenario
	pub      Publisher
	log      *slog.Logger
}

// NewPlayer creates a Player. A nil logger is replaced with a no-op.
func NewPlayer(scenario Scenario, pub Publisher, log *slog.Logger) *Player {
	if log == nil {
		log = logger.NewNoop()
	}
	return &Player{scenario: scenario, pub: pub, log: log}
}

// Run publishes the scripted events with their configured pacing until
// the script ends or ctx is cancelled. With Loop set it runs until
// cancelled.
func (p *Player) Run(ctx context.Context) error {
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		for _, step := range p.scenario.Steps {
			timer.Reset(time.Duration(step.After))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}

			delivered := p.pub.Publish(step.Event)
			p.log.LogAttrs(ctx, slog.LevelDebug, "scenario event published",
				logger.FrameType(step.Event.Type),
				slog.Int("delivered", delivered),
			)
		}
		if !p.scenario.Loop {
			return nil
		}
	}
}
