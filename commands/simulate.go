package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/mobile-next/windowthrottle/platform"
	"github.com/mobile-next/windowthrottle/throttle"
	"github.com/mobile-next/windowthrottle/types"
	"gopkg.in/yaml.v3"
)

// Scenario is a timeline of raw events replayed against an engine on a
// virtual clock.
type Scenario struct {
	Options       OptionsParams    `yaml:"options"`
	FrameInterval time.Duration    `yaml:"frameInterval"`
	Initial       platform.Metrics `yaml:"initial"`
	Steps         []ScenarioStep   `yaml:"steps"`
}

// ScenarioStep reports one raw event at a virtual time, along with the
// measurements that changed.
type ScenarioStep struct {
	At               time.Duration `yaml:"at"`
	Event            string        `yaml:"event"`
	platform.Metrics `yaml:",inline"`
}

// SimulatedNotification is a notification stamped with the virtual time it
// was published at.
type SimulatedNotification struct {
	At int64 `json:"at"` // milliseconds
	types.Notification
	Markers []string `json:"markers"`
}

type SimulateResponse struct {
	Notifications []SimulatedNotification `json:"notifications"`
	Errors        []string                `json:"errors,omitempty"`
	Elapsed       int64                   `json:"elapsed"` // milliseconds
	State         types.WindowState       `json:"state"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes a YAML scenario. Steps must be in time order.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}

	var last time.Duration
	for i, step := range sc.Steps {
		if step.At < last {
			return nil, fmt.Errorf("step %d at %v is earlier than the previous step at %v", i, step.At, last)
		}
		last = step.At
		if _, err := platform.ParseRawEvent(step.Event); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		if step.Orientation != "" {
			if _, ok := types.ParseOrientation(string(step.Orientation)); !ok {
				return nil, fmt.Errorf("step %d: invalid orientation '%s'", i, step.Orientation)
			}
		}
	}
	return &sc, nil
}

// RunScenario replays sc and calls emit for every notification in publish
// order. The clock is drained after the last step, so every burst ends.
func RunScenario(sc *Scenario, defaults throttle.Options, emit func(SimulatedNotification)) (*SimulateResponse, error) {
	clock := platform.NewVirtualScheduler(sc.FrameInterval)
	viewport := platform.NewViewport(clock)
	viewport.Seed(sc.Initial)

	response := &SimulateResponse{}
	opts := sc.Options.Apply(defaults)
	opts.ErrorHandler = func(err error) {
		response.Errors = append(response.Errors, err.Error())
	}

	engine, err := throttle.Configure(throttle.Environment{
		Source:    viewport,
		Measurer:  viewport,
		Scheduler: clock,
		Marker:    viewport,
	}, opts)
	if err != nil {
		if engine != nil {
			engine.Close()
		}
		return nil, err
	}
	defer engine.Close()

	record := func(n types.Notification) {
		simulated := SimulatedNotification{
			At:           clock.Now().Milliseconds(),
			Notification: n,
			Markers:      viewport.Markers(),
		}
		response.Notifications = append(response.Notifications, simulated)
		if emit != nil {
			emit(simulated)
		}
	}
	for _, name := range []types.EventName{types.EventResize, types.EventResizeEnd, types.EventScroll, types.EventScrollEnd} {
		if _, err := engine.On(name, record); err != nil {
			return nil, err
		}
	}

	for i, step := range sc.Steps {
		clock.AdvanceTo(step.At)
		if err := viewport.Report(step.Event, step.Metrics); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}
	response.Elapsed = clock.Drain().Milliseconds()
	response.State = engine.State()
	return response, nil
}
