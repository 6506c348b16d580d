package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mobile-next/windowthrottle/throttle"
	"github.com/mobile-next/windowthrottle/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scrollScenario = `
frameInterval: 16ms
initial:
  viewport: {width: 1000, height: 800}
  document: {width: 1000, height: 3000}
steps:
  - at: 0ms
    event: scroll
    scroll: {x: 0, y: 100}
  - at: 5ms
    event: scroll
    scroll: {x: 0, y: 200}
  - at: 40ms
    event: scroll
    scroll: {x: 0, y: 300}
`

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(scrollScenario))
	require.NoError(t, err)

	assert.Equal(t, int64(16), sc.FrameInterval.Milliseconds())
	require.Len(t, sc.Steps, 3)
	assert.Equal(t, "scroll", sc.Steps[2].Event)
	require.NotNil(t, sc.Steps[2].Scroll)
	assert.Equal(t, 300, sc.Steps[2].Scroll.Y)
	require.NotNil(t, sc.Initial.Document)
	assert.Equal(t, 3000, sc.Initial.Document.Height)
}

func TestParseScenarioErrors(t *testing.T) {
	tests := []struct {
		name     string
		scenario string
		contains string
	}{
		{
			name:     "out of order",
			scenario: "steps:\n  - {at: 10ms, event: scroll}\n  - {at: 5ms, event: scroll}\n",
			contains: "earlier than",
		},
		{
			name:     "unknown event",
			scenario: "steps:\n  - {at: 0ms, event: wheel}\n",
			contains: "unknown raw event",
		},
		{
			name:     "bad orientation",
			scenario: "steps:\n  - {at: 0ms, event: resize, orientation: sideways}\n",
			contains: "invalid orientation",
		},
		{
			name:     "not yaml",
			scenario: "steps: [",
			contains: "failed to parse scenario",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.scenario))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestRunScenarioFrameMode(t *testing.T) {
	sc, err := ParseScenario([]byte(scrollScenario))
	require.NoError(t, err)

	var emitted []SimulatedNotification
	resp, err := RunScenario(sc, throttle.DefaultOptions(), func(n SimulatedNotification) {
		emitted = append(emitted, n)
	})
	require.NoError(t, err)
	assert.Equal(t, resp.Notifications, emitted)
	assert.Empty(t, resp.Errors)

	require.Len(t, emitted, 3)

	assert.Equal(t, types.EventScroll, emitted[0].Name)
	assert.Equal(t, int64(16), emitted[0].At)
	assert.Equal(t, types.Point{Y: 200}, emitted[0].Scroll.Delta)
	assert.Equal(t, []string{throttle.DefaultScrollMarker}, emitted[0].Markers)

	assert.Equal(t, types.EventScroll, emitted[1].Name)
	assert.Equal(t, int64(48), emitted[1].At)
	assert.Equal(t, types.Point{Y: 100}, emitted[1].Scroll.Delta)

	assert.Equal(t, types.EventScrollEnd, emitted[2].Name)
	assert.Equal(t, int64(148), emitted[2].At)
	assert.Equal(t, emitted[1].Scroll, emitted[2].Scroll)
	assert.Empty(t, emitted[2].Markers)

	assert.Equal(t, 300, resp.State.ScrollY)
	assert.False(t, resp.State.IsScrolling)
}

func TestRunScenarioDebounceMode(t *testing.T) {
	sc, err := ParseScenario([]byte(scrollScenario + "options:\n  coalesceMode: debounce\n  debounceDelay: 50\n"))
	require.NoError(t, err)

	resp, err := RunScenario(sc, throttle.DefaultOptions(), nil)
	require.NoError(t, err)

	require.Len(t, resp.Notifications, 1)
	n := resp.Notifications[0]
	assert.Equal(t, types.EventScroll, n.Name)
	assert.Equal(t, int64(90), n.At)
	assert.Equal(t, types.Point{Y: 300}, n.Scroll.Delta)
}

func TestRunScenarioReportsMeasurementErrors(t *testing.T) {
	sc, err := ParseScenario([]byte("steps:\n  - {at: 0ms, event: resize}\n"))
	require.NoError(t, err)

	resp, err := RunScenario(sc, throttle.DefaultOptions(), nil)
	require.NoError(t, err)

	assert.Empty(t, resp.Notifications)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0], "viewport")
	assert.False(t, resp.State.IsResizing)
}

func TestRunScenarioInvalidOptions(t *testing.T) {
	sc, err := ParseScenario([]byte("options:\n  settleDelay: -5\n"))
	require.NoError(t, err)

	_, err = RunScenario(sc, throttle.DefaultOptions(), nil)
	require.Error(t, err)
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scrollScenario), 0o600))

	sc, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Len(t, sc.Steps, 3)

	_, err = LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
