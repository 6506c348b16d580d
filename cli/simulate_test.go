package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mobile-next/windowthrottle/throttle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resizeScenario = `
initial:
  viewport: {width: 1000, height: 800}
  document: {width: 1000, height: 800}
steps:
  - at: 0ms
    event: resize
    viewport: {width: 900, height: 800}
  - at: 30ms
    event: orientationchange
    viewport: {width: 800, height: 900}
    orientation: portrait
`

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunSimulationWritesJSONLines(t *testing.T) {
	path := writeScenario(t, resizeScenario)

	var out bytes.Buffer
	require.NoError(t, runSimulation(&out, path, throttle.DefaultOptions()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)

	var names []string
	for _, line := range lines {
		var n map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &n))
		assert.Contains(t, n, "at")
		assert.Contains(t, n, "resize")
		names = append(names, n["name"].(string))
	}
	assert.Equal(t, []string{"resize", "resize", "resizeEnd"}, names)

	var last map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &last))
	resize := last["resize"].(map[string]interface{})
	assert.Equal(t, "portrait", resize["orientation"])
}

func TestRunSimulationMissingFile(t *testing.T) {
	var out bytes.Buffer
	err := runSimulation(&out, filepath.Join(t.TempDir(), "nope.yaml"), throttle.DefaultOptions())
	assert.Error(t, err)
	assert.Empty(t, out.String())
}

func TestSimulateCommand(t *testing.T) {
	path := writeScenario(t, resizeScenario)
	configPath = ""
	watchScenario = false

	var out bytes.Buffer
	simulateCmd.SetOut(&out)
	defer simulateCmd.SetOut(nil)

	require.NoError(t, simulateCmd.RunE(simulateCmd, []string{path}))
	assert.Equal(t, 3, strings.Count(out.String(), "\n"))
}

func TestWatchScenarioFileReruns(t *testing.T) {
	path := writeScenario(t, resizeScenario)

	watcher, abs, err := newScenarioWatcher(path)
	require.NoError(t, err)
	defer watcher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runs := make(chan struct{}, 4)
	done := make(chan struct{})
	go func() {
		defer close(done)
		watchScenarioFile(ctx, watcher, abs, func() {
			runs <- struct{}{}
		})
	}()

	require.NoError(t, os.WriteFile(path, []byte(resizeScenario+"\n"), 0o600))

	select {
	case <-runs:
	case <-time.After(3 * time.Second):
		t.Fatal("scenario change was not picked up")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watch loop did not stop")
	}
}

func TestResolveListenAddress(t *testing.T) {
	assert.Equal(t, "localhost:9000", resolveListenAddress("localhost:9000", "0.0.0.0:1"))
	assert.Equal(t, "0.0.0.0:1", resolveListenAddress("", "0.0.0.0:1"))
	assert.Equal(t, defaultServerAddress, resolveListenAddress("", ""))
}
