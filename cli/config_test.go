package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mobile-next/windowthrottle/platform"
	"github.com/mobile-next/windowthrottle/throttle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "windowthrottle.ini")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)

	assert.Equal(t, throttle.DefaultOptions().SettleDelay, cfg.Throttle.SettleDelay)
	assert.Equal(t, platform.DefaultFrameInterval, cfg.FrameInterval)
	assert.Empty(t, cfg.Listen)
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[throttle]
detect_resize = false
scroll_marker =
resize_marker = is-resizing
coalesce_mode = debounce
debounce_delay = 250
settle_delay = 80ms
publish_on_start = true

[server]
listen = 0.0.0.0:13000
cors = true
max_sessions = 12
frame_interval = 8ms
`)

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.False(t, cfg.Throttle.DetectResize)
	assert.True(t, cfg.Throttle.DetectScroll)
	assert.Equal(t, "", cfg.Throttle.ScrollMarker)
	assert.Equal(t, "is-resizing", cfg.Throttle.ResizeMarker)
	assert.Equal(t, throttle.CoalesceDebounce, cfg.Throttle.CoalesceMode)
	assert.Equal(t, 250*time.Millisecond, cfg.Throttle.DebounceDelay)
	assert.Equal(t, 80*time.Millisecond, cfg.Throttle.SettleDelay)
	assert.True(t, cfg.Throttle.PublishOnStart)

	assert.Equal(t, "0.0.0.0:13000", cfg.Listen)
	assert.True(t, cfg.CORS)
	assert.Equal(t, 12, cfg.MaxSessions)
	assert.Equal(t, 8*time.Millisecond, cfg.FrameInterval)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad bool", "[throttle]\ndetect_scroll = maybe\n"},
		{"bad mode", "[throttle]\ncoalesce_mode = sometimes\n"},
		{"bad delay", "[throttle]\nsettle_delay = soon\n"},
		{"negative delay", "[throttle]\ndebounce_delay = -10\n"},
		{"bad sessions", "[server]\nmax_sessions = 0\n"},
		{"bad frame interval", "[server]\nframe_interval = 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.ini"))
	assert.Error(t, err)
}

func TestParseDelay(t *testing.T) {
	tests := []struct {
		value    string
		expected time.Duration
	}{
		{"150", 150 * time.Millisecond},
		{" 20 ", 20 * time.Millisecond},
		{"1s", time.Second},
		{"75ms", 75 * time.Millisecond},
	}
	for _, tt := range tests {
		got, err := parseDelay(tt.value)
		require.NoError(t, err, tt.value)
		assert.Equal(t, tt.expected, got, tt.value)
	}

	_, err := parseDelay("later")
	assert.Error(t, err)
}
