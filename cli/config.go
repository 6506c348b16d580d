package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mobile-next/windowthrottle/commands"
	"github.com/mobile-next/windowthrottle/platform"
	"github.com/mobile-next/windowthrottle/throttle"
	"github.com/mobile-next/windowthrottle/utils"
	"gopkg.in/ini.v1"
)

// Config is the content of an optional ini file. The [throttle] section
// holds engine defaults, the [server] section holds server settings.
type Config struct {
	Throttle      throttle.Options
	Listen        string
	CORS          bool
	MaxSessions   int
	FrameInterval time.Duration
}

func defaultConfig() *Config {
	return &Config{
		Throttle:      throttle.DefaultOptions(),
		MaxSessions:   commands.DefaultMaxSessions,
		FrameInterval: platform.DefaultFrameInterval,
	}
}

// loadConfig reads path over the defaults. An empty path yields the defaults.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	utils.Verbose("Loaded config from %s", path)

	if err := readThrottleSection(file.Section("throttle"), &cfg.Throttle); err != nil {
		return nil, err
	}
	if err := readServerSection(file.Section("server"), cfg); err != nil {
		return nil, err
	}
	if err := cfg.Throttle.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readThrottleSection(section *ini.Section, opts *throttle.Options) error {
	for _, b := range []struct {
		key    string
		target *bool
	}{
		{"detect_resize", &opts.DetectResize},
		{"detect_scroll", &opts.DetectScroll},
		{"publish_on_start", &opts.PublishOnStart},
	} {
		if !section.HasKey(b.key) {
			continue
		}
		value, err := section.Key(b.key).Bool()
		if err != nil {
			return fmt.Errorf("invalid [throttle] %s: %w", b.key, err)
		}
		*b.target = value
	}

	// an empty marker disables it, so presence matters, not the value
	if section.HasKey("scroll_marker") {
		opts.ScrollMarker = section.Key("scroll_marker").String()
	}
	if section.HasKey("resize_marker") {
		opts.ResizeMarker = section.Key("resize_marker").String()
	}

	if section.HasKey("coalesce_mode") {
		mode, err := throttle.ParseCoalesceMode(section.Key("coalesce_mode").String())
		if err != nil {
			return err
		}
		opts.CoalesceMode = mode
	}

	for _, d := range []struct {
		key    string
		target *time.Duration
	}{
		{"debounce_delay", &opts.DebounceDelay},
		{"settle_delay", &opts.SettleDelay},
	} {
		if !section.HasKey(d.key) {
			continue
		}
		value, err := parseDelay(section.Key(d.key).String())
		if err != nil {
			return fmt.Errorf("invalid [throttle] %s: %w", d.key, err)
		}
		*d.target = value
	}
	return nil
}

func readServerSection(section *ini.Section, cfg *Config) error {
	cfg.Listen = section.Key("listen").String()

	if section.HasKey("cors") {
		value, err := section.Key("cors").Bool()
		if err != nil {
			return fmt.Errorf("invalid [server] cors: %w", err)
		}
		cfg.CORS = value
	}
	if section.HasKey("max_sessions") {
		value, err := section.Key("max_sessions").Int()
		if err != nil || value <= 0 {
			return fmt.Errorf("invalid [server] max_sessions %q, must be a positive integer", section.Key("max_sessions").String())
		}
		cfg.MaxSessions = value
	}
	if section.HasKey("frame_interval") {
		value, err := parseDelay(section.Key("frame_interval").String())
		if err != nil || value <= 0 {
			return fmt.Errorf("invalid [server] frame_interval %q", section.Key("frame_interval").String())
		}
		cfg.FrameInterval = value
	}
	return nil
}

// parseDelay accepts a Go duration ("150ms") or a bare number of milliseconds.
func parseDelay(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(value)
}
