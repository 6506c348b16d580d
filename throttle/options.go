package throttle

import (
	"fmt"
	"time"
)

// CoalesceMode selects how raw events are collapsed into snapshots.
type CoalesceMode string

const (
	// CoalesceFrame publishes at most one snapshot per frame while a burst lasts.
	CoalesceFrame CoalesceMode = "frame"
	// CoalesceDebounce publishes a single snapshot once the stream has been quiet.
	CoalesceDebounce CoalesceMode = "debounce"
)

const (
	DefaultScrollMarker  = "wt-scrolling"
	DefaultResizeMarker  = "wt-resizing"
	DefaultDebounceDelay = 150 * time.Millisecond
	DefaultSettleDelay   = 100 * time.Millisecond
)

// ParseCoalesceMode validates a coalesce mode name.
func ParseCoalesceMode(value string) (CoalesceMode, error) {
	switch CoalesceMode(value) {
	case CoalesceFrame, CoalesceDebounce:
		return CoalesceMode(value), nil
	}
	return "", &ConfigurationError{Field: "coalesceMode", Reason: fmt.Sprintf("unknown mode %q, must be 'frame' or 'debounce'", value)}
}

// Options configures an Engine. Start from DefaultOptions and override fields.
type Options struct {
	DetectResize bool
	DetectScroll bool

	// Marker names toggled on the root element while a burst lasts. Empty disables the marker.
	ScrollMarker string
	ResizeMarker string

	CoalesceMode  CoalesceMode
	DebounceDelay time.Duration
	// SettleDelay is how long a frame-coalesced stream must stay quiet before its end notification.
	SettleDelay time.Duration

	// PublishOnStart publishes one resize and one scroll snapshot right after configuration.
	PublishOnStart bool

	// ErrorHandler receives listener and measurement errors. Defaults to logging them.
	ErrorHandler func(error)
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		DetectResize:  true,
		DetectScroll:  true,
		ScrollMarker:  DefaultScrollMarker,
		ResizeMarker:  DefaultResizeMarker,
		CoalesceMode:  CoalesceFrame,
		DebounceDelay: DefaultDebounceDelay,
		SettleDelay:   DefaultSettleDelay,
	}
}

// Validate reports the first invalid option value.
func (o Options) Validate() error {
	if o.CoalesceMode != "" {
		if _, err := ParseCoalesceMode(string(o.CoalesceMode)); err != nil {
			return err
		}
	}
	if o.DebounceDelay < 0 {
		return &ConfigurationError{Field: "debounceDelay", Reason: fmt.Sprintf("must not be negative, got %v", o.DebounceDelay)}
	}
	if o.SettleDelay < 0 {
		return &ConfigurationError{Field: "settleDelay", Reason: fmt.Sprintf("must not be negative, got %v", o.SettleDelay)}
	}
	return nil
}

func (o Options) normalize() (Options, error) {
	if err := o.Validate(); err != nil {
		return o, err
	}
	if o.CoalesceMode == "" {
		o.CoalesceMode = CoalesceFrame
	}
	return o, nil
}
