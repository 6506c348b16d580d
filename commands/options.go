package commands

import (
	"time"

	"github.com/mobile-next/windowthrottle/throttle"
)

// OptionsParams carries engine options over the wire. Omitted fields keep the
// store defaults; unknown fields are ignored by the decoder.
type OptionsParams struct {
	DetectResize   *bool   `json:"detectResize,omitempty" yaml:"detectResize,omitempty"`
	DetectScroll   *bool   `json:"detectScroll,omitempty" yaml:"detectScroll,omitempty"`
	ScrollMarker   *string `json:"scrollMarker,omitempty" yaml:"scrollMarker,omitempty"`
	ResizeMarker   *string `json:"resizeMarker,omitempty" yaml:"resizeMarker,omitempty"`
	CoalesceMode   *string `json:"coalesceMode,omitempty" yaml:"coalesceMode,omitempty"`
	DebounceDelay  *int    `json:"debounceDelay,omitempty" yaml:"debounceDelay,omitempty"` // milliseconds
	SettleDelay    *int    `json:"settleDelay,omitempty" yaml:"settleDelay,omitempty"`     // milliseconds
	PublishOnStart *bool   `json:"publishOnStart,omitempty" yaml:"publishOnStart,omitempty"`
}

// Apply overlays the set fields on base. Values are validated by throttle.Configure.
func (p OptionsParams) Apply(base throttle.Options) throttle.Options {
	opts := base
	if p.DetectResize != nil {
		opts.DetectResize = *p.DetectResize
	}
	if p.DetectScroll != nil {
		opts.DetectScroll = *p.DetectScroll
	}
	if p.ScrollMarker != nil {
		opts.ScrollMarker = *p.ScrollMarker
	}
	if p.ResizeMarker != nil {
		opts.ResizeMarker = *p.ResizeMarker
	}
	if p.CoalesceMode != nil {
		opts.CoalesceMode = throttle.CoalesceMode(*p.CoalesceMode)
	}
	if p.DebounceDelay != nil {
		opts.DebounceDelay = time.Duration(*p.DebounceDelay) * time.Millisecond
	}
	if p.SettleDelay != nil {
		opts.SettleDelay = time.Duration(*p.SettleDelay) * time.Millisecond
	}
	if p.PublishOnStart != nil {
		opts.PublishOnStart = *p.PublishOnStart
	}
	return opts
}

// OptionsView is the JSON rendering of effective engine options.
type OptionsView struct {
	DetectResize   bool   `json:"detectResize"`
	DetectScroll   bool   `json:"detectScroll"`
	ScrollMarker   string `json:"scrollMarker"`
	ResizeMarker   string `json:"resizeMarker"`
	CoalesceMode   string `json:"coalesceMode"`
	DebounceDelay  int64  `json:"debounceDelay"`
	SettleDelay    int64  `json:"settleDelay"`
	PublishOnStart bool   `json:"publishOnStart"`
}

func NewOptionsView(opts throttle.Options) OptionsView {
	return OptionsView{
		DetectResize:   opts.DetectResize,
		DetectScroll:   opts.DetectScroll,
		ScrollMarker:   opts.ScrollMarker,
		ResizeMarker:   opts.ResizeMarker,
		CoalesceMode:   string(opts.CoalesceMode),
		DebounceDelay:  opts.DebounceDelay.Milliseconds(),
		SettleDelay:    opts.SettleDelay.Milliseconds(),
		PublishOnStart: opts.PublishOnStart,
	}
}
