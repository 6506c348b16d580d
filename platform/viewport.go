package platform

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/mobile-next/windowthrottle/types"
)

// ErrNotMeasured is returned for a measurement no client has reported yet.
var ErrNotMeasured = errors.New("not measured yet")

// Raw event names accepted by ParseRawEvent.
const (
	RawResize            = "resize"
	RawScroll            = "scroll"
	RawOrientationChange = "orientationchange"
)

// ParseRawEvent maps a raw event name onto its stream. Orientation changes
// are resizes.
func ParseRawEvent(name string) (types.StreamKind, error) {
	switch name {
	case RawResize, RawOrientationChange:
		return types.StreamResize, nil
	case RawScroll:
		return types.StreamScroll, nil
	}
	return "", fmt.Errorf("unknown raw event '%s', must be one of 'resize', 'scroll', 'orientationchange'", name)
}

// Metrics is a partial measurement report. Nil fields keep their previous value.
type Metrics struct {
	Viewport    *types.Size       `json:"viewport,omitempty" yaml:"viewport,omitempty"`
	Document    *types.Size       `json:"document,omitempty" yaml:"document,omitempty"`
	Scroll      *types.Point      `json:"scroll,omitempty" yaml:"scroll,omitempty"`
	Orientation types.Orientation `json:"orientation,omitempty" yaml:"orientation,omitempty"`
}

// Executor runs tasks on the engine's logical thread.
type Executor interface {
	Post(fn func()) bool
}

// Viewport holds the measurements last reported for a remote window and
// fans raw events out to subscribers on the executor. It implements the
// engine's RawSource, Measurer and Marker.
type Viewport struct {
	exec Executor

	mu          sync.Mutex
	viewport    *types.Size
	document    *types.Size
	scroll      *types.Point
	orientation types.Orientation
	handlers    map[types.StreamKind]map[uint64]func()
	nextID      uint64
	markers     map[string]struct{}
}

func NewViewport(exec Executor) *Viewport {
	return &Viewport{
		exec:     exec,
		handlers: make(map[types.StreamKind]map[uint64]func()),
		markers:  make(map[string]struct{}),
	}
}

// Seed applies m immediately. Use it before the viewport is wired to an engine.
func (v *Viewport) Seed(m Metrics) {
	v.apply(m)
}

// Update applies m on the executor without raising a raw event.
func (v *Viewport) Update(m Metrics) bool {
	return v.exec.Post(func() {
		v.apply(m)
	})
}

// Report applies m and raises the raw event in one step on the executor, so
// the measurements are in place before any handler runs.
func (v *Viewport) Report(event string, m Metrics) error {
	kind, err := ParseRawEvent(event)
	if err != nil {
		return err
	}
	if m.Orientation != "" {
		if _, ok := types.ParseOrientation(string(m.Orientation)); !ok {
			return fmt.Errorf("invalid orientation value '%s', must be 'portrait' or 'landscape'", m.Orientation)
		}
	}

	if !v.exec.Post(func() {
		v.apply(m)
		v.fire(kind)
	}) {
		return errors.New("event loop is stopped")
	}
	return nil
}

func (v *Viewport) apply(m Metrics) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if m.Viewport != nil {
		size := *m.Viewport
		v.viewport = &size
	}
	if m.Document != nil {
		size := *m.Document
		v.document = &size
	}
	if m.Scroll != nil {
		position := *m.Scroll
		v.scroll = &position
	}
	if m.Orientation != "" {
		v.orientation = m.Orientation
	}
}

func (v *Viewport) fire(kind types.StreamKind) {
	v.mu.Lock()
	ids := make([]uint64, 0, len(v.handlers[kind]))
	for id := range v.handlers[kind] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	handlers := make([]func(), 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, v.handlers[kind][id])
	}
	v.mu.Unlock()

	for _, handler := range handlers {
		handler()
	}
}

func (v *Viewport) SubscribeRaw(kind types.StreamKind, handler func()) func() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.nextID++
	id := v.nextID
	if v.handlers[kind] == nil {
		v.handlers[kind] = make(map[uint64]func())
	}
	v.handlers[kind][id] = handler

	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		delete(v.handlers[kind], id)
	}
}

func (v *Viewport) MeasureViewport() (types.Size, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.viewport == nil {
		return types.Size{}, fmt.Errorf("viewport %w", ErrNotMeasured)
	}
	return *v.viewport, nil
}

func (v *Viewport) MeasureDocument() (types.Size, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.document == nil {
		return types.Size{}, fmt.Errorf("document %w", ErrNotMeasured)
	}
	return *v.document, nil
}

// MeasureScroll reports the origin until a client says otherwise.
func (v *Viewport) MeasureScroll() (types.Point, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.scroll == nil {
		return types.Point{}, nil
	}
	return *v.scroll, nil
}

func (v *Viewport) QueryOrientation() (types.Orientation, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.orientation, v.orientation != ""
}

func (v *Viewport) SetMarker(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.markers[name] = struct{}{}
}

func (v *Viewport) ClearMarker(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.markers, name)
}

// HasMarker reports whether a marker is currently set.
func (v *Viewport) HasMarker(name string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.markers[name]
	return ok
}

// Markers returns the currently set markers in sorted order.
func (v *Viewport) Markers() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	names := make([]string, 0, len(v.markers))
	for name := range v.markers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
