package throttle

import (
	"time"

	"github.com/mobile-next/windowthrottle/types"
)

// fallbackFrameInterval is used when the scheduler cannot align to frames.
const fallbackFrameInterval = time.Second / 60

// RawSource delivers unthrottled "something changed" notifications.
type RawSource interface {
	SubscribeRaw(kind types.StreamKind, handler func()) (unsubscribe func())
}

// Measurer reads the current window measurements on demand.
type Measurer interface {
	MeasureViewport() (types.Size, error)
	MeasureDocument() (types.Size, error)
	MeasureScroll() (types.Point, error)
	// QueryOrientation returns false when the environment cannot report an orientation.
	QueryOrientation() (types.Orientation, bool)
}

// Scheduler runs delayed single-shot callbacks. The returned function cancels
// the callback; once it returns the callback is guaranteed not to run.
type Scheduler interface {
	ScheduleTimer(cb func(), delay time.Duration) (cancel func())
}

// FrameScheduler runs a callback before the next visual update.
type FrameScheduler interface {
	ScheduleFrame(cb func()) (cancel func())
}

// Marker toggles presentation flags on the root element. Both calls are idempotent.
type Marker interface {
	SetMarker(name string)
	ClearMarker(name string)
}

// Environment bundles the collaborators an Engine depends on. Marker is optional.
type Environment struct {
	Source    RawSource
	Measurer  Measurer
	Scheduler Scheduler
	Marker    Marker
}

func (env Environment) missing() string {
	switch {
	case env.Scheduler == nil:
		return "scheduler"
	case env.Source == nil:
		return "raw event source"
	case env.Measurer == nil:
		return "measurer"
	}
	return ""
}

// frames returns the frame capability of the scheduler, falling back to a
// fixed 60Hz timer.
func (env Environment) frames() FrameScheduler {
	if fs, ok := env.Scheduler.(FrameScheduler); ok {
		return fs
	}
	return timerFrames{scheduler: env.Scheduler}
}

type timerFrames struct {
	scheduler Scheduler
}

func (f timerFrames) ScheduleFrame(cb func()) func() {
	return f.scheduler.ScheduleTimer(cb, fallbackFrameInterval)
}
