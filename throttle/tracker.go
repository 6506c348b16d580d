package throttle

import (
	"time"

	"github.com/mobile-next/windowthrottle/types"
)

// tracker is the activity state machine of one stream: idle until the first
// raw event of a burst, active until the burst settles. All fields are
// guarded by the owning engine's mutex.
type tracker struct {
	kind   types.StreamKind
	marker string

	active bool
	// needsPublish is set by raw events while a frame is pending.
	needsPublish bool

	cancelSettle   func()
	cancelDebounce func()

	// snapshot published during the current burst, replayed by the end notification
	lastResize *types.ResizeSnapshot
	lastScroll *types.ScrollSnapshot
}

func newTracker(kind types.StreamKind, marker string) *tracker {
	return &tracker{kind: kind, marker: marker}
}

// activate moves the tracker to active and reports whether this started a
// burst. A new burst forgets the previous burst's snapshot.
func (t *tracker) activate() bool {
	if t.active {
		return false
	}
	t.active = true
	t.lastResize = nil
	t.lastScroll = nil
	return true
}

// rearm cancels the timer behind slot and schedules a new one in its place.
func rearm(slot *func(), scheduler Scheduler, delay time.Duration, cb func()) {
	if *slot != nil {
		(*slot)()
	}
	*slot = scheduler.ScheduleTimer(cb, delay)
}

func (t *tracker) stopTimers() {
	if t.cancelSettle != nil {
		t.cancelSettle()
		t.cancelSettle = nil
	}
	if t.cancelDebounce != nil {
		t.cancelDebounce()
		t.cancelDebounce = nil
	}
	t.needsPublish = false
}

func (t *tracker) rememberResize(snapshot types.ResizeSnapshot) {
	t.lastResize = &snapshot
}

func (t *tracker) rememberScroll(snapshot types.ScrollSnapshot) {
	t.lastScroll = &snapshot
}

// endNotification builds the end-of-burst notification from the last
// snapshot of the burst. It returns false when the burst never published.
func (t *tracker) endNotification() (types.Notification, bool) {
	switch t.kind {
	case types.StreamResize:
		if t.lastResize == nil {
			return types.Notification{}, false
		}
		snapshot := *t.lastResize
		return types.Notification{Name: types.EventResizeEnd, Resize: &snapshot}, true
	case types.StreamScroll:
		if t.lastScroll == nil {
			return types.Notification{}, false
		}
		snapshot := *t.lastScroll
		return types.Notification{Name: types.EventScrollEnd, Scroll: &snapshot}, true
	}
	return types.Notification{}, false
}
