// Package throttle coalesces raw viewport resize and document scroll events
// into throttled notifications.
//
// An Engine owns one WindowState and two independent streams. Each stream is
// idle until its first raw event, stays active while events keep arriving and
// returns to idle once the stream has been quiet for the configured delay.
// While active, raw events are collapsed either into one snapshot per frame
// (CoalesceFrame) or into one snapshot per quiet period (CoalesceDebounce).
//
// All engine callbacks are expected to run on the single logical thread
// provided by the Scheduler. State and IsActive are safe to call from any
// goroutine.
package throttle
