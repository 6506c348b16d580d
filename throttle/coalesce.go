package throttle

import "github.com/mobile-next/windowthrottle/utils"

// coalescer decides when a burst of raw events turns into a published
// snapshot. raw and stop are called with the engine lock held.
type coalescer interface {
	raw(t *tracker)
	stop()
}

// frameCoalescer publishes every stream that saw raw events once per frame.
// The burst ends SettleDelay after the last publish.
type frameCoalescer struct {
	engine  *Engine
	pending bool
	cancel  func()
}

func (c *frameCoalescer) raw(t *tracker) {
	e := c.engine
	e.armSettle(t)
	if !c.pending {
		for _, s := range e.streams() {
			s.needsPublish = false
		}
		c.pending = true
		c.cancel = e.frames.ScheduleFrame(c.onFrame)
	}
	t.needsPublish = true
}

func (c *frameCoalescer) onFrame() {
	e := c.engine

	e.mu.Lock()
	c.cancel = nil
	c.pending = false
	if e.closed {
		e.mu.Unlock()
		return
	}
	var due []*tracker
	for _, t := range e.streams() {
		if t.needsPublish {
			t.needsPublish = false
			due = append(due, t)
		}
	}
	e.mu.Unlock()

	// settle is armed after a failed publish too, so the burst still ends
	for _, t := range due {
		e.publish(t)
		e.mu.Lock()
		if !e.closed && t.active {
			e.armSettle(t)
		}
		e.mu.Unlock()
	}
}

func (c *frameCoalescer) stop() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.pending = false
}

// debounceCoalescer publishes one snapshot per stream after DebounceDelay of
// quiet. That publish also ends the burst, so no end notification is sent.
type debounceCoalescer struct {
	engine *Engine
}

func (c *debounceCoalescer) raw(t *tracker) {
	e := c.engine
	rearm(&t.cancelDebounce, e.env.Scheduler, e.options.DebounceDelay, func() {
		c.fire(t)
	})
}

func (c *debounceCoalescer) fire(t *tracker) {
	e := c.engine

	e.mu.Lock()
	t.cancelDebounce = nil
	if e.closed || !t.active {
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	// a failed measurement leaves the burst active until the next raw event
	if !e.publish(t) {
		return
	}

	e.mu.Lock()
	// a raw event that arrived during dispatch keeps the burst alive
	if e.closed || t.cancelDebounce != nil {
		e.mu.Unlock()
		return
	}
	t.active = false
	e.mu.Unlock()

	e.clearMarker(t.marker)
	utils.Verbose("%s burst ended", t.kind)
}

func (c *debounceCoalescer) stop() {}
