package platform

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/mobile-next/windowthrottle/utils"
)

// DefaultFrameInterval approximates a 60Hz display.
const DefaultFrameInterval = time.Second / 60

const loopQueueSize = 256

// Loop is a single goroutine that runs posted tasks, timers and frame
// callbacks one at a time, in the order they become due.
type Loop struct {
	tasks         chan func()
	done          chan struct{}
	stopOnce      sync.Once
	frameInterval time.Duration
	epoch         time.Time
}

// NewLoop starts a loop. Frames are aligned to multiples of frameInterval
// since the loop started.
func NewLoop(frameInterval time.Duration) *Loop {
	if frameInterval <= 0 {
		frameInterval = DefaultFrameInterval
	}
	l := &Loop{
		tasks:         make(chan func(), loopQueueSize),
		done:          make(chan struct{}),
		frameInterval: frameInterval,
		epoch:         time.Now(),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	for {
		select {
		case task := <-l.tasks:
			l.runTask(task)
		case <-l.done:
			return
		}
	}
}

func (l *Loop) runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			utils.Error("loop task panicked: %v", r)
		}
	}()
	task()
}

// Post queues fn to run on the loop. It returns false once the loop is stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}

	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Do runs fn on the loop and waits for it. Must not be called from the loop itself.
func (l *Loop) Do(fn func()) bool {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return false
	}
	select {
	case <-finished:
		return true
	case <-l.done:
		return false
	}
}

// ScheduleTimer runs cb on the loop after delay. Cancelling guarantees cb
// does not run, even if the timer already fired and is queued.
func (l *Loop) ScheduleTimer(cb func(), delay time.Duration) func() {
	var cancelled atomic.Bool
	timer := time.AfterFunc(delay, func() {
		l.Post(func() {
			if !cancelled.Load() {
				cb()
			}
		})
	})
	return func() {
		cancelled.Store(true)
		timer.Stop()
	}
}

// ScheduleFrame runs cb on the loop at the next frame boundary.
func (l *Loop) ScheduleFrame(cb func()) func() {
	return l.ScheduleTimer(cb, l.untilNextFrame())
}

func (l *Loop) untilNextFrame() time.Duration {
	elapsed := time.Since(l.epoch)
	return l.frameInterval - elapsed%l.frameInterval
}

// Stop terminates the loop. Queued tasks are dropped.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.done)
	})
}
