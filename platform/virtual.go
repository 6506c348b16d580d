package platform

import (
	"sync"
	"time"
)

// maxVirtualSteps bounds Drain and AdvanceTo so a self-rescheduling callback cannot spin forever.
const maxVirtualSteps = 100000

type virtualTask struct {
	at        time.Duration
	seq       uint64
	cb        func()
	cancelled bool
}

// VirtualScheduler is a deterministic clock. Nothing runs until the caller
// advances time; callbacks then run on the caller's goroutine in due order,
// ties broken by scheduling order.
type VirtualScheduler struct {
	mu            sync.Mutex
	now           time.Duration
	frameInterval time.Duration
	seq           uint64
	tasks         []*virtualTask
}

func NewVirtualScheduler(frameInterval time.Duration) *VirtualScheduler {
	if frameInterval <= 0 {
		frameInterval = DefaultFrameInterval
	}
	return &VirtualScheduler{frameInterval: frameInterval}
}

// Now returns the virtual time elapsed since the scheduler was created.
func (v *VirtualScheduler) Now() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

// Post runs fn immediately: the caller already is the logical thread.
func (v *VirtualScheduler) Post(fn func()) bool {
	fn()
	return true
}

func (v *VirtualScheduler) ScheduleTimer(cb func(), delay time.Duration) func() {
	if delay < 0 {
		delay = 0
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scheduleLocked(v.now+delay, cb)
}

// ScheduleFrame runs cb at the next frame boundary strictly after now.
func (v *VirtualScheduler) ScheduleFrame(cb func()) func() {
	v.mu.Lock()
	defer v.mu.Unlock()
	next := (v.now/v.frameInterval + 1) * v.frameInterval
	return v.scheduleLocked(next, cb)
}

func (v *VirtualScheduler) scheduleLocked(at time.Duration, cb func()) func() {
	v.seq++
	task := &virtualTask{at: at, seq: v.seq, cb: cb}
	v.tasks = append(v.tasks, task)
	return func() {
		v.mu.Lock()
		task.cancelled = true
		v.mu.Unlock()
	}
}

// Advance moves the clock forward by d, running every callback that falls due.
func (v *VirtualScheduler) Advance(d time.Duration) {
	v.AdvanceTo(v.Now() + d)
}

// AdvanceTo moves the clock to target, running every callback due at or before it.
func (v *VirtualScheduler) AdvanceTo(target time.Duration) {
	for i := 0; i < maxVirtualSteps; i++ {
		task := v.popDue(target)
		if task == nil {
			break
		}
		v.run(task)
	}

	v.mu.Lock()
	if target > v.now {
		v.now = target
	}
	v.mu.Unlock()
}

// Drain runs callbacks until none are pending and returns the final time.
func (v *VirtualScheduler) Drain() time.Duration {
	for i := 0; i < maxVirtualSteps; i++ {
		task := v.popDue(-1)
		if task == nil {
			break
		}
		v.run(task)
	}
	return v.Now()
}

func (v *VirtualScheduler) run(task *virtualTask) {
	v.mu.Lock()
	cancelled := task.cancelled
	v.mu.Unlock()
	if !cancelled {
		task.cb()
	}
}

// Pending reports the number of live scheduled callbacks.
func (v *VirtualScheduler) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	count := 0
	for _, task := range v.tasks {
		if !task.cancelled {
			count++
		}
	}
	return count
}

// popDue removes and returns the earliest live task due at or before limit.
// A negative limit accepts any task.
func (v *VirtualScheduler) popDue(limit time.Duration) *virtualTask {
	v.mu.Lock()
	defer v.mu.Unlock()

	best := -1
	live := v.tasks[:0]
	for _, task := range v.tasks {
		if task.cancelled {
			continue
		}
		live = append(live, task)
	}
	v.tasks = live

	for i, task := range v.tasks {
		if limit >= 0 && task.at > limit {
			continue
		}
		if best < 0 || task.at < v.tasks[best].at || (task.at == v.tasks[best].at && task.seq < v.tasks[best].seq) {
			best = i
		}
	}
	if best < 0 {
		return nil
	}

	task := v.tasks[best]
	v.tasks = append(v.tasks[:best], v.tasks[best+1:]...)
	if task.at > v.now {
		v.now = task.at
	}
	return task
}
