package throttle

import (
	"sync"

	"github.com/mobile-next/windowthrottle/types"
	"github.com/mobile-next/windowthrottle/utils"
)

// Activity kinds accepted by IsActive.
const (
	ActivityScrolling = "scrolling"
	ActivityResizing  = "resizing"
)

// Engine coalesces raw resize and scroll events into notifications.
type Engine struct {
	options    Options
	env        Environment
	frames     FrameScheduler
	dispatcher *dispatcher
	inert      bool

	mu          sync.Mutex
	state       types.WindowState
	resize      *tracker
	scroll      *tracker
	coalescer   coalescer
	unsubscribe []func()
	cancelStart func()
	closed      bool
}

// Configure validates opts, primes the window state from env and starts
// listening for raw events.
//
// An invalid option returns a *ConfigurationError and no engine. A missing
// collaborator returns an inert engine together with an
// *UnsupportedEnvironmentError: it accepts listeners but never publishes.
func Configure(env Environment, opts Options) (*Engine, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}

	e := &Engine{
		options: opts,
		env:     env,
		resize:  newTracker(types.StreamResize, opts.ResizeMarker),
		scroll:  newTracker(types.StreamScroll, opts.ScrollMarker),
	}
	e.dispatcher = newDispatcher(e.report)

	if missing := env.missing(); missing != "" {
		e.inert = true
		err := &UnsupportedEnvironmentError{Missing: missing}
		utils.Warn("window throttle disabled: %v", err)
		return e, err
	}

	e.frames = env.frames()
	if opts.CoalesceMode == CoalesceDebounce {
		e.coalescer = &debounceCoalescer{engine: e}
	} else {
		e.coalescer = &frameCoalescer{engine: e}
	}

	e.prime()

	if opts.DetectResize {
		e.unsubscribe = append(e.unsubscribe, env.Source.SubscribeRaw(types.StreamResize, func() {
			e.handleRaw(e.resize)
		}))
	}
	if opts.DetectScroll {
		e.unsubscribe = append(e.unsubscribe, env.Source.SubscribeRaw(types.StreamScroll, func() {
			e.handleRaw(e.scroll)
		}))
	}

	if opts.PublishOnStart {
		e.cancelStart = env.Scheduler.ScheduleTimer(e.publishInitial, 0)
	}

	utils.Verbose("window throttle configured: mode=%s debounce=%v settle=%v resize=%t scroll=%t",
		opts.CoalesceMode, opts.DebounceDelay, opts.SettleDelay, opts.DetectResize, opts.DetectScroll)
	return e, nil
}

// Options returns the options the engine was configured with.
func (e *Engine) Options() Options {
	return e.options
}

// On registers a listener for one notification name.
func (e *Engine) On(name types.EventName, listener Listener) (func(), error) {
	if _, ok := types.ParseEventName(string(name)); !ok {
		return nil, &InvalidQueryError{Kind: string(name)}
	}
	if listener == nil {
		return func() {}, nil
	}
	return e.dispatcher.add(name, listener), nil
}

// IsActive reports whether a burst is in progress for "scrolling" or "resizing".
func (e *Engine) IsActive(kind string) (bool, error) {
	var t *tracker
	switch kind {
	case ActivityScrolling:
		t = e.scroll
	case ActivityResizing:
		t = e.resize
	default:
		return false, &InvalidQueryError{Kind: kind}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return t.active, nil
}

// State returns a copy of the last published window state.
func (e *Engine) State() types.WindowState {
	e.mu.Lock()
	defer e.mu.Unlock()

	state := e.state
	state.IsResizing = e.resize.active
	state.IsScrolling = e.scroll.active
	return state
}

// Close stops listening for raw events and cancels pending work. Active
// markers are cleared; no end notifications are published.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	unsubscribe := e.unsubscribe
	e.unsubscribe = nil
	if e.coalescer != nil {
		e.coalescer.stop()
	}
	if e.cancelStart != nil {
		e.cancelStart()
		e.cancelStart = nil
	}
	var markers []string
	for _, t := range e.streams() {
		t.stopTimers()
		if t.active {
			t.active = false
			markers = append(markers, t.marker)
		}
	}
	e.mu.Unlock()

	for _, fn := range unsubscribe {
		fn()
	}
	for _, marker := range markers {
		e.clearMarker(marker)
	}
}

func (e *Engine) streams() []*tracker {
	return []*tracker{e.resize, e.scroll}
}

// prime seeds the window state so the first burst has something to diff against.
func (e *Engine) prime() {
	m := e.env.Measurer
	state := types.WindowState{}

	if size, err := m.MeasureViewport(); err == nil {
		state.Width = size.Width
		state.Height = size.Height
		state.Orientation = orientation(m, size)
	} else {
		utils.Verbose("initial viewport measurement unavailable: %v", err)
	}
	if size, err := m.MeasureDocument(); err == nil {
		state.DocumentWidth = size.Width
		state.DocumentHeight = size.Height
	} else {
		utils.Verbose("initial document measurement unavailable: %v", err)
	}
	if position, err := m.MeasureScroll(); err == nil {
		state.ScrollX = position.X
		state.ScrollY = position.Y
	} else {
		utils.Verbose("initial scroll measurement unavailable: %v", err)
	}

	e.mu.Lock()
	e.state = state
	e.mu.Unlock()
}

func (e *Engine) publishInitial() {
	e.mu.Lock()
	e.cancelStart = nil
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return
	}

	if e.options.DetectResize {
		e.publish(e.resize)
	}
	if e.options.DetectScroll {
		e.publish(e.scroll)
	}
}

func (e *Engine) handleRaw(t *tracker) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	started := t.activate()
	e.mu.Unlock()

	if started {
		utils.Verbose("%s burst started", t.kind)
		e.setMarker(t.marker)
	}

	e.mu.Lock()
	if !e.closed {
		e.coalescer.raw(t)
	}
	e.mu.Unlock()
}

// armSettle (re)schedules the end of t's burst. Called with e.mu held.
func (e *Engine) armSettle(t *tracker) {
	rearm(&t.cancelSettle, e.env.Scheduler, e.options.SettleDelay, func() {
		e.settle(t)
	})
}

func (e *Engine) settle(t *tracker) {
	e.mu.Lock()
	t.cancelSettle = nil
	if e.closed || !t.active {
		e.mu.Unlock()
		return
	}
	// the frame still owes a publish and arms settle once it has run
	if t.needsPublish {
		e.mu.Unlock()
		return
	}
	t.active = false
	end, ok := t.endNotification()
	e.mu.Unlock()

	e.clearMarker(t.marker)
	utils.Verbose("%s burst ended", t.kind)
	if ok {
		e.dispatch(end)
	}
}

// publish measures, updates the window state and dispatches one snapshot for
// t. Measurement failures are reported and leave the state untouched.
func (e *Engine) publish(t *tracker) bool {
	e.mu.Lock()
	prior := e.state
	e.mu.Unlock()

	m := e.env.Measurer
	var n types.Notification

	switch t.kind {
	case types.StreamResize:
		snapshot, err := computeResize(m, prior)
		if err != nil {
			e.report(err)
			return false
		}
		document, docErr := m.MeasureDocument()
		if docErr != nil {
			utils.Verbose("document measurement unavailable during resize: %v", docErr)
		}

		e.mu.Lock()
		if e.closed {
			e.mu.Unlock()
			return false
		}
		e.state.Width = snapshot.Dimensions.Width
		e.state.Height = snapshot.Dimensions.Height
		e.state.Orientation = snapshot.Orientation
		if docErr == nil {
			e.state.DocumentWidth = document.Width
			e.state.DocumentHeight = document.Height
		}
		t.rememberResize(snapshot)
		e.mu.Unlock()

		n = types.Notification{Name: types.EventResize, Resize: &snapshot}

	case types.StreamScroll:
		snapshot, document, err := computeScroll(m, prior)
		if err != nil {
			e.report(err)
			return false
		}

		e.mu.Lock()
		if e.closed {
			e.mu.Unlock()
			return false
		}
		e.state.ScrollX = snapshot.Position.X
		e.state.ScrollY = snapshot.Position.Y
		e.state.DocumentWidth = document.Width
		e.state.DocumentHeight = document.Height
		t.rememberScroll(snapshot)
		e.mu.Unlock()

		n = types.Notification{Name: types.EventScroll, Scroll: &snapshot}
	}

	e.dispatch(n)
	return true
}

// dispatch delivers n unless the engine was closed in the meantime.
func (e *Engine) dispatch(n types.Notification) {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return
	}
	e.dispatcher.publish(n)
}

func (e *Engine) setMarker(name string) {
	if name == "" || e.env.Marker == nil {
		return
	}
	e.env.Marker.SetMarker(name)
}

func (e *Engine) clearMarker(name string) {
	if name == "" || e.env.Marker == nil {
		return
	}
	e.env.Marker.ClearMarker(name)
}

func (e *Engine) report(err error) {
	if e.options.ErrorHandler != nil {
		e.options.ErrorHandler(err)
		return
	}
	utils.Error("window throttle: %v", err)
}
