package throttle

import (
	"sync"

	"github.com/mobile-next/windowthrottle/types"
)

// Listener receives published notifications. It runs on the engine's thread.
type Listener func(types.Notification)

type listenerEntry struct {
	id uint64
	fn Listener
}

// dispatcher delivers notifications to listeners in registration order.
type dispatcher struct {
	mu        sync.Mutex
	nextID    uint64
	listeners map[types.EventName][]listenerEntry
	onError   func(error)
}

func newDispatcher(onError func(error)) *dispatcher {
	return &dispatcher{
		listeners: make(map[types.EventName][]listenerEntry),
		onError:   onError,
	}
}

func (d *dispatcher) add(name types.EventName, fn Listener) func() {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.listeners[name] = append(d.listeners[name], listenerEntry{id: id, fn: fn})
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { d.remove(name, id) })
	}
}

func (d *dispatcher) remove(name types.EventName, id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entries := d.listeners[name]
	for i, entry := range entries {
		if entry.id == id {
			// copy so in-flight dispatch snapshots keep their slice intact
			next := make([]listenerEntry, 0, len(entries)-1)
			next = append(next, entries[:i]...)
			next = append(next, entries[i+1:]...)
			d.listeners[name] = next
			return
		}
	}
}

// publish invokes every listener registered for n.Name. A panicking listener
// is reported and does not stop delivery to the rest.
func (d *dispatcher) publish(n types.Notification) {
	d.mu.Lock()
	entries := d.listeners[n.Name]
	d.mu.Unlock()

	for i, entry := range entries {
		d.invoke(i, entry.fn, cloneNotification(n))
	}
}

func (d *dispatcher) invoke(index int, fn Listener, n types.Notification) {
	defer func() {
		if r := recover(); r != nil {
			d.onError(&ListenerError{Event: n.Name, Index: index, Value: r})
		}
	}()
	fn(n)
}

// cloneNotification gives every listener its own copy of the snapshot.
func cloneNotification(n types.Notification) types.Notification {
	if n.Resize != nil {
		resize := *n.Resize
		n.Resize = &resize
	}
	if n.Scroll != nil {
		scroll := *n.Scroll
		n.Scroll = &scroll
	}
	return n
}
