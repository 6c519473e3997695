package sensor

import (
	"log/slog"
	"sync"

	"github.com/ayusman/airswipe/internal/gesture"
)

// Listener receives swipe notifications. Callbacks run on the sensor loop
// and must return quickly; they must not call Start or Stop synchronously.
type Listener interface {
	OnGestureUp(s *Sensor, durationMs int64)
	OnGestureDown(s *Sensor, durationMs int64)
	OnGestureLeft(s *Sensor, durationMs int64)
	OnGestureRight(s *Sensor, durationMs int64)
}

type funcListener struct {
	fn func(s *Sensor, d gesture.Direction, durationMs int64)
}

// ListenerFunc adapts a single function to the Listener interface. The
// returned value can be passed to Registry.Remove.
func ListenerFunc(fn func(s *Sensor, d gesture.Direction, durationMs int64)) Listener {
	return &funcListener{fn: fn}
}

func (f *funcListener) OnGestureUp(s *Sensor, ms int64)    { f.fn(s, gesture.Up, ms) }
func (f *funcListener) OnGestureDown(s *Sensor, ms int64)  { f.fn(s, gesture.Down, ms) }
func (f *funcListener) OnGestureLeft(s *Sensor, ms int64)  { f.fn(s, gesture.Left, ms) }
func (f *funcListener) OnGestureRight(s *Sensor, ms int64) { f.fn(s, gesture.Right, ms) }

// Registry is an ordered set of listeners.
type Registry struct {
	mu        sync.RWMutex
	listeners []Listener
	logger    *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// Add appends l. Adding a listener that is already registered is a no-op.
func (r *Registry) Add(l Listener) {
	if l == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.listeners {
		if existing == l {
			return
		}
	}
	r.listeners = append(r.listeners, l)
}

// Remove unregisters l.
func (r *Registry) Remove(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.listeners {
		if existing == l {
			r.listeners = append(r.listeners[:i:i], r.listeners[i+1:]...)
			return
		}
	}
}

// Clear unregisters every listener.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = nil
}

// Len returns the number of registered listeners.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listeners)
}

// Notify delivers ev to every listener in registration order. The list is
// snapshotted first, so listeners may add or remove listeners while being
// called. A panicking listener is logged and skipped.
func (r *Registry) Notify(s *Sensor, ev gesture.Event) {
	if !ev.Direction.Valid() {
		return
	}

	r.mu.RLock()
	snapshot := make([]Listener, len(r.listeners))
	copy(snapshot, r.listeners)
	r.mu.RUnlock()

	for _, l := range snapshot {
		r.deliver(l, s, ev)
	}
}

func (r *Registry) deliver(l Listener, s *Sensor, ev gesture.Event) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("listener panicked", "direction", ev.Direction.String(), "panic", p)
		}
	}()

	switch ev.Direction {
	case gesture.Up:
		l.OnGestureUp(s, ev.DurationMs)
	case gesture.Down:
		l.OnGestureDown(s, ev.DurationMs)
	case gesture.Left:
		l.OnGestureLeft(s, ev.DurationMs)
	case gesture.Right:
		l.OnGestureRight(s, ev.DurationMs)
	}
}
