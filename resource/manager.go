package resource

import (
	"sync"

	"github.com/wippyai/libspot/errors"
	"github.com/wippyai/libspot/native"
	"go.uber.org/zap"
)

// Manager maps native handles of one kind to their single live wrapper.
//
// GetOrCreate, Adopt and Remove must be called with the native gate held.
// Lookup, Len and Each may be called from any goroutine.
type Manager[T any] struct {
	entries   map[native.Handle]T
	observers []Observer
	mu        sync.RWMutex
	obsMu     sync.RWMutex
	kind      Kind
}

// NewManager creates an empty manager for kind.
func NewManager[T any](kind Kind) *Manager[T] {
	return &Manager[T]{
		entries: make(map[native.Handle]T),
		kind:    kind,
	}
}

// Kind returns the resource kind this manager tracks.
func (m *Manager[T]) Kind() Kind {
	return m.kind
}

// GetOrCreate returns the wrapper for a borrowed handle. An existing wrapper
// is shared without touching the native reference count; otherwise construct
// builds one, taking its own native reference.
func (m *Manager[T]) GetOrCreate(h native.Handle, construct func(native.Handle) (T, error)) (T, error) {
	var zero T
	if !h.Valid() {
		return zero, errors.InvalidHandle(m.kind.String(), "get_or_create")
	}

	if w, ok := m.Lookup(h); ok {
		m.notify(Event{Type: EventShared, Handle: h, Kind: m.kind, Value: w})
		return w, nil
	}

	w, err := construct(h)
	if err != nil {
		return zero, err
	}
	m.insert(h, w)
	return w, nil
}

// Adopt returns the wrapper for an owned handle fresh from a create call.
// construct must take over the reference instead of adding one. When a
// wrapper already exists, or construct fails, release drops the surplus
// reference.
func (m *Manager[T]) Adopt(h native.Handle, construct func(native.Handle) (T, error), release func(native.Handle) native.Code) (T, error) {
	var zero T
	if !h.Valid() {
		return zero, errors.InvalidHandle(m.kind.String(), "adopt")
	}

	if w, ok := m.Lookup(h); ok {
		m.releaseSurplus(h, release)
		m.notify(Event{Type: EventShared, Handle: h, Kind: m.kind, Value: w})
		return w, nil
	}

	w, err := construct(h)
	if err != nil {
		m.releaseSurplus(h, release)
		return zero, err
	}
	m.insert(h, w)
	return w, nil
}

func (m *Manager[T]) releaseSurplus(h native.Handle, release func(native.Handle) native.Code) {
	if release == nil {
		return
	}
	if code := release(h); code != native.OK {
		native.Logger().Warn("surplus reference release failed",
			zap.Stringer("kind", m.kind),
			zap.Stringer("handle", h),
			zap.Stringer("code", code))
	}
}

func (m *Manager[T]) insert(h native.Handle, w T) {
	m.mu.Lock()
	m.entries[h] = w
	m.mu.Unlock()

	m.notify(Event{Type: EventCreated, Handle: h, Kind: m.kind, Value: w})
}

// Remove drops the entry for h. Removing an absent handle is a no-op.
func (m *Manager[T]) Remove(h native.Handle) bool {
	m.mu.Lock()
	w, ok := m.entries[h]
	if ok {
		delete(m.entries, h)
	}
	m.mu.Unlock()

	if ok {
		m.notify(Event{Type: EventDropped, Handle: h, Kind: m.kind, Value: w})
	}
	return ok
}

// Lookup returns the live wrapper for h, if any.
func (m *Manager[T]) Lookup(h native.Handle) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.entries[h]
	return w, ok
}

// Len returns the number of live wrappers.
func (m *Manager[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Each iterates over a snapshot of the live wrappers. Iteration stops when
// fn returns false.
func (m *Manager[T]) Each(fn func(native.Handle, T) bool) {
	m.mu.RLock()
	handles := make([]native.Handle, 0, len(m.entries))
	values := make([]T, 0, len(m.entries))
	for h, w := range m.entries {
		handles = append(handles, h)
		values = append(values, w)
	}
	m.mu.RUnlock()

	for i := range handles {
		if !fn(handles[i], values[i]) {
			return
		}
	}
}

// Snapshot returns the live wrappers.
func (m *Manager[T]) Snapshot() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]T, 0, len(m.entries))
	for _, w := range m.entries {
		out = append(out, w)
	}
	return out
}

// Subscribe adds an observer for lifecycle events.
func (m *Manager[T]) Subscribe(o Observer) {
	m.obsMu.Lock()
	defer m.obsMu.Unlock()
	m.observers = append(m.observers, o)
}

// Unsubscribe removes an observer.
func (m *Manager[T]) Unsubscribe(o Observer) {
	m.obsMu.Lock()
	defer m.obsMu.Unlock()
	for i, obs := range m.observers {
		if obs == o {
			next := make([]Observer, 0, len(m.observers)-1)
			next = append(next, m.observers[:i]...)
			m.observers = append(next, m.observers[i+1:]...)
			return
		}
	}
}

func (m *Manager[T]) notify(e Event) {
	m.obsMu.RLock()
	observers := m.observers
	m.obsMu.RUnlock()

	for _, o := range observers {
		o.OnResourceEvent(e)
	}
}
