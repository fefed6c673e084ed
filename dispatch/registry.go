package dispatch

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

type registration struct {
	fn Handler
	id uint64
}

// Registry maps event kinds to handlers.
type Registry struct {
	handlers map[Kind][]registration
	nextID   uint64
	mu       sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[Kind][]registration),
	}
}

// On registers h for kind. Handlers of one kind run in registration order.
// The returned function removes the registration; calling it twice is safe.
func (r *Registry) On(kind Kind, h Handler) (cancel func()) {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.handlers[kind] = append(r.handlers[kind], registration{id: id, fn: h})
	r.mu.Unlock()

	return func() { r.remove(kind, id) }
}

func (r *Registry) remove(kind Kind, id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	regs := r.handlers[kind]
	for i, reg := range regs {
		if reg.id == id {
			next := make([]registration, 0, len(regs)-1)
			next = append(next, regs[:i]...)
			next = append(next, regs[i+1:]...)
			if len(next) == 0 {
				delete(r.handlers, kind)
			} else {
				r.handlers[kind] = next
			}
			return
		}
	}
}

// Count returns the number of handlers registered for kind.
func (r *Registry) Count(kind Kind) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers[kind])
}

// Dispatch invokes the handlers registered for e.Kind at the time of the call
// and returns how many ran. A panicking handler is logged and skipped.
func (r *Registry) Dispatch(e Event) int {
	r.mu.RLock()
	regs := r.handlers[e.Kind]
	r.mu.RUnlock()

	for _, reg := range regs {
		invoke(reg.fn, e)
	}
	return len(regs)
}

func invoke(h Handler, e Event) {
	defer func() {
		if p := recover(); p != nil {
			Logger().Error("event handler panicked",
				zap.String("kind", string(e.Kind)),
				zap.Uint64("seq", e.Seq),
				zap.String("panic", fmt.Sprint(p)),
				zap.Stack("stack"))
		}
	}()
	h(e)
}
