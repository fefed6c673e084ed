package resource

import (
	"sync/atomic"

	"github.com/wippyai/libspot/errors"
	"github.com/wippyai/libspot/native"
)

// Lifecycle tracks a wrapper's native handle and disposed state.
// The zero value is an unbound lifecycle; call Init before use.
type Lifecycle struct {
	handle   atomic.Uintptr
	disposed atomic.Bool
	kind     Kind
}

// Init binds the lifecycle to h.
func (l *Lifecycle) Init(kind Kind, h native.Handle) {
	l.kind = kind
	l.handle.Store(uintptr(h))
}

// Kind returns the resource kind.
func (l *Lifecycle) Kind() Kind {
	return l.kind
}

// Handle returns the bound handle, or native.Invalid once disposed.
func (l *Lifecycle) Handle() native.Handle {
	return native.Handle(l.handle.Load())
}

// IsDisposed reports whether disposal has started.
func (l *Lifecycle) IsDisposed() bool {
	return l.disposed.Load()
}

// Check fails with ObjectDisposed after disposal has started and with
// InvalidHandle for an unbound handle. Accessors call it before any native
// call.
func (l *Lifecycle) Check(op string) error {
	if l.disposed.Load() {
		return errors.ObjectDisposed(l.kind.String(), op)
	}
	if !l.Handle().Valid() {
		return errors.InvalidHandle(l.kind.String(), op)
	}
	return nil
}

// BeginDispose marks the lifecycle disposed. Only the first caller gets true.
func (l *Lifecycle) BeginDispose() bool {
	return l.disposed.CompareAndSwap(false, true)
}

// Invalidate clears the handle and returns the previous one.
func (l *Lifecycle) Invalidate() native.Handle {
	return native.Handle(l.handle.Swap(uintptr(native.Invalid)))
}
