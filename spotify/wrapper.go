package spotify

import (
	"context"
	"weak"

	"github.com/wippyai/libspot/errors"
	"github.com/wippyai/libspot/native"
	"github.com/wippyai/libspot/resource"
	"go.uber.org/multierr"
)

// handle is the state shared by every wrapper.
type handle struct {
	binding *Binding
	session weak.Pointer[Session]
	forget  func(native.Handle) bool
	life    resource.Lifecycle
}

// init binds the wrapper to h. forget removes its identity entry.
func (o *handle) init(kind resource.Kind, h native.Handle, s *Session, forget func(native.Handle) bool) {
	o.binding = s.binding
	o.session = weak.Make(s)
	o.forget = forget
	o.life.Init(kind, h)
}

// Handle returns the native handle, or native.Invalid once disposed.
func (o *handle) Handle() native.Handle {
	return o.life.Handle()
}

// IsDisposed reports whether Dispose has been called.
func (o *handle) IsDisposed() bool {
	return o.life.IsDisposed()
}

// owner returns the session the wrapper belongs to.
func (o *handle) owner(op string) (*Session, error) {
	s := o.session.Value()
	if s == nil || s.life.IsDisposed() {
		return nil, errors.ObjectDisposed(resource.KindSession.String(), op)
	}
	return s, nil
}

// get validates o and runs fn under the gate.
func get[T any](o *handle, op string, fn func(lib native.Library, h native.Handle) T) (T, error) {
	return native.CallErr(o.binding.gate, func() (T, error) {
		if err := o.life.Check(op); err != nil {
			var zero T
			return zero, err
		}
		return fn(o.binding.lib, o.life.Handle()), nil
	})
}

// live checks o and the session it belongs to. The gate must be held.
func (o *handle) live(op string) error {
	if err := o.life.Check(op); err != nil {
		return err
	}
	if s := o.session.Value(); s == nil || s.life.IsDisposed() {
		return errors.ObjectDisposed(resource.KindSession.String(), op)
	}
	return nil
}

// getErr is get for functions that can fail or create wrappers. The session
// is checked inside the gated section so nothing is registered with a session
// that has started disposing.
func getErr[T any](o *handle, op string, fn func(lib native.Library, h native.Handle) (T, error)) (T, error) {
	return native.CallErr(o.binding.gate, func() (T, error) {
		if err := o.live(op); err != nil {
			var zero T
			return zero, err
		}
		return fn(o.binding.lib, o.life.Handle())
	})
}

// withSession is get for functions that also take the session handle.
func withSession[T any](o *handle, op string, fn func(lib native.Library, sh, h native.Handle) T) (T, error) {
	s, err := o.owner(op)
	if err != nil {
		var zero T
		return zero, err
	}
	return native.CallErr(o.binding.gate, func() (T, error) {
		var zero T
		if err := o.life.Check(op); err != nil {
			return zero, err
		}
		if err := s.life.Check(op); err != nil {
			return zero, err
		}
		return fn(o.binding.lib, s.life.Handle(), o.life.Handle()), nil
	})
}

// do validates o and runs fn under the gate, translating its status.
func (o *handle) do(op string, fn func(lib native.Library, h native.Handle) native.Code) error {
	return o.binding.gate.Do(func() error {
		if err := o.life.Check(op); err != nil {
			return err
		}
		return fn(o.binding.lib, o.life.Handle()).Err(op)
	})
}

// disposal describes how a wrapper tears down.
type disposal struct {
	// children takes the realized derived wrappers. Runs under the gate.
	children func() []resource.Disposer
	// detach runs under the gate before the reference is released.
	detach  func(lib native.Library, h native.Handle)
	release func(native.Handle) native.Code
}

// dispose runs the disposal sequence once. The identity entry is removed in
// the same gated section that marks the wrapper disposed, so a concurrent
// lookup builds a fresh wrapper instead of returning this one. The native
// reference is released only after the children are gone.
func (o *handle) dispose(d disposal) error {
	var first bool
	var children []resource.Disposer
	_ = o.binding.gate.Do(func() error {
		if first = o.life.BeginDispose(); !first {
			return nil
		}
		if o.forget != nil {
			o.forget(o.life.Handle())
		}
		if d.children != nil {
			children = d.children()
		}
		return nil
	})
	if !first {
		return nil
	}

	var errs error
	for _, c := range children {
		errs = multierr.Append(errs, c.Dispose())
	}

	_ = o.binding.gate.Do(func() error {
		h := o.life.Invalidate()
		if !h.Valid() {
			return nil
		}
		if d.detach != nil {
			d.detach(o.binding.lib, h)
		}
		o.binding.release(o.life.Kind(), h, d.release)
		return nil
	})
	return errs
}

// take collects a realized lazy child.
func take[T resource.Disposer](l *resource.Lazy[T], out []resource.Disposer) []resource.Disposer {
	if v, ok := l.Take(); ok && any(v) != nil {
		out = append(out, v)
	}
	return out
}

// takeAll collects a realized lazy list of children.
func takeAll[T resource.Disposer](l *resource.Lazy[[]T], out []resource.Disposer) []resource.Disposer {
	if vs, ok := l.Take(); ok {
		for _, v := range vs {
			out = append(out, v)
		}
	}
	return out
}

// fresh drops a cached lazy wrapper that was disposed through another owner.
func fresh[T interface{ IsDisposed() bool }](l *resource.Lazy[T]) {
	if v, ok := l.Peek(); ok && any(v) != nil && v.IsDisposed() {
		l.Take()
	}
}

func disposeAll[T resource.Disposer](m *resource.Manager[T]) error {
	var errs error
	for _, w := range m.Snapshot() {
		errs = multierr.Append(errs, w.Dispose())
	}
	return errs
}

func freshAll[T interface{ IsDisposed() bool }](l *resource.Lazy[[]T]) {
	vs, ok := l.Peek()
	if !ok {
		return
	}
	for _, v := range vs {
		if v.IsDisposed() {
			l.Take()
			return
		}
	}
}

// borrow returns the shared wrapper for a borrowed handle, taking a native
// reference when it builds a new one. The gate must be held.
func borrow[T any](m *resource.Manager[T], h native.Handle, op string, addRef func(native.Handle) native.Code, build func(native.Handle) T) (T, error) {
	return m.GetOrCreate(h, func(h native.Handle) (T, error) {
		if err := addRef(h).Err(op); err != nil {
			var zero T
			return zero, err
		}
		return build(h), nil
	})
}

// created fails for a create call that returned no object.
func created(kind resource.Kind, op string, h native.Handle) error {
	if h.Valid() {
		return nil
	}
	return errors.New(errors.PhaseNative, errors.KindNative).
		Resource(kind.String()).
		Op(op).
		Detail("library returned no object").
		Build()
}

type loadState struct {
	loaded bool
	status native.Code
}

// waitLoaded returns once probe reports a final status, driving the session
// while the completion w is outstanding.
func waitLoaded(ctx context.Context, o *handle, w *waiter, op string, probe func(lib native.Library, h native.Handle) (bool, native.Code)) error {
	s, err := o.owner(op)
	if err != nil {
		return err
	}
	check := func() (loadState, error) {
		return get(o, op, func(lib native.Library, h native.Handle) loadState {
			loaded, status := probe(lib, h)
			return loadState{loaded: loaded, status: status}
		})
	}

	st, err := check()
	if err != nil {
		return err
	}
	if st.loaded || (st.status != native.OK && st.status != native.IsLoading) {
		return st.status.AsyncErr(op)
	}

	if err := s.await(ctx, w.done, op); err != nil {
		return err
	}
	if w.err != nil {
		return w.err
	}
	if st, err = check(); err != nil {
		return err
	}
	return st.status.AsyncErr(op)
}
