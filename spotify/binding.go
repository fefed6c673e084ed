package spotify

import (
	"io"
	"sync"
	"sync/atomic"

	"github.com/wippyai/libspot/dispatch"
	"github.com/wippyai/libspot/errors"
	"github.com/wippyai/libspot/native"
	"github.com/wippyai/libspot/resource"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Option configures a Binding.
type Option func(*Binding)

// WithGate shares an existing gate, for embedders that call the library
// directly as well.
func WithGate(g *native.Gate) Option {
	return func(b *Binding) {
		if g != nil {
			b.gate = g
		}
	}
}

// WithLogger sets the logger used by the binding and its sessions.
func WithLogger(l *zap.Logger) Option {
	return func(b *Binding) {
		if l != nil {
			b.log = l
		}
	}
}

// Binding owns the native library, its gate and at most one live session.
type Binding struct {
	lib         native.Library
	gate        *native.Gate
	log         *zap.Logger
	pending     *pendingTable
	completions *native.Completions
	session     *Session
	current     atomic.Pointer[Session]
	mu          sync.Mutex
	closed      bool
}

// NewBinding wraps lib and installs the completion callbacks. Close releases
// everything, including lib when it implements io.Closer.
func NewBinding(lib native.Library, opts ...Option) *Binding {
	b := &Binding{
		lib:     lib,
		gate:    native.NewGate(),
		log:     Logger(),
		pending: newPendingTable(),
	}
	for _, opt := range opts {
		opt(b)
	}

	b.completions = &native.Completions{
		SearchComplete: func(h native.Handle, userdata uintptr) {
			b.route(EventSearchComplete, h, userdata)
		},
		ToplistBrowseComplete: func(h native.Handle, userdata uintptr) {
			b.route(EventToplistComplete, h, userdata)
		},
		ImageLoaded: func(h native.Handle, userdata uintptr) {
			b.route(EventImageLoaded, h, userdata)
		},
	}
	_ = b.gate.Do(func() error {
		b.lib.RegisterCompletions(b.completions)
		return nil
	})
	return b
}

// Gate returns the gate serializing native calls.
func (b *Binding) Gate() *native.Gate {
	return b.gate
}

// Library returns the wrapped function table.
func (b *Binding) Library() native.Library {
	return b.lib
}

// Session returns the live session, or nil.
func (b *Binding) Session() *Session {
	return b.current.Load()
}

// ErrorMessage returns the library's text for a status code.
func (b *Binding) ErrorMessage(c native.Code) string {
	return native.Call(b.gate, func() string { return b.lib.ErrorMessage(c) })
}

// CreateSession creates the native session. Only one session may be live at
// a time.
func (b *Binding) CreateSession(cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, errors.InvalidState("create_session", "closed")
	}
	if b.session != nil {
		return nil, errors.InvalidState("create_session", "session_active")
	}

	s := newSession(b, cfg)
	err := b.gate.Do(func() error {
		h, code := b.lib.SessionCreate(s.native)
		if code != native.OK {
			return code.Err("sp_session_create")
		}
		s.life.Init(s.life.Kind(), h)
		s.bridge.bind(h)

		code = b.lib.SessionPreferredBitrate(h, cfg.Bitrate)
		if code == native.OK {
			code = b.lib.SessionPreferredOfflineBitrate(h, cfg.OfflineBitrate, cfg.AllowResync)
		}
		if code != native.OK {
			s.bridge.detach()
			b.release(s.life.Kind(), s.life.Invalidate(), b.lib.SessionRelease)
			return code.Err("sp_session_preferred_bitrate")
		}
		return nil
	})
	if err != nil {
		s.events.Close()
		return nil, err
	}

	b.session = s
	b.current.Store(s)
	b.log.Debug("session created", zap.Stringer("handle", s.Handle()))
	return s, nil
}

func (b *Binding) detach(s *Session) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session == s {
		b.session = nil
		b.current.CompareAndSwap(s, nil)
	}
}

// route forwards a completion to the live session's queue. It runs on the
// library's thread.
func (b *Binding) route(kind dispatch.Kind, h native.Handle, token uintptr) {
	s := b.current.Load()
	if s == nil {
		b.log.Debug("completion without session", zap.String("kind", string(kind)))
		return
	}
	s.bridge.enqueue(kind, h, completion{token: token})
}

// release drops a native reference on a disposal path. Failures are logged
// and never propagated.
func (b *Binding) release(kind resource.Kind, h native.Handle, fn func(native.Handle) native.Code) {
	if !h.Valid() {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			b.log.Error("native release panicked",
				zap.Stringer("kind", kind),
				zap.Stringer("handle", h),
				zap.Any("panic", p))
		}
	}()
	if code := fn(h); code != native.OK {
		b.log.Warn("native release failed",
			zap.Stringer("kind", kind),
			zap.Stringer("handle", h),
			zap.Stringer("code", code))
	}
}

// Close disposes the live session, uninstalls the completion callbacks and
// closes the library when it implements io.Closer. It is idempotent.
func (b *Binding) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	s := b.session
	b.mu.Unlock()

	var errs error
	if s != nil {
		errs = multierr.Append(errs, s.Dispose())
	}
	_ = b.gate.Do(func() error {
		b.lib.RegisterCompletions(nil)
		return nil
	})
	if c, ok := b.lib.(io.Closer); ok {
		errs = multierr.Append(errs, c.Close())
	}
	return errs
}

// pendingTable maps completion tokens to waiters. Tokens are never reused.
type pendingTable struct {
	waiters map[uintptr]*waiter
	next    uintptr
	mu      sync.Mutex
}

func newPendingTable() *pendingTable {
	return &pendingTable{waiters: make(map[uintptr]*waiter)}
}

func (p *pendingTable) add() (uintptr, *waiter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.next++
	w := newWaiter()
	p.waiters[p.next] = w
	return p.next, w
}

func (p *pendingTable) finish(token uintptr, err error) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	w, ok := p.waiters[token]
	if !ok {
		return false
	}
	delete(p.waiters, token)
	w.finish(err)
	return true
}

func (p *pendingTable) drop(token uintptr) {
	p.finish(token, errors.ObjectDisposed("completion", "wait"))
}

func (p *pendingTable) len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.waiters)
}
