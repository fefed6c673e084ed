package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseNative   Phase = "native"   // gated native call
	PhaseSession  Phase = "session"  // session control and state machine
	PhaseResource Phase = "resource" // wrapper accessors and identity tables
	PhaseDispatch Phase = "dispatch" // event queue and pump
	PhaseDispose  Phase = "dispose"  // wrapper and session teardown
	PhaseAsync    Phase = "async"    // awaited asynchronous completion
	PhaseLoad     Phase = "load"     // native library loading
	PhaseConfig   Phase = "config"   // configuration
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidHandle  Kind = "invalid_handle"
	KindObjectDisposed Kind = "object_disposed"
	KindNative         Kind = "native_error"
	KindAsyncFailure   Kind = "async_failure"
	KindInvalidState   Kind = "invalid_state"
	KindInvalidInput   Kind = "invalid_input"
	KindNotFound       Kind = "not_found"
	KindTimeout        Kind = "timeout"
	KindQueueOverflow  Kind = "queue_overflow"
	KindLoad           Kind = "load"
)

// Kind-only sentinels. They match any *Error of the same Kind through
// errors.Is, whatever the phase.
var (
	ErrInvalidHandle  = &Error{Kind: KindInvalidHandle}
	ErrObjectDisposed = &Error{Kind: KindObjectDisposed}
	ErrNative         = &Error{Kind: KindNative}
	ErrAsyncFailure   = &Error{Kind: KindAsyncFailure}
	ErrInvalidState   = &Error{Kind: KindInvalidState}
	ErrTimeout        = &Error{Kind: KindTimeout}
	ErrQueueOverflow  = &Error{Kind: KindQueueOverflow}
)

// Error is the structured error type used throughout the binding
type Error struct {
	Cause    error
	Phase    Phase
	Kind     Kind
	Resource string // resource kind, e.g. "track"
	Op       string // native operation or method name
	Detail   string
	Handle   uintptr // native handle involved, if any
	Code     int     // native status code for native/async failures
	HasCode  bool
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Resource != "" || e.Op != "" {
		b.WriteString(" at ")
		switch {
		case e.Resource != "" && e.Op != "":
			b.WriteString(e.Resource)
			b.WriteByte('.')
			b.WriteString(e.Op)
		case e.Resource != "":
			b.WriteString(e.Resource)
		default:
			b.WriteString(e.Op)
		}
	}

	if e.Handle != 0 {
		fmt.Fprintf(&b, " (handle %#x)", e.Handle)
	}

	if e.HasCode {
		fmt.Fprintf(&b, ": code %d", e.Code)
	}

	if e.Detail != "" {
		if e.HasCode {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target without a phase
// matches on Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase == "" {
		return e.Kind == t.Kind
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Resource sets the resource kind name
func (b *Builder) Resource(name string) *Builder {
	b.err.Resource = name
	return b
}

// Op sets the operation name
func (b *Builder) Op(op string) *Builder {
	b.err.Op = op
	return b
}

// Handle sets the native handle
func (b *Builder) Handle(h uintptr) *Builder {
	b.err.Handle = h
	return b
}

// Code sets the native status code
func (b *Builder) Code(code int) *Builder {
	b.err.Code = code
	b.err.HasCode = true
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InvalidHandle creates an error for an operation on the invalid sentinel handle
func InvalidHandle(resource, op string) *Error {
	return &Error{
		Phase:    PhaseResource,
		Kind:     KindInvalidHandle,
		Resource: resource,
		Op:       op,
		Detail:   "handle is not bound to a native object",
	}
}

// ObjectDisposed creates a use-after-dispose error
func ObjectDisposed(resource, op string) *Error {
	return &Error{
		Phase:    PhaseResource,
		Kind:     KindObjectDisposed,
		Resource: resource,
		Op:       op,
		Detail:   "object has been disposed",
	}
}

// Native creates an error for a non-OK status returned by a synchronous native call
func Native(op string, code int, message string) *Error {
	return &Error{
		Phase:   PhaseNative,
		Kind:    KindNative,
		Op:      op,
		Code:    code,
		HasCode: true,
		Detail:  message,
	}
}

// AsyncFailure creates an error for an awaited operation that completed with a non-OK status
func AsyncFailure(op string, code int, message string) *Error {
	return &Error{
		Phase:   PhaseAsync,
		Kind:    KindAsyncFailure,
		Op:      op,
		Code:    code,
		HasCode: true,
		Detail:  message,
	}
}

// InvalidState creates an error for an operation not allowed in the current state
func InvalidState(op, state string) *Error {
	return &Error{
		Phase:  PhaseSession,
		Kind:   KindInvalidState,
		Op:     op,
		Detail: fmt.Sprintf("not allowed in state %s", state),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Timeout creates an error for a wait that ended before its completion event
func Timeout(op string, cause error) *Error {
	return &Error{
		Phase:  PhaseAsync,
		Kind:   KindTimeout,
		Op:     op,
		Detail: "completion event not received",
		Cause:  cause,
	}
}

// QueueOverflow creates an error for an event queue at its depth limit
func QueueOverflow(limit int) *Error {
	return &Error{
		Phase:  PhaseDispatch,
		Kind:   KindQueueOverflow,
		Detail: fmt.Sprintf("event queue depth limit %d reached", limit),
	}
}

// Load creates a native library loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindLoad,
		Detail: detail,
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// CodeOf returns the native status code carried by err, if any.
func CodeOf(err error) (int, bool) {
	var e *Error
	if stderrors.As(err, &e) && e.HasCode {
		return e.Code, true
	}
	return 0, false
}

// IsKind reports whether any *Error in err's chain has the given kind.
func IsKind(err error, kind Kind) bool {
	return stderrors.Is(err, &Error{Kind: kind})
}
