package dispatch

import (
	"sync"

	"github.com/wippyai/libspot/errors"
	"github.com/wippyai/libspot/native"
	"go.uber.org/zap"
)

// DefaultLimit is the queue depth cap used when none is configured.
const DefaultLimit = 4096

var (
	// ErrQueueFull matches the error returned when the depth cap is reached.
	ErrQueueFull = errors.ErrQueueOverflow

	// ErrQueueClosed is returned by Enqueue after Close.
	ErrQueueClosed = errors.New(errors.PhaseDispatch, errors.KindInvalidState).
			Detail("event queue closed").
			Build()
)

// OverflowHandler is invoked when an event does not fit the queue.
type OverflowHandler func(limit int, dropped Event)

// Option configures a Queue.
type Option func(*Queue)

// WithLimit sets the depth cap. Values below 1 keep the default.
func WithLimit(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.limit = n
		}
	}
}

// WithOverflowHandler replaces the default fatal overflow handler.
func WithOverflowHandler(fn OverflowHandler) Option {
	return func(q *Queue) {
		q.onOverflow = fn
	}
}

// Queue is a FIFO of events, safe for concurrent producers.
type Queue struct {
	onOverflow OverflowHandler
	wake       chan struct{}
	events     []Event
	seq        uint64
	limit      int
	mu         sync.Mutex
	closed     bool
}

// NewQueue creates an empty queue.
func NewQueue(opts ...Option) *Queue {
	q := &Queue{
		limit: DefaultLimit,
		wake:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.onOverflow == nil {
		q.onOverflow = fatalOverflow
	}
	return q
}

func fatalOverflow(limit int, dropped Event) {
	Logger().Fatal("event queue overflow",
		zap.Int("limit", limit),
		zap.String("kind", string(dropped.Kind)),
		zap.Uint64("seq", dropped.Seq))
}

// Enqueue appends an event and assigns its sequence number.
func (q *Queue) Enqueue(kind Kind, source native.Handle, payload any) (Event, error) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return Event{}, ErrQueueClosed
	}
	e := Event{Kind: kind, Source: source, Seq: q.seq + 1, Payload: payload}
	if len(q.events) >= q.limit {
		limit := q.limit
		q.mu.Unlock()
		q.onOverflow(limit, e)
		return Event{}, errors.QueueOverflow(limit)
	}
	q.seq = e.Seq
	q.events = append(q.events, e)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return e, nil
}

// Drain removes and returns every queued event in enqueue order.
func (q *Queue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	events := q.events
	q.events = nil
	return events
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Wake is signalled after an enqueue. It carries at most one pending signal.
func (q *Queue) Wake() <-chan struct{} {
	return q.wake
}

// Close discards pending events and rejects later enqueues. It returns the
// number of discarded events.
func (q *Queue) Close() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.events)
	q.events = nil
	q.closed = true
	return n
}

// Closed reports whether Close has been called.
func (q *Queue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
