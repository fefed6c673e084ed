package dispatch

import "sync/atomic"

// Dispatcher pairs a Queue with a Registry and drains one into the other.
type Dispatcher struct {
	*Queue
	*Registry
	pumping atomic.Bool
}

// New creates a dispatcher with an empty queue and registry.
func New(opts ...Option) *Dispatcher {
	return &Dispatcher{
		Queue:    NewQueue(opts...),
		Registry: NewRegistry(),
	}
}

// Pump dispatches the events queued at the time of the call, in order, and
// returns how many were consumed. Events enqueued by handlers are left for
// the next pump. A Pump that overlaps a running one, including a nested call
// from a handler, returns 0 without consuming anything.
func (d *Dispatcher) Pump() int {
	if !d.pumping.CompareAndSwap(false, true) {
		return 0
	}
	defer d.pumping.Store(false)

	events := d.Drain()
	for _, e := range events {
		d.Dispatch(e)
	}
	return len(events)
}
