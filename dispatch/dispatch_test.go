package dispatch

import (
	"fmt"
	"sync"
	"testing"

	"github.com/wippyai/libspot/errors"
	"github.com/wippyai/libspot/native"
	"golang.org/x/sync/errgroup"
)

const session = native.Handle(0x1000)

func TestPump_FIFO(t *testing.T) {
	d := New()
	var got []string
	for _, k := range []Kind{"login", "metadata", "end_of_track"} {
		d.On(k, func(e Event) { got = append(got, string(e.Kind)) })
	}

	for _, k := range []Kind{"login", "metadata", "end_of_track", "metadata"} {
		if _, err := d.Enqueue(k, session, nil); err != nil {
			t.Fatalf("Enqueue(%s): %v", k, err)
		}
	}

	if n := d.Pump(); n != 4 {
		t.Fatalf("Pump() = %d, want 4", n)
	}
	want := []string{"login", "metadata", "end_of_track", "metadata"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("dispatch order = %v, want %v", got, want)
	}
	if d.Len() != 0 {
		t.Fatalf("queue not drained: %d left", d.Len())
	}
}

func TestPump_HandlersResolvedAtDispatch(t *testing.T) {
	d := New()
	var got []uint64

	cancel := d.On("e", func(e Event) { got = append(got, e.Seq*10) })
	for i := 0; i < 3; i++ {
		d.Enqueue("e", session, nil)
	}

	// Swap the handler between enqueue and pump.
	cancel()
	d.On("e", func(e Event) { got = append(got, e.Seq) })

	d.Pump()
	if fmt.Sprint(got) != fmt.Sprint([]uint64{1, 2, 3}) {
		t.Fatalf("got %v, want [1 2 3]", got)
	}
}

func TestPump_HandlerRemovedDuringPump(t *testing.T) {
	d := New()
	var got []uint64
	var cancelSecond func()

	d.On("e", func(e Event) {
		got = append(got, e.Seq)
		if e.Seq == 1 {
			cancelSecond()
		}
	})
	cancelSecond = d.On("e", func(e Event) { got = append(got, 100+e.Seq) })

	d.Enqueue("e", session, nil)
	d.Enqueue("e", session, nil)
	d.Pump()

	// Event 1 was dispatched to the snapshot taken before the removal.
	want := []uint64{1, 101, 2}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestPump_Nested(t *testing.T) {
	d := New()
	nested := -1
	var order []uint64

	d.On("outer", func(e Event) {
		order = append(order, e.Seq)
		d.Enqueue("inner", session, nil)
		nested = d.Pump()
	})
	d.On("inner", func(e Event) { order = append(order, e.Seq) })

	d.Enqueue("outer", session, nil)
	if n := d.Pump(); n != 1 {
		t.Fatalf("outer Pump() = %d, want 1", n)
	}
	if nested != 0 {
		t.Fatalf("nested Pump() = %d, want 0", nested)
	}
	if d.Len() != 1 {
		t.Fatalf("event enqueued by handler should wait for next pump, Len() = %d", d.Len())
	}
	d.Pump()
	if fmt.Sprint(order) != fmt.Sprint([]uint64{1, 2}) {
		t.Fatalf("order = %v", order)
	}
}

func TestPump_PanickingHandler(t *testing.T) {
	d := New()
	var got []uint64
	d.On("e", func(e Event) {
		if e.Seq == 1 {
			panic("handler fault")
		}
	})
	d.On("e", func(e Event) { got = append(got, e.Seq) })

	d.Enqueue("e", session, nil)
	d.Enqueue("e", session, nil)
	if n := d.Pump(); n != 2 {
		t.Fatalf("Pump() = %d, want 2", n)
	}
	if fmt.Sprint(got) != fmt.Sprint([]uint64{1, 2}) {
		t.Fatalf("later handlers skipped after panic: %v", got)
	}
}

func TestQueue_Overflow(t *testing.T) {
	var overflowed []Event
	q := NewQueue(WithLimit(2), WithOverflowHandler(func(limit int, e Event) {
		if limit != 2 {
			t.Errorf("limit = %d, want 2", limit)
		}
		overflowed = append(overflowed, e)
	}))

	q.Enqueue("a", session, nil)
	q.Enqueue("b", session, nil)
	_, err := q.Enqueue("c", session, nil)
	if !errors.IsKind(err, errors.KindQueueOverflow) {
		t.Fatalf("expected queue overflow, got %v", err)
	}
	if len(overflowed) != 1 || overflowed[0].Kind != "c" {
		t.Fatalf("overflow handler saw %v", overflowed)
	}
	if q.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", q.Len())
	}

	q.Drain()
	e, err := q.Enqueue("d", session, nil)
	if err != nil {
		t.Fatalf("Enqueue after drain: %v", err)
	}
	if e.Seq != 3 {
		t.Fatalf("Seq = %d, want 3 (overflowed event must not consume a number)", e.Seq)
	}
}

func TestQueue_Close(t *testing.T) {
	q := NewQueue()
	q.Enqueue("a", session, nil)
	q.Enqueue("b", session, nil)

	if n := q.Close(); n != 2 {
		t.Fatalf("Close() discarded %d, want 2", n)
	}
	if _, err := q.Enqueue("c", session, nil); err != ErrQueueClosed {
		t.Fatalf("Enqueue after Close = %v, want ErrQueueClosed", err)
	}
	if q.Len() != 0 || !q.Closed() {
		t.Fatal("queue not emptied and closed")
	}
}

func TestQueue_Wake(t *testing.T) {
	q := NewQueue()
	q.Enqueue("a", session, nil)
	q.Enqueue("b", session, nil)

	select {
	case <-q.Wake():
	default:
		t.Fatal("no wake signal after enqueue")
	}
	select {
	case <-q.Wake():
		t.Fatal("wake signal should coalesce")
	default:
	}
}

func TestQueue_ConcurrentProducers(t *testing.T) {
	const producers, perProducer = 8, 500
	d := New(WithLimit(producers * perProducer))

	var g errgroup.Group
	for p := 0; p < producers; p++ {
		g.Go(func() error {
			for i := 0; i < perProducer; i++ {
				if _, err := d.Enqueue("e", native.Handle(p+1), i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("producer: %v", err)
	}

	var mu sync.Mutex
	last := make(map[native.Handle]int)
	var lastSeq uint64
	d.On("e", func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		if e.Seq <= lastSeq {
			t.Errorf("seq %d after %d", e.Seq, lastSeq)
		}
		lastSeq = e.Seq
		i := e.Payload.(int)
		if prev, ok := last[e.Source]; ok && i != prev+1 {
			t.Errorf("producer %v: %d after %d", e.Source, i, prev)
		}
		last[e.Source] = i
	})

	if n := d.Pump(); n != producers*perProducer {
		t.Fatalf("Pump() = %d, want %d", n, producers*perProducer)
	}
}

func TestRegistry_CancelTwice(t *testing.T) {
	r := NewRegistry()
	cancel := r.On("e", func(Event) {})
	r.On("e", func(Event) {})

	cancel()
	cancel()
	if n := r.Count("e"); n != 1 {
		t.Fatalf("Count() = %d, want 1", n)
	}
	if n := r.Dispatch(Event{Kind: "other"}); n != 0 {
		t.Fatalf("Dispatch to unknown kind ran %d handlers", n)
	}
}
