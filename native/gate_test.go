package native

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGate_Serializes(t *testing.T) {
	g := NewGate()

	var inside, overlaps atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = g.Do(func() error {
					if inside.Add(1) > 1 {
						overlaps.Add(1)
					}
					inside.Add(-1)
					return nil
				})
			}
		}()
	}
	wg.Wait()

	if n := overlaps.Load(); n != 0 {
		t.Fatalf("observed %d overlapping gated sections", n)
	}
	if got := g.Calls(); got != 16*200 {
		t.Fatalf("Calls() = %d, want %d", got, 16*200)
	}
}

func TestGate_ReleasesOnError(t *testing.T) {
	g := NewGate()
	want := errors.New("boom")

	if err := g.Do(func() error { return want }); err != want {
		t.Fatalf("Do returned %v, want %v", err, want)
	}
	if !g.mu.TryLock() {
		t.Fatal("gate still held after error")
	}
	g.mu.Unlock()
}

func TestGate_ReleasesOnPanic(t *testing.T) {
	g := NewGate()

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic")
			}
		}()
		Call(g, func() int { panic("native fault") })
	}()

	done := make(chan struct{})
	go func() {
		_ = g.Do(func() error { return nil })
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("gate not released after panic")
	}
}

func TestGate_Contended(t *testing.T) {
	g := NewGate()
	entered := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = g.Do(func() error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	done := make(chan int)
	go func() {
		done <- Call(g, func() int { return 42 })
	}()

	// Wait until the second caller is blocked on the gate.
	deadline := time.Now().Add(time.Second)
	for g.Contended() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if g.Contended() == 0 {
		t.Fatal("second caller did not register contention")
	}
	close(release)

	if got := <-done; got != 42 {
		t.Fatalf("Call returned %d, want 42", got)
	}
}

func TestCallErr(t *testing.T) {
	g := NewGate()
	v, err := CallErr(g, func() (string, error) { return "ok", nil })
	if err != nil || v != "ok" {
		t.Fatalf("CallErr = %q, %v", v, err)
	}
}
