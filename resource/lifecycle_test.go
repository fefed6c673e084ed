package resource

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/wippyai/libspot/errors"
	"github.com/wippyai/libspot/native"
)

func TestLifecycle_Check(t *testing.T) {
	var l Lifecycle
	l.Init(KindTrack, native.Handle(0x100))

	if err := l.Check("name"); err != nil {
		t.Fatalf("Check on live lifecycle: %v", err)
	}

	var unbound Lifecycle
	unbound.Init(KindAlbum, native.Invalid)
	if err := unbound.Check("name"); !errors.IsKind(err, errors.KindInvalidHandle) {
		t.Fatalf("expected invalid handle, got %v", err)
	}

	if !l.BeginDispose() {
		t.Fatal("first BeginDispose should win")
	}
	if err := l.Check("name"); !errors.IsKind(err, errors.KindObjectDisposed) {
		t.Fatalf("expected object disposed, got %v", err)
	}
	if old := l.Invalidate(); old != native.Handle(0x100) {
		t.Fatalf("Invalidate returned %v", old)
	}
	if l.Handle() != native.Invalid {
		t.Fatalf("handle after Invalidate = %v", l.Handle())
	}
	// Disposed takes precedence over the invalid handle.
	if err := l.Check("name"); !errors.IsKind(err, errors.KindObjectDisposed) {
		t.Fatalf("expected object disposed, got %v", err)
	}
}

func TestLifecycle_BeginDisposeOnce(t *testing.T) {
	var l Lifecycle
	l.Init(KindImage, native.Handle(1))

	var winners atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.BeginDispose() {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	if n := winners.Load(); n != 1 {
		t.Fatalf("%d goroutines won BeginDispose, want 1", n)
	}
	if !l.IsDisposed() {
		t.Fatal("IsDisposed = false")
	}
}

func TestLazy(t *testing.T) {
	var l Lazy[string]
	calls := 0

	if _, ok := l.Peek(); ok {
		t.Fatal("fresh Lazy reported a value")
	}

	_, err := l.Get(func() (string, error) {
		calls++
		return "", errors.New(errors.PhaseResource, errors.KindNative).Build()
	})
	if err == nil {
		t.Fatal("expected compute error")
	}
	if _, ok := l.Peek(); ok {
		t.Fatal("failed compute was cached")
	}

	for i := 0; i < 3; i++ {
		v, err := l.Get(func() (string, error) {
			calls++
			return "album", nil
		})
		if err != nil || v != "album" {
			t.Fatalf("Get = %q, %v", v, err)
		}
	}
	if calls != 2 {
		t.Fatalf("compute called %d times, want 2", calls)
	}

	v, ok := l.Take()
	if !ok || v != "album" {
		t.Fatalf("Take = %q, %v", v, ok)
	}
	if _, ok := l.Peek(); ok {
		t.Fatal("Lazy still set after Take")
	}
}
