package resource

import (
	"testing"

	"github.com/wippyai/libspot/errors"
	"github.com/wippyai/libspot/native"
)

type wrapper struct {
	h native.Handle
}

type testObserver struct {
	events []Event
}

func (o *testObserver) OnResourceEvent(e Event) {
	o.events = append(o.events, e)
}

func TestManager_GetOrCreateIdentity(t *testing.T) {
	m := NewManager[*wrapper](KindTrack)
	constructs := 0
	construct := func(h native.Handle) (*wrapper, error) {
		constructs++
		return &wrapper{h: h}, nil
	}

	a, err := m.GetOrCreate(native.Handle(7), construct)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	b, err := m.GetOrCreate(native.Handle(7), construct)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if a != b {
		t.Fatal("same handle produced two wrappers")
	}
	if constructs != 1 {
		t.Fatalf("construct called %d times, want 1", constructs)
	}

	c, _ := m.GetOrCreate(native.Handle(8), construct)
	if c == a {
		t.Fatal("different handles share a wrapper")
	}
	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
}

func TestManager_InvalidHandle(t *testing.T) {
	m := NewManager[*wrapper](KindAlbum)
	_, err := m.GetOrCreate(native.Invalid, func(h native.Handle) (*wrapper, error) {
		t.Fatal("construct called for invalid handle")
		return nil, nil
	})
	if !errors.IsKind(err, errors.KindInvalidHandle) {
		t.Fatalf("expected invalid handle, got %v", err)
	}
}

func TestManager_ConstructError(t *testing.T) {
	m := NewManager[*wrapper](KindArtist)
	want := errors.New(errors.PhaseNative, errors.KindNative).Build()
	_, err := m.GetOrCreate(native.Handle(1), func(native.Handle) (*wrapper, error) {
		return nil, want
	})
	if err != want {
		t.Fatalf("got %v, want %v", err, want)
	}
	if m.Len() != 0 {
		t.Fatal("failed construct left an entry")
	}
}

func TestManager_AdoptReleasesSurplus(t *testing.T) {
	m := NewManager[*wrapper](KindSearch)
	var released []native.Handle
	release := func(h native.Handle) native.Code {
		released = append(released, h)
		return native.OK
	}
	construct := func(h native.Handle) (*wrapper, error) { return &wrapper{h: h}, nil }

	a, err := m.Adopt(native.Handle(3), construct, release)
	if err != nil {
		t.Fatalf("Adopt: %v", err)
	}
	if len(released) != 0 {
		t.Fatalf("first adopt released %v", released)
	}

	b, err := m.Adopt(native.Handle(3), construct, release)
	if err != nil {
		t.Fatalf("Adopt: %v", err)
	}
	if a != b {
		t.Fatal("adopt of a known handle produced a second wrapper")
	}
	if len(released) != 1 || released[0] != native.Handle(3) {
		t.Fatalf("surplus reference not released: %v", released)
	}

	_, err = m.Adopt(native.Handle(4), func(native.Handle) (*wrapper, error) {
		return nil, errors.New(errors.PhaseResource, errors.KindInvalidInput).Build()
	}, release)
	if err == nil {
		t.Fatal("expected construct error")
	}
	if len(released) != 2 || released[1] != native.Handle(4) {
		t.Fatalf("failed adopt leaked its reference: %v", released)
	}
}

func TestManager_RemoveIdempotent(t *testing.T) {
	m := NewManager[*wrapper](KindLink)
	construct := func(h native.Handle) (*wrapper, error) { return &wrapper{h: h}, nil }
	first, _ := m.GetOrCreate(native.Handle(5), construct)

	if !m.Remove(native.Handle(5)) {
		t.Fatal("Remove of live entry returned false")
	}
	if m.Remove(native.Handle(5)) {
		t.Fatal("second Remove returned true")
	}
	if _, ok := m.Lookup(native.Handle(5)); ok {
		t.Fatal("Lookup found removed entry")
	}

	fresh, _ := m.GetOrCreate(native.Handle(5), construct)
	if fresh == first {
		t.Fatal("lookup after remove returned the disposed wrapper")
	}
}

func TestManager_Observer(t *testing.T) {
	m := NewManager[*wrapper](KindUser)
	obs := &testObserver{}
	m.Subscribe(obs)
	construct := func(h native.Handle) (*wrapper, error) { return &wrapper{h: h}, nil }

	m.GetOrCreate(native.Handle(9), construct)
	m.GetOrCreate(native.Handle(9), construct)
	m.Remove(native.Handle(9))

	want := []EventType{EventCreated, EventShared, EventDropped}
	if len(obs.events) != len(want) {
		t.Fatalf("got %d events, want %d", len(obs.events), len(want))
	}
	for i, e := range obs.events {
		if e.Type != want[i] {
			t.Fatalf("event %d = %v, want %v", i, e.Type, want[i])
		}
		if e.Handle != native.Handle(9) || e.Kind != KindUser {
			t.Fatalf("event %d = %+v", i, e)
		}
	}

	m.Unsubscribe(obs)
	m.GetOrCreate(native.Handle(10), construct)
	if len(obs.events) != 3 {
		t.Fatal("unsubscribed observer still notified")
	}
}

func TestManager_Each(t *testing.T) {
	m := NewManager[*wrapper](KindPlaylist)
	construct := func(h native.Handle) (*wrapper, error) { return &wrapper{h: h}, nil }
	for h := native.Handle(1); h <= 4; h++ {
		m.GetOrCreate(h, construct)
	}

	seen := 0
	m.Each(func(h native.Handle, w *wrapper) bool {
		if w.h != h {
			t.Fatalf("entry %v holds wrapper for %v", h, w.h)
		}
		seen++
		return seen < 2
	})
	if seen != 2 {
		t.Fatalf("Each visited %d entries after early stop, want 2", seen)
	}
	if got := len(m.Snapshot()); got != 4 {
		t.Fatalf("Snapshot len = %d, want 4", got)
	}
}
