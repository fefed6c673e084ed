package sim

import (
	"sync"
	"testing"
	"time"

	"github.com/wippyai/libspot/native"
)

func newSession(t *testing.T, l *Library, cb *native.Callbacks) native.Handle {
	t.Helper()
	h, code := l.SessionCreate(&native.SessionConfig{
		APIVersion:     native.APIVersion,
		ApplicationKey: []byte{1, 2, 3},
		UserAgent:      "libspot-test",
		Callbacks:      cb,
	})
	if code != native.OK {
		t.Fatalf("SessionCreate: %v", code)
	}
	return h
}

func TestSessionCreate_Validation(t *testing.T) {
	l := New()
	defer l.Close()

	tests := []struct {
		name string
		cfg  native.SessionConfig
		want native.Code
	}{
		{"api version", native.SessionConfig{APIVersion: 1, ApplicationKey: []byte{1}, UserAgent: "a", Callbacks: &native.Callbacks{}}, native.BadAPIVersion},
		{"key", native.SessionConfig{APIVersion: native.APIVersion, UserAgent: "a", Callbacks: &native.Callbacks{}}, native.BadApplicationKey},
		{"user agent", native.SessionConfig{APIVersion: native.APIVersion, ApplicationKey: []byte{1}, Callbacks: &native.Callbacks{}}, native.BadUserAgent},
		{"callbacks", native.SessionConfig{APIVersion: native.APIVersion, ApplicationKey: []byte{1}, UserAgent: "a"}, native.MissingCallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, code := l.SessionCreate(&tt.cfg); code != tt.want {
				t.Fatalf("code = %v, want %v", code, tt.want)
			}
		})
	}

	newSession(t, l, &native.Callbacks{})
	if _, code := l.SessionCreate(&native.SessionConfig{
		APIVersion: native.APIVersion, ApplicationKey: []byte{1}, UserAgent: "a", Callbacks: &native.Callbacks{},
	}); code != native.APIInitializationFailed {
		t.Fatalf("second session: %v", code)
	}
}

func TestLogin(t *testing.T) {
	l := New(WithLatency(0))
	defer l.Close()

	var mu sync.Mutex
	var got []native.Code
	s := newSession(t, l, &native.Callbacks{
		LoggedIn: func(_ native.Handle, status native.Code) {
			mu.Lock()
			got = append(got, status)
			mu.Unlock()
		},
	})

	l.SessionLogin(s, "alice", "wrong")
	l.SessionLogin(s, "mallory", "x")
	l.SessionLogin(s, "alice", "secret")
	l.Flush()

	mu.Lock()
	defer mu.Unlock()
	want := []native.Code{native.BadUsernameOrPassword, native.UserBanned, native.OK}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("login %d = %v, want %v", i, got[i], want[i])
		}
	}
	if st := l.SessionConnectionState(s); st != native.ConnectionLoggedIn {
		t.Fatalf("connection state = %v", st)
	}
	if c := l.SessionUserCountry(s); c != int('S')<<8|int('E') {
		t.Fatalf("country = %d", c)
	}
	if n := l.SessionNumFriends(s); n != 2 {
		t.Fatalf("friends = %d, want 2", n)
	}
	if got := l.UserCanonicalName(l.SessionFriend(s, 0)); got != "bob" {
		t.Fatalf("first friend = %q", got)
	}
	if l.SessionFriend(s, 2).Valid() {
		t.Fatal("out of range friend should be invalid")
	}
}

func TestReferenceCounting(t *testing.T) {
	l := New()
	defer l.Close()
	s := newSession(t, l, &native.Callbacks{})

	link := l.LinkCreateFromString(l.TrackURI("Get Lucky"))
	if !link.Valid() {
		t.Fatal("link did not parse")
	}
	track := l.LinkAsTrack(link)
	l.TrackAddRef(track)
	if l.TrackName(track) != "Get Lucky" {
		t.Fatalf("TrackName = %q", l.TrackName(track))
	}
	l.TrackRelease(track)
	l.LinkRelease(link)

	if !l.Freed(link) {
		t.Fatal("link not freed at zero references")
	}
	if len(l.Violations()) != 0 {
		t.Fatalf("unexpected violations: %v", l.Violations())
	}

	l.LinkType(link)
	l.TrackRelease(track)
	v := l.Violations()
	if len(v) != 2 {
		t.Fatalf("expected use-after-free and over-release, got %v", v)
	}

	l.SessionRelease(s)
	if leaks := l.Leaks(); len(leaks) != 0 {
		t.Fatalf("leaks: %v", leaks)
	}
}

func TestSearch(t *testing.T) {
	l := New(WithLatency(0))
	defer l.Close()
	s := newSession(t, l, &native.Callbacks{})

	done := make(chan uintptr, 2)
	l.RegisterCompletions(&native.Completions{
		SearchComplete: func(_ native.Handle, userdata uintptr) { done <- userdata },
	})

	exact := l.SearchCreate(s, native.SearchParams{Query: "daft punk", TrackCount: 25, AlbumCount: 25, ArtistCount: 25}, 1)
	typo := l.SearchCreate(s, native.SearchParams{Query: "daft punck", TrackCount: 25}, 2)

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("search did not complete")
		}
	}

	if l.SearchNumTracks(exact) == 0 {
		t.Fatal("exact search found no tracks")
	}
	if got := l.SearchDidYouMean(exact); got != "" {
		t.Fatalf("exact DidYouMean = %q", got)
	}
	if got := l.SearchDidYouMean(typo); got != "daft punk" {
		t.Fatalf("typo DidYouMean = %q, want %q", got, "daft punk")
	}
	if n := l.SearchNumArtists(exact); n != 1 {
		t.Fatalf("artists = %d, want 1", n)
	}
}

func TestOverlapDetection(t *testing.T) {
	l := New(WithCallDelay(time.Millisecond))
	defer l.Close()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				l.ErrorMessage(native.OK)
			}
		}()
	}
	wg.Wait()

	if l.Overlaps() == 0 {
		t.Fatal("ungated concurrent calls were not detected")
	}
}

func TestDeliverMusic(t *testing.T) {
	l := New()
	defer l.Close()

	var frames int
	newSession(t, l, &native.Callbacks{
		MusicDelivery: func(_ native.Handle, f native.AudioFormat, data []byte, n int) int {
			if len(data) != n*f.BytesPerFrame() {
				t.Errorf("len(data) = %d for %d frames", len(data), n)
			}
			frames += n
			return n
		},
	})

	if got := l.DeliverMusic(512); got != 512 {
		t.Fatalf("DeliverMusic = %d", got)
	}
	if frames != 512 {
		t.Fatalf("sink saw %d frames", frames)
	}
}
