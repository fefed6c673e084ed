package spotify

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/wippyai/libspot/errors"
	"github.com/wippyai/libspot/native"
	"github.com/wippyai/libspot/native/sim"
	"github.com/wippyai/libspot/resource"
	"golang.org/x/sync/errgroup"
)

func parseTrack(t *testing.T, s *Session, uri string) *Track {
	t.Helper()
	l, err := s.ParseLink(uri)
	if err != nil {
		t.Fatalf("ParseLink(%q): %v", uri, err)
	}
	defer l.Dispose()
	tr, err := l.Track()
	if err != nil || tr == nil {
		t.Fatalf("Track: %v %v", tr, err)
	}
	return tr
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestTrack_Identity(t *testing.T) {
	lib, _, s := newTestSession(t)

	a := parseTrack(t, s, lib.TrackURI("Get Lucky"))
	b := parseTrack(t, s, lib.TrackURI("Get Lucky"))
	if a != b {
		t.Fatal("same handle produced two wrappers")
	}
	if refs := lib.Refs(a.Handle()); refs != 1 {
		t.Fatalf("refs = %d, want 1", refs)
	}

	name, err := a.Name()
	if err != nil || name != "Get Lucky" {
		t.Fatalf("Name = %q, %v", name, err)
	}
	d, err := a.Duration()
	if err != nil || d != 369*time.Second {
		t.Fatalf("Duration = %v, %v", d, err)
	}
}

func TestTrack_DisposeIdempotent(t *testing.T) {
	lib, _, s := newTestSession(t)

	tr := parseTrack(t, s, lib.TrackURI("Da Funk"))
	h := tr.Handle()
	if err := tr.Dispose(); err != nil {
		t.Fatalf("Dispose: %v", err)
	}
	if err := tr.Dispose(); err != nil {
		t.Fatalf("second Dispose: %v", err)
	}
	if n := lib.Releases(h); n != 1 {
		t.Fatalf("releases = %d, want 1", n)
	}
	if tr.Handle().Valid() {
		t.Fatal("disposed wrapper still exposes its handle")
	}

	calls := lib.Calls()
	if _, err := tr.Name(); !errors.IsKind(err, errors.KindObjectDisposed) {
		t.Fatalf("Name after dispose: %v", err)
	}
	if _, err := tr.Album(); !errors.IsKind(err, errors.KindObjectDisposed) {
		t.Fatalf("Album after dispose: %v", err)
	}
	if lib.Calls() != calls {
		t.Fatal("accessor on a disposed wrapper reached the library")
	}

	again := parseTrack(t, s, lib.TrackURI("Da Funk"))
	if again == tr {
		t.Fatal("lookup returned the disposed wrapper")
	}
	if lib.Refs(h) != 1 {
		t.Fatalf("refs after re-wrap = %d", lib.Refs(h))
	}
}

func TestTrack_CascadesToAlbumAndArtists(t *testing.T) {
	lib, _, s := newTestSession(t)

	tr := parseTrack(t, s, lib.TrackURI("One More Time"))
	album, err := tr.Album()
	if err != nil || album == nil {
		t.Fatalf("Album: %v %v", album, err)
	}
	if again, _ := tr.Album(); again != album {
		t.Fatal("album not cached")
	}
	artists, err := tr.Artists()
	if err != nil || len(artists) != 1 {
		t.Fatalf("Artists = %v, %v", artists, err)
	}
	albumArtist, err := album.Artist()
	if err != nil || albumArtist != artists[0] {
		t.Fatal("album artist and track artist are different wrappers")
	}
	cover, err := album.Cover()
	if err != nil || cover == nil {
		t.Fatalf("Cover: %v %v", cover, err)
	}

	ah, arh, ch := album.Handle(), artists[0].Handle(), cover.Handle()
	if err := tr.Dispose(); err != nil {
		t.Fatalf("Dispose: %v", err)
	}
	for _, d := range []interface{ IsDisposed() bool }{album, artists[0], cover} {
		if !d.IsDisposed() {
			t.Fatalf("%T not disposed with its track", d)
		}
	}
	if lib.Refs(ah) != 0 || lib.Refs(arh) != 0 {
		t.Fatalf("refs left: album %d artist %d", lib.Refs(ah), lib.Refs(arh))
	}
	if !lib.Freed(ch) {
		t.Fatal("cover image not freed")
	}
}

func TestTrack_ChildDisposedElsewhere(t *testing.T) {
	lib, _, s := newTestSession(t)

	first := parseTrack(t, s, lib.TrackURI("Aerodynamic"))
	second := parseTrack(t, s, lib.TrackURI("Digital Love"))
	a1, err := first.Album()
	if err != nil {
		t.Fatalf("Album: %v", err)
	}
	a2, err := second.Album()
	if err != nil || a1 != a2 {
		t.Fatal("tracks of one album got different album wrappers")
	}

	if err := first.Dispose(); err != nil {
		t.Fatalf("Dispose: %v", err)
	}
	a3, err := second.Album()
	if err != nil || a3 == nil || a3.IsDisposed() {
		t.Fatalf("Album after sibling dispose: %v %v", a3, err)
	}
	if name, err := a3.Name(); err != nil || name != "Discovery" {
		t.Fatalf("Name = %q, %v", name, err)
	}
}

func TestTrack_LoadingHasNoAlbum(t *testing.T) {
	lib, _, s := newTestSession(t)

	tr := parseTrack(t, s, lib.TrackURI("Teachers"))
	status, err := tr.Status()
	if err != nil || status != native.IsLoading {
		t.Fatalf("Status = %v, %v", status, err)
	}
	album, err := tr.Album()
	if err != nil || album != nil {
		t.Fatalf("Album of loading track = %v, %v", album, err)
	}
	if _, ok := tr.album.Peek(); ok {
		t.Fatal("nil album was cached")
	}
}

func TestTrack_Availability(t *testing.T) {
	lib, _, s := newTestSession(t)
	if err := login(t, s, "alice", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}

	ok, err := parseTrack(t, s, lib.TrackURI("Home Computer")).IsAvailable()
	if err != nil || ok {
		t.Fatalf("IsAvailable = %v, %v", ok, err)
	}

	tr := parseTrack(t, s, lib.TrackURI("The Model"))
	if err := tr.SetStarred(true); err != nil {
		t.Fatalf("SetStarred: %v", err)
	}
	if starred, err := tr.IsStarred(); err != nil || !starred {
		t.Fatalf("IsStarred = %v, %v", starred, err)
	}
}

func TestSearch(t *testing.T) {
	_, _, s := newTestSession(t)

	sr, err := s.Search("daft punk", nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if err := sr.Wait(waitCtx(t)); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	tracks, err := sr.Tracks()
	if err != nil || len(tracks) == 0 {
		t.Fatalf("Tracks = %d, %v", len(tracks), err)
	}
	total, err := sr.TotalTracks()
	if err != nil || total < len(tracks) {
		t.Fatalf("TotalTracks = %d, %v", total, err)
	}
	artists, err := sr.Artists()
	if err != nil || len(artists) != 1 {
		t.Fatalf("Artists = %d, %v", len(artists), err)
	}
	if dym, _ := sr.DidYouMean(); dym != "" {
		t.Fatalf("DidYouMean = %q", dym)
	}

	typo, err := s.Search("daft punck", &SearchOptions{TrackCount: 5})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if err := typo.Wait(waitCtx(t)); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if dym, err := typo.DidYouMean(); err != nil || dym != "daft punk" {
		t.Fatalf("DidYouMean = %q, %v", dym, err)
	}

	if _, err := s.Search("", nil); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Fatalf("empty query: %v", err)
	}
}

func TestSearch_DisposeFailsWait(t *testing.T) {
	_, _, s := newTestSession(t, sim.WithLatency(time.Second))

	sr, err := s.Search("justice", nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if loaded, _ := sr.IsLoaded(); loaded {
		t.Fatal("search loaded immediately")
	}
	if n, _ := sr.Tracks(); len(n) != 0 {
		t.Fatal("results visible before load")
	}

	done := make(chan error, 1)
	go func() { done <- sr.Wait(waitCtx(t)) }()
	time.Sleep(20 * time.Millisecond)
	if err := sr.Dispose(); err != nil {
		t.Fatalf("Dispose: %v", err)
	}
	select {
	case err := <-done:
		if !errors.IsKind(err, errors.KindObjectDisposed) {
			t.Fatalf("Wait: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return after Dispose")
	}
}

func TestRadioSearch(t *testing.T) {
	_, _, s := newTestSession(t)

	sr, err := s.RadioSearch(1990, 2010, native.GenreHouse)
	if err != nil {
		t.Fatalf("RadioSearch: %v", err)
	}
	if err := sr.Wait(waitCtx(t)); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	tracks, err := sr.Tracks()
	if err != nil || len(tracks) == 0 {
		t.Fatalf("Tracks = %d, %v", len(tracks), err)
	}
	prev := 101
	for _, tr := range tracks {
		p, err := tr.Popularity()
		if err != nil || p > prev {
			t.Fatalf("tracks not sorted by popularity: %d after %d", p, prev)
		}
		prev = p
	}
	if _, err := s.RadioSearch(2010, 1990, native.GenreHouse); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Fatalf("reversed years: %v", err)
	}
}

func TestToplist(t *testing.T) {
	_, _, s := newTestSession(t)

	tl, err := s.Toplist(native.ToplistTracks, native.ToplistRegionEverywhere)
	if err != nil {
		t.Fatalf("Toplist: %v", err)
	}
	if err := tl.Wait(waitCtx(t)); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	tracks, err := tl.Tracks()
	if err != nil || len(tracks) == 0 {
		t.Fatalf("Tracks = %d, %v", len(tracks), err)
	}
	top, _ := tracks[0].Name()
	if top != "Get Lucky" {
		t.Fatalf("top track = %q", top)
	}

	mine, err := s.UserToplist(native.ToplistArtists, "")
	if err != nil {
		t.Fatalf("UserToplist: %v", err)
	}
	err = mine.Wait(waitCtx(t))
	if code, _ := errors.CodeOf(err); native.Code(code) != native.PermissionDenied {
		t.Fatalf("user toplist while logged out: %v", err)
	}
}

func TestImage(t *testing.T) {
	lib, _, s := newTestSession(t)

	tr := parseTrack(t, s, lib.TrackURI("Sexy Boy"))
	album, err := tr.Album()
	if err != nil {
		t.Fatalf("Album: %v", err)
	}
	id, err := album.CoverID()
	if err != nil || len(id) != native.ImageIDSize {
		t.Fatalf("CoverID = %x, %v", id, err)
	}
	img, err := s.Image(id)
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	cover, err := album.Cover()
	if err != nil || cover != img {
		t.Fatal("image for one id produced two wrappers")
	}
	if err := img.Wait(waitCtx(t)); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	data, err := img.Data()
	if err != nil || !bytes.HasPrefix(data, []byte{0xff, 0xd8}) {
		t.Fatalf("Data = %x, %v", data, err)
	}
	if f, _ := img.Format(); f != native.ImageFormatJPEG {
		t.Fatalf("Format = %v", f)
	}
	if lib.Refs(img.Handle()) != 1 {
		t.Fatalf("refs = %d, want 1", lib.Refs(img.Handle()))
	}

	if _, err := s.Image([]byte{1}); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Fatalf("short id: %v", err)
	}
}

func TestLink(t *testing.T) {
	lib, _, s := newTestSession(t)

	uri := lib.TrackURI("Genesis")
	l, err := s.ParseLink(uri)
	if err != nil {
		t.Fatalf("ParseLink: %v", err)
	}
	if typ, _ := l.Type(); typ != native.LinkTrack {
		t.Fatalf("Type = %v", typ)
	}
	if got, _ := l.URI(); got != uri {
		t.Fatalf("URI = %q, want %q", got, uri)
	}
	if a, err := l.Album(); err != nil || a != nil {
		t.Fatalf("Album of track link = %v, %v", a, err)
	}

	tr, _ := l.Track()
	back, err := tr.Link(0)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if got, _ := back.URI(); got != uri {
		t.Fatalf("round trip = %q", got)
	}

	if _, err := s.ParseLink("spotify:bogus:1"); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Fatalf("bad uri: %v", err)
	}
}

func TestGate_SerializesConcurrentCalls(t *testing.T) {
	lib, b, s := newTestSession(t, sim.WithCallDelay(50*time.Microsecond))

	names := []string{"Get Lucky", "Genesis", "The Model", "Sexy Boy"}
	var tracks []*Track
	for _, n := range names {
		tracks = append(tracks, parseTrack(t, s, lib.TrackURI(n)))
	}

	var g errgroup.Group
	for i := range 8 {
		tr := tracks[i%len(tracks)]
		g.Go(func() error {
			for range 25 {
				if _, err := tr.Name(); err != nil {
					return err
				}
				if _, err := tr.Album(); err != nil {
					return err
				}
				if _, err := s.ProcessEvents(); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent calls: %v", err)
	}
	if n := lib.Overlaps(); n != 0 {
		t.Fatalf("overlapping native calls = %d", n)
	}
	if b.Gate().Contended() == 0 {
		t.Log("no contention observed")
	}
}

func TestClose_ReleasesEverything(t *testing.T) {
	lib := sim.New(sim.WithLatency(0))
	b := NewBinding(lib)
	s, err := b.CreateSession(testConfig())
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if err := login(t, s, "bob", "hunter2"); err != nil {
		t.Fatalf("login: %v", err)
	}

	tr := parseTrack(t, s, lib.TrackURI("Phantom"))
	album, _ := tr.Album()
	_, _ = album.Cover()
	_, _ = tr.Artists()
	sr, _ := s.Search("kraftwerk", nil)
	_ = sr.Wait(waitCtx(t))
	_, _ = sr.Tracks()
	_, _ = s.Toplist(native.ToplistAlbums, native.CountryRegion("GB"))
	pc, _ := s.PlaylistContainer()
	lists, _ := pc.Playlists()
	_, _ = lists[0].Tracks()
	l, _ := tr.Link(time.Minute)
	_ = l

	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if leaks := lib.Leaks(); len(leaks) > 0 {
		t.Fatalf("leaked references: %v", leaks)
	}
	if v := lib.Violations(); len(v) > 0 {
		t.Fatalf("violations: %v", v)
	}
	if !tr.IsDisposed() || !sr.IsDisposed() || !pc.IsDisposed() {
		t.Fatal("wrappers survived Close")
	}
	if _, err := b.CreateSession(testConfig()); !errors.IsKind(err, errors.KindInvalidState) {
		t.Fatalf("CreateSession after Close: %v", err)
	}
}

type recorder struct {
	events []resource.Event
}

func (r *recorder) OnResourceEvent(e resource.Event) {
	r.events = append(r.events, e)
}

func (r *recorder) count(kind resource.Kind, typ resource.EventType) int {
	n := 0
	for _, e := range r.events {
		if e.Kind == kind && e.Type == typ {
			n++
		}
	}
	return n
}

func TestObserve(t *testing.T) {
	lib, _, s := newTestSession(t)
	rec := &recorder{}
	cancel := s.Observe(rec)

	tr := parseTrack(t, s, lib.TrackURI("Get Lucky"))
	parseTrack(t, s, lib.TrackURI("Get Lucky"))
	if err := tr.Dispose(); err != nil {
		t.Fatalf("Dispose: %v", err)
	}

	for _, c := range []struct {
		typ  resource.EventType
		want int
	}{
		{resource.EventCreated, 1},
		{resource.EventShared, 1},
		{resource.EventDropped, 1},
	} {
		if got := rec.count(resource.KindTrack, c.typ); got != c.want {
			t.Fatalf("track %v events = %d, want %d", c.typ, got, c.want)
		}
	}
	if got := rec.count(resource.KindLink, resource.EventDropped); got != 2 {
		t.Fatalf("link dropped events = %d, want 2", got)
	}

	cancel()
	n := len(rec.events)
	parseTrack(t, s, lib.TrackURI("Da Funk"))
	if len(rec.events) != n {
		t.Fatal("observer still called after cancel")
	}
}

func TestLink_CreatedWhileSessionDisposes(t *testing.T) {
	lib, b, s := newTestSession(t)
	tr := parseTrack(t, s, lib.TrackURI("Get Lucky"))

	type result struct {
		link *Link
		err  error
	}
	done := make(chan result, 1)
	before := b.gate.Contended()
	_ = b.gate.Do(func() error {
		go func() {
			l, err := tr.Link(0)
			done <- result{l, err}
		}()
		deadline := time.Now().Add(5 * time.Second)
		for b.gate.Contended() == before {
			if time.Now().After(deadline) {
				t.Error("Link never waited for the gate")
				return nil
			}
			time.Sleep(time.Millisecond)
		}
		if !s.markDisposed() {
			t.Error("session already disposing")
		}
		return nil
	})

	r := <-done
	if !errors.IsKind(r.err, errors.KindObjectDisposed) {
		t.Fatalf("Link: %v %v, want object disposed", r.link, r.err)
	}
	if n := s.links.Len(); n != 0 {
		t.Fatalf("links registered during dispose = %d", n)
	}
	if err := s.teardown(); err != nil {
		t.Fatalf("teardown: %v", err)
	}
	if leaks := lib.Leaks(); len(leaks) != 0 {
		t.Fatalf("leaks: %v", leaks)
	}
}
