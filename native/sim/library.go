package sim

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/wippyai/libspot/native"
)

type objKind uint8

const (
	kindSession objKind = iota
	kindTrack
	kindAlbum
	kindArtist
	kindImage
	kindLink
	kindSearch
	kindUser
	kindPlaylist
	kindContainer
	kindToplist
)

var objKindNames = [...]string{
	kindSession:   "session",
	kindTrack:     "track",
	kindAlbum:     "album",
	kindArtist:    "artist",
	kindImage:     "image",
	kindLink:      "link",
	kindSearch:    "search",
	kindUser:      "user",
	kindPlaylist:  "playlist",
	kindContainer: "playlist_container",
	kindToplist:   "toplist",
}

func (k objKind) String() string { return objKindNames[k] }

type object struct {
	session   *sessionData
	track     *trackData
	album     *albumData
	artist    *artistData
	user      *userData
	playlist  *playlistData
	container *containerData
	image     *imageData
	link      *linkData
	search    *searchData
	toplist   *toplistData

	refs     int
	releases int
	kind     objKind
	pinned   bool
	freed    bool
}

type artistData struct {
	name string
	id   string
}

type albumData struct {
	name      string
	id        string
	cover     []byte
	tracks    []native.Handle
	artist    native.Handle
	year      int
	typ       native.AlbumType
	genres    native.RadioGenre
	available bool
}

type trackData struct {
	name       string
	id         string
	artists    []native.Handle
	album      native.Handle
	durationMs int
	popularity int
	disc       int
	index      int
	err        native.Code
	available  bool
}

type userData struct {
	canonical string
	display   string
	full      string
	picture   string
	password  string
	country   string
	starred   map[native.Handle]bool
	container native.Handle
	friends   []native.Handle
	banned    bool
}

type playlistData struct {
	name   string
	tracks []native.Handle
	owner  native.Handle
}

type containerData struct {
	playlists []native.Handle
}

type imageData struct {
	id        []byte
	data      []byte
	callbacks []uintptr
	err       native.Code
	loaded    bool
}

type linkData struct {
	uri      string
	target   native.Handle
	offsetMs int
	typ      native.LinkType
}

type options struct {
	latency   time.Duration
	callDelay time.Duration
	playback  time.Duration
}

// Option configures a Library.
type Option func(*options)

// WithLatency delays every asynchronous notification by d.
func WithLatency(d time.Duration) Option {
	return func(o *options) { o.latency = d }
}

// WithCallDelay makes every call linger for d, widening the window in which
// overlapping calls are detected.
func WithCallDelay(d time.Duration) Option {
	return func(o *options) { o.callDelay = d }
}

// WithPlayback caps the amount of audio delivered per track.
func WithPlayback(d time.Duration) Option {
	return func(o *options) { o.playback = d }
}

// Library is a simulated native library. All native.Library methods must be
// serialized by the caller, as with the real library.
type Library struct {
	objects     map[native.Handle]*object
	byID        map[string]native.Handle
	byName      map[string]native.Handle
	users       map[string]native.Handle
	images      map[string]native.Handle
	completions *native.Completions
	violations  []string

	pending []func()
	signal  chan struct{}
	quit    chan struct{}
	wg      conc.WaitGroup

	opts    options
	next    native.Handle
	session native.Handle
	stats   atomic.Pointer[native.AudioBufferStats]

	inside   atomic.Int32
	overlaps atomic.Int64
	calls    atomic.Int64

	mu        sync.Mutex
	jobMu     sync.Mutex
	closeOnce sync.Once
}

var _ native.Library = (*Library)(nil)

// New creates a library loaded with the built-in catalog and starts its
// callback goroutine. Close stops it.
func New(opts ...Option) *Library {
	l := &Library{
		objects: make(map[native.Handle]*object),
		byID:    make(map[string]native.Handle),
		byName:  make(map[string]native.Handle),
		users:   make(map[string]native.Handle),
		images:  make(map[string]native.Handle),
		signal:  make(chan struct{}, 1),
		quit:    make(chan struct{}),
		next:    0x10000,
		opts: options{
			latency:  time.Millisecond,
			playback: 2 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(&l.opts)
	}
	l.loadCatalog()
	l.wg.Go(l.loop)
	return l
}

func (l *Library) alloc(o *object) native.Handle {
	l.next += 0x40
	l.objects[l.next] = o
	return l.next
}

func (l *Library) loadCatalog() {
	for _, as := range catalogData {
		ah := l.alloc(&object{kind: kindArtist, pinned: true, artist: &artistData{
			name: as.name, id: catalogID("artist", as.name),
		}})
		l.byID["artist:"+l.objects[ah].artist.id] = ah
		for _, bs := range as.albums {
			album := &albumData{
				name: bs.name, id: catalogID("album", bs.name), cover: coverID(bs.name),
				artist: ah, year: bs.year, typ: bs.typ, genres: bs.genres, available: true,
			}
			bh := l.alloc(&object{kind: kindAlbum, pinned: true, album: album})
			l.byID["album:"+album.id] = bh
			for i, ts := range bs.tracks {
				track := &trackData{
					name: ts.name, id: catalogID("track", ts.name), artists: []native.Handle{ah},
					album: bh, durationMs: ts.seconds * 1000, popularity: ts.popularity,
					disc: 1, index: i + 1, available: !ts.unavailable,
				}
				if ts.loading {
					track.err = native.IsLoading
				}
				th := l.alloc(&object{kind: kindTrack, pinned: true, track: track})
				album.tracks = append(album.tracks, th)
				l.byID["track:"+track.id] = th
				l.byName[ts.name] = th
			}
		}
	}

	for _, us := range accounts {
		u := &userData{
			canonical: us.name, display: us.display, full: us.full,
			picture:  fmt.Sprintf("spotify:image:%x", coverID("user:"+us.name)),
			password: us.password, country: us.country, banned: us.banned,
			starred: make(map[native.Handle]bool),
		}
		uh := l.alloc(&object{kind: kindUser, pinned: true, user: u})
		l.users[us.name] = uh

		c := &containerData{}
		for _, ps := range us.playlists {
			p := &playlistData{name: ps.name, owner: uh}
			for _, name := range ps.tracks {
				p.tracks = append(p.tracks, l.byName[name])
			}
			c.playlists = append(c.playlists, l.alloc(&object{kind: kindPlaylist, pinned: true, playlist: p}))
		}
		u.container = l.alloc(&object{kind: kindContainer, pinned: true, container: c})
	}
	for _, us := range accounts {
		u := l.objects[l.users[us.name]].user
		for _, name := range us.friends {
			u.friends = append(u.friends, l.users[name])
		}
	}
}

// enter records a call. It must be the first statement of every native.Library
// method: defer l.enter()().
func (l *Library) enter() func() {
	if l.inside.Add(1) > 1 {
		l.overlaps.Add(1)
	}
	l.calls.Add(1)
	if l.opts.callDelay > 0 {
		time.Sleep(l.opts.callDelay)
	}
	return func() { l.inside.Add(-1) }
}

// lookup returns the live object for h. It records a violation for unknown,
// freed or mistyped handles. Callers hold l.mu.
func (l *Library) lookup(h native.Handle, kind objKind, op string) *object {
	o, ok := l.objects[h]
	switch {
	case !ok:
		l.violate("%s: unknown %s handle %v", op, kind, h)
		return nil
	case o.freed:
		l.violate("%s: use after free of %s %v", op, kind, h)
		return nil
	case o.kind != kind:
		l.violate("%s: handle %v is a %s, not a %s", op, h, o.kind, kind)
		return nil
	}
	return o
}

func (l *Library) violate(format string, args ...any) {
	l.violations = append(l.violations, fmt.Sprintf(format, args...))
}

func (l *Library) addRef(h native.Handle, kind objKind, op string) native.Code {
	l.mu.Lock()
	defer l.mu.Unlock()
	o := l.lookup(h, kind, op)
	if o == nil {
		return native.InvalidIndata
	}
	o.refs++
	return native.OK
}

func (l *Library) release(h native.Handle, kind objKind, op string) native.Code {
	l.mu.Lock()
	defer l.mu.Unlock()
	o := l.lookup(h, kind, op)
	if o == nil {
		return native.InvalidIndata
	}
	o.releases++
	if o.refs <= 0 {
		l.violate("%s: release of %s %v without a reference", op, kind, h)
		return native.InvalidIndata
	}
	o.refs--
	if o.refs == 0 && !o.pinned {
		o.freed = true
		l.onFree(h, o)
	}
	return native.OK
}

func (l *Library) onFree(h native.Handle, o *object) {
	switch o.kind {
	case kindImage:
		delete(l.images, string(o.image.id))
	case kindSession:
		l.stopPlayback(o.session)
		if l.session == h {
			l.session = native.Invalid
		}
	}
}

// ErrorMessage implements native.Library.
func (l *Library) ErrorMessage(c native.Code) string {
	defer l.enter()()
	return c.String()
}

// RegisterCompletions implements native.Library.
func (l *Library) RegisterCompletions(c *native.Completions) {
	defer l.enter()()
	l.mu.Lock()
	l.completions = c
	l.mu.Unlock()
}

// post schedules fn on the callback goroutine. Jobs run in posting order.
func (l *Library) post(fn func()) {
	l.jobMu.Lock()
	l.pending = append(l.pending, fn)
	l.jobMu.Unlock()

	select {
	case l.signal <- struct{}{}:
	default:
	}
}

func (l *Library) loop() {
	for {
		select {
		case <-l.quit:
			return
		case <-l.signal:
		}
		for {
			l.jobMu.Lock()
			if len(l.pending) == 0 {
				l.jobMu.Unlock()
				break
			}
			fn := l.pending[0]
			l.pending = l.pending[1:]
			l.jobMu.Unlock()

			if l.opts.latency > 0 {
				select {
				case <-l.quit:
					return
				case <-time.After(l.opts.latency):
				}
			}
			fn()
		}
	}
}

// notify schedules a session callback for h. It is dropped if the session
// has been released by the time it runs.
func (l *Library) notify(h native.Handle, fn func(cb *native.Callbacks)) {
	l.post(func() {
		if cb := l.callbacks(h); cb != nil {
			fn(cb)
		}
	})
}

func (l *Library) callbacks(h native.Handle) *native.Callbacks {
	l.mu.Lock()
	defer l.mu.Unlock()
	o, ok := l.objects[h]
	if !ok || o.freed || o.kind != kindSession {
		return nil
	}
	return o.session.cb
}

func (l *Library) completionTable() *native.Completions {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.completions
}

// Fire runs fn on the callback goroutine with the live session's callbacks,
// the way the library raises notifications of its own.
func (l *Library) Fire(fn func(cb *native.Callbacks, session native.Handle)) {
	l.mu.Lock()
	h := l.session
	l.mu.Unlock()
	l.notify(h, func(cb *native.Callbacks) { fn(cb, h) })
}

// Flush blocks until every notification posted so far has been delivered.
func (l *Library) Flush() {
	done := make(chan struct{})
	l.post(func() { close(done) })
	select {
	case <-done:
	case <-l.quit:
	}
}

// Close stops the callback and playback goroutines. It is idempotent.
func (l *Library) Close() error {
	l.closeOnce.Do(func() {
		close(l.quit)
		l.wg.Wait()
	})
	return nil
}

// Calls returns the number of native calls made so far.
func (l *Library) Calls() int64 {
	return l.calls.Load()
}

// Overlaps returns how many calls started while another was in progress.
func (l *Library) Overlaps() int64 {
	return l.overlaps.Load()
}

// Violations returns the recorded misuse reports.
func (l *Library) Violations() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.violations)
}

// Refs returns the number of references held by the binding on h.
func (l *Library) Refs(h native.Handle) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if o, ok := l.objects[h]; ok {
		return o.refs
	}
	return 0
}

// Releases returns how many times h has been released.
func (l *Library) Releases(h native.Handle) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if o, ok := l.objects[h]; ok {
		return o.releases
	}
	return 0
}

// Freed reports whether h named a created object that has been freed.
func (l *Library) Freed(h native.Handle) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	o, ok := l.objects[h]
	return ok && o.freed
}

// Leaks returns a description of every object the binding still references.
func (l *Library) Leaks() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for h, o := range l.objects {
		if !o.freed && o.refs > 0 {
			out = append(out, fmt.Sprintf("%s %v refs=%d", o.kind, h, o.refs))
		}
	}
	slices.Sort(out)
	return out
}

// TrackURI returns the link of a catalog track by name.
func (l *Library) TrackURI(name string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	h, ok := l.byName[name]
	if !ok {
		return ""
	}
	return "spotify:track:" + l.objects[h].track.id
}

// BufferStats returns the last audio buffer stats reported by the embedder.
func (l *Library) BufferStats() (native.AudioBufferStats, bool) {
	s := l.stats.Load()
	if s == nil {
		return native.AudioBufferStats{}, false
	}
	return *s, true
}
