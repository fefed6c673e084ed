package spotify

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wippyai/libspot/dispatch"
	"github.com/wippyai/libspot/errors"
	"github.com/wippyai/libspot/native"
	"github.com/wippyai/libspot/resource"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// State is the session's login state.
type State int32

const (
	StateCreated State = iota
	StateLoggingIn
	StateLoggedIn
	StateLoggingOut
	StateLoggedOut
	StateConnectionError
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateLoggingIn:
		return "logging_in"
	case StateLoggedIn:
		return "logged_in"
	case StateLoggingOut:
		return "logging_out"
	case StateLoggedOut:
		return "logged_out"
	case StateConnectionError:
		return "connection_error"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

const (
	pollInterval = 10 * time.Millisecond
	maxIdle      = time.Second
)

// Session is the root of the wrapper graph. It owns the callback bridge, the
// event queue and one identity table per resource kind.
type Session struct {
	binding *Binding
	bridge  *bridge
	events  *dispatch.Dispatcher
	native  *native.SessionConfig
	log     *zap.Logger

	login  *waiter
	logout *waiter

	tracks     *resource.Manager[*Track]
	albums     *resource.Manager[*Album]
	artists    *resource.Manager[*Artist]
	images     *resource.Manager[*Image]
	links      *resource.Manager[*Link]
	playlists  *resource.Manager[*Playlist]
	containers *resource.Manager[*PlaylistContainer]
	searches   *resource.Manager[*Search]
	users      *resource.Manager[*User]
	toplists   *resource.Manager[*Toplist]

	cfg   Config
	life  resource.Lifecycle
	state atomic.Int32
	mu    sync.Mutex
}

func newSession(b *Binding, cfg Config) *Session {
	events := dispatch.New(dispatch.WithLimit(cfg.QueueLimit), dispatch.WithOverflowHandler(
		func(limit int, dropped dispatch.Event) {
			b.log.Fatal("event queue overflow",
				zap.Int("limit", limit),
				zap.String("kind", string(dropped.Kind)))
		}))

	s := &Session{
		binding:    b,
		events:     events,
		log:        b.log,
		cfg:        cfg,
		tracks:     resource.NewManager[*Track](resource.KindTrack),
		albums:     resource.NewManager[*Album](resource.KindAlbum),
		artists:    resource.NewManager[*Artist](resource.KindArtist),
		images:     resource.NewManager[*Image](resource.KindImage),
		links:      resource.NewManager[*Link](resource.KindLink),
		playlists:  resource.NewManager[*Playlist](resource.KindPlaylist),
		containers: resource.NewManager[*PlaylistContainer](resource.KindPlaylistContainer),
		searches:   resource.NewManager[*Search](resource.KindSearch),
		users:      resource.NewManager[*User](resource.KindUser),
		toplists:   resource.NewManager[*Toplist](resource.KindToplist),
	}
	s.life.Init(resource.KindSession, native.Invalid)
	s.bridge = newBridge(events, b.log)
	s.native = cfg.native(&s.bridge.callbacks)

	// State transitions run before any application handler sees the event.
	events.On(EventLoginComplete, s.onLoginComplete)
	events.On(EventLogoutComplete, s.onLogoutComplete)
	events.On(EventConnectionError, s.onConnectionError)
	for _, kind := range []dispatch.Kind{EventSearchComplete, EventToplistComplete, EventImageLoaded} {
		events.On(kind, s.onCompletion)
	}
	if b.log.Core().Enabled(zap.DebugLevel) {
		s.Observe(logObserver{log: b.log})
	}
	return s
}

type subscriber interface {
	Subscribe(resource.Observer)
	Unsubscribe(resource.Observer)
}

func (s *Session) tables() []subscriber {
	return []subscriber{
		s.tracks, s.albums, s.artists, s.images, s.links,
		s.playlists, s.containers, s.searches, s.users, s.toplists,
	}
}

// Observe subscribes o to wrapper lifecycle events of every kind. Observers
// run under the gate and must not call wrapper methods.
func (s *Session) Observe(o resource.Observer) (cancel func()) {
	for _, t := range s.tables() {
		t.Subscribe(o)
	}
	return func() {
		for _, t := range s.tables() {
			t.Unsubscribe(o)
		}
	}
}

type logObserver struct {
	log *zap.Logger
}

func (o logObserver) OnResourceEvent(e resource.Event) {
	o.log.Debug("wrapper "+e.Type.String(),
		zap.Stringer("kind", e.Kind),
		zap.Stringer("handle", e.Handle))
}

// Handle returns the native session handle, or native.Invalid once disposed.
func (s *Session) Handle() native.Handle {
	return s.life.Handle()
}

// State returns the current login state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Config returns the configuration the session was created with.
func (s *Session) Config() Config {
	return s.cfg
}

// transition moves to next when the current state is one of from.
func (s *Session) transition(next State, from ...State) (State, bool) {
	for {
		cur := State(s.state.Load())
		allowed := false
		for _, f := range from {
			if cur == f {
				allowed = true
				break
			}
		}
		if !allowed {
			return cur, false
		}
		if s.state.CompareAndSwap(int32(cur), int32(next)) {
			return cur, true
		}
	}
}

func (s *Session) onLoginComplete(e dispatch.Event) {
	ev := e.Payload.(SessionEvent)
	if ev.Status == native.OK {
		s.transition(StateLoggedIn, StateLoggingIn)
	} else {
		s.transition(StateLoggedOut, StateLoggingIn)
	}
	s.mu.Lock()
	if s.login != nil {
		s.login.finish(ev.Status.AsyncErr("login"))
	}
	s.mu.Unlock()
}

func (s *Session) onLogoutComplete(dispatch.Event) {
	s.transition(StateLoggedOut, StateLoggingOut, StateLoggedIn)
	s.mu.Lock()
	if s.logout != nil {
		s.logout.finish(nil)
	}
	s.mu.Unlock()
}

func (s *Session) onConnectionError(e dispatch.Event) {
	ev := e.Payload.(SessionEvent)
	if ev.Status == native.OK {
		return
	}
	prev, ok := s.transition(StateConnectionError, StateLoggingIn, StateLoggedIn)
	if !ok {
		return
	}
	s.log.Warn("connection error",
		zap.Stringer("previous", prev),
		zap.Stringer("status", ev.Status))
	if prev == StateLoggingIn {
		s.mu.Lock()
		if s.login != nil {
			s.login.finish(ev.Status.AsyncErr("login"))
		}
		s.mu.Unlock()
	}
}

func (s *Session) onCompletion(e dispatch.Event) {
	if c, ok := e.Payload.(completion); ok {
		s.binding.pending.finish(c.token, nil)
	}
}

// Login starts an asynchronous login. It is valid from Created and LoggedOut;
// completion arrives as EventLoginComplete.
func (s *Session) Login(username, password string) error {
	if username == "" {
		return errors.InvalidInput(errors.PhaseSession, "username is required")
	}
	prev, ok := s.transition(StateLoggingIn, StateCreated, StateLoggedOut)
	if !ok {
		return errors.InvalidState("login", prev.String())
	}

	w := newWaiter()
	s.mu.Lock()
	s.login = w
	s.mu.Unlock()

	err := s.binding.gate.Do(func() error {
		if err := s.life.Check("login"); err != nil {
			return err
		}
		return s.binding.lib.SessionLogin(s.life.Handle(), username, password).Err("sp_session_login")
	})
	if err != nil {
		s.transition(prev, StateLoggingIn)
		s.mu.Lock()
		w.finish(err)
		s.mu.Unlock()
		return err
	}
	s.log.Info("login started", zap.String("user", username))
	return nil
}

// WaitForLogin blocks until the pending login completes. It returns the
// login's failure status as an AsyncFailure, or a Timeout when ctx ends
// first.
func (s *Session) WaitForLogin(ctx context.Context) error {
	s.mu.Lock()
	w := s.login
	s.mu.Unlock()
	if w == nil {
		if st := s.State(); st != StateLoggedIn {
			return errors.InvalidState("wait_for_login", st.String())
		}
		return nil
	}
	if err := s.await(ctx, w.done, "login"); err != nil {
		return err
	}
	return w.err
}

// Logout starts an asynchronous logout. It is valid only from LoggedIn;
// completion arrives as EventLogoutComplete.
func (s *Session) Logout() error {
	prev, ok := s.transition(StateLoggingOut, StateLoggedIn)
	if !ok {
		return errors.InvalidState("logout", prev.String())
	}

	w := newWaiter()
	s.mu.Lock()
	s.logout = w
	s.mu.Unlock()

	err := s.binding.gate.Do(func() error {
		if err := s.life.Check("logout"); err != nil {
			return err
		}
		return s.binding.lib.SessionLogout(s.life.Handle()).Err("sp_session_logout")
	})
	if err != nil {
		s.transition(prev, StateLoggingOut)
		s.mu.Lock()
		w.finish(err)
		s.mu.Unlock()
		return err
	}
	return nil
}

// WaitForLogout blocks until the pending logout completes.
func (s *Session) WaitForLogout(ctx context.Context) error {
	s.mu.Lock()
	w := s.logout
	s.mu.Unlock()
	if w == nil {
		return errors.InvalidState("wait_for_logout", s.State().String())
	}
	if err := s.await(ctx, w.done, "logout"); err != nil {
		return err
	}
	return w.err
}

// ProcessEvents runs one native processing tick and then pumps the queued
// events. It returns how long the library wants to be left alone.
func (s *Session) ProcessEvents() (time.Duration, error) {
	next, err := native.CallErr(s.binding.gate, func() (int, error) {
		if err := s.life.Check("process_events"); err != nil {
			return 0, err
		}
		return s.binding.lib.SessionProcessEvents(s.life.Handle()), nil
	})
	if err != nil {
		return 0, err
	}
	s.events.Pump()
	return time.Duration(next) * time.Millisecond, nil
}

// Pump dispatches queued events without a native tick.
func (s *Session) Pump() int {
	return s.events.Pump()
}

// Run processes events until ctx ends or the session is disposed. It wakes on
// the library's timeout hint, on NotifyMainThread and on newly queued events.
func (s *Session) Run(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		case <-s.bridge.wake:
		case <-s.events.Wake():
		}

		next, err := s.ProcessEvents()
		if err != nil {
			if errors.IsKind(err, errors.KindObjectDisposed) {
				return nil
			}
			return err
		}
		timer.Reset(min(max(next, time.Millisecond), maxIdle))
	}
}

// await drives the session until done closes or ctx ends.
func (s *Session) await(ctx context.Context, done <-chan struct{}, op string) error {
	tick := time.NewTicker(pollInterval)
	defer tick.Stop()
	for {
		select {
		case <-done:
			return nil
		default:
		}
		if _, err := s.ProcessEvents(); err != nil {
			select {
			case <-done:
				return nil
			default:
				return err
			}
		}
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return errors.Timeout(op, ctx.Err())
		case <-tick.C:
		case <-s.bridge.wake:
		case <-s.events.Wake():
		}
	}
}

// On registers h for events of kind. Handlers run in registration order
// during a pump.
func (s *Session) On(kind dispatch.Kind, h dispatch.Handler) (cancel func()) {
	return s.events.On(kind, h)
}

func (s *Session) onSession(kind dispatch.Kind, fn func(SessionEvent)) func() {
	return s.events.On(kind, func(e dispatch.Event) {
		ev, _ := e.Payload.(SessionEvent)
		ev.Kind = e.Kind
		ev.Seq = e.Seq
		fn(ev)
	})
}

// OnLoginComplete registers fn for login results. The returned func cancels it.
func (s *Session) OnLoginComplete(fn func(SessionEvent)) func() {
	return s.onSession(EventLoginComplete, fn)
}

// OnLogoutComplete registers fn for logout completion.
func (s *Session) OnLogoutComplete(fn func(SessionEvent)) func() {
	return s.onSession(EventLogoutComplete, fn)
}

// OnConnectionError registers fn for lost connections. Message holds the status text.
func (s *Session) OnConnectionError(fn func(SessionEvent)) func() {
	return s.onSession(EventConnectionError, fn)
}

// OnMetadataUpdated registers fn for metadata arrival.
func (s *Session) OnMetadataUpdated(fn func(SessionEvent)) func() {
	return s.onSession(EventMetadataUpdated, fn)
}

// OnMessageToUser registers fn for messages the service wants shown.
func (s *Session) OnMessageToUser(fn func(SessionEvent)) func() {
	return s.onSession(EventMessageToUser, fn)
}

// OnPlayTokenLost registers fn for playback paused by another client.
func (s *Session) OnPlayTokenLost(fn func(SessionEvent)) func() {
	return s.onSession(EventPlayTokenLost, fn)
}

// OnLogMessage registers fn for library log lines.
func (s *Session) OnLogMessage(fn func(SessionEvent)) func() {
	return s.onSession(EventLogMessage, fn)
}

// OnEndOfTrack registers fn for the end of the loaded track.
func (s *Session) OnEndOfTrack(fn func(SessionEvent)) func() {
	return s.onSession(EventEndOfTrack, fn)
}

// OnStreamingError registers fn for playback failures.
func (s *Session) OnStreamingError(fn func(SessionEvent)) func() {
	return s.onSession(EventStreamingError, fn)
}

// OnUserinfoUpdated registers fn for user profile changes.
func (s *Session) OnUserinfoUpdated(fn func(SessionEvent)) func() {
	return s.onSession(EventUserinfoUpdated, fn)
}

// OnStartPlayback registers fn for audio output starting.
func (s *Session) OnStartPlayback(fn func(SessionEvent)) func() {
	return s.onSession(EventStartPlayback, fn)
}

// OnStopPlayback registers fn for audio output stopping.
func (s *Session) OnStopPlayback(fn func(SessionEvent)) func() {
	return s.onSession(EventStopPlayback, fn)
}

// OnOfflineStatusUpdated registers fn for offline sync progress.
func (s *Session) OnOfflineStatusUpdated(fn func(SessionEvent)) func() {
	return s.onSession(EventOfflineStatusUpdated, fn)
}

// SetAudioSink routes music delivery to sink. Nil discards audio.
func (s *Session) SetAudioSink(sink AudioSink) {
	s.bridge.setSink(sink)
}

// call validates the session and runs fn under the gate.
func (s *Session) call(op string, fn func(lib native.Library, h native.Handle) error) error {
	return s.binding.gate.Do(func() error {
		if err := s.life.Check(op); err != nil {
			return err
		}
		return fn(s.binding.lib, s.life.Handle())
	})
}

// ConnectionState returns the library's view of the connection.
func (s *Session) ConnectionState() (native.ConnectionState, error) {
	var st native.ConnectionState
	err := s.call("connection_state", func(lib native.Library, h native.Handle) error {
		st = lib.SessionConnectionState(h)
		return nil
	})
	return st, err
}

// User returns the logged in user, or nil when logged out.
func (s *Session) User() (*User, error) {
	var u *User
	err := s.call("user", func(lib native.Library, h native.Handle) error {
		uh := lib.SessionUser(h)
		if !uh.Valid() {
			return nil
		}
		var err error
		u, err = s.user(uh)
		return err
	})
	return u, err
}

// UserCountry returns the logged in user's two-letter country code.
func (s *Session) UserCountry() (string, error) {
	var c int
	err := s.call("user_country", func(lib native.Library, h native.Handle) error {
		c = lib.SessionUserCountry(h)
		return nil
	})
	if err != nil || c == 0 {
		return "", err
	}
	return string([]byte{byte(c >> 8), byte(c)}), nil
}

// Friends returns the logged in user's friends. It is empty when logged out
// or when the library has no friend list.
func (s *Session) Friends() ([]*User, error) {
	var out []*User
	err := s.call("friends", func(lib native.Library, h native.Handle) error {
		n := lib.SessionNumFriends(h)
		for i := range n {
			fh := lib.SessionFriend(h, i)
			if !fh.Valid() {
				continue
			}
			u, err := s.user(fh)
			if err != nil {
				return err
			}
			out = append(out, u)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PlaylistContainer returns the logged in user's playlists, or nil when
// logged out.
func (s *Session) PlaylistContainer() (*PlaylistContainer, error) {
	var pc *PlaylistContainer
	err := s.call("playlist_container", func(lib native.Library, h native.Handle) error {
		ch := lib.SessionPlaylistContainer(h)
		if !ch.Valid() {
			return nil
		}
		var err error
		pc, err = s.container(ch)
		return err
	})
	return pc, err
}

// SetPreferredBitrate selects the streaming bitrate.
func (s *Session) SetPreferredBitrate(b native.Bitrate) error {
	return s.call("preferred_bitrate", func(lib native.Library, h native.Handle) error {
		return lib.SessionPreferredBitrate(h, b).Err("sp_session_preferred_bitrate")
	})
}

// SetPreferredOfflineBitrate selects the bitrate for offline sync.
func (s *Session) SetPreferredOfflineBitrate(b native.Bitrate, allowResync bool) error {
	return s.call("preferred_offline_bitrate", func(lib native.Library, h native.Handle) error {
		return lib.SessionPreferredOfflineBitrate(h, b, allowResync).Err("sp_session_preferred_offline_bitrate")
	})
}

// PlayerLoad loads t for playback.
func (s *Session) PlayerLoad(t *Track) error {
	return s.call("player_load", func(lib native.Library, h native.Handle) error {
		if err := t.life.Check("player_load"); err != nil {
			return err
		}
		return lib.PlayerLoad(h, t.life.Handle()).Err("sp_session_player_load")
	})
}

// PlayerPlay starts or pauses the loaded track.
func (s *Session) PlayerPlay(play bool) error {
	return s.call("player_play", func(lib native.Library, h native.Handle) error {
		return lib.PlayerPlay(h, play).Err("sp_session_player_play")
	})
}

// PlayerSeek moves playback of the loaded track to offset.
func (s *Session) PlayerSeek(offset time.Duration) error {
	return s.call("player_seek", func(lib native.Library, h native.Handle) error {
		return lib.PlayerSeek(h, int(offset.Milliseconds())).Err("sp_session_player_seek")
	})
}

// PlayerUnload stops playback and unloads the track.
func (s *Session) PlayerUnload() error {
	return s.call("player_unload", func(lib native.Library, h native.Handle) error {
		return lib.PlayerUnload(h).Err("sp_session_player_unload")
	})
}

// Dispose tears the session down from any state: it detaches the callback
// bridge, disposes every wrapper, discards queued events and releases the
// native session. It is idempotent.
func (s *Session) Dispose() error {
	var first bool
	_ = s.binding.gate.Do(func() error {
		first = s.markDisposed()
		return nil
	})
	if !first {
		return nil
	}
	return s.teardown()
}

// markDisposed starts disposal once. The gate must be held.
func (s *Session) markDisposed() bool {
	if !s.life.BeginDispose() {
		return false
	}
	s.bridge.detach()
	return true
}

// teardown disposes every wrapper and releases the session.
func (s *Session) teardown() error {
	s.state.Store(int32(StateDisposed))

	errs := multierr.Combine(
		disposeAll(s.toplists),
		disposeAll(s.searches),
		disposeAll(s.links),
		disposeAll(s.images),
		disposeAll(s.containers),
		disposeAll(s.playlists),
		disposeAll(s.users),
		disposeAll(s.tracks),
		disposeAll(s.albums),
		disposeAll(s.artists),
	)

	if n := s.events.Close(); n > 0 {
		s.log.Debug("discarded queued events", zap.Int("count", n))
	}

	_ = s.binding.gate.Do(func() error {
		s.binding.release(resource.KindSession, s.life.Invalidate(), s.binding.lib.SessionRelease)
		return nil
	})

	disposed := errors.ObjectDisposed(resource.KindSession.String(), "wait")
	s.mu.Lock()
	if s.login != nil {
		s.login.finish(disposed)
	}
	if s.logout != nil {
		s.logout.finish(disposed)
	}
	s.mu.Unlock()

	s.binding.detach(s)
	s.log.Debug("session disposed")
	return errs
}
