package sim

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/wippyai/libspot/native"
)

type sessionData struct {
	cb             *native.Callbacks
	stop           chan struct{}
	user           native.Handle
	track          native.Handle
	state          native.ConnectionState
	bitrate        native.Bitrate
	offlineBitrate native.Bitrate
	allowResync    bool
}

var simFormat = native.AudioFormat{
	SampleType: native.SampleInt16NativeEndian,
	SampleRate: 44100,
	Channels:   2,
}

const chunkFrames = 2048

// SessionCreate implements native.Library.
func (l *Library) SessionCreate(cfg *native.SessionConfig) (native.Handle, native.Code) {
	defer l.enter()()
	switch {
	case cfg == nil:
		return native.Invalid, native.InvalidIndata
	case cfg.APIVersion != native.APIVersion:
		return native.Invalid, native.BadAPIVersion
	case len(cfg.ApplicationKey) == 0:
		return native.Invalid, native.BadApplicationKey
	case cfg.UserAgent == "":
		return native.Invalid, native.BadUserAgent
	case cfg.Callbacks == nil:
		return native.Invalid, native.MissingCallback
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.session != native.Invalid {
		return native.Invalid, native.APIInitializationFailed
	}
	h := l.alloc(&object{kind: kindSession, refs: 1, session: &sessionData{
		cb:    cfg.Callbacks,
		state: native.ConnectionLoggedOut,
	}})
	l.session = h
	l.notify(h, func(cb *native.Callbacks) {
		if cb.LogMessage != nil {
			cb.LogMessage(h, "session created\n")
		}
	})
	return h, native.OK
}

// SessionRelease implements native.Library.
func (l *Library) SessionRelease(session native.Handle) native.Code {
	defer l.enter()()
	return l.release(session, kindSession, "sp_session_release")
}

// SessionLogin implements native.Library.
func (l *Library) SessionLogin(session native.Handle, username, password string) native.Code {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	o := l.lookup(session, kindSession, "sp_session_login")
	if o == nil {
		return native.InvalidIndata
	}
	if username == "" {
		return native.InvalidIndata
	}

	status := native.BadUsernameOrPassword
	uh, ok := l.users[username]
	if ok {
		u := l.objects[uh].user
		switch {
		case u.banned:
			status = native.UserBanned
		case u.password == password:
			status = native.OK
		}
	}

	s := o.session
	if status == native.OK {
		s.user = uh
		s.state = native.ConnectionLoggedIn
	}
	l.notify(session, func(cb *native.Callbacks) {
		if cb.LoggedIn != nil {
			cb.LoggedIn(session, status)
		}
		if status != native.OK {
			return
		}
		if cb.MetadataUpdated != nil {
			cb.MetadataUpdated(session)
		}
		if cb.UserinfoUpdated != nil {
			cb.UserinfoUpdated(session)
		}
		if cb.OfflineStatusUpdated != nil {
			cb.OfflineStatusUpdated(session)
		}
		if cb.NotifyMainThread != nil {
			cb.NotifyMainThread(session)
		}
	})
	return native.OK
}

// SessionLogout implements native.Library.
func (l *Library) SessionLogout(session native.Handle) native.Code {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	o := l.lookup(session, kindSession, "sp_session_logout")
	if o == nil {
		return native.InvalidIndata
	}
	s := o.session
	l.stopPlayback(s)
	s.track = native.Invalid
	s.user = native.Invalid
	s.state = native.ConnectionLoggedOut
	l.notify(session, func(cb *native.Callbacks) {
		if cb.LoggedOut != nil {
			cb.LoggedOut(session)
		}
		if cb.NotifyMainThread != nil {
			cb.NotifyMainThread(session)
		}
	})
	return native.OK
}

// SessionConnectionState implements native.Library.
func (l *Library) SessionConnectionState(session native.Handle) native.ConnectionState {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	o := l.lookup(session, kindSession, "sp_session_connectionstate")
	if o == nil {
		return native.ConnectionUndefined
	}
	return o.session.state
}

// SessionProcessEvents implements native.Library.
func (l *Library) SessionProcessEvents(session native.Handle) int {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.lookup(session, kindSession, "sp_session_process_events") == nil {
		return 1000
	}

	l.jobMu.Lock()
	busy := len(l.pending) > 0
	l.jobMu.Unlock()
	if busy {
		return 10
	}
	return 1000
}

// SessionUser implements native.Library.
func (l *Library) SessionUser(session native.Handle) native.Handle {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	o := l.lookup(session, kindSession, "sp_session_user")
	if o == nil {
		return native.Invalid
	}
	return o.session.user
}

// SessionUserCountry implements native.Library.
func (l *Library) SessionUserCountry(session native.Handle) int {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	o := l.lookup(session, kindSession, "sp_session_user_country")
	if o == nil || !o.session.user.Valid() {
		return 0
	}
	c := l.objects[o.session.user].user.country
	return int(c[0])<<8 | int(c[1])
}

// SessionPlaylistContainer implements native.Library.
func (l *Library) SessionPlaylistContainer(session native.Handle) native.Handle {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	o := l.lookup(session, kindSession, "sp_session_playlistcontainer")
	if o == nil || !o.session.user.Valid() {
		return native.Invalid
	}
	return l.objects[o.session.user].user.container
}

// SessionNumFriends implements native.Library.
func (l *Library) SessionNumFriends(session native.Handle) int {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	o := l.lookup(session, kindSession, "sp_session_num_friends")
	if o == nil || !o.session.user.Valid() {
		return 0
	}
	return len(l.objects[o.session.user].user.friends)
}

// SessionFriend implements native.Library.
func (l *Library) SessionFriend(session native.Handle, index int) native.Handle {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	o := l.lookup(session, kindSession, "sp_session_friend")
	if o == nil || !o.session.user.Valid() {
		return native.Invalid
	}
	friends := l.objects[o.session.user].user.friends
	if index < 0 || index >= len(friends) {
		return native.Invalid
	}
	return friends[index]
}

// SessionPreferredBitrate implements native.Library.
func (l *Library) SessionPreferredBitrate(session native.Handle, b native.Bitrate) native.Code {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	o := l.lookup(session, kindSession, "sp_session_preferred_bitrate")
	if o == nil {
		return native.InvalidIndata
	}
	if b < native.Bitrate160k || b > native.Bitrate96k {
		return native.InvalidIndata
	}
	o.session.bitrate = b
	return native.OK
}

// SessionPreferredOfflineBitrate implements native.Library.
func (l *Library) SessionPreferredOfflineBitrate(session native.Handle, b native.Bitrate, allowResync bool) native.Code {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	o := l.lookup(session, kindSession, "sp_session_preferred_offline_bitrate")
	if o == nil {
		return native.InvalidIndata
	}
	if b < native.Bitrate160k || b > native.Bitrate96k {
		return native.InvalidIndata
	}
	o.session.offlineBitrate = b
	o.session.allowResync = allowResync
	return native.OK
}

// PlayerLoad implements native.Library.
func (l *Library) PlayerLoad(session, track native.Handle) native.Code {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	so := l.lookup(session, kindSession, "sp_session_player_load")
	to := l.lookup(track, kindTrack, "sp_session_player_load")
	if so == nil || to == nil {
		return native.InvalidIndata
	}
	s := so.session
	if s.state != native.ConnectionLoggedIn {
		return native.PermissionDenied
	}
	if to.track.err != native.OK {
		return to.track.err
	}
	if !to.track.available {
		return native.TrackNotPlayable
	}
	l.stopPlayback(s)
	s.track = track
	return native.OK
}

// PlayerPlay implements native.Library.
func (l *Library) PlayerPlay(session native.Handle, play bool) native.Code {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	so := l.lookup(session, kindSession, "sp_session_player_play")
	if so == nil {
		return native.InvalidIndata
	}
	s := so.session
	if !s.track.Valid() {
		return native.TrackNotPlayable
	}
	if !play {
		if l.stopPlayback(s) {
			l.notify(session, func(cb *native.Callbacks) {
				if cb.StopPlayback != nil {
					cb.StopPlayback(session)
				}
			})
		}
		return native.OK
	}
	if s.stop != nil {
		return native.OK
	}

	frames := int(min(
		time.Duration(l.objects[s.track].track.durationMs)*time.Millisecond,
		l.opts.playback,
	).Seconds() * float64(simFormat.SampleRate))
	stop := make(chan struct{})
	s.stop = stop
	l.wg.Go(func() { l.playback(session, frames, stop) })
	return native.OK
}

// PlayerSeek implements native.Library.
func (l *Library) PlayerSeek(session native.Handle, offsetMs int) native.Code {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	so := l.lookup(session, kindSession, "sp_session_player_seek")
	if so == nil {
		return native.InvalidIndata
	}
	if !so.session.track.Valid() {
		return native.TrackNotPlayable
	}
	if offsetMs < 0 || offsetMs > l.objects[so.session.track].track.durationMs {
		return native.InvalidIndata
	}
	return native.OK
}

// PlayerUnload implements native.Library.
func (l *Library) PlayerUnload(session native.Handle) native.Code {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	so := l.lookup(session, kindSession, "sp_session_player_unload")
	if so == nil {
		return native.InvalidIndata
	}
	l.stopPlayback(so.session)
	so.session.track = native.Invalid
	return native.OK
}

// stopPlayback ends a running playback goroutine. Callers hold l.mu.
func (l *Library) stopPlayback(s *sessionData) bool {
	if s.stop == nil {
		return false
	}
	close(s.stop)
	s.stop = nil
	return true
}

func (l *Library) playback(session native.Handle, total int, stop <-chan struct{}) {
	cb := l.callbacks(session)
	if cb == nil || cb.MusicDelivery == nil {
		return
	}
	if cb.StartPlayback != nil {
		cb.StartPlayback(session)
	}
	if cb.GetAudioBufferStats != nil {
		stats := cb.GetAudioBufferStats(session)
		l.stats.Store(&stats)
	}

	buf := make([]byte, chunkFrames*simFormat.BytesPerFrame())
	for pos := 0; pos < total; {
		select {
		case <-stop:
			return
		case <-l.quit:
			return
		default:
		}

		n := min(chunkFrames, total-pos)
		fillTone(buf[:n*simFormat.BytesPerFrame()], pos)
		consumed := cb.MusicDelivery(session, simFormat, buf[:n*simFormat.BytesPerFrame()], n)
		if consumed <= 0 {
			select {
			case <-stop:
				return
			case <-l.quit:
				return
			case <-time.After(10 * time.Millisecond):
			}
			continue
		}
		pos += min(consumed, n)
	}

	l.mu.Lock()
	if so, ok := l.objects[session]; ok && !so.freed && so.session.stop == stop {
		so.session.stop = nil
	}
	l.mu.Unlock()

	l.notify(session, func(cb *native.Callbacks) {
		if cb.EndOfTrack != nil {
			cb.EndOfTrack(session)
		}
	})
}

// fillTone writes an A4 sine into interleaved stereo 16-bit frames.
func fillTone(buf []byte, start int) {
	const freq = 440.0
	frames := len(buf) / 4
	for i := 0; i < frames; i++ {
		t := float64(start+i) / float64(simFormat.SampleRate)
		v := uint16(int16(math.Sin(2*math.Pi*freq*t) * 0.2 * math.MaxInt16))
		binary.LittleEndian.PutUint16(buf[i*4:], v)
		binary.LittleEndian.PutUint16(buf[i*4+2:], v)
	}
}

// DeliverMusic invokes the music delivery callback of the live session
// synchronously with frames of silence and returns the consumed count.
func (l *Library) DeliverMusic(frames int) int {
	l.mu.Lock()
	h := l.session
	l.mu.Unlock()
	cb := l.callbacks(h)
	if cb == nil || cb.MusicDelivery == nil {
		return 0
	}
	var buf []byte
	if frames > 0 {
		buf = make([]byte, frames*simFormat.BytesPerFrame())
	}
	return cb.MusicDelivery(h, simFormat, buf, frames)
}
