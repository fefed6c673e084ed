package spotify

import (
	"github.com/wippyai/libspot/dispatch"
	"github.com/wippyai/libspot/native"
)

// Event kinds raised by a session.
const (
	EventLoginComplete        dispatch.Kind = "login_complete"
	EventLogoutComplete       dispatch.Kind = "logout_complete"
	EventMetadataUpdated      dispatch.Kind = "metadata_updated"
	EventConnectionError      dispatch.Kind = "connection_error"
	EventMessageToUser        dispatch.Kind = "message_to_user"
	EventPlayTokenLost        dispatch.Kind = "play_token_lost"
	EventLogMessage           dispatch.Kind = "log_message"
	EventEndOfTrack           dispatch.Kind = "end_of_track"
	EventStreamingError       dispatch.Kind = "streaming_error"
	EventUserinfoUpdated      dispatch.Kind = "userinfo_updated"
	EventStartPlayback        dispatch.Kind = "start_playback"
	EventStopPlayback         dispatch.Kind = "stop_playback"
	EventOfflineStatusUpdated dispatch.Kind = "offline_status_updated"

	EventSearchComplete  dispatch.Kind = "search_complete"
	EventToplistComplete dispatch.Kind = "toplist_complete"
	EventImageLoaded     dispatch.Kind = "image_loaded"
)

// SessionEvent is the payload of every session event.
type SessionEvent struct {
	Kind    dispatch.Kind
	Message string
	Seq     uint64
	Status  native.Code
}

// Err returns the event's status as an error, nil for OK.
func (e SessionEvent) Err() error {
	return e.Status.AsyncErr(string(e.Kind))
}

// completion is the payload of load completion events.
type completion struct {
	token uintptr
}

// waiter is a one-shot completion signal.
type waiter struct {
	err  error
	done chan struct{}
	once bool
}

func newWaiter() *waiter {
	return &waiter{done: make(chan struct{})}
}

// finish records err and releases waiters. Callers serialize finish calls.
func (w *waiter) finish(err error) {
	if w.once {
		return
	}
	w.once = true
	w.err = err
	close(w.done)
}
