//go:build darwin || linux

package dl

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/wippyai/libspot/native"
)

// purego callbacks can never be freed, so the thunks are created once per
// process and route through the currently installed tables.
var (
	thunkOnce sync.Once
	thunks    sessionCallbacks

	searchCompleteThunk  uintptr
	toplistCompleteThunk uintptr
	imageLoadedThunk     uintptr

	current     atomic.Pointer[native.Callbacks]
	completions atomic.Pointer[native.Completions]
)

func installThunks() {
	thunkOnce.Do(func() {
		thunks = sessionCallbacks{
			loggedIn:             purego.NewCallback(onLoggedIn),
			loggedOut:            purego.NewCallback(onLoggedOut),
			metadataUpdated:      purego.NewCallback(onMetadataUpdated),
			connectionError:      purego.NewCallback(onConnectionError),
			messageToUser:        purego.NewCallback(onMessageToUser),
			notifyMainThread:     purego.NewCallback(onNotifyMainThread),
			musicDelivery:        purego.NewCallback(onMusicDelivery),
			playTokenLost:        purego.NewCallback(onPlayTokenLost),
			logMessage:           purego.NewCallback(onLogMessage),
			endOfTrack:           purego.NewCallback(onEndOfTrack),
			streamingError:       purego.NewCallback(onStreamingError),
			userinfoUpdated:      purego.NewCallback(onUserinfoUpdated),
			startPlayback:        purego.NewCallback(onStartPlayback),
			stopPlayback:         purego.NewCallback(onStopPlayback),
			getAudioBufferStats:  purego.NewCallback(onGetAudioBufferStats),
			offlineStatusUpdated: purego.NewCallback(onOfflineStatusUpdated),
		}
		searchCompleteThunk = purego.NewCallback(onSearchComplete)
		toplistCompleteThunk = purego.NewCallback(onToplistComplete)
		imageLoadedThunk = purego.NewCallback(onImageLoaded)
	})
}

func cb() *native.Callbacks {
	if c := current.Load(); c != nil {
		return c
	}
	return &native.Callbacks{}
}

func onLoggedIn(session, status uintptr) {
	if f := cb().LoggedIn; f != nil {
		f(native.Handle(session), code(status))
	}
}

func onLoggedOut(session uintptr) {
	if f := cb().LoggedOut; f != nil {
		f(native.Handle(session))
	}
}

func onMetadataUpdated(session uintptr) {
	if f := cb().MetadataUpdated; f != nil {
		f(native.Handle(session))
	}
}

func onConnectionError(session, status uintptr) {
	if f := cb().ConnectionError; f != nil {
		f(native.Handle(session), code(status))
	}
}

func onMessageToUser(session, message uintptr) {
	if f := cb().MessageToUser; f != nil {
		f(native.Handle(session), goString(message))
	}
}

func onNotifyMainThread(session uintptr) {
	if f := cb().NotifyMainThread; f != nil {
		f(native.Handle(session))
	}
}

func onMusicDelivery(session, format, frames, numFrames uintptr) uintptr {
	f := cb().MusicDelivery
	n := int(int32(uint32(numFrames)))
	if f == nil || format == 0 {
		// Claim everything so the library does not spin on redelivery.
		return uintptr(max(n, 0))
	}
	af := (*audioFormat)(unsafe.Pointer(format))
	nf := native.AudioFormat{
		SampleType: native.SampleType(af.sampleType),
		SampleRate: af.sampleRate,
		Channels:   af.channels,
	}
	consumed := f(native.Handle(session), nf, view(frames, n*nf.BytesPerFrame()), n)
	return uintptr(uint32(int32(consumed)))
}

func onPlayTokenLost(session uintptr) {
	if f := cb().PlayTokenLost; f != nil {
		f(native.Handle(session))
	}
}

func onLogMessage(session, data uintptr) {
	if f := cb().LogMessage; f != nil {
		f(native.Handle(session), goString(data))
	}
}

func onEndOfTrack(session uintptr) {
	if f := cb().EndOfTrack; f != nil {
		f(native.Handle(session))
	}
}

func onStreamingError(session, status uintptr) {
	if f := cb().StreamingError; f != nil {
		f(native.Handle(session), code(status))
	}
}

func onUserinfoUpdated(session uintptr) {
	if f := cb().UserinfoUpdated; f != nil {
		f(native.Handle(session))
	}
}

func onStartPlayback(session uintptr) {
	if f := cb().StartPlayback; f != nil {
		f(native.Handle(session))
	}
}

func onStopPlayback(session uintptr) {
	if f := cb().StopPlayback; f != nil {
		f(native.Handle(session))
	}
}

func onGetAudioBufferStats(session, stats uintptr) {
	f := cb().GetAudioBufferStats
	if f == nil || stats == 0 {
		return
	}
	st := f(native.Handle(session))
	out := (*audioBufferStats)(unsafe.Pointer(stats))
	out.samples = st.Samples
	out.stutter = st.Stutters
}

func onOfflineStatusUpdated(session uintptr) {
	if f := cb().OfflineStatusUpdated; f != nil {
		f(native.Handle(session))
	}
}

func onSearchComplete(result, userdata uintptr) {
	if c := completions.Load(); c != nil && c.SearchComplete != nil {
		c.SearchComplete(native.Handle(result), userdata)
	}
}

func onToplistComplete(result, userdata uintptr) {
	if c := completions.Load(); c != nil && c.ToplistBrowseComplete != nil {
		c.ToplistBrowseComplete(native.Handle(result), userdata)
	}
}

func onImageLoaded(image, userdata uintptr) {
	if c := completions.Load(); c != nil && c.ImageLoaded != nil {
		c.ImageLoaded(native.Handle(image), userdata)
	}
}
