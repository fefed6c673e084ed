//go:build darwin || linux

package dl

import (
	"unsafe"

	"github.com/wippyai/libspot/native"
)

// sessionConfig mirrors sp_session_config for API version 12.
type sessionConfig struct {
	apiVersion                   int32
	cacheLocation                *byte
	settingsLocation             *byte
	applicationKey               *byte
	applicationKeySize           uintptr
	userAgent                    *byte
	callbacks                    *sessionCallbacks
	userdata                     uintptr
	compressPlaylists            bool
	dontSaveMetadataForPlaylists bool
	initiallyUnloadPlaylists     bool
	deviceID                     *byte
	proxy                        *byte
	proxyUsername                *byte
	proxyPassword                *byte
	caCertsFilename              *byte
	tracefile                    *byte
}

// sessionCallbacks mirrors sp_session_callbacks. Every field is a C function
// pointer; zero means unset.
type sessionCallbacks struct {
	loggedIn                  uintptr
	loggedOut                 uintptr
	metadataUpdated           uintptr
	connectionError           uintptr
	messageToUser             uintptr
	notifyMainThread          uintptr
	musicDelivery             uintptr
	playTokenLost             uintptr
	logMessage                uintptr
	endOfTrack                uintptr
	streamingError            uintptr
	userinfoUpdated           uintptr
	startPlayback             uintptr
	stopPlayback              uintptr
	getAudioBufferStats       uintptr
	offlineStatusUpdated      uintptr
	offlineError              uintptr
	credentialsBlobUpdated    uintptr
	connectionStateUpdated    uintptr
	scrobbleError             uintptr
	privateSessionModeChanged uintptr
}

// audioFormat mirrors sp_audioformat.
type audioFormat struct {
	sampleType int32
	sampleRate int32
	channels   int32
}

// audioBufferStats mirrors sp_audio_buffer_stats.
type audioBufferStats struct {
	samples int32
	stutter int32
}

// cString returns a NUL-terminated copy of s. The empty string maps to nil
// so optional config fields stay NULL.
func cString(s string) *byte {
	if s == "" {
		return nil
	}
	b := make([]byte, len(s)+1)
	copy(b, s)
	return &b[0]
}

// goString copies a NUL-terminated C string into Go memory.
func goString(p uintptr) string {
	if p == 0 {
		return ""
	}
	ptr := (*byte)(unsafe.Pointer(p))
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(ptr), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(ptr, n))
}

// goBytes copies n bytes of native memory.
func goBytes(p uintptr, n int) []byte {
	if p == 0 || n <= 0 {
		return nil
	}
	out := make([]byte, n)
	copy(out, unsafe.Slice((*byte)(unsafe.Pointer(p)), n))
	return out
}

// view aliases n bytes of native memory without copying.
func view(p uintptr, n int) []byte {
	if p == 0 || n <= 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), n)
}

// code narrows a register-width sp_error to its 32-bit value.
func code(v uintptr) native.Code {
	return native.Code(int32(uint32(v)))
}

// cbool narrows a register-width C bool.
func cbool(v uintptr) bool {
	return uint8(v) != 0
}
