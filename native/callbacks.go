package native

// Callbacks is the per-session table of native notifications.
//
// Every field is invoked on the library's thread. Strings are already copied
// into Go memory by the backend. The frames slice passed to MusicDelivery
// aliases native memory and is only valid until the callback returns.
//
// A nil field means the notification is ignored.
type Callbacks struct {
	LoggedIn             func(session Handle, status Code)
	LoggedOut            func(session Handle)
	MetadataUpdated      func(session Handle)
	ConnectionError      func(session Handle, status Code)
	MessageToUser        func(session Handle, message string)
	NotifyMainThread     func(session Handle)
	MusicDelivery        func(session Handle, format AudioFormat, frames []byte, numFrames int) int
	PlayTokenLost        func(session Handle)
	LogMessage           func(session Handle, data string)
	EndOfTrack           func(session Handle)
	StreamingError       func(session Handle, status Code)
	UserinfoUpdated      func(session Handle)
	StartPlayback        func(session Handle)
	StopPlayback         func(session Handle)
	GetAudioBufferStats  func(session Handle) AudioBufferStats
	OfflineStatusUpdated func(session Handle)
}

// Completions receives completion of asynchronous object loads. The userdata
// value is the token passed when the load was started.
type Completions struct {
	SearchComplete        func(search Handle, userdata uintptr)
	ToplistBrowseComplete func(browse Handle, userdata uintptr)
	ImageLoaded           func(image Handle, userdata uintptr)
}

// SessionConfig is the argument block of SessionCreate.
type SessionConfig struct {
	APIVersion       int
	CacheLocation    string
	SettingsLocation string
	ApplicationKey   []byte
	UserAgent        string
	Callbacks        *Callbacks

	CompressPlaylists            bool
	DontSaveMetadataForPlaylists bool
	InitiallyUnloadPlaylists     bool
}
