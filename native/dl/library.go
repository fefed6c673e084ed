//go:build darwin || linux

package dl

import (
	"runtime"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/ebitengine/purego"
	"github.com/wippyai/libspot/errors"
	"github.com/wippyai/libspot/native"
	"go.uber.org/zap"
)

const (
	imageSizeNormal   = 0
	searchStandard    = 0
	trackAvailable    = 1
	linkBufferInitial = 128
)

var opened atomic.Bool

// Library is a loaded libspotify shared object.
type Library struct {
	sym    symbols
	path   string
	log    *zap.Logger
	handle uintptr

	// pinned keeps the session config, its strings and the callback table
	// in place while the library holds pointers into them.
	pinned  runtime.Pinner
	config  *sessionConfig
	session uintptr

	closeOnce sync.Once
	closeErr  error
}

var _ native.Library = (*Library)(nil)

// Open loads the shared object at path and resolves its entry points.
func Open(path string) (*Library, error) {
	if path == "" {
		return nil, errors.Load("library path is empty", nil)
	}
	if !opened.CompareAndSwap(false, true) {
		return nil, errors.Load("a native library is already open in this process", nil)
	}

	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		opened.Store(false)
		return nil, errors.Load("open "+path, err)
	}

	l := &Library{
		path:   path,
		handle: handle,
		log:    native.Logger().Named("dl").With(zap.String("path", path)),
	}
	if err := l.sym.resolve(handle); err != nil {
		purego.Dlclose(handle)
		opened.Store(false)
		return nil, err
	}
	installThunks()

	l.log.Debug("library loaded",
		zap.Bool("radio_search", l.sym.radioSearchCreate != nil),
		zap.Bool("user_full_name", l.sym.userFullName != nil),
		zap.Bool("friends", l.sym.sessionFriend != nil))
	return l, nil
}

// Path returns the file the library was loaded from.
func (l *Library) Path() string {
	return l.path
}

// Close unloads the library. Sessions must be released first.
func (l *Library) Close() error {
	l.closeOnce.Do(func() {
		completions.Store(nil)
		current.Store(nil)
		l.pinned.Unpin()
		l.config = nil
		if err := purego.Dlclose(l.handle); err != nil {
			l.closeErr = errors.Load("close "+l.path, err)
		}
		l.handle = 0
		opened.Store(false)
	})
	return l.closeErr
}

func (l *Library) ErrorMessage(c native.Code) string {
	return l.sym.errorMessage(int32(c))
}

func (l *Library) RegisterCompletions(c *native.Completions) {
	completions.Store(c)
}

func (l *Library) pinString(s string) *byte {
	p := cString(s)
	if p != nil {
		l.pinned.Pin(p)
	}
	return p
}

func (l *Library) SessionCreate(cfg *native.SessionConfig) (native.Handle, native.Code) {
	if cfg.Callbacks == nil {
		return native.Invalid, native.MissingCallback
	}
	if l.session != 0 {
		return native.Invalid, native.APIInitializationFailed
	}

	table := new(sessionCallbacks)
	*table = thunks
	c := &sessionConfig{
		apiVersion:                   int32(cfg.APIVersion),
		cacheLocation:                l.pinString(cfg.CacheLocation),
		settingsLocation:             l.pinString(cfg.SettingsLocation),
		userAgent:                    l.pinString(cfg.UserAgent),
		callbacks:                    table,
		compressPlaylists:            cfg.CompressPlaylists,
		dontSaveMetadataForPlaylists: cfg.DontSaveMetadataForPlaylists,
		initiallyUnloadPlaylists:     cfg.InitiallyUnloadPlaylists,
	}
	if len(cfg.ApplicationKey) > 0 {
		key := slices.Clone(cfg.ApplicationKey)
		l.pinned.Pin(&key[0])
		c.applicationKey = &key[0]
		c.applicationKeySize = uintptr(len(key))
	}
	l.pinned.Pin(table)
	l.pinned.Pin(c)

	// Creation may already log through the callbacks.
	current.Store(cfg.Callbacks)

	var out uintptr
	if rc := native.Code(l.sym.sessionCreate(c, &out)); rc != native.OK {
		current.Store(nil)
		l.pinned.Unpin()
		return native.Invalid, rc
	}
	l.config = c
	l.session = out
	return native.Handle(out), native.OK
}

func (l *Library) SessionRelease(s native.Handle) native.Code {
	rc := native.Code(l.sym.sessionRelease(uintptr(s)))
	current.Store(nil)
	l.pinned.Unpin()
	l.config = nil
	l.session = 0
	return rc
}

func (l *Library) SessionLogin(s native.Handle, username, password string) native.Code {
	return native.Code(l.sym.sessionLogin(uintptr(s), username, password, false, nil))
}

func (l *Library) SessionLogout(s native.Handle) native.Code {
	return native.Code(l.sym.sessionLogout(uintptr(s)))
}

func (l *Library) SessionConnectionState(s native.Handle) native.ConnectionState {
	return native.ConnectionState(l.sym.sessionConnectionState(uintptr(s)))
}

func (l *Library) SessionProcessEvents(s native.Handle) int {
	var next int32
	l.sym.sessionProcessEvents(uintptr(s), &next)
	return int(next)
}

func (l *Library) SessionUser(s native.Handle) native.Handle {
	return native.Handle(l.sym.sessionUser(uintptr(s)))
}

func (l *Library) SessionUserCountry(s native.Handle) int {
	return int(l.sym.sessionUserCountry(uintptr(s)))
}

func (l *Library) SessionPlaylistContainer(s native.Handle) native.Handle {
	return native.Handle(l.sym.sessionPlaylistContainer(uintptr(s)))
}

// SessionNumFriends returns 0 for libraries built without the friend list.
func (l *Library) SessionNumFriends(s native.Handle) int {
	if l.sym.sessionNumFriends == nil {
		return 0
	}
	return int(l.sym.sessionNumFriends(uintptr(s)))
}

func (l *Library) SessionFriend(s native.Handle, index int) native.Handle {
	if l.sym.sessionFriend == nil {
		return native.Invalid
	}
	return native.Handle(l.sym.sessionFriend(uintptr(s), int32(index)))
}

func (l *Library) SessionPreferredBitrate(s native.Handle, b native.Bitrate) native.Code {
	return native.Code(l.sym.sessionPreferredBitrate(uintptr(s), int32(b)))
}

func (l *Library) SessionPreferredOfflineBitrate(s native.Handle, b native.Bitrate, allowResync bool) native.Code {
	return native.Code(l.sym.sessionPreferredOfflineRate(uintptr(s), int32(b), allowResync))
}

func (l *Library) PlayerLoad(s, t native.Handle) native.Code {
	return native.Code(l.sym.sessionPlayerLoad(uintptr(s), uintptr(t)))
}

func (l *Library) PlayerPlay(s native.Handle, play bool) native.Code {
	return native.Code(l.sym.sessionPlayerPlay(uintptr(s), play))
}

func (l *Library) PlayerSeek(s native.Handle, offsetMs int) native.Code {
	return native.Code(l.sym.sessionPlayerSeek(uintptr(s), int32(offsetMs)))
}

func (l *Library) PlayerUnload(s native.Handle) native.Code {
	return native.Code(l.sym.sessionPlayerUnload(uintptr(s)))
}
