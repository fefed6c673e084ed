package spotify

import (
	"github.com/wippyai/libspot/errors"
	"github.com/wippyai/libspot/native"
)

// Config is the immutable configuration of a session.
type Config struct {
	ApplicationKey   []byte
	CacheLocation    string
	SettingsLocation string
	UserAgent        string

	Bitrate        native.Bitrate
	OfflineBitrate native.Bitrate
	AllowResync    bool

	CompressPlaylists            bool
	DontSaveMetadataForPlaylists bool
	InitiallyUnloadPlaylists     bool

	// QueueLimit caps pending events; zero selects dispatch.DefaultLimit.
	QueueLimit int
}

// Validate checks the fields the native library rejects.
func (c Config) Validate() error {
	switch {
	case len(c.ApplicationKey) == 0:
		return errors.InvalidInput(errors.PhaseConfig, "application key is required")
	case c.UserAgent == "":
		return errors.InvalidInput(errors.PhaseConfig, "user agent is required")
	case len(c.UserAgent) > 255:
		return errors.InvalidInput(errors.PhaseConfig, "user agent longer than 255 bytes")
	case !validBitrate(c.Bitrate):
		return errors.InvalidInput(errors.PhaseConfig, "unknown bitrate "+c.Bitrate.String())
	case !validBitrate(c.OfflineBitrate):
		return errors.InvalidInput(errors.PhaseConfig, "unknown offline bitrate "+c.OfflineBitrate.String())
	case c.QueueLimit < 0:
		return errors.InvalidInput(errors.PhaseConfig, "queue limit must not be negative")
	}
	return nil
}

func validBitrate(b native.Bitrate) bool {
	return b >= native.Bitrate160k && b <= native.Bitrate96k
}

func (c Config) native(cb *native.Callbacks) *native.SessionConfig {
	return &native.SessionConfig{
		APIVersion:                   native.APIVersion,
		CacheLocation:                c.CacheLocation,
		SettingsLocation:             c.SettingsLocation,
		ApplicationKey:               c.ApplicationKey,
		UserAgent:                    c.UserAgent,
		Callbacks:                    cb,
		CompressPlaylists:            c.CompressPlaylists,
		DontSaveMetadataForPlaylists: c.DontSaveMetadataForPlaylists,
		InitiallyUnloadPlaylists:     c.InitiallyUnloadPlaylists,
	}
}
