package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/wippyai/libspot/errors"
	"github.com/wippyai/libspot/native"
	"github.com/wippyai/libspot/spotify"
)

// Config represents the complete application configuration
type Config struct {
	Session SessionConfig `mapstructure:"session"`
	Library LibraryConfig `mapstructure:"library"`
	Runtime RuntimeConfig `mapstructure:"runtime"`
	Log     LogConfig     `mapstructure:"log"`
}

// SessionConfig contains the settings passed to the native session
type SessionConfig struct {
	KeyFile        string `mapstructure:"key_file"`
	CacheDir       string `mapstructure:"cache_dir"`
	SettingsDir    string `mapstructure:"settings_dir"`
	UserAgent      string `mapstructure:"user_agent"`
	Bitrate        string `mapstructure:"bitrate"`
	OfflineBitrate string `mapstructure:"offline_bitrate"`
	AllowResync    bool   `mapstructure:"allow_resync"`
}

// LibraryConfig selects the native library
type LibraryConfig struct {
	Path string `mapstructure:"path"`
	Sim  bool   `mapstructure:"sim"`
}

// RuntimeConfig contains event loop settings
type RuntimeConfig struct {
	LoginTimeout time.Duration `mapstructure:"login_timeout"`
	QueueLimit   int           `mapstructure:"queue_limit"`
}

// LogConfig contains logger settings
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Session: SessionConfig{
			KeyFile:        "spotify_appkey.key",
			CacheDir:       "tmp/cache",
			SettingsDir:    "tmp/settings",
			UserAgent:      "libspot",
			Bitrate:        "160k",
			OfflineBitrate: "160k",
		},
		Library: LibraryConfig{
			Path: defaultLibraryPath(),
		},
		Runtime: RuntimeConfig{
			LoginTimeout: 30 * time.Second,
			QueueLimit:   4096,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func defaultLibraryPath() string {
	switch runtime.GOOS {
	case "darwin":
		return "libspotify.dylib"
	case "windows":
		return "libspotify.dll"
	default:
		return "libspotify.so.12"
	}
}

// Validate checks if all required configuration values are set
func (c *Config) Validate() error {
	if c.Session.UserAgent == "" {
		return errors.InvalidInput(errors.PhaseConfig, "session.user_agent is required")
	}
	if _, err := ParseBitrate(c.Session.Bitrate); err != nil {
		return err
	}
	if _, err := ParseBitrate(c.Session.OfflineBitrate); err != nil {
		return err
	}
	if !c.Library.Sim {
		if c.Library.Path == "" {
			return errors.InvalidInput(errors.PhaseConfig, "library.path is required unless library.sim is set")
		}
		if c.Session.KeyFile == "" {
			return errors.InvalidInput(errors.PhaseConfig, "session.key_file is required unless library.sim is set")
		}
	}
	if c.Runtime.LoginTimeout <= 0 {
		return errors.InvalidInput(errors.PhaseConfig, "runtime.login_timeout must be positive")
	}
	if c.Runtime.QueueLimit < 0 {
		return errors.InvalidInput(errors.PhaseConfig, "runtime.queue_limit must not be negative")
	}
	return nil
}

// ParseBitrate parses "96k", "160k" or "320k".
func ParseBitrate(s string) (native.Bitrate, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "96k", "96":
		return native.Bitrate96k, nil
	case "160k", "160", "":
		return native.Bitrate160k, nil
	case "320k", "320":
		return native.Bitrate320k, nil
	}
	return 0, errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("unknown bitrate %q", s))
}

// simKey stands in for the application key when running against the
// simulated library, which only checks that one is present.
var simKey = []byte("libspot-sim")

// SessionConfig reads the application key and builds the session
// configuration.
func (c *Config) SessionConfig() (spotify.Config, error) {
	if err := c.Validate(); err != nil {
		return spotify.Config{}, err
	}
	bitrate, _ := ParseBitrate(c.Session.Bitrate)
	offline, _ := ParseBitrate(c.Session.OfflineBitrate)

	key := simKey
	if !c.Library.Sim || c.Session.KeyFile != "" {
		data, err := os.ReadFile(c.Session.KeyFile)
		switch {
		case err == nil:
			key = data
		case c.Library.Sim && os.IsNotExist(err):
		default:
			return spotify.Config{}, fmt.Errorf("failed to read application key: %w", err)
		}
	}

	return spotify.Config{
		ApplicationKey:   key,
		CacheLocation:    c.Session.CacheDir,
		SettingsLocation: c.Session.SettingsDir,
		UserAgent:        c.Session.UserAgent,
		Bitrate:          bitrate,
		OfflineBitrate:   offline,
		AllowResync:      c.Session.AllowResync,
		QueueLimit:       c.Runtime.QueueLimit,
	}, nil
}
