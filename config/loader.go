package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. LIBSPOT_LOG_LEVEL.
const EnvPrefix = "LIBSPOT"

// Load reads libspot.toml and returns a Config. An explicit path must exist;
// otherwise the file is searched in $HOME/.config/libspot and the working
// directory and may be absent.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("libspot")
		v.AddConfigPath("$HOME/.config/libspot")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, Default())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !stderrors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key so environment overrides apply even when
// the file omits them.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("session.key_file", d.Session.KeyFile)
	v.SetDefault("session.cache_dir", d.Session.CacheDir)
	v.SetDefault("session.settings_dir", d.Session.SettingsDir)
	v.SetDefault("session.user_agent", d.Session.UserAgent)
	v.SetDefault("session.bitrate", d.Session.Bitrate)
	v.SetDefault("session.offline_bitrate", d.Session.OfflineBitrate)
	v.SetDefault("session.allow_resync", d.Session.AllowResync)
	v.SetDefault("library.path", d.Library.Path)
	v.SetDefault("library.sim", d.Library.Sim)
	v.SetDefault("runtime.login_timeout", d.Runtime.LoginTimeout)
	v.SetDefault("runtime.queue_limit", d.Runtime.QueueLimit)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.development", d.Log.Development)
}

// Credentials are the account used by the shell.
type Credentials struct {
	Username string
	Password string
}

// LoadCredentials loads .env files into the environment, without
// overriding variables already set, and reads SPOTIFY_USERNAME and
// SPOTIFY_PASSWORD. Missing files are skipped.
func LoadCredentials(files ...string) (Credentials, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
			return Credentials{}, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return Credentials{
		Username: os.Getenv("SPOTIFY_USERNAME"),
		Password: os.Getenv("SPOTIFY_PASSWORD"),
	}, nil
}
