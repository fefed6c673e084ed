package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wippyai/libspot/errors"
	"github.com/wippyai/libspot/native"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "libspot.toml", `
[session]
key_file = "app.key"
user_agent = "shell-test"
bitrate = "320k"
allow_resync = true

[library]
sim = true

[runtime]
login_timeout = "5s"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Session.UserAgent != "shell-test" {
		t.Fatalf("user agent = %q", cfg.Session.UserAgent)
	}
	if !cfg.Library.Sim || !cfg.Session.AllowResync {
		t.Fatalf("bools not read: %+v", cfg)
	}
	if cfg.Runtime.LoginTimeout != 5*time.Second {
		t.Fatalf("login timeout = %v", cfg.Runtime.LoginTimeout)
	}
	if cfg.Runtime.QueueLimit != Default().Runtime.QueueLimit {
		t.Fatalf("queue limit default not applied: %d", cfg.Runtime.QueueLimit)
	}
	if cfg.Session.OfflineBitrate != "160k" {
		t.Fatalf("offline bitrate default not applied: %q", cfg.Session.OfflineBitrate)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "libspot.toml", "[log]\nlevel = \"warn\"\n")
	t.Setenv("LIBSPOT_LOG_LEVEL", "debug")
	t.Setenv("LIBSPOT_RUNTIME_QUEUE_LIMIT", "16")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log level = %q, want env override", cfg.Log.Level)
	}
	if cfg.Runtime.QueueLimit != 16 {
		t.Fatalf("queue limit = %d", cfg.Runtime.QueueLimit)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Fatal("missing explicit file accepted")
	}

	path := writeFile(t, dir, "bad.toml", "[session]\nbitrate = \"9000k\"\n")
	_, err := Load(path)
	if !errors.IsKind(err, errors.KindInvalidInput) {
		t.Fatalf("bad bitrate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults: %v", err)
	}

	cfg.Library.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty library path accepted without sim")
	}
	cfg.Library.Sim = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sim without path: %v", err)
	}

	cfg.Runtime.LoginTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero login timeout accepted")
	}
}

func TestParseBitrate(t *testing.T) {
	tests := []struct {
		in   string
		want native.Bitrate
	}{
		{"96k", native.Bitrate96k},
		{"160K", native.Bitrate160k},
		{"320", native.Bitrate320k},
	}
	for _, tt := range tests {
		got, err := ParseBitrate(tt.in)
		if err != nil || got != tt.want {
			t.Fatalf("ParseBitrate(%q) = %v, %v", tt.in, got, err)
		}
	}
	if _, err := ParseBitrate("lossless"); err == nil {
		t.Fatal("unknown bitrate accepted")
	}
}

func TestSessionConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Session.KeyFile = writeFile(t, dir, "app.key", "\x01\x02\x03")
	cfg.Session.Bitrate = "96k"

	sc, err := cfg.SessionConfig()
	if err != nil {
		t.Fatalf("SessionConfig: %v", err)
	}
	if string(sc.ApplicationKey) != "\x01\x02\x03" {
		t.Fatalf("key = %x", sc.ApplicationKey)
	}
	if sc.Bitrate != native.Bitrate96k {
		t.Fatalf("bitrate = %v", sc.Bitrate)
	}
	if err := sc.Validate(); err != nil {
		t.Fatalf("session config invalid: %v", err)
	}

	cfg.Session.KeyFile = filepath.Join(dir, "missing.key")
	if _, err := cfg.SessionConfig(); err == nil {
		t.Fatal("missing key file accepted")
	}
	cfg.Library.Sim = true
	sc, err = cfg.SessionConfig()
	if err != nil || len(sc.ApplicationKey) == 0 {
		t.Fatalf("sim without key file: %v", err)
	}
}

func TestLoadCredentials(t *testing.T) {
	dir := t.TempDir()
	env := writeFile(t, dir, ".env", "SPOTIFY_USERNAME=alice\nSPOTIFY_PASSWORD=from-file\n")
	t.Setenv("SPOTIFY_USERNAME", "")
	os.Unsetenv("SPOTIFY_USERNAME")
	t.Setenv("SPOTIFY_PASSWORD", "from-env")

	creds, err := LoadCredentials(env, filepath.Join(dir, "absent.env"))
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if creds.Username != "alice" {
		t.Fatalf("username = %q", creds.Username)
	}
	if creds.Password != "from-env" {
		t.Fatalf("password = %q, environment must win", creds.Password)
	}
}

func TestLogBuild(t *testing.T) {
	log, err := LogConfig{Level: "debug", Development: true}.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !log.Core().Enabled(-1) {
		t.Fatal("debug level not enabled")
	}
	if _, err := (LogConfig{Level: "loud"}).Build(); err == nil {
		t.Fatal("invalid level accepted")
	}
}
