package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sourcegraph/conc"
	"github.com/wippyai/libspot/audio"
	"github.com/wippyai/libspot/config"
	"github.com/wippyai/libspot/dispatch"
	"github.com/wippyai/libspot/native"
	"github.com/wippyai/libspot/native/dl"
	"github.com/wippyai/libspot/native/sim"
	"github.com/wippyai/libspot/spotify"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/term"
)

func main() {
	var (
		configFile  = flag.String("config", "", "Path to a TOML config file")
		envFile     = flag.String("env", ".env", "Credentials file (SPOTIFY_USERNAME, SPOTIFY_PASSWORD)")
		useSim      = flag.Bool("sim", false, "Use the built-in simulated library")
		libPath     = flag.String("lib", "", "Path to libspotify (overrides config)")
		username    = flag.String("user", "", "Username (overrides credentials file)")
		mute        = flag.Bool("mute", false, "Discard audio instead of opening a device")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *useSim {
		cfg.Library.Sim = true
	}
	if *libPath != "" {
		cfg.Library.Path = *libPath
	}

	opts := options{
		envFile:     *envFile,
		username:    *username,
		mute:        *mute,
		interactive: *interactive,
		commands:    flag.Args(),
	}
	if err := run(cfg, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	envFile     string
	username    string
	commands    []string
	mute        bool
	interactive bool
}

func run(cfg *config.Config, opts options) (err error) {
	log, err := cfg.Log.Build()
	if err != nil {
		return err
	}
	defer log.Sync()
	native.SetLogger(log.Named("native"))
	dispatch.SetLogger(log.Named("dispatch"))
	spotify.SetLogger(log.Named("spotify"))
	audio.SetLogger(log.Named("audio"))

	scfg, err := cfg.SessionConfig()
	if err != nil {
		return err
	}

	lib, err := openLibrary(cfg)
	if err != nil {
		return err
	}
	// The binding closes the library.
	b := spotify.NewBinding(lib, spotify.WithLogger(log.Named("spotify")))
	defer func() { err = multierr.Append(err, b.Close()) }()

	s, err := b.CreateSession(scfg)
	if err != nil {
		return err
	}

	sink, err := openSink(opts.mute)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, sink.Close()) }()
	s.SetAudioSink(sink)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg conc.WaitGroup
	defer wg.Wait()
	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	wg.Go(func() {
		if err := s.Run(runCtx); err != nil && runCtx.Err() == nil {
			log.Warn("event loop stopped", zap.Error(err))
		}
	})

	sh := newShell(s, sink, cfg.Runtime.LoginTimeout)
	defer sh.close()

	creds, err := config.LoadCredentials(opts.envFile)
	if err != nil {
		return err
	}
	if opts.username != "" {
		creds.Username = opts.username
	}
	if creds.Username != "" {
		if creds.Password == "" {
			if creds.Password, err = promptPassword(creds.Username); err != nil {
				return err
			}
		}
		if err := sh.login(ctx, creds.Username, creds.Password); err != nil {
			return err
		}
	}

	switch {
	case opts.interactive:
		return runInteractive(ctx, sh)
	case len(opts.commands) > 0:
		out, err := sh.exec(ctx, strings.Join(opts.commands, " "))
		if out != "" {
			fmt.Println(out)
		}
		return err
	default:
		return repl(ctx, sh, os.Stdin, os.Stdout)
	}
}

// openLibrary returns the native backend selected by cfg.
func openLibrary(cfg *config.Config) (native.Library, error) {
	if cfg.Library.Sim {
		return sim.New(), nil
	}
	l, err := dl.Open(cfg.Library.Path)
	if err != nil {
		return nil, err
	}
	return l, nil
}

type discardSink struct{}

func (discardSink) Deliver(_ native.AudioFormat, _ []byte, frames int) int { return frames }
func (discardSink) Close() error                                           { return nil }

type sink interface {
	spotify.AudioSink
	io.Closer
}

func openSink(mute bool) (sink, error) {
	if mute {
		return discardSink{}, nil
	}
	return audio.Open(audio.DefaultFormat)
}

func promptPassword(username string) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("no password for %s and stdin is not a terminal", username)
	}
	fmt.Fprintf(os.Stderr, "Password for %s: ", username)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}
