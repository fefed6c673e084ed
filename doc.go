// Package libspot provides a Go binding for the libspotify native media
// library.
//
// The native library is single-threaded, reference-counted and reports
// progress through C callbacks on its own thread. This module turns that into
// a safe Go API: every native call is serialized through one gate, native
// objects surface as typed wrappers with stable identity and exactly-once
// release, and callbacks become events that the application pumps on a
// goroutine of its choosing.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	libspot/             Root package, documentation only
//	├── native/          Handle, status codes, function table, call gate
//	│   ├── dl/          purego loader for a real libspotify shared object
//	│   └── sim/         In-process simulated library for tests and demos
//	├── resource/        Wrapper lifecycle, lazy children, identity tables
//	├── dispatch/        Event queue, handler registry and pump
//	├── spotify/         Binding, Session and the resource wrappers
//	├── audio/           PCM ring buffer and oto audio sink
//	├── config/          TOML configuration, credentials, logger setup
//	├── errors/          Structured error types for debugging
//	└── cmd/shell/       Line-mode and interactive command shell
//
// # Quick Start
//
// Load the library and log in:
//
//	lib, err := dl.Open("/usr/lib/libspotify.so.12")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	b := spotify.NewBinding(lib)
//	defer b.Close()
//
//	s, err := b.CreateSession(spotify.Config{
//	    ApplicationKey: key,
//	    UserAgent:      "my-player",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	go s.Run(ctx)
//
//	if err := s.Login(user, password); err != nil {
//	    log.Fatal(err)
//	}
//	if err := s.WaitForLogin(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	sr, err := s.Search("daft punk", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sr.Dispose()
//	if err := sr.Wait(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// Binding, Session and every wrapper are safe for concurrent use. Native calls
// are serialized by the Binding's gate, so heavy use from many goroutines
// contends on one lock. Event handlers run on the goroutine that pumps the
// session.
//
// # Memory Model
//
// Wrappers hold one native reference each. Dispose releases it; wrappers that
// are never disposed are released when their session is disposed. Data
// returned from accessors (strings, image bytes, cover ids) is always copied
// out of native memory.
package libspot
