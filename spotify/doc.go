// Package spotify exposes the native media library as a graph of typed,
// reference-counted wrappers rooted at a Session.
//
// # Threading
//
// The native library is single-threaded. Every call into it goes through the
// Binding's native.Gate, so wrappers can be used from any goroutine. The
// library reports progress from its own thread; those notifications are
// queued and only reach handlers when the session is pumped:
//
//	b := spotify.NewBinding(lib)
//	defer b.Close()
//
//	s, err := b.CreateSession(spotify.Config{
//	    ApplicationKey: key,
//	    UserAgent:      "my-player",
//	})
//	if err != nil {
//	    return err
//	}
//
//	go s.Run(ctx) // pumps events until ctx ends
//
//	if err := s.Login("alice", "secret"); err != nil {
//	    return err
//	}
//	if err := s.WaitForLogin(ctx); err != nil {
//	    return err
//	}
//
// Handlers run on the pumping goroutine, outside the gate, and may call any
// wrapper method. They must not wait for other events.
//
// Waits (WaitForLogin, Search.Wait, Image.Wait, Toplist.Wait) drive the
// session themselves, so they also work without a Run loop.
//
// # Identity and disposal
//
// The same native object always yields the same wrapper. Dispose releases the
// wrapper's native reference exactly once; later calls are no-ops and every
// accessor fails with errors.ErrObjectDisposed. Disposing a wrapper disposes
// the derived wrappers it realized (a track's album and artists, an album's
// artist and cover). Disposing the Session disposes everything reachable from
// it.
package spotify
