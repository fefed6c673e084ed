// Package resource manages the managed side of native object lifetimes.
//
// Every native object reachable from a session is represented by exactly one
// wrapper. This package provides the pieces wrappers are built from:
//
//	Lifecycle  - handle, kind and the one-shot disposed flag
//	Lazy[T]    - a derived value computed once and cascaded on disposal
//	Manager[T] - the identity table mapping a native handle to its wrapper
//
// # Identity
//
// The native library returns the same handle for the same logical object on
// repeated queries. Manager guarantees that all of those queries resolve to
// the same wrapper instance, so disposing one cannot invalidate another:
//
//	tracks := resource.NewManager[*Track](resource.KindTrack)
//
//	// Borrowed handle: construct takes its own native reference.
//	t, err := tracks.GetOrCreate(h, newTrack)
//
//	// Owned handle from a create call: construct adopts the reference and
//	// a duplicate is released immediately.
//	s, err := searches.Adopt(h, newSearch, lib.SearchRelease)
//
// Manager mutations must happen while the caller holds the native gate, which
// keeps the table consistent with the library's reference counts. Read-only
// inspection (Len, Each, Lookup) is safe from any goroutine.
//
// # Disposal
//
// A wrapper's Dispose first wins the Lifecycle's compare-and-swap. From that
// point every accessor fails with ObjectDisposed and performs no native call.
// The wrapper then disposes realized Lazy children, releases its native
// reference, removes itself from its Manager and invalidates its handle.
//
// # Observers
//
// Managers report lifecycle events to subscribed observers:
//
//	tracks.Subscribe(obs) // EventCreated, EventShared, EventDropped
package resource
