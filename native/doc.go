// Package native describes the boundary to the native media-service library.
//
// The library is single-threaded and not reentrant. It is reached only
// through the Library function table, and every call into it must run inside
// the process-wide Gate:
//
//	gate := native.NewGate()
//	name := native.Call(gate, func() string {
//	    return lib.TrackName(track)
//	})
//
// # Ownership
//
// Handles are opaque, pointer-sized values; Invalid (zero) never names a live
// object. Methods named *Create* return a reference owned by the caller, which
// must be released exactly once through the matching *Release method. All
// other methods returning a Handle return a borrowed reference that stays
// valid only while its owner is alive; callers that keep it must AddRef it.
//
// # Callbacks
//
// The library reports asynchronous progress through two fixed tables:
// Callbacks (per session, supplied at SessionCreate) and Completions (per
// library, supplied through RegisterCompletions). Both are invoked from the
// library's own thread, never while the caller holds the Gate's critical
// section on that thread, and must not call back into the Library.
//
// Implementations live in subpackages: dl loads a real shared object through
// purego, sim is an in-process simulation used by tests and demos.
package native
