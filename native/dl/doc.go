// Package dl loads a real libspotify shared object at runtime and exposes it
// as a native.Library.
//
// Symbols are resolved with purego, so no cgo toolchain is needed at build
// time. The library is process-wide: libspotify supports one session per
// process and its callbacks are plain C function pointers, so one Library may
// be open at a time.
//
// Open only resolves symbols. Every call still has to go through a
// native.Gate; nothing here serializes.
package dl
