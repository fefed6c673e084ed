// Package sim is an in-process stand-in for the native media library.
//
// It implements native.Library over a small fixed catalog and behaves like
// the real library where the binding depends on it:
//
//   - objects are reference counted; created objects are freed when their
//     count drops to zero and their handles are never reused
//   - login, search, toplist and image loads complete asynchronously, on a
//     callback goroutine owned by the library
//   - music is delivered from a playback goroutine after PlayerPlay
//
// It also records what the real library would silently corrupt memory on:
// calls on freed or unknown handles, releases without a reference, and
// overlapping calls from more than one goroutine. Tests assert on
// Violations, Overlaps, Refs and Releases.
//
// Known accounts are alice/secret and bob/hunter2; mallory is banned.
package sim
