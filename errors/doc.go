// Package errors provides structured error types for the libspot binding.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the resource kind, operation, native handle and, for
// native or asynchronous failures, the native status code.
//
// The binding's failure taxonomy maps onto kinds:
//
//	KindInvalidHandle   operation on a wrapper bound to the invalid handle
//	KindObjectDisposed  operation on a disposed wrapper
//	KindNative          synchronous native call returned a non-OK status
//	KindAsyncFailure    awaited completion event carried a non-OK status
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseNative, errors.KindNative).
//		Resource("track").
//		Op("set_starred").
//		Code(19).
//		Detail("permission denied").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.ObjectDisposed("album", "Name")
//	err := errors.Native("session_login", 6, "bad username or password")
//
// Kind-only sentinels match any error of that kind through errors.Is:
//
//	if errors.Is(err, liberrors.ErrObjectDisposed) { ... }
package errors
