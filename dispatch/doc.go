// Package dispatch moves native notifications onto a thread the embedder
// controls.
//
// Callbacks from the native library's thread only Enqueue. The owner of a
// Dispatcher calls Pump from its processing goroutine, which drains the queued
// events and invokes the registered handlers synchronously, in enqueue order:
//
//	d := dispatch.New(dispatch.WithLimit(1024))
//	cancel := d.On("end_of_track", func(e dispatch.Event) {
//	    // runs inside Pump, outside any native call
//	})
//	defer cancel()
//
//	d.Enqueue("end_of_track", session, nil) // any goroutine
//	d.Pump()                                // processing goroutine
//
// Handlers may call into the native library: Pump never runs inside the
// native gate. A Pump issued from inside a handler returns immediately.
//
// The queue has a depth cap. Reaching it means the processing goroutine has
// stopped pumping, which is treated as fatal rather than dropping events.
package dispatch
