package dispatch

import "github.com/wippyai/libspot/native"

// Kind tags an event.
type Kind string

// Event is an immutable notification raised by the native library.
type Event struct {
	Payload any
	Kind    Kind
	Source  native.Handle
	Seq     uint64
}

// Handler consumes an event during a pump.
type Handler func(Event)
