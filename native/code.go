package native

import (
	"strconv"

	"github.com/wippyai/libspot/errors"
)

// Code is a native status code.
type Code int32

const (
	OK Code = iota
	BadAPIVersion
	APIInitializationFailed
	TrackNotPlayable
	ResourceNotLoaded
	BadApplicationKey
	BadUsernameOrPassword
	UserBanned
	UnableToContactServer
	ClientTooOld
	OtherPermanent
	BadUserAgent
	MissingCallback
	InvalidIndata
	IndexOutOfRange
	UserNeedsPremium
	OtherTransient
	IsLoading
	NoStreamAvailable
	PermissionDenied
	InboxIsFull
	NoCache
	NoSuchUser
)

var codeMessages = [...]string{
	OK:                      "no error",
	BadAPIVersion:           "invalid library version",
	APIInitializationFailed: "initialization failed",
	TrackNotPlayable:        "track not playable",
	ResourceNotLoaded:       "resource not loaded",
	BadApplicationKey:       "invalid application key",
	BadUsernameOrPassword:   "invalid username or password",
	UserBanned:              "user banned",
	UnableToContactServer:   "unable to contact server",
	ClientTooOld:            "client too old",
	OtherPermanent:          "other permanent error",
	BadUserAgent:            "bad user agent string",
	MissingCallback:         "missing callback",
	InvalidIndata:           "invalid input data",
	IndexOutOfRange:         "index out of range",
	UserNeedsPremium:        "user needs premium",
	OtherTransient:          "other transient error",
	IsLoading:               "resource is loading",
	NoStreamAvailable:       "could not find any suitable stream to play",
	PermissionDenied:        "permission denied",
	InboxIsFull:             "target inbox is full",
	NoCache:                 "no cache",
	NoSuchUser:              "no such user",
}

// String returns the static message for c. Library.ErrorMessage returns the
// native library's own text for the same code.
func (c Code) String() string {
	if c >= 0 && int(c) < len(codeMessages) {
		return codeMessages[c]
	}
	return "unknown error " + strconv.Itoa(int(c))
}

// Err translates c into the binding's error taxonomy. OK yields nil.
func (c Code) Err(op string) error {
	if c == OK {
		return nil
	}
	return errors.Native(op, int(c), c.String())
}

// AsyncErr translates a status delivered by a completion event.
func (c Code) AsyncErr(op string) error {
	if c == OK {
		return nil
	}
	return errors.AsyncFailure(op, int(c), c.String())
}
