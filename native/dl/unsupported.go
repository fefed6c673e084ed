//go:build !darwin && !linux

package dl

import (
	"runtime"

	"github.com/wippyai/libspot/errors"
	"github.com/wippyai/libspot/native"
)

// Library is unavailable on this platform.
type Library struct {
	native.Library
}

// Open always fails on this platform.
func Open(path string) (*Library, error) {
	return nil, errors.Load("dynamic loading is not supported on "+runtime.GOOS, nil)
}

func (l *Library) Path() string { return "" }

func (l *Library) Close() error { return nil }
