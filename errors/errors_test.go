package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:    PhaseNative,
				Kind:     KindNative,
				Resource: "track",
				Op:       "set_starred",
				Handle:   0x1040,
				Code:     19,
				HasCode:  true,
				Detail:   "permission denied",
			},
			contains: []string{"[native]", "native_error", "track.set_starred", "0x1040", "code 19", "permission denied"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseResource,
				Kind:  KindObjectDisposed,
			},
			contains: []string{"[resource]", "object_disposed"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLoad,
				Kind:   KindLoad,
				Detail: "dlopen",
				Cause:  errors.New("no such file"),
			},
			contains: []string{"[load]", "load", "dlopen", "caused by", "no such file"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseAsync,
		Kind:  KindTimeout,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase:    PhaseResource,
		Kind:     KindObjectDisposed,
		Resource: "album",
	}

	if !err.Is(&Error{Phase: PhaseResource, Kind: KindObjectDisposed}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseSession, Kind: KindObjectDisposed}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseResource, Kind: KindInvalidHandle}) {
		t.Error("Is should not match different kind")
	}

	// Kind-only sentinels ignore the phase
	if !errors.Is(err, ErrObjectDisposed) {
		t.Error("errors.Is should match the kind-only sentinel")
	}
	if errors.Is(err, ErrInvalidHandle) {
		t.Error("errors.Is should not match a different sentinel")
	}

	wrapped := fmt.Errorf("read album: %w", err)
	if !errors.Is(wrapped, ErrObjectDisposed) {
		t.Error("errors.Is should see through fmt wrapping")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseNative, KindNative).
		Resource("session").
		Op("login").
		Handle(0x2000).
		Code(6).
		Cause(cause).
		Detail("user %s rejected", "alice").
		Build()

	if err.Phase != PhaseNative {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseNative)
	}
	if err.Kind != KindNative {
		t.Errorf("Kind = %v, want %v", err.Kind, KindNative)
	}
	if err.Resource != "session" || err.Op != "login" {
		t.Errorf("Resource/Op = %q/%q", err.Resource, err.Op)
	}
	if err.Handle != 0x2000 {
		t.Errorf("Handle = %#x, want 0x2000", err.Handle)
	}
	if !err.HasCode || err.Code != 6 {
		t.Errorf("Code = %d (has=%v), want 6", err.Code, err.HasCode)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "user alice rejected" {
		t.Errorf("Detail = %v", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("InvalidHandle", func(t *testing.T) {
		err := InvalidHandle("track", "Name")
		if err.Kind != KindInvalidHandle {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidHandle)
		}
	})

	t.Run("ObjectDisposed", func(t *testing.T) {
		err := ObjectDisposed("album", "Year")
		if err.Kind != KindObjectDisposed || err.Resource != "album" {
			t.Errorf("unexpected error %+v", err)
		}
	})

	t.Run("Native", func(t *testing.T) {
		err := Native("session_logout", 8, "unable to contact server")
		code, ok := CodeOf(err)
		if !ok || code != 8 {
			t.Errorf("CodeOf = %d, %v; want 8, true", code, ok)
		}
	})

	t.Run("AsyncFailure", func(t *testing.T) {
		err := AsyncFailure("login", 6, "bad username or password")
		if !errors.Is(err, ErrAsyncFailure) {
			t.Error("expected async failure kind")
		}
		code, ok := CodeOf(fmt.Errorf("wrap: %w", err))
		if !ok || code != 6 {
			t.Errorf("CodeOf through wrap = %d, %v", code, ok)
		}
	})

	t.Run("InvalidState", func(t *testing.T) {
		err := InvalidState("logout", "created")
		if !strings.Contains(err.Error(), "created") {
			t.Errorf("message %q should name the state", err.Error())
		}
	})

	t.Run("Timeout", func(t *testing.T) {
		err := Timeout("wait_login", errors.New("deadline"))
		if !IsKind(err, KindTimeout) {
			t.Error("IsKind should match timeout")
		}
	})

	t.Run("QueueOverflow", func(t *testing.T) {
		err := QueueOverflow(16)
		if !strings.Contains(err.Detail, "16") {
			t.Errorf("Detail = %q, should contain limit", err.Detail)
		}
	})

	t.Run("NoCode", func(t *testing.T) {
		if _, ok := CodeOf(ObjectDisposed("user", "Name")); ok {
			t.Error("disposed error should not carry a code")
		}
		if _, ok := CodeOf(errors.New("plain")); ok {
			t.Error("plain error should not carry a code")
		}
	})
}
