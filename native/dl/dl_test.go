//go:build darwin || linux

package dl

import (
	"path/filepath"
	"syscall"
	"testing"
	"unsafe"

	"github.com/wippyai/libspot/errors"
	"github.com/wippyai/libspot/native"
)

func TestOpen_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"empty", ""},
		{"missing", filepath.Join(t.TempDir(), "libspotify.so.12")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Open(tt.path)
			if err == nil {
				l.Close()
				t.Fatal("expected error")
			}
			if !errors.IsKind(err, errors.KindLoad) {
				t.Fatalf("kind = %v, want load", err)
			}
		})
	}

	// A failed open must not leave the process marked as loaded.
	if opened.Load() {
		t.Fatal("opened flag leaked after failure")
	}
}

func TestLayout(t *testing.T) {
	ptr := unsafe.Sizeof(uintptr(0))
	if got := unsafe.Sizeof(sessionCallbacks{}); got != 21*ptr {
		t.Fatalf("sessionCallbacks size = %d", got)
	}
	if got := unsafe.Sizeof(audioFormat{}); got != 12 {
		t.Fatalf("audioFormat size = %d", got)
	}
	if got := unsafe.Sizeof(audioBufferStats{}); got != 8 {
		t.Fatalf("audioBufferStats size = %d", got)
	}

	var c sessionConfig
	if ptr == 8 {
		if off := unsafe.Offsetof(c.cacheLocation); off != 8 {
			t.Fatalf("cacheLocation offset = %d", off)
		}
		if off := unsafe.Offsetof(c.compressPlaylists); off != 64 {
			t.Fatalf("compressPlaylists offset = %d", off)
		}
		if off := unsafe.Offsetof(c.deviceID); off != 72 {
			t.Fatalf("deviceID offset = %d", off)
		}
	}
}

// nativeMemory returns a page outside the Go heap holding b, the way the
// library hands out strings and buffers.
func nativeMemory(t *testing.T, b []byte) uintptr {
	t.Helper()
	mem, err := syscall.Mmap(-1, 0, 4096, syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_ANON|syscall.MAP_PRIVATE)
	if err != nil {
		t.Fatalf("mmap: %v", err)
	}
	t.Cleanup(func() { syscall.Munmap(mem) })
	copy(mem, b)
	return uintptr(unsafe.Pointer(&mem[0]))
}

func TestStrings(t *testing.T) {
	if cString("") != nil {
		t.Fatal("empty string should map to NULL")
	}
	const uri = "spotify:track:1"
	c := unsafe.Slice(cString(uri), len(uri)+1)
	if string(c[:len(uri)]) != uri || c[len(uri)] != 0 {
		t.Fatalf("cString = %q", c)
	}
	if got := goString(nativeMemory(t, c)); got != uri {
		t.Fatalf("goString = %q", got)
	}
	if goString(0) != "" {
		t.Fatal("NULL should map to empty string")
	}

	p := nativeMemory(t, []byte{1, 2, 3, 4})
	cp := goBytes(p, 3)
	*(*byte)(unsafe.Pointer(p)) = 9
	if len(cp) != 3 || cp[0] != 1 {
		t.Fatalf("goBytes = %v", cp)
	}
	if v := view(p, 2); v[0] != 9 {
		t.Fatalf("view = %v", v)
	}
}

func TestCodeNarrowing(t *testing.T) {
	// Upper register bits are undefined for 32-bit C ints.
	if got := code(^uintptr(0)&^0xffffffff | 6); got != native.Code(6) {
		t.Fatalf("code = %v", got)
	}
	if !cbool(0xff01) || cbool(0xff00) {
		t.Fatal("cbool must only look at the low byte")
	}
}

func TestCallbacksWithoutTable(t *testing.T) {
	current.Store(nil)
	onLoggedIn(1, 0)
	if n := onMusicDelivery(1, 0, 0, 32); n != 32 {
		t.Fatalf("unclaimed delivery = %d, want 32", n)
	}

	var got native.Code = -1
	current.Store(&native.Callbacks{LoggedIn: func(_ native.Handle, c native.Code) { got = c }})
	defer current.Store(nil)
	onLoggedIn(1, uintptr(native.BadUsernameOrPassword))
	if got != native.BadUsernameOrPassword {
		t.Fatalf("LoggedIn status = %v", got)
	}
}
