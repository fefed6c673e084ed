package audio

import (
	"bytes"
	"testing"
	"time"

	"github.com/wippyai/libspot/native"
)

func TestRing_WholeFrames(t *testing.T) {
	r := NewRing(4, 4)

	if n := r.Write(make([]byte, 10)); n != 2 {
		t.Fatalf("Write(10 bytes) = %d frames, want 2", n)
	}
	if n := r.Write(make([]byte, 16)); n != 2 {
		t.Fatalf("Write into 2 free frames = %d, want 2", n)
	}
	if n := r.Write(make([]byte, 4)); n != 0 {
		t.Fatalf("Write into full ring = %d, want 0", n)
	}
	if r.Buffered() != 4 {
		t.Fatalf("Buffered = %d, want 4", r.Buffered())
	}
}

func TestRing_WrapAround(t *testing.T) {
	r := NewRing(3, 2)

	r.Write([]byte{1, 2, 3, 4})
	out := make([]byte, 2)
	r.Read(out)
	if !bytes.Equal(out, []byte{1, 2}) {
		t.Fatalf("Read = %v", out)
	}
	if n := r.Write([]byte{5, 6, 7, 8}); n != 2 {
		t.Fatalf("Write across the end = %d frames", n)
	}

	out = make([]byte, 6)
	if n, err := r.Read(out); n != 6 || err != nil {
		t.Fatalf("Read = %d, %v", n, err)
	}
	if !bytes.Equal(out, []byte{3, 4, 5, 6, 7, 8}) {
		t.Fatalf("Read = %v", out)
	}
}

func TestRing_UnderrunPadsSilence(t *testing.T) {
	r := NewRing(4, 2)

	out := []byte{9, 9, 9, 9}
	r.Read(out)
	if !bytes.Equal(out, []byte{0, 0, 0, 0}) {
		t.Fatalf("idle Read = %v", out)
	}
	if n := r.Stutters(); n != 0 {
		t.Fatalf("stutters before any audio = %d", n)
	}

	r.Write([]byte{1, 2})
	out = []byte{9, 9, 9, 9}
	r.Read(out)
	if !bytes.Equal(out, []byte{1, 2, 0, 0}) {
		t.Fatalf("short Read = %v", out)
	}
	r.Read(out)
	if n := r.Stutters(); n != 1 {
		t.Fatalf("stutters = %d, want 1", n)
	}
	if n := r.Stutters(); n != 0 {
		t.Fatalf("stutters not reset: %d", n)
	}
}

func TestSink_Deliver(t *testing.T) {
	s := newSink(DefaultFormat, WithBuffer(10*time.Millisecond))
	frameSize := DefaultFormat.BytesPerFrame()
	capacity := 441

	if n := s.Deliver(DefaultFormat, nil, 0); n != 0 {
		t.Fatalf("Deliver(0 frames) = %d", n)
	}
	if n := s.Deliver(DefaultFormat, make([]byte, 400*frameSize), 400); n != 400 {
		t.Fatalf("Deliver = %d, want 400", n)
	}
	if n := s.Deliver(DefaultFormat, make([]byte, 100*frameSize), 100); n != capacity-400 {
		t.Fatalf("Deliver into nearly full sink = %d, want %d", n, capacity-400)
	}
	if samples, _ := s.BufferStats(); samples != capacity {
		t.Fatalf("BufferStats samples = %d, want %d", samples, capacity)
	}

	mono := DefaultFormat
	mono.Channels = 1
	if n := s.Deliver(mono, make([]byte, 20), 10); n != 10 {
		t.Fatalf("foreign format not discarded: %d", n)
	}

	s.Flush()
	if samples, _ := s.BufferStats(); samples != 0 {
		t.Fatalf("samples after Flush = %d", samples)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if n := s.Deliver(DefaultFormat, make([]byte, frameSize), 1); n != 0 {
		t.Fatalf("Deliver after Close = %d", n)
	}
}

func TestCheckFormat(t *testing.T) {
	if err := checkFormat(DefaultFormat); err != nil {
		t.Fatalf("default format: %v", err)
	}
	bad := DefaultFormat
	bad.SampleRate = 0
	if err := checkFormat(bad); err == nil {
		t.Fatal("zero sample rate accepted")
	}
	bad = DefaultFormat
	bad.SampleType = native.SampleType(7)
	if err := checkFormat(bad); err == nil {
		t.Fatal("unknown sample type accepted")
	}
}
