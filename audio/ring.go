package audio

import "sync"

// Ring is a bounded byte FIFO of whole audio frames.
//
// Write never blocks: it accepts as many whole frames as fit. Read always
// fills its buffer, padding with silence when the ring runs dry.
type Ring struct {
	buf      []byte
	head     int
	size     int
	frame    int
	stutters int
	primed   bool
	mu       sync.Mutex
}

// NewRing creates a ring holding up to frames frames of frameSize bytes.
func NewRing(frames, frameSize int) *Ring {
	if frameSize <= 0 {
		frameSize = 1
	}
	return &Ring{
		buf:   make([]byte, max(frames, 1)*frameSize),
		frame: frameSize,
	}
}

// Write copies as many whole frames of p as fit and returns the number of
// frames taken.
func (r *Ring) Write(p []byte) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	free := (len(r.buf) - r.size) / r.frame
	frames := min(len(p)/r.frame, free)
	n := frames * r.frame
	if n == 0 {
		return 0
	}

	tail := (r.head + r.size) % len(r.buf)
	c := copy(r.buf[tail:], p[:n])
	copy(r.buf, p[c:n])
	r.size += n
	r.primed = true
	return frames
}

// Read implements io.Reader. It never returns an error.
func (r *Ring) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := min(len(p), r.size)
	c := copy(p[:n], r.buf[r.head:min(r.head+n, len(r.buf))])
	copy(p[c:n], r.buf)
	r.head = (r.head + n) % len(r.buf)
	r.size -= n

	if n < len(p) {
		clear(p[n:])
		if r.primed {
			r.stutters++
			r.primed = false
		}
	}
	return len(p), nil
}

// Buffered returns the number of whole frames waiting to be played.
func (r *Ring) Buffered() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size / r.frame
}

// Stutters returns the underruns while audio was flowing since the last call and resets the count.
func (r *Ring) Stutters() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.stutters
	r.stutters = 0
	return n
}

// Reset discards buffered audio.
func (r *Ring) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.head = 0
	r.size = 0
	r.primed = false
}
