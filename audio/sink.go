package audio

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/wippyai/libspot/native"
	"go.uber.org/zap"
)

// DefaultFormat is the format the library delivers at its default bitrates.
var DefaultFormat = native.AudioFormat{
	SampleType: native.SampleInt16NativeEndian,
	SampleRate: 44100,
	Channels:   2,
}

// DefaultBuffer is how much audio a sink holds ahead of the device.
const DefaultBuffer = 500 * time.Millisecond

// Option configures a Sink.
type Option func(*sinkOptions)

type sinkOptions struct {
	buffer time.Duration
}

// WithBuffer sets how much audio the sink holds ahead of the device.
func WithBuffer(d time.Duration) Option {
	return func(o *sinkOptions) {
		if d > 0 {
			o.buffer = d
		}
	}
}

var (
	device     *oto.Context
	deviceFmt  native.AudioFormat
	deviceErr  error
	deviceOnce sync.Once
)

// openDevice creates the process-wide output context. The platform allows
// only one, so every sink must share its format.
func openDevice(format native.AudioFormat) (*oto.Context, error) {
	deviceOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   int(format.SampleRate),
			ChannelCount: int(format.Channels),
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			deviceErr = fmt.Errorf("open audio device: %w", err)
			return
		}
		<-ready
		device = ctx
		deviceFmt = format
	})
	if deviceErr != nil {
		return nil, deviceErr
	}
	if format != deviceFmt {
		return nil, fmt.Errorf("audio device already open at %d Hz x %d", deviceFmt.SampleRate, deviceFmt.Channels)
	}
	return device, nil
}

// Sink buffers delivered PCM and plays it on the default output device.
type Sink struct {
	ring     *Ring
	format   native.AudioFormat
	player   *oto.Player
	log      *zap.Logger
	rejected atomic.Bool
	closed   atomic.Bool
}

// Open creates a sink playing format on the default output device.
func Open(format native.AudioFormat, opts ...Option) (*Sink, error) {
	if err := checkFormat(format); err != nil {
		return nil, err
	}
	ctx, err := openDevice(format)
	if err != nil {
		return nil, err
	}
	s := newSink(format, opts...)
	s.player = ctx.NewPlayer(s.ring)
	s.player.Play()
	s.log.Info("audio sink opened",
		zap.Int32("sample_rate", format.SampleRate),
		zap.Int32("channels", format.Channels))
	return s, nil
}

// newSink creates a sink without an output device.
func newSink(format native.AudioFormat, opts ...Option) *Sink {
	o := sinkOptions{buffer: DefaultBuffer}
	for _, opt := range opts {
		opt(&o)
	}
	frames := int(o.buffer.Seconds() * float64(format.SampleRate))
	return &Sink{
		ring:   NewRing(frames, format.BytesPerFrame()),
		format: format,
		log:    Logger(),
	}
}

func checkFormat(f native.AudioFormat) error {
	switch {
	case f.SampleType != native.SampleInt16NativeEndian:
		return fmt.Errorf("unsupported sample type %d", f.SampleType)
	case f.SampleRate <= 0:
		return fmt.Errorf("invalid sample rate %d", f.SampleRate)
	case f.Channels <= 0:
		return fmt.Errorf("invalid channel count %d", f.Channels)
	}
	return nil
}

// Deliver copies as many whole frames as fit and returns the count. It runs
// on the library's thread and never blocks. Audio in a format other than the
// sink's is consumed and discarded so playback does not stall.
func (s *Sink) Deliver(format native.AudioFormat, pcm []byte, frames int) int {
	if frames <= 0 || s.closed.Load() {
		return 0
	}
	if format != s.format {
		if !s.rejected.Swap(true) {
			s.log.Warn("discarding audio in unexpected format",
				zap.Int32("sample_rate", format.SampleRate),
				zap.Int32("channels", format.Channels))
		}
		return frames
	}
	n := min(frames*s.format.BytesPerFrame(), len(pcm))
	return s.ring.Write(pcm[:n])
}

// BufferStats reports buffered frames and underruns since the last call.
func (s *Sink) BufferStats() (samples, stutters int) {
	return s.ring.Buffered(), s.ring.Stutters()
}

// Format returns the format the sink plays.
func (s *Sink) Format() native.AudioFormat {
	return s.format
}

// Pause stops the device without discarding buffered audio.
func (s *Sink) Pause() {
	if s.player != nil {
		s.player.Pause()
	}
}

// Resume restarts a paused device.
func (s *Sink) Resume() {
	if s.player != nil && !s.closed.Load() {
		s.player.Play()
	}
}

// Flush discards buffered audio, for seeks and track changes.
func (s *Sink) Flush() {
	s.ring.Reset()
}

// Close stops playback. It is idempotent.
func (s *Sink) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.ring.Reset()
	if s.player == nil {
		return nil
	}
	s.player.Pause()
	return s.player.Close()
}
