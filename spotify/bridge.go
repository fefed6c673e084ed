package spotify

import (
	"strings"
	"sync/atomic"

	"github.com/wippyai/libspot/dispatch"
	"github.com/wippyai/libspot/native"
	"go.uber.org/zap"
)

// AudioSink receives decoded PCM from the library's thread.
//
// Deliver consumes whole frames from pcm and returns how many it took; zero
// asks the library to retry later. pcm aliases native memory and must be
// copied before Deliver returns.
type AudioSink interface {
	Deliver(format native.AudioFormat, pcm []byte, frames int) int
}

// BufferStatser is implemented by sinks that report their backlog.
type BufferStatser interface {
	BufferStats() (samples, stutters int)
}

type sinkRef struct {
	sink AudioSink
}

// bridge turns native session callbacks into queued events.
type bridge struct {
	events    *dispatch.Dispatcher
	log       *zap.Logger
	sink      atomic.Pointer[sinkRef]
	wake      chan struct{}
	callbacks native.Callbacks
	session   atomic.Uintptr
}

func newBridge(events *dispatch.Dispatcher, log *zap.Logger) *bridge {
	b := &bridge{
		events: events,
		log:    log,
		wake:   make(chan struct{}, 1),
	}
	b.callbacks = native.Callbacks{
		LoggedIn: func(h native.Handle, status native.Code) {
			b.status(EventLoginComplete, h, status)
		},
		LoggedOut: func(h native.Handle) {
			b.signal(EventLogoutComplete, h)
		},
		MetadataUpdated: func(h native.Handle) {
			b.signal(EventMetadataUpdated, h)
		},
		ConnectionError: func(h native.Handle, status native.Code) {
			if b.accept(h) {
				b.enqueue(EventConnectionError, h, SessionEvent{
					Kind:    EventConnectionError,
					Status:  status,
					Message: status.String(),
				})
			}
		},
		MessageToUser: func(h native.Handle, message string) {
			b.message(EventMessageToUser, h, message)
		},
		NotifyMainThread: b.notifyMainThread,
		MusicDelivery:    b.musicDelivery,
		PlayTokenLost: func(h native.Handle) {
			b.signal(EventPlayTokenLost, h)
		},
		LogMessage: func(h native.Handle, data string) {
			b.message(EventLogMessage, h, data)
		},
		EndOfTrack: func(h native.Handle) {
			b.signal(EventEndOfTrack, h)
		},
		StreamingError: func(h native.Handle, status native.Code) {
			b.status(EventStreamingError, h, status)
		},
		UserinfoUpdated: func(h native.Handle) {
			b.signal(EventUserinfoUpdated, h)
		},
		StartPlayback: func(h native.Handle) {
			b.signal(EventStartPlayback, h)
		},
		StopPlayback: func(h native.Handle) {
			b.signal(EventStopPlayback, h)
		},
		GetAudioBufferStats: b.audioBufferStats,
		OfflineStatusUpdated: func(h native.Handle) {
			b.signal(EventOfflineStatusUpdated, h)
		},
	}
	return b
}

func (b *bridge) bind(h native.Handle) {
	b.session.Store(uintptr(h))
}

// detach makes every later callback a no-op.
func (b *bridge) detach() {
	b.session.Store(uintptr(native.Invalid))
	b.sink.Store(nil)
}

func (b *bridge) accept(h native.Handle) bool {
	bound := native.Handle(b.session.Load())
	if !bound.Valid() || h != bound {
		b.log.Debug("dropping callback for foreign session",
			zap.Stringer("handle", h),
			zap.Stringer("bound", bound))
		return false
	}
	return true
}

func (b *bridge) enqueue(kind dispatch.Kind, h native.Handle, payload any) {
	if !native.Handle(b.session.Load()).Valid() {
		return
	}
	if _, err := b.events.Enqueue(kind, h, payload); err != nil {
		b.log.Error("event dropped",
			zap.String("kind", string(kind)),
			zap.Error(err))
	}
}

func (b *bridge) signal(kind dispatch.Kind, h native.Handle) {
	if b.accept(h) {
		b.enqueue(kind, h, SessionEvent{Kind: kind})
	}
}

func (b *bridge) status(kind dispatch.Kind, h native.Handle, status native.Code) {
	if b.accept(h) {
		b.enqueue(kind, h, SessionEvent{Kind: kind, Status: status})
	}
}

func (b *bridge) message(kind dispatch.Kind, h native.Handle, text string) {
	if b.accept(h) {
		b.enqueue(kind, h, SessionEvent{Kind: kind, Message: strings.Clone(text)})
	}
}

func (b *bridge) notifyMainThread(h native.Handle) {
	if !b.accept(h) {
		return
	}
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *bridge) musicDelivery(h native.Handle, format native.AudioFormat, frames []byte, numFrames int) int {
	if numFrames <= 0 || !b.accept(h) {
		return 0
	}
	ref := b.sink.Load()
	if ref == nil {
		return 0
	}
	consumed := ref.sink.Deliver(format, frames, numFrames)
	return max(0, min(consumed, numFrames))
}

func (b *bridge) audioBufferStats(h native.Handle) native.AudioBufferStats {
	if !b.accept(h) {
		return native.AudioBufferStats{}
	}
	ref := b.sink.Load()
	if ref == nil {
		return native.AudioBufferStats{}
	}
	bs, ok := ref.sink.(BufferStatser)
	if !ok {
		return native.AudioBufferStats{}
	}
	samples, stutters := bs.BufferStats()
	return native.AudioBufferStats{Samples: int32(samples), Stutters: int32(stutters)}
}

func (b *bridge) setSink(sink AudioSink) {
	if sink == nil {
		b.sink.Store(nil)
		return
	}
	b.sink.Store(&sinkRef{sink: sink})
}
