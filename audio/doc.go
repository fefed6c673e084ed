// Package audio plays the PCM a session delivers.
//
// Music delivery runs on the library's thread and must not block, so a Sink
// copies whole frames into a bounded Ring and returns how many it took. The
// output device drains the ring on its own goroutine; when the ring runs dry
// it plays silence and counts a stutter, which the library reads back
// through the buffer stats callback.
//
//	sink, err := audio.Open(audio.DefaultFormat)
//	if err != nil {
//		return err
//	}
//	defer sink.Close()
//	session.SetAudioSink(sink)
package audio
