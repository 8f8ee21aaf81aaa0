// Package audiotest provides fake capture devices for tests.
package audiotest

import (
	"context"
	"sync"

	"github.com/talkgym/talkgym-client/internal/audio"
)

// Device is a scriptable capture device. Zero value opens streams that
// deliver whatever the test pushes via the returned stream's Push method.
type Device struct {
	// OpenErr, when set, is returned by Open instead of a stream.
	OpenErr error

	mu      sync.Mutex
	streams []*Stream
}

// Open returns a fresh fake stream, or the configured error.
func (d *Device) Open(_ context.Context, _ audio.Constraints) (audio.Stream, error) {
	if d.OpenErr != nil {
		return nil, d.OpenErr
	}
	s := &Stream{chunks: make(chan []byte, 64)}
	d.mu.Lock()
	d.streams = append(d.streams, s)
	d.mu.Unlock()
	return s, nil
}

// Streams returns every stream opened so far.
func (d *Device) Streams() []*Stream {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*Stream, len(d.streams))
	copy(out, d.streams)
	return out
}

// Stream is a fake capture stream fed by the test.
type Stream struct {
	mu     sync.Mutex
	state  audio.StreamState
	chunks chan []byte
}

// Push delivers a chunk as if captured from the microphone.
func (s *Stream) Push(chunk []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == audio.StreamStopped {
		return
	}
	s.chunks <- chunk
}

func (s *Stream) Chunks() <-chan []byte {
	return s.chunks
}

func (s *Stream) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == audio.StreamRecording {
		s.state = audio.StreamPaused
	}
	return nil
}

func (s *Stream) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == audio.StreamPaused {
		s.state = audio.StreamRecording
	}
	return nil
}

func (s *Stream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == audio.StreamStopped {
		return nil
	}
	s.state = audio.StreamStopped
	close(s.chunks)
	return nil
}

func (s *Stream) State() audio.StreamState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
