package audio

import (
	"context"
	"errors"
)

var (
	// ErrPermissionDenied means the platform refused microphone access.
	ErrPermissionDenied = errors.New("microphone permission denied")
	// ErrDeviceUnavailable means no usable capture device exists.
	ErrDeviceUnavailable = errors.New("capture device unavailable")
)

// Constraints requested when opening a capture stream.
type Constraints struct {
	EchoCancellation bool
	NoiseSuppression bool
	SampleRate       int
}

// DefaultConstraints matches what the recorder asks for on every capture.
func DefaultConstraints() Constraints {
	return Constraints{
		EchoCancellation: true,
		NoiseSuppression: true,
		SampleRate:       44100,
	}
}

// StreamState is the lifecycle of one open capture stream.
type StreamState int

const (
	StreamRecording StreamState = iota
	StreamPaused
	StreamStopped
)

// Stream is an open microphone capture. Chunks delivers encoded audio data
// until the stream stops, at which point the channel is closed. Stop releases
// the underlying device tracks and is safe to call more than once.
type Stream interface {
	Chunks() <-chan []byte
	Pause() error
	Resume() error
	Stop() error
	State() StreamState
}

// CaptureDevice opens capture streams. It is injected so the recorder never
// touches platform capture APIs directly and tests can substitute a fake.
// Open fails with ErrPermissionDenied or ErrDeviceUnavailable.
type CaptureDevice interface {
	Open(ctx context.Context, c Constraints) (Stream, error)
}
