package audio

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Recorder wraps microphone capture into a finalized Clip. It owns at most
// one capture stream at a time; starting a new capture tears down any
// previous owner first, so two captures can never interleave chunks.
type Recorder struct {
	device CaptureDevice
	log    *zerolog.Logger

	mu        sync.Mutex
	stream    Stream
	chunks    [][]byte
	recording bool
	clip      *Clip
	startedAt time.Time
	done      chan struct{}

	tap        func([]byte)
	onFinalize func(Clip)
}

// NewRecorder builds an idle recorder around the given capture device.
func NewRecorder(device CaptureDevice, logger *zerolog.Logger) *Recorder {
	return &Recorder{device: device, log: logger}
}

// SetTap registers a callback invoked with every captured chunk, used to feed
// the live transcriber the same audio the recording accumulates. Must be set
// before Start.
func (r *Recorder) SetTap(tap func([]byte)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tap = tap
}

// SetOnFinalize registers the finalize callback fired asynchronously once a
// stopped capture has been assembled into a Clip. Must be set before Start.
func (r *Recorder) SetOnFinalize(fn func(Clip)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onFinalize = fn
}

// Recording reports whether a capture is in progress.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Clip returns the finalized audio object from the last capture, or nil.
func (r *Recorder) Clip() *Clip {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clip
}

// Start requests microphone access with echo cancellation and noise
// suppression and begins accumulating chunks. Any previously active capture
// is torn down first, so restart is idempotent. Fails with
// ErrPermissionDenied or ErrDeviceUnavailable; on failure the recorder is
// left not recording.
func (r *Recorder) Start(ctx context.Context) error {
	r.teardown()

	stream, err := r.device.Open(ctx, DefaultConstraints())
	if err != nil {
		r.mu.Lock()
		r.recording = false
		r.mu.Unlock()
		if errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrDeviceUnavailable) {
			return err
		}
		return errors.Join(ErrDeviceUnavailable, err)
	}

	r.mu.Lock()
	r.stream = stream
	r.chunks = nil
	r.clip = nil
	r.recording = true
	r.startedAt = time.Now()
	r.done = make(chan struct{})
	tap := r.tap
	done := r.done
	r.mu.Unlock()

	go r.accumulate(stream, tap, done)

	r.log.Debug().Msg("recording started")
	return nil
}

// accumulate drains the stream until its chunk channel closes, then
// finalizes the clip. Runs once per capture.
func (r *Recorder) accumulate(stream Stream, tap func([]byte), done chan struct{}) {
	defer close(done)

	for chunk := range stream.Chunks() {
		if len(chunk) == 0 {
			continue
		}
		r.mu.Lock()
		r.chunks = append(r.chunks, chunk)
		r.mu.Unlock()
		if tap != nil {
			tap(chunk)
		}
	}

	r.mu.Lock()
	clip := Clip{
		Data:     bytes.Join(r.chunks, nil),
		MIMEType: ClipMIMEType,
		Duration: time.Since(r.startedAt),
	}
	r.clip = &clip
	r.recording = false
	onFinalize := r.onFinalize
	r.mu.Unlock()

	r.log.Debug().Int("bytes", len(clip.Data)).Dur("duration", clip.Duration).Msg("capture finalized")

	if onFinalize != nil {
		onFinalize(clip)
	}
}

// Stop requests termination of the current capture. If recording, the clip is
// finalized asynchronously and the capture stream released. Calling Stop when
// already stopped is a no-op. A paused stream is resumed first so the
// finalize still fires.
func (r *Recorder) Stop() {
	r.mu.Lock()
	stream := r.stream
	recording := r.recording
	r.mu.Unlock()

	if stream == nil || !recording {
		return
	}

	if stream.State() == StreamPaused {
		if err := stream.Resume(); err != nil {
			r.log.Warn().Err(err).Msg("resume before stop")
		}
	}

	if err := stream.Stop(); err != nil {
		r.log.Warn().Err(err).Msg("stop capture stream")
	}

	r.mu.Lock()
	r.recording = false
	r.mu.Unlock()
}

// Clear discards the finalized clip and chunk buffer without affecting
// recording state.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clip = nil
	r.chunks = nil
}

// Close force-stops any live capture and releases the stream. Used on
// teardown so no device handles leak.
func (r *Recorder) Close() {
	r.teardown()
}

// teardown stops and forgets the current stream, waiting for the
// accumulation goroutine to finish so a new capture starts clean.
func (r *Recorder) teardown() {
	r.mu.Lock()
	stream := r.stream
	done := r.done
	r.stream = nil
	r.recording = false
	r.mu.Unlock()

	if stream != nil {
		if err := stream.Stop(); err != nil {
			r.log.Warn().Err(err).Msg("release previous capture")
		}
	}
	if done != nil {
		<-done
	}
}
