package view

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/talkgym/talkgym-client/internal/api"
	"github.com/talkgym/talkgym-client/internal/audio"
	"github.com/talkgym/talkgym-client/internal/audio/audiotest"
	"github.com/talkgym/talkgym-client/internal/log"
	"github.com/talkgym/talkgym-client/internal/transcribe"
	"github.com/talkgym/talkgym-client/internal/transcribe/transcribetest"
)

type fakeUploader struct {
	mu      sync.Mutex
	calls   int
	err     error
	block   chan struct{}
	started chan struct{}
}

func (u *fakeUploader) UploadAudio(_ context.Context, clip audio.Clip) (*api.UploadResult, error) {
	u.mu.Lock()
	u.calls++
	block := u.block
	started := u.started
	err := u.err
	u.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	return &api.UploadResult{AudioURL: "/api/audio/file/abc.webm", Filename: "abc.webm"}, nil
}

func (u *fakeUploader) count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls
}

type sentAudio struct {
	url        string
	transcript string
}

type fakeEmitter struct {
	mu    sync.Mutex
	texts []string
	audio []sentAudio
}

func (e *fakeEmitter) SendText(_ context.Context, content string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.texts = append(e.texts, content)
	return nil
}

func (e *fakeEmitter) SendAudio(_ context.Context, audioURL, transcript string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.audio = append(e.audio, sentAudio{url: audioURL, transcript: transcript})
	return nil
}

func (e *fakeEmitter) sent() []sentAudio {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]sentAudio, len(e.audio))
	copy(out, e.audio)
	return out
}

type fixture struct {
	controller *Controller
	device     *audiotest.Device
	engine     *transcribetest.Engine
	uploader   *fakeUploader
	emitter    *fakeEmitter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, nil)
}

func newFixtureWith(t *testing.T, clips ClipTranscriber) *fixture {
	t.Helper()
	f := &fixture{
		device:   &audiotest.Device{},
		engine:   &transcribetest.Engine{},
		uploader: &fakeUploader{},
		emitter:  &fakeEmitter{},
	}
	recorder := audio.NewRecorder(f.device, log.Nop())
	live := transcribe.NewLive(f.engine, log.Nop())
	f.controller = NewController(context.Background(), recorder, live, f.uploader, clips, f.emitter, "en-US", log.Nop())
	t.Cleanup(f.controller.Close)
	return f
}

func waitCond(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestRecordStopUploadsOnceWithFrozenTranscript(t *testing.T) {
	f := newFixture(t)

	if err := f.controller.StartRecording(); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.device.Streams()[0].Push([]byte("opus"))
	f.engine.Sessions()[0].Emit(transcribe.Result{Text: "hello there", Final: true})
	waitCond(t, func() bool { return f.controller.LiveTranscript() == "hello there" })

	f.controller.StopRecording()

	waitCond(t, func() bool { return len(f.emitter.sent()) == 1 })
	got := f.emitter.sent()[0]
	if got.url != "/api/audio/file/abc.webm" || got.transcript != "hello there" {
		t.Fatalf("unexpected audio message: %+v", got)
	}
	if f.uploader.count() != 1 {
		t.Fatalf("clip uploaded %d times", f.uploader.count())
	}
	if f.controller.Err() != "" {
		t.Fatalf("unexpected error: %q", f.controller.Err())
	}
}

func TestFinalizeReentryUploadsAtMostOnce(t *testing.T) {
	f := newFixture(t)

	if err := f.controller.StartRecording(); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.device.Streams()[0].Push([]byte("opus"))
	f.controller.StopRecording()
	waitCond(t, func() bool { return len(f.emitter.sent()) == 1 })

	// A second finalize for the same capture must be a no-op: the pending
	// flag was consumed by the first.
	f.controller.onFinalize(audio.Clip{Data: []byte("opus"), MIMEType: audio.ClipMIMEType})

	time.Sleep(50 * time.Millisecond)
	if f.uploader.count() != 1 {
		t.Fatalf("re-entered finalize uploaded again, %d calls", f.uploader.count())
	}
	if len(f.emitter.sent()) != 1 {
		t.Fatalf("re-entered finalize emitted again, %d messages", len(f.emitter.sent()))
	}
}

func TestStartRefusedWhileUploadInFlight(t *testing.T) {
	f := newFixture(t)
	f.uploader.block = make(chan struct{})
	f.uploader.started = make(chan struct{}, 1)

	if err := f.controller.StartRecording(); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.device.Streams()[0].Push([]byte("opus"))
	f.controller.StopRecording()

	<-f.uploader.started
	if !f.controller.Uploading() {
		t.Fatal("expected uploading state while transfer is held")
	}
	if err := f.controller.StartRecording(); !errors.Is(err, ErrUploadInFlight) {
		t.Fatalf("expected ErrUploadInFlight, got %v", err)
	}

	close(f.uploader.block)
	waitCond(t, func() bool { return !f.controller.Uploading() })

	// Once the transfer settles, recording is available again.
	if err := f.controller.StartRecording(); err != nil {
		t.Fatalf("start after upload: %v", err)
	}
}

func TestEmptyCaptureSkipsUpload(t *testing.T) {
	f := newFixture(t)

	if err := f.controller.StartRecording(); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.controller.StopRecording()

	time.Sleep(50 * time.Millisecond)
	if f.uploader.count() != 0 {
		t.Fatalf("empty capture must not upload, %d calls", f.uploader.count())
	}
	if f.controller.Err() != "" {
		t.Fatalf("empty capture is not an error, got %q", f.controller.Err())
	}
}

func TestUploadFailureSurfacesAndReenables(t *testing.T) {
	f := newFixture(t)
	f.uploader.err = errors.New("backend down")

	if err := f.controller.StartRecording(); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.device.Streams()[0].Push([]byte("opus"))
	f.controller.StopRecording()

	waitCond(t, func() bool { return f.controller.Err() == "Failed to send audio message" })
	waitCond(t, func() bool { return !f.controller.Uploading() })
	if len(f.emitter.sent()) != 0 {
		t.Fatal("failed upload must not emit an audio message")
	}

	// The room stays usable after the failure.
	f.uploader.err = nil
	if err := f.controller.StartRecording(); err != nil {
		t.Fatalf("start after failure: %v", err)
	}
}

func TestStartRecordingDeviceDenied(t *testing.T) {
	f := newFixture(t)
	f.device.OpenErr = audio.ErrPermissionDenied

	err := f.controller.StartRecording()
	if !errors.Is(err, audio.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if f.controller.Err() != "Failed to start recording. Please check microphone permissions." {
		t.Fatalf("unexpected user error: %q", f.controller.Err())
	}
	if f.controller.Recording() {
		t.Fatal("denied start must leave the controller idle")
	}
}

func TestSendTextPassesThrough(t *testing.T) {
	f := newFixture(t)

	if err := f.controller.SendText("hello room"); err != nil {
		t.Fatalf("send text: %v", err)
	}
	f.emitter.mu.Lock()
	defer f.emitter.mu.Unlock()
	if len(f.emitter.texts) != 1 || f.emitter.texts[0] != "hello room" {
		t.Fatalf("unexpected texts: %q", f.emitter.texts)
	}
}

// holdStopDevice opens streams whose Stop delivers the final buffer and only
// returns once the upload path has run, modeling capture backends that
// finalize before their stop call comes back.
type holdStopDevice struct {
	release <-chan struct{}

	mu     sync.Mutex
	stream *holdStopStream
}

func (d *holdStopDevice) Open(_ context.Context, _ audio.Constraints) (audio.Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stream = &holdStopStream{chunks: make(chan []byte, 8), release: d.release}
	return d.stream, nil
}

func (d *holdStopDevice) last() *holdStopStream {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stream
}

type holdStopStream struct {
	release <-chan struct{}

	mu     sync.Mutex
	state  audio.StreamState
	chunks chan []byte
}

func (s *holdStopStream) Push(chunk []byte)        { s.chunks <- chunk }
func (s *holdStopStream) Chunks() <-chan []byte    { return s.chunks }
func (s *holdStopStream) Pause() error             { return nil }
func (s *holdStopStream) Resume() error            { return nil }
func (s *holdStopStream) State() audio.StreamState { return s.state }

func (s *holdStopStream) Stop() error {
	s.mu.Lock()
	if s.state == audio.StreamStopped {
		s.mu.Unlock()
		return nil
	}
	s.state = audio.StreamStopped
	close(s.chunks)
	s.mu.Unlock()

	select {
	case <-s.release:
	case <-time.After(500 * time.Millisecond):
	}
	return nil
}

func TestFinalizeDuringStopStillUploads(t *testing.T) {
	uploaded := make(chan struct{}, 1)
	device := &holdStopDevice{release: uploaded}
	uploader := &fakeUploader{started: uploaded}
	emitter := &fakeEmitter{}

	recorder := audio.NewRecorder(device, log.Nop())
	live := transcribe.NewLive(&transcribetest.Engine{}, log.Nop())
	c := NewController(context.Background(), recorder, live, uploader, nil, emitter, "en-US", log.Nop())
	t.Cleanup(c.Close)

	if err := c.StartRecording(); err != nil {
		t.Fatalf("start: %v", err)
	}
	device.last().Push([]byte("opus"))

	// The finalize callback runs before this returns; the pending flag must
	// already be armed when it does.
	c.StopRecording()

	waitCond(t, func() bool { return len(emitter.sent()) == 1 })
	if uploader.count() != 1 {
		t.Fatalf("finalized non-empty capture uploaded %d times, want exactly 1", uploader.count())
	}
}

type fakeClipTranscriber struct {
	mu    sync.Mutex
	text  string
	err   error
	calls int
}

func (f *fakeClipTranscriber) Transcribe(_ context.Context, _ audio.Clip) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.text, f.err
}

func (f *fakeClipTranscriber) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestClipFallbackTranscribesWhenLiveEmpty(t *testing.T) {
	clips := &fakeClipTranscriber{text: "spoken words"}
	f := newFixtureWith(t, clips)
	f.engine.Unavailable = true

	if err := f.controller.StartRecording(); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.device.Streams()[0].Push([]byte("opus"))
	f.controller.StopRecording()

	waitCond(t, func() bool { return len(f.emitter.sent()) == 1 })
	got := f.emitter.sent()[0]
	if got.transcript != "spoken words" {
		t.Fatalf("transcript = %q, want the clip fallback's text", got.transcript)
	}
	if clips.count() != 1 {
		t.Fatalf("fallback called %d times", clips.count())
	}
}

func TestClipFallbackSkippedWhenLiveTranscribed(t *testing.T) {
	clips := &fakeClipTranscriber{text: "unused"}
	f := newFixtureWith(t, clips)

	if err := f.controller.StartRecording(); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.device.Streams()[0].Push([]byte("opus"))
	f.engine.Sessions()[0].Emit(transcribe.Result{Text: "live text", Final: true})
	waitCond(t, func() bool { return f.controller.LiveTranscript() == "live text" })
	f.controller.StopRecording()

	waitCond(t, func() bool { return len(f.emitter.sent()) == 1 })
	if got := f.emitter.sent()[0].transcript; got != "live text" {
		t.Fatalf("transcript = %q, want the live transcript", got)
	}
	if clips.count() != 0 {
		t.Fatal("fallback must not run when live transcription produced text")
	}
}

func TestClipFallbackFailureStillUploads(t *testing.T) {
	clips := &fakeClipTranscriber{err: errors.New("whisper down")}
	f := newFixtureWith(t, clips)
	f.engine.Unavailable = true

	if err := f.controller.StartRecording(); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.device.Streams()[0].Push([]byte("opus"))
	f.controller.StopRecording()

	waitCond(t, func() bool { return len(f.emitter.sent()) == 1 })
	if got := f.emitter.sent()[0].transcript; got != "" {
		t.Fatalf("failed fallback must leave the transcript empty, got %q", got)
	}
	if f.controller.Err() != "" {
		t.Fatalf("fallback failure is not a user-facing error, got %q", f.controller.Err())
	}
}
