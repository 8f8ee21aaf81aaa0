// Package view composes the recorder, live transcriber, upload client and
// room synchronizer into the chat-room experience: record/stop gating, the
// exactly-once upload guard, and roster presentation.
package view

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/talkgym/talkgym-client/internal/api"
	"github.com/talkgym/talkgym-client/internal/audio"
	"github.com/talkgym/talkgym-client/internal/transcribe"
)

var ErrUploadInFlight = errors.New("previous capture still uploading")

// Uploader sends a finalized clip to the remote store.
type Uploader interface {
	UploadAudio(ctx context.Context, clip audio.Clip) (*api.UploadResult, error)
}

// ClipTranscriber produces a transcript for a finalized clip when live
// transcription yielded nothing. Optional; nil means no fallback.
type ClipTranscriber interface {
	Transcribe(ctx context.Context, clip audio.Clip) (string, error)
}

// Emitter broadcasts messages into the room.
type Emitter interface {
	SendText(ctx context.Context, content string) error
	SendAudio(ctx context.Context, audioURL, transcript string) error
}

// Controller orchestrates one room visit's recording flow. Starting a new
// capture is disallowed while a previous capture's upload is in flight; the
// live transcript is captured synchronously at stop, before the transcriber
// discards it; and the pending-upload flag guarantees a finalized clip is
// uploaded at most once no matter how often the finalize callback fires.
type Controller struct {
	ctx      context.Context
	recorder *audio.Recorder
	live     *transcribe.Live
	uploader Uploader
	clips    ClipTranscriber
	emitter  Emitter
	language string
	log      *zerolog.Logger

	mu            sync.Mutex
	uploading     bool
	pendingUpload bool
	transcript    string
	lastErr       string
}

// NewController wires the recording pipeline. ctx bounds async work kicked
// off by finalize callbacks and should span the room visit. clips may be nil
// when no one-shot transcription fallback is configured.
func NewController(ctx context.Context, recorder *audio.Recorder, live *transcribe.Live, uploader Uploader, clips ClipTranscriber, emitter Emitter, language string, logger *zerolog.Logger) *Controller {
	c := &Controller{
		ctx:      ctx,
		recorder: recorder,
		live:     live,
		uploader: uploader,
		clips:    clips,
		emitter:  emitter,
		language: language,
		log:      logger,
	}
	recorder.SetTap(live.Feed)
	recorder.SetOnFinalize(c.onFinalize)
	return c
}

// Recording reports whether a capture is active.
func (c *Controller) Recording() bool {
	return c.recorder.Recording()
}

// Uploading reports whether a capture's upload is in flight.
func (c *Controller) Uploading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.uploading
}

// LiveTranscript returns the transcript accumulated so far in the active
// capture.
func (c *Controller) LiveTranscript() string {
	return c.live.Current()
}

// Err returns the last recording/upload error surfaced to the user, cleared
// on the next successful action.
func (c *Controller) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// StartRecording begins a capture with live transcription. Refused while an
// upload is in flight.
func (c *Controller) StartRecording() error {
	c.mu.Lock()
	if c.uploading {
		c.mu.Unlock()
		return ErrUploadInFlight
	}
	c.pendingUpload = false
	c.transcript = ""
	c.lastErr = ""
	c.mu.Unlock()

	c.recorder.Clear()
	c.live.StartLive(c.ctx, c.language)

	if err := c.recorder.Start(c.ctx); err != nil {
		// Capture failures become a local error string near the control,
		// never a crash of the surrounding view.
		c.setErr("Failed to start recording. Please check microphone permissions.")
		c.live.StopLive()
		return err
	}
	return nil
}

// StopRecording ends the capture. The transcript is frozen and the upload
// armed before the capture is released: the finalize callback can fire from
// inside the recorder's stop, and it must observe the pending flag.
func (c *Controller) StopRecording() {
	transcript := c.live.StopLive()

	c.mu.Lock()
	c.transcript = transcript
	c.pendingUpload = true
	c.mu.Unlock()

	c.recorder.Stop()
}

// SendText broadcasts composer content. Blank input is a no-op.
func (c *Controller) SendText(content string) error {
	return c.emitter.SendText(c.ctx, content)
}

// onFinalize runs when a stopped capture has been assembled. The pending
// flag is checked and cleared under the lock, so re-entry (double finalize,
// re-render) can never upload the same clip twice.
func (c *Controller) onFinalize(clip audio.Clip) {
	c.mu.Lock()
	if !c.pendingUpload || c.uploading {
		c.mu.Unlock()
		return
	}
	c.pendingUpload = false

	if clip.Empty() {
		// Nothing was captured: not an error, just nothing to upload.
		c.transcript = ""
		c.mu.Unlock()
		c.recorder.Clear()
		return
	}

	c.uploading = true
	transcript := c.transcript
	c.mu.Unlock()

	c.upload(clip, transcript)
}

func (c *Controller) upload(clip audio.Clip, transcript string) {
	defer func() {
		c.mu.Lock()
		c.uploading = false
		c.mu.Unlock()
	}()

	if transcript == "" && c.clips != nil {
		text, err := c.clips.Transcribe(c.ctx, clip)
		if err != nil {
			c.log.Warn().Err(err).Msg("clip transcription failed")
		} else {
			transcript = text
		}
	}

	result, err := c.uploader.UploadAudio(c.ctx, clip)
	if err != nil {
		c.log.Warn().Err(err).Msg("audio upload failed")
		c.setErr("Failed to send audio message")
		return
	}

	if err := c.emitter.SendAudio(c.ctx, result.AudioURL, transcript); err != nil {
		c.log.Warn().Err(err).Msg("emit audio message")
		c.setErr("Failed to send audio message")
		return
	}

	c.mu.Lock()
	c.transcript = ""
	c.lastErr = ""
	c.mu.Unlock()
	c.recorder.Clear()
}

// Close force-stops any live capture and transcription on teardown.
func (c *Controller) Close() {
	c.recorder.Close()
	c.live.StopLive()
}

func (c *Controller) setErr(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = msg
}
