package audio_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/talkgym/talkgym-client/internal/audio"
	"github.com/talkgym/talkgym-client/internal/audio/audiotest"
	"github.com/talkgym/talkgym-client/internal/log"
)

func waitClip(t *testing.T, clips <-chan audio.Clip) audio.Clip {
	t.Helper()
	select {
	case clip := <-clips:
		return clip
	case <-time.After(2 * time.Second):
		t.Fatal("finalize callback never fired")
		return audio.Clip{}
	}
}

func TestRecorderAccumulatesAndFinalizes(t *testing.T) {
	device := &audiotest.Device{}
	rec := audio.NewRecorder(device, log.Nop())
	defer rec.Close()

	clips := make(chan audio.Clip, 1)
	rec.SetOnFinalize(func(c audio.Clip) { clips <- c })

	if err := rec.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !rec.Recording() {
		t.Fatal("expected recording after start")
	}

	stream := device.Streams()[0]
	stream.Push([]byte("one-"))
	stream.Push([]byte("two"))
	rec.Stop()

	clip := waitClip(t, clips)
	if !bytes.Equal(clip.Data, []byte("one-two")) {
		t.Fatalf("unexpected clip data %q", clip.Data)
	}
	if clip.MIMEType != audio.ClipMIMEType {
		t.Fatalf("unexpected mime type %q", clip.MIMEType)
	}
	if rec.Recording() {
		t.Fatal("expected idle after stop")
	}
	if got := rec.Clip(); got == nil || !bytes.Equal(got.Data, clip.Data) {
		t.Fatalf("stored clip mismatch: %+v", got)
	}
}

func TestRecorderTapSeesEveryChunk(t *testing.T) {
	device := &audiotest.Device{}
	rec := audio.NewRecorder(device, log.Nop())
	defer rec.Close()

	var mu sync.Mutex
	var tapped [][]byte
	rec.SetTap(func(chunk []byte) {
		mu.Lock()
		tapped = append(tapped, chunk)
		mu.Unlock()
	})
	clips := make(chan audio.Clip, 1)
	rec.SetOnFinalize(func(c audio.Clip) { clips <- c })

	if err := rec.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	stream := device.Streams()[0]
	stream.Push([]byte("a"))
	stream.Push([]byte("b"))
	rec.Stop()
	waitClip(t, clips)

	mu.Lock()
	defer mu.Unlock()
	if len(tapped) != 2 || string(tapped[0]) != "a" || string(tapped[1]) != "b" {
		t.Fatalf("tap missed chunks: %q", tapped)
	}
}

func TestRecorderPermissionDenied(t *testing.T) {
	device := &audiotest.Device{OpenErr: audio.ErrPermissionDenied}
	rec := audio.NewRecorder(device, log.Nop())
	defer rec.Close()

	err := rec.Start(context.Background())
	if !errors.Is(err, audio.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if rec.Recording() {
		t.Fatal("recorder must be idle after denied start")
	}
}

func TestRecorderStopWhenIdleIsNoOp(t *testing.T) {
	rec := audio.NewRecorder(&audiotest.Device{}, log.Nop())
	defer rec.Close()

	fired := make(chan audio.Clip, 1)
	rec.SetOnFinalize(func(c audio.Clip) { fired <- c })

	rec.Stop()

	select {
	case <-fired:
		t.Fatal("idle stop must not finalize")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRecorderRestartDiscardsPreviousCapture(t *testing.T) {
	device := &audiotest.Device{}
	rec := audio.NewRecorder(device, log.Nop())
	defer rec.Close()

	clips := make(chan audio.Clip, 2)
	rec.SetOnFinalize(func(c audio.Clip) { clips <- c })

	if err := rec.Start(context.Background()); err != nil {
		t.Fatalf("first start: %v", err)
	}
	device.Streams()[0].Push([]byte("stale"))

	// Restart tears the first capture down before opening the second.
	if err := rec.Start(context.Background()); err != nil {
		t.Fatalf("second start: %v", err)
	}
	first := waitClip(t, clips)
	if string(first.Data) != "stale" {
		t.Fatalf("first capture finalized with %q", first.Data)
	}

	device.Streams()[1].Push([]byte("fresh"))
	rec.Stop()
	second := waitClip(t, clips)
	if string(second.Data) != "fresh" {
		t.Fatalf("second capture must not carry stale chunks, got %q", second.Data)
	}
}

func TestRecorderStopWhilePausedStillFinalizes(t *testing.T) {
	device := &audiotest.Device{}
	rec := audio.NewRecorder(device, log.Nop())
	defer rec.Close()

	clips := make(chan audio.Clip, 1)
	rec.SetOnFinalize(func(c audio.Clip) { clips <- c })

	if err := rec.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	stream := device.Streams()[0]
	stream.Push([]byte("before-pause"))
	if err := stream.Pause(); err != nil {
		t.Fatalf("pause: %v", err)
	}

	// Stop resumes the paused stream first so the capture still finalizes.
	rec.Stop()

	clip := waitClip(t, clips)
	if string(clip.Data) != "before-pause" {
		t.Fatalf("unexpected clip data %q", clip.Data)
	}
	if rec.Recording() {
		t.Fatal("expected idle after stop")
	}
}

func TestRecorderEmptyClipFinalizes(t *testing.T) {
	device := &audiotest.Device{}
	rec := audio.NewRecorder(device, log.Nop())
	defer rec.Close()

	clips := make(chan audio.Clip, 1)
	rec.SetOnFinalize(func(c audio.Clip) { clips <- c })

	if err := rec.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	rec.Stop()

	clip := waitClip(t, clips)
	if !clip.Empty() {
		t.Fatalf("expected empty clip, got %d bytes", len(clip.Data))
	}
}

func TestRecorderClearDropsClip(t *testing.T) {
	device := &audiotest.Device{}
	rec := audio.NewRecorder(device, log.Nop())
	defer rec.Close()

	clips := make(chan audio.Clip, 1)
	rec.SetOnFinalize(func(c audio.Clip) { clips <- c })

	if err := rec.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	device.Streams()[0].Push([]byte("x"))
	rec.Stop()
	waitClip(t, clips)

	rec.Clear()
	if rec.Clip() != nil {
		t.Fatal("clear must drop the finalized clip")
	}
}
