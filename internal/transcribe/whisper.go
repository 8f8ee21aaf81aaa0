package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/talkgym/talkgym-client/internal/audio"
)

// clipDeadlineSlack is added to the clip duration when bounding a one-shot
// transcription, mirroring the live path's one-second stop buffer.
const clipDeadlineSlack = time.Second

// minClipDeadline keeps very short clips from starving the HTTP round trip.
const minClipDeadline = 15 * time.Second

// ClipTranscriber transcribes a pre-recorded clip in one shot through the
// Whisper API. This is the fallback path; the live-record flow uses Live.
type ClipTranscriber struct {
	client *openai.Client
	log    *zerolog.Logger
}

// NewClipTranscriber builds the one-shot transcriber. Returns nil when no API
// key is configured; callers treat nil as the capability being absent.
func NewClipTranscriber(apiKey string, logger *zerolog.Logger) *ClipTranscriber {
	if apiKey == "" {
		return nil
	}
	return &ClipTranscriber{client: openai.NewClient(apiKey), log: logger}
}

// Transcribe resolves with the clip's transcript or fails with a recognition
// error. The call is bounded by the clip's playback duration plus one second.
func (t *ClipTranscriber) Transcribe(ctx context.Context, clip audio.Clip) (string, error) {
	if clip.Empty() {
		return "", nil
	}

	deadline := clip.Duration + clipDeadlineSlack
	if deadline < minClipDeadline {
		deadline = minClipDeadline
	}
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: audio.ClipFilename,
		Reader:   bytes.NewReader(clip.Data),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRecognitionFailed, err)
	}

	t.log.Debug().Int("chars", len(resp.Text)).Msg("clip transcribed")
	return resp.Text, nil
}
