package audio

import "time"

const (
	// ClipMIMEType is the recorded codec, Opus in WebM.
	ClipMIMEType = "audio/webm;codecs=opus"
	// ClipFilename is the fixed filename used when uploading a capture.
	ClipFilename = "recording.webm"
)

// Clip is a finalized audio capture, assembled from the accumulated chunks
// when recording stops. An empty clip means "nothing to upload", not an error.
type Clip struct {
	Data     []byte
	MIMEType string
	Duration time.Duration
}

// Empty reports whether the capture produced no data.
func (c Clip) Empty() bool {
	return len(c.Data) == 0
}
