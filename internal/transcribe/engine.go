package transcribe

import (
	"context"
	"errors"
)

var (
	// ErrRecognitionUnsupported marks a capability gap, not a fault. Callers
	// degrade silently to no transcript.
	ErrRecognitionUnsupported = errors.New("speech recognition unsupported")
	// ErrRecognitionFailed is a recognition engine fault. Recording continues
	// but the transcript stops updating.
	ErrRecognitionFailed = errors.New("speech recognition failed")
)

// Result is one recognition update. Final results are appended to the running
// transcript; non-final results replace the interim suffix.
type Result struct {
	Text  string
	Final bool
}

// Session is one active recognition run. Write feeds it captured audio;
// Results delivers updates until the session stops or fails, then closes.
type Session interface {
	Write(chunk []byte) error
	Results() <-chan Result
	Err() error
	Stop() error
}

// Options configure a recognition run.
type Options struct {
	Language string
	Interim  bool
}

// Engine is the injected capability provider for speech recognition. An
// unavailable engine is not an error condition; the live transcriber simply
// no-ops.
type Engine interface {
	Available() bool
	Start(ctx context.Context, opts Options) (Session, error)
}

// Unavailable returns an engine representing the absent-capability variant.
func Unavailable() Engine {
	return unavailableEngine{}
}

type unavailableEngine struct{}

func (unavailableEngine) Available() bool { return false }

func (unavailableEngine) Start(context.Context, Options) (Session, error) {
	return nil, ErrRecognitionUnsupported
}
