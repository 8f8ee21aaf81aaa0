// Package transcribetest provides a scriptable recognition engine for tests.
package transcribetest

import (
	"context"
	"sync"

	"github.com/talkgym/talkgym-client/internal/transcribe"
)

// Engine is a deterministic recognition engine. Tests push Results into the
// sessions it opens.
type Engine struct {
	// Unavailable makes the engine report the capability as absent.
	Unavailable bool
	// StartErr, when set, is returned by Start.
	StartErr error

	mu       sync.Mutex
	sessions []*Session
}

func (e *Engine) Available() bool {
	return !e.Unavailable
}

func (e *Engine) Start(_ context.Context, _ transcribe.Options) (transcribe.Session, error) {
	if e.Unavailable {
		return nil, transcribe.ErrRecognitionUnsupported
	}
	if e.StartErr != nil {
		return nil, e.StartErr
	}
	s := &Session{results: make(chan transcribe.Result, 64)}
	e.mu.Lock()
	e.sessions = append(e.sessions, s)
	e.mu.Unlock()
	return s, nil
}

// Sessions returns every session opened so far.
func (e *Engine) Sessions() []*Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Session, len(e.sessions))
	copy(out, e.sessions)
	return out
}

// Session is a scripted recognition session.
type Session struct {
	mu      sync.Mutex
	stopped bool
	failErr error
	written [][]byte
	results chan transcribe.Result
}

// Emit delivers a recognition result to the consumer.
func (s *Session) Emit(r transcribe.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.results <- r
}

// Fail terminates the session with a recognition error.
func (s *Session) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	s.failErr = err
	close(s.results)
}

// Written returns every chunk fed to the session.
func (s *Session) Written() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.written))
	copy(out, s.written)
	return out
}

func (s *Session) Write(chunk []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return transcribe.ErrRecognitionFailed
	}
	s.written = append(s.written, chunk)
	return nil
}

func (s *Session) Results() <-chan transcribe.Result {
	return s.results
}

func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failErr
}

func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil
	}
	s.stopped = true
	close(s.results)
	return nil
}
