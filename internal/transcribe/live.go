package transcribe

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Live accumulates speech-to-text output during an active recording. The
// observable transcript is the finalized text concatenated with the current
// interim suffix; once a segment finalizes the transcript never regresses to
// a shorter value.
type Live struct {
	engine Engine
	log    *zerolog.Logger

	mu        sync.Mutex
	session   Session
	active    bool
	final     string
	interim   string
	lastFinal string
	done      chan struct{}
}

// NewLive builds a live transcriber over the given recognition engine.
func NewLive(engine Engine, logger *zerolog.Logger) *Live {
	return &Live{engine: engine, log: logger}
}

// StartLive begins continuous, interim-enabled recognition and resets the
// accumulated transcript. When recognition is unsupported this is a silent
// no-op: a capability gap, not an error.
func (l *Live) StartLive(ctx context.Context, language string) {
	if !l.engine.Available() {
		l.log.Debug().Msg("speech recognition unavailable, live transcription disabled")
		return
	}

	l.stopSession()

	session, err := l.engine.Start(ctx, Options{Language: language, Interim: true})
	if err != nil {
		l.log.Warn().Err(err).Msg("start live recognition")
		return
	}

	l.mu.Lock()
	l.session = session
	l.active = true
	l.final = ""
	l.interim = ""
	l.done = make(chan struct{})
	done := l.done
	l.mu.Unlock()

	go l.consume(session, done)
}

// consume folds recognition results into the running transcript until the
// session's result channel closes.
func (l *Live) consume(session Session, done chan struct{}) {
	defer close(done)

	for res := range session.Results() {
		l.mu.Lock()
		if res.Final {
			l.final += res.Text
			l.interim = ""
		} else {
			l.interim = res.Text
		}
		l.mu.Unlock()
	}

	if err := session.Err(); err != nil {
		// Engine fault: the transcript stops updating, recording continues.
		l.log.Warn().Err(err).Msg("live recognition ended with error")
	}

	l.mu.Lock()
	l.active = false
	l.mu.Unlock()
}

// Feed forwards one captured audio chunk to the recognition session. Chunks
// arriving while no session is active are dropped.
func (l *Live) Feed(chunk []byte) {
	l.mu.Lock()
	session := l.session
	active := l.active
	l.mu.Unlock()

	if !active || session == nil {
		return
	}
	if err := session.Write(chunk); err != nil {
		l.log.Debug().Err(err).Msg("feed recognition chunk")
	}
}

// Current returns the observable transcript: finalized text plus the interim
// suffix.
func (l *Live) Current() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.final + l.interim
}

// Transcribing reports whether a recognition session is running.
func (l *Live) Transcribing() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// StopLive halts recognition and returns the accumulated final transcript,
// discarding interim text. Idempotent: when no session is active it returns
// the last known final transcript. Internal state is cleared so a later
// StartLive starts fresh.
func (l *Live) StopLive() string {
	l.mu.Lock()
	session := l.session
	done := l.done
	l.mu.Unlock()

	if session == nil {
		l.mu.Lock()
		defer l.mu.Unlock()
		return l.lastFinal
	}

	if err := session.Stop(); err != nil {
		l.log.Debug().Err(err).Msg("stop recognition session")
	}
	if done != nil {
		<-done
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	final := l.final
	l.lastFinal = final
	l.session = nil
	l.final = ""
	l.interim = ""
	l.done = nil
	return final
}

// stopSession tears down any running session without touching lastFinal,
// used when a new StartLive preempts an old run.
func (l *Live) stopSession() {
	l.mu.Lock()
	session := l.session
	done := l.done
	l.session = nil
	l.active = false
	l.mu.Unlock()

	if session != nil {
		_ = session.Stop()
	}
	if done != nil {
		<-done
	}
}
