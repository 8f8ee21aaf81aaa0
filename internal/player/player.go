// Package player plays remote audio URLs through an injected output sink
// with transport controls.
package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/rs/zerolog"
)

var ErrPlaybackFailed = errors.New("audio playback failed")

// Sink is the device speaker abstraction. Start prepares the output for the
// given MIME type; Write pushes one chunk of encoded audio; Close releases
// the output.
type Sink interface {
	Start(mimeType string) error
	Write(chunk []byte) error
	Close() error
}

// Status is the transport state.
type Status int

const (
	StatusIdle Status = iota
	StatusPlaying
	StatusPaused
	StatusStopped
)

const writeChunkSize = 4096

// Player fetches a remote audio URL and streams it to a sink. One player
// plays one clip at a time; Load resets any previous playback.
type Player struct {
	httpc *http.Client
	sink  Sink
	log   *zerolog.Logger

	mu     sync.Mutex
	cond   *sync.Cond
	data   []byte
	mime   string
	offset int
	status Status

	// OnProgress, when set, is called with (played, total) byte counts as
	// playback advances.
	OnProgress func(played, total int)
}

// New builds a player over the given sink.
func New(sink Sink, logger *zerolog.Logger) *Player {
	p := &Player{
		httpc: &http.Client{},
		sink:  sink,
		log:   logger,
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Load fetches the clip behind the URL and arms the transport.
func (p *Player) Load(ctx context.Context, audioURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPlaybackFailed, err)
	}
	resp, err := p.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPlaybackFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: status %d", ErrPlaybackFailed, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPlaybackFailed, err)
	}

	p.mu.Lock()
	p.data = data
	p.mime = resp.Header.Get("Content-Type")
	p.offset = 0
	p.status = StatusIdle
	p.mu.Unlock()

	p.log.Debug().Str("url", audioURL).Int("bytes", len(data)).Msg("audio loaded")
	return nil
}

// Play streams the loaded clip to the sink, blocking until the clip ends or
// is stopped. Pause suspends the pump; Resume continues it.
func (p *Player) Play(ctx context.Context) error {
	p.mu.Lock()
	if len(p.data) == 0 {
		p.mu.Unlock()
		return fmt.Errorf("%w: nothing loaded", ErrPlaybackFailed)
	}
	p.status = StatusPlaying
	mime := p.mime
	p.mu.Unlock()

	if err := p.sink.Start(mime); err != nil {
		return fmt.Errorf("%w: %v", ErrPlaybackFailed, err)
	}
	defer p.sink.Close()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		p.mu.Lock()
		for p.status == StatusPaused {
			p.cond.Wait()
		}
		if p.status == StatusStopped {
			p.mu.Unlock()
			return nil
		}
		if p.offset >= len(p.data) {
			p.status = StatusIdle
			p.mu.Unlock()
			return nil
		}
		end := p.offset + writeChunkSize
		if end > len(p.data) {
			end = len(p.data)
		}
		chunk := p.data[p.offset:end]
		p.offset = end
		played, total := p.offset, len(p.data)
		progress := p.OnProgress
		p.mu.Unlock()

		if err := p.sink.Write(chunk); err != nil {
			return fmt.Errorf("%w: %v", ErrPlaybackFailed, err)
		}
		if progress != nil {
			progress(played, total)
		}
	}
}

// Pause suspends playback; a later Resume continues from the same position.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status == StatusPlaying {
		p.status = StatusPaused
	}
}

// Resume continues paused playback.
func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status == StatusPaused {
		p.status = StatusPlaying
		p.cond.Broadcast()
	}
}

// Stop halts playback and rewinds to the start.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = StatusStopped
	p.offset = 0
	p.cond.Broadcast()
}

// Status returns the current transport state.
func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}
