package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	gws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const deepgramListenURL = "wss://api.deepgram.com/v1/listen"

// DeepgramEngine streams captured audio to Deepgram's realtime recognition
// endpoint over a websocket and maps its responses to Results.
type DeepgramEngine struct {
	apiKey   string
	endpoint string
	log      *zerolog.Logger
}

// NewDeepgramEngine builds the engine. An empty API key yields an engine that
// reports itself unavailable.
func NewDeepgramEngine(apiKey string, logger *zerolog.Logger) *DeepgramEngine {
	return &DeepgramEngine{apiKey: apiKey, endpoint: deepgramListenURL, log: logger}
}

func (e *DeepgramEngine) Available() bool {
	return e.apiKey != ""
}

// Start dials the recognition endpoint and begins a session.
func (e *DeepgramEngine) Start(ctx context.Context, opts Options) (Session, error) {
	if !e.Available() {
		return nil, ErrRecognitionUnsupported
	}

	q := url.Values{}
	q.Set("model", "nova-2")
	q.Set("punctuate", "true")
	q.Set("smart_format", "true")
	if opts.Language != "" {
		q.Set("language", opts.Language)
	}
	if opts.Interim {
		q.Set("interim_results", "true")
	}

	header := http.Header{
		"Authorization": {fmt.Sprintf("Token %s", e.apiKey)},
	}
	conn, _, err := gws.DefaultDialer.DialContext(ctx, e.endpoint+"?"+q.Encode(), header)
	if err != nil {
		return nil, fmt.Errorf("%w: dial deepgram: %v", ErrRecognitionFailed, err)
	}

	s := &deepgramSession{
		conn:    conn,
		results: make(chan Result, 16),
		log:     e.log,
	}
	go s.readLoop()
	return s, nil
}

type deepgramSession struct {
	conn    *gws.Conn
	results chan Result
	log     *zerolog.Logger

	mu      sync.Mutex
	stopped bool
	err     error
}

// deepgramResponse is the subset of the listen API response we consume.
type deepgramResponse struct {
	IsFinal bool `json:"is_final"`
	Channel struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"channel"`
}

// parseResult extracts a Result from a raw response frame. The second return
// is false when the frame carries no transcript text.
func parseResult(raw []byte) (Result, bool) {
	var resp deepgramResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Result{}, false
	}
	if len(resp.Channel.Alternatives) == 0 {
		return Result{}, false
	}
	text := resp.Channel.Alternatives[0].Transcript
	if text == "" {
		return Result{}, false
	}
	return Result{Text: text, Final: resp.IsFinal}, true
}

func (s *deepgramSession) readLoop() {
	defer close(s.results)

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			if !s.stopped {
				s.err = fmt.Errorf("%w: %v", ErrRecognitionFailed, err)
			}
			s.mu.Unlock()
			return
		}
		if res, ok := parseResult(raw); ok {
			s.results <- res
		}
	}
}

// Write forwards one audio chunk to the recognition stream.
func (s *deepgramSession) Write(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrRecognitionFailed
	}
	if err := s.conn.WriteMessage(gws.BinaryMessage, chunk); err != nil {
		return fmt.Errorf("%w: write audio: %v", ErrRecognitionFailed, err)
	}
	return nil
}

func (s *deepgramSession) Results() <-chan Result {
	return s.results
}

func (s *deepgramSession) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Stop halts recognition and closes the connection. Idempotent.
func (s *deepgramSession) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	s.mu.Unlock()

	// Tell Deepgram the stream ended, then close.
	msg := gws.FormatCloseMessage(gws.CloseNormalClosure, "")
	if err := s.conn.WriteMessage(gws.CloseMessage, msg); err != nil {
		s.log.Debug().Err(err).Msg("write close to deepgram")
	}
	return s.conn.Close()
}
