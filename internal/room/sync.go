package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/talkgym/talkgym-client/internal/proto"
)

// Phase tracks the synchronizer's lifecycle within one room visit.
type Phase int

const (
	PhaseConnecting Phase = iota
	PhaseJoined
	PhaseLeft
)

var ErrNotJoined = errors.New("room not joined")

// Identity is the local user as announced to the channel.
type Identity struct {
	UserID   string
	UserName string
}

// Conn abstracts the realtime channel so tests can drive the synchronizer
// without a network.
type Conn interface {
	ReadEnvelope(ctx context.Context) (proto.Envelope, error)
	WriteEnvelope(ctx context.Context, env proto.Envelope) error
	Close() error
}

type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) ReadEnvelope(ctx context.Context) (proto.Envelope, error) {
	var env proto.Envelope
	err := wsjson.Read(ctx, c.conn, &env)
	return env, err
}

func (c *wsConn) WriteEnvelope(ctx context.Context, env proto.Envelope) error {
	return wsjson.Write(ctx, c.conn, env)
}

func (c *wsConn) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "leaving")
}

// Dial opens a websocket connection to the realtime channel.
func Dial(ctx context.Context, socketURL string) (Conn, error) {
	conn, _, err := websocket.Dial(ctx, socketURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial socket: %w", err)
	}
	return &wsConn{conn: conn}, nil
}

// Synchronizer joins a room on the realtime channel, merges incoming events
// into local State, and emits outgoing message events. One synchronizer
// serves one room visit: Connecting -> Joined -> (events)* -> Left.
type Synchronizer struct {
	conn   Conn
	state  *State
	self   Identity
	roomID string
	log    *zerolog.Logger

	mu      sync.Mutex
	phase   Phase
	updates chan struct{}
}

// NewSynchronizer wires a connection to fresh room state.
func NewSynchronizer(conn Conn, state *State, self Identity, roomID string, logger *zerolog.Logger) *Synchronizer {
	return &Synchronizer{
		conn:    conn,
		state:   state,
		self:    self,
		roomID:  roomID,
		log:     logger,
		phase:   PhaseConnecting,
		updates: make(chan struct{}, 1),
	}
}

// State exposes the room state owned by this visit.
func (s *Synchronizer) State() *State {
	return s.state
}

// Phase returns the current lifecycle phase.
func (s *Synchronizer) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Updates signals after each applied incoming event. Coalescing channel:
// a slow reader sees at least one signal per burst.
func (s *Synchronizer) Updates() <-chan struct{} {
	return s.updates
}

// Join announces identity to the channel and enters the Joined phase.
func (s *Synchronizer) Join(ctx context.Context) error {
	env, err := proto.Wrap(proto.EventJoinRoom, proto.JoinRoomData{
		RoomID:   s.roomID,
		UserID:   s.self.UserID,
		UserName: s.self.UserName,
	})
	if err != nil {
		return fmt.Errorf("marshal join: %w", err)
	}
	if err := s.conn.WriteEnvelope(ctx, env); err != nil {
		return fmt.Errorf("announce join: %w", err)
	}

	s.mu.Lock()
	s.phase = PhaseJoined
	s.mu.Unlock()

	s.log.Info().Str("room", s.roomID).Str("user", s.self.UserName).Msg("joined room")
	return nil
}

// Run reads channel events until the context is cancelled or the connection
// drops, applying each event to state in arrival order.
func (s *Synchronizer) Run(ctx context.Context) error {
	for {
		env, err := s.conn.ReadEnvelope(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			return fmt.Errorf("read event: %w", err)
		}
		if applied := s.apply(env); applied {
			s.notify()
		}
	}
}

// apply merges one incoming event into state. Unknown events are logged and
// skipped; a malformed payload never tears down the visit.
func (s *Synchronizer) apply(env proto.Envelope) bool {
	switch env.Event {
	case proto.EventUserJoined:
		var d proto.UserJoinedData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			s.log.Warn().Err(err).Msg("bad user-joined payload")
			return false
		}
		return s.state.AddParticipant(Human(d.SocketID, d.UserID, d.UserName))

	case proto.EventUserLeft:
		var d proto.UserLeftData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			// Some channel versions deliver a bare socket id string.
			var socketID string
			if err2 := json.Unmarshal(env.Data, &socketID); err2 != nil {
				s.log.Warn().Err(err).Msg("bad user-left payload")
				return false
			}
			d.SocketID = socketID
		}
		s.state.RemoveParticipant(d.SocketID)
		return true

	case proto.EventRoomParticipants:
		var snapshot []proto.ParticipantData
		if err := json.Unmarshal(env.Data, &snapshot); err != nil {
			s.log.Warn().Err(err).Msg("bad room-participants payload")
			return false
		}
		humans := make([]Participant, 0, len(snapshot))
		for _, d := range snapshot {
			humans = append(humans, participantFromWire(d))
		}
		s.state.ApplySnapshot(humans)
		return true

	case proto.EventTextMessage, proto.EventAudioMessage:
		var d proto.MessageData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			s.log.Warn().Err(err).Str("event", env.Event).Msg("bad message payload")
			return false
		}
		kind := MessageText
		if env.Event == proto.EventAudioMessage {
			kind = MessageAudio
		}
		appended := s.state.AppendMessage(messageFromWire(d, kind))
		if d.IsAI {
			s.state.RenameAutomated(d.UserID, d.UserName)
		}
		return appended || d.IsAI

	default:
		s.log.Debug().Str("event", env.Event).Msg("ignoring unknown event")
		return false
	}
}

// SendText emits a text message event. Blank or whitespace-only content is a
// no-op, not an error.
func (s *Synchronizer) SendText(ctx context.Context, content string) error {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	return s.send(ctx, proto.EventTextMessage, proto.MessageData{
		MessageID: uuid.NewString(),
		RoomID:    s.roomID,
		UserID:    s.self.UserID,
		UserName:  s.self.UserName,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
	})
}

// SendAudio emits an audio message event carrying the playable URL and the
// transcript captured during live transcription.
func (s *Synchronizer) SendAudio(ctx context.Context, audioURL, transcript string) error {
	if transcript == "" {
		transcript = PlaceholderTranscript
	}
	return s.send(ctx, proto.EventAudioMessage, proto.MessageData{
		MessageID:  uuid.NewString(),
		RoomID:     s.roomID,
		UserID:     s.self.UserID,
		UserName:   s.self.UserName,
		Content:    transcript,
		Timestamp:  time.Now().UnixMilli(),
		AudioURL:   audioURL,
		Transcript: transcript,
	})
}

func (s *Synchronizer) send(ctx context.Context, event string, data proto.MessageData) error {
	if s.Phase() != PhaseJoined {
		return ErrNotJoined
	}
	env, err := proto.Wrap(event, data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event, err)
	}
	if err := s.conn.WriteEnvelope(ctx, env); err != nil {
		return fmt.Errorf("emit %s: %w", event, err)
	}
	return nil
}

// Leave tears down the visit and closes the connection. Idempotent.
func (s *Synchronizer) Leave() {
	s.mu.Lock()
	if s.phase == PhaseLeft {
		s.mu.Unlock()
		return
	}
	s.phase = PhaseLeft
	s.mu.Unlock()

	if err := s.conn.Close(); err != nil {
		s.log.Debug().Err(err).Msg("close socket")
	}
	s.log.Info().Str("room", s.roomID).Msg("left room")
}

func (s *Synchronizer) notify() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}
