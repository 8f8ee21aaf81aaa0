package room

import (
	"time"

	"github.com/talkgym/talkgym-client/internal/proto"
)

// Wire payloads are turned into tagged domain values here, once, at the
// boundary. Nothing downstream inspects raw shapes.

func participantFromWire(d proto.ParticipantData) Participant {
	if d.IsAI {
		return Automated(d.SocketID, d.UserID, d.UserName)
	}
	return Human(d.SocketID, d.UserID, d.UserName)
}

func messageFromWire(d proto.MessageData, kind MessageKind) Message {
	m := Message{
		ID:        d.MessageID,
		UserID:    d.UserID,
		UserName:  d.UserName,
		Content:   d.Content,
		Timestamp: time.UnixMilli(d.Timestamp),
		Kind:      kind,
	}
	if kind == MessageAudio {
		m.AudioURL = d.AudioURL
		m.Transcript = d.Transcript
		if m.Content == "" {
			m.Content = PlaceholderTranscript
		}
	}
	return m
}
