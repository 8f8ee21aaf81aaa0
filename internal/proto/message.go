package proto

import "encoding/json"

// Envelope is the wire frame for the realtime channel, both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

const (
	// Client -> server
	EventJoinRoom     = "join-room"
	EventTextMessage  = "text-message"
	EventAudioMessage = "audio-message"

	// Server -> client
	EventUserJoined       = "user-joined"
	EventUserLeft         = "user-left"
	EventRoomParticipants = "room-participants"
)

// JoinRoomData announces identity when entering a room.
type JoinRoomData struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

// MessageData carries a chat message. Text messages leave the audio fields
// empty; audio messages carry the playable URL plus the live transcript.
type MessageData struct {
	MessageID  string `json:"messageId,omitempty"`
	RoomID     string `json:"roomId,omitempty"`
	UserID     string `json:"userId"`
	UserName   string `json:"userName"`
	Content    string `json:"content"`
	Timestamp  int64  `json:"timestamp"`
	IsAI       bool   `json:"isAI,omitempty"`
	AudioURL   string `json:"audioUrl,omitempty"`
	Transcript string `json:"transcript,omitempty"`
}

// UserJoinedData notifies that a user attached to the room.
type UserJoinedData struct {
	SocketID string `json:"socketId"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

// UserLeftData identifies the departing connection.
type UserLeftData struct {
	SocketID string `json:"socketId"`
}

// ParticipantData is one roster entry in a room-participants snapshot.
type ParticipantData struct {
	SocketID string `json:"socketId"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	IsAI     bool   `json:"isAI,omitempty"`
}

// Wrap marshals a payload into an envelope for sending.
func Wrap(event string, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: event, Data: raw}, nil
}
