package room

import "time"

// MessageKind distinguishes plain text from voice messages.
type MessageKind string

const (
	MessageText  MessageKind = "text"
	MessageAudio MessageKind = "audio"
)

// PlaceholderTranscript stands in when a voice message has no usable transcript.
const PlaceholderTranscript = "[Audio Message]"

// Message is one entry in a room's feed. Messages are immutable once created
// and appended in channel-delivery order, never reordered or removed.
type Message struct {
	ID         string
	UserID     string
	UserName   string
	Content    string
	Timestamp  time.Time
	Kind       MessageKind
	AudioURL   string
	Transcript string
}
