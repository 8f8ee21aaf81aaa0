package view

import (
	"fmt"
	"io"

	"github.com/talkgym/talkgym-client/internal/room"
)

// Console renders the room feed and roster as plain text for the interactive
// terminal session.
type Console struct {
	out    io.Writer
	selfID string
}

// NewConsole builds a renderer. selfID marks the local user's own messages.
func NewConsole(out io.Writer, selfID string) *Console {
	return &Console{out: out, selfID: selfID}
}

// RenderMessage prints one feed entry. Audio messages show the playable URL
// and the transcript inline.
func (c *Console) RenderMessage(m room.Message) {
	marker := " "
	if m.UserID == c.selfID {
		marker = "*"
	}

	ts := m.Timestamp.Format("15:04:05")
	switch m.Kind {
	case room.MessageAudio:
		fmt.Fprintf(c.out, "%s[%s] %s: [voice] %s\n", marker, ts, m.UserName, m.AudioURL)
		if m.Transcript != "" && m.Transcript != room.PlaceholderTranscript {
			fmt.Fprintf(c.out, "          %q\n", m.Transcript)
		}
	default:
		fmt.Fprintf(c.out, "%s[%s] %s: %s\n", marker, ts, m.UserName, m.Content)
	}
}

// RenderRoster prints the sorted participant list.
func (c *Console) RenderRoster(participants []room.Participant) {
	sorted := SortParticipants(participants)
	fmt.Fprintf(c.out, "Participants (%d):\n", len(sorted))
	for _, p := range sorted {
		tag := "human"
		if p.IsAI() {
			tag = "ai"
		}
		fmt.Fprintf(c.out, "  [%s] %s\n", tag, p.UserName)
	}
}

// RenderTranscript prints the live transcript line shown while recording.
func (c *Console) RenderTranscript(text string) {
	if text == "" {
		return
	}
	fmt.Fprintf(c.out, "(live) %q\n", text)
}

// RenderError prints a banner-style error message.
func (c *Console) RenderError(msg string) {
	if msg == "" {
		return
	}
	fmt.Fprintf(c.out, "! %s\n", msg)
}
