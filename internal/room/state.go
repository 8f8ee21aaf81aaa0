package room

import "sync"

// State is the in-memory room state for one visit: the ordered message feed
// plus the participant roster. It is rebuilt per visit and discarded on
// navigation away. Safe for concurrent access; the synchronizer's read loop
// writes, views read snapshots.
type State struct {
	mu       sync.RWMutex
	messages []Message
	roster   Roster
	seen     map[string]struct{}
}

// NewState returns empty room state.
func NewState() *State {
	return &State{seen: make(map[string]struct{})}
}

// AppendMessage appends a message in arrival order. A message whose id was
// already appended is dropped, so channel redelivery after a reconnect cannot
// duplicate feed entries. Returns true if the feed changed.
func (s *State) AppendMessage(m Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID != "" {
		if _, dup := s.seen[m.ID]; dup {
			return false
		}
		s.seen[m.ID] = struct{}{}
	}
	s.messages = append(s.messages, m)
	return true
}

// Messages returns a copy of the feed in arrival order.
func (s *State) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Participants returns a copy of the current roster.
func (s *State) Participants() []Participant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roster.List()
}

// AddParticipant applies a user-joined event.
func (s *State) AddParticipant(p Participant) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.Add(p)
}

// RemoveParticipant applies a user-left event.
func (s *State) RemoveParticipant(socketID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roster.RemoveBySocket(socketID)
}

// ApplySnapshot applies a room-participants snapshot.
func (s *State) ApplySnapshot(humans []Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roster.ReplaceHumans(humans)
}

// SeedAutomated installs the session's AI personas.
func (s *State) SeedAutomated(bots []Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roster.SeedAutomated(bots)
}

// RenameAutomated reconciles an AI persona name from a message event.
func (s *State) RenameAutomated(userID, userName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roster.RenameAutomated(userID, userName)
}
