package room

import "github.com/samber/lo"

// ParticipantKind tags the union: a human presence on the channel or an
// automated (AI) persona attached to the session.
type ParticipantKind int

const (
	ParticipantHuman ParticipantKind = iota
	ParticipantAutomated
)

// Participant is one roster entry. The kind is decided once at the wire
// boundary; downstream code never inspects payload shapes.
type Participant struct {
	SocketID string
	UserID   string
	UserName string
	Kind     ParticipantKind
}

// IsAI reports whether this entry is an automated persona.
func (p Participant) IsAI() bool {
	return p.Kind == ParticipantAutomated
}

// Key returns the de-duplication key: the user id for humans, a name-derived
// key for automated personas (their ids may be placeholders early on).
func (p Participant) Key() string {
	if p.IsAI() {
		return "ai-" + p.UserName
	}
	return p.UserID
}

// Human constructs a human participant.
func Human(socketID, userID, userName string) Participant {
	return Participant{SocketID: socketID, UserID: userID, UserName: userName, Kind: ParticipantHuman}
}

// Automated constructs an AI participant.
func Automated(socketID, userID, userName string) Participant {
	return Participant{SocketID: socketID, UserID: userID, UserName: userName, Kind: ParticipantAutomated}
}

// Roster is the de-duplicated participant set for one room visit.
// Invariants: at most one entry per human user id, at most one entry per
// distinct automated display name. Insertion order is preserved.
type Roster struct {
	entries []Participant
}

// Add inserts a participant from a user-joined event. A human whose user id
// is already present is ignored, which absorbs reconnect races. Returns true
// if the roster changed.
func (r *Roster) Add(p Participant) bool {
	if !p.IsAI() {
		if lo.SomeBy(r.entries, func(e Participant) bool {
			return !e.IsAI() && e.UserID == p.UserID
		}) {
			return false
		}
	}
	r.entries = append(r.entries, p)
	r.dedupe()
	return true
}

// RemoveBySocket drops the entry for a departing connection. Absence is not
// an error.
func (r *Roster) RemoveBySocket(socketID string) {
	r.entries = lo.Reject(r.entries, func(e Participant, _ int) bool {
		return e.SocketID == socketID
	})
}

// ReplaceHumans applies a roster snapshot: human entries are replaced with the
// snapshot's humans while automated entries stay untouched. The AI roster is
// session-scoped and independent of the presence channel.
func (r *Roster) ReplaceHumans(humans []Participant) {
	kept := lo.Filter(r.entries, func(e Participant, _ int) bool {
		return e.IsAI()
	})
	incoming := lo.Filter(humans, func(e Participant, _ int) bool {
		return !e.IsAI()
	})
	r.entries = append(incoming, kept...)
	r.dedupe()
}

// SeedAutomated installs session-scoped AI personas, keeping any humans
// already tracked from the presence channel.
func (r *Roster) SeedAutomated(bots []Participant) {
	humans := lo.Filter(r.entries, func(e Participant, _ int) bool {
		return !e.IsAI()
	})
	r.entries = append(humans, bots...)
	r.dedupe()
}

// RenameAutomated reconciles an AI persona's display name once the backend
// assigns a real one (the initial name may be a generic placeholder). The
// match is by user id; the roster is re-deduplicated afterwards.
func (r *Roster) RenameAutomated(userID, userName string) {
	changed := false
	for i, e := range r.entries {
		if e.IsAI() && e.UserID == userID {
			r.entries[i].UserName = userName
			changed = true
		}
	}
	if changed {
		r.dedupe()
	}
}

// List returns a copy of the roster in insertion order.
func (r *Roster) List() []Participant {
	out := make([]Participant, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of tracked participants.
func (r *Roster) Len() int {
	return len(r.entries)
}

// dedupe rebuilds the entry list keeping the last entry per human user id and
// the first entry per automated display name, preserving insertion order.
func (r *Roster) dedupe() {
	humanLast := make(map[string]Participant)
	for _, e := range r.entries {
		if !e.IsAI() {
			humanLast[e.UserID] = e
		}
	}

	seen := make(map[string]struct{}, len(r.entries))
	out := make([]Participant, 0, len(r.entries))
	for _, e := range r.entries {
		key := e.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if !e.IsAI() {
			e = humanLast[e.UserID]
		}
		out = append(out, e)
	}
	r.entries = out
}
