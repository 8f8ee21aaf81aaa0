package view

import (
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/talkgym/talkgym-client/internal/room"
)

// SortParticipants orders a roster for display: humans before AI, humans
// alphabetically, AI numerically by the trailing numeral in their display
// name ("AI Participant 2" after "AI Participant 1").
func SortParticipants(participants []room.Participant) []room.Participant {
	out := make([]room.Participant, len(participants))
	copy(out, participants)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsAI() != b.IsAI() {
			return !a.IsAI()
		}
		if a.IsAI() {
			return trailingNumber(a.UserName) < trailingNumber(b.UserName)
		}
		return a.UserName < b.UserName
	})
	return out
}

// trailingNumber parses the last whitespace-separated token of a name as an
// integer, zero when absent.
func trailingNumber(name string) int {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return 0
	}
	return n
}

// CountHumans returns how many roster entries are human presences.
func CountHumans(participants []room.Participant) int {
	return lo.CountBy(participants, func(p room.Participant) bool {
		return !p.IsAI()
	})
}
