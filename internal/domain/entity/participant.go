package entity

import (
	"sort"
	"strings"
)

type ParticipantType string

const (
	ParticipantTypeUser   ParticipantType = "user"
	ParticipantTypeSeller ParticipantType = "seller"
)

// Participant identifies one side of a conversation. Participants have no
// lifecycle of their own; identity is the (id, type) pair.
type Participant struct {
	ID   string          `json:"id" firestore:"id"`
	Type ParticipantType `json:"type" firestore:"type"`
}

// Key returns the canonical "type:id" form used for unread counters,
// seen marks and presence lookups.
func (p Participant) Key() string {
	return string(p.Type) + ":" + p.ID
}

func (p Participant) Equal(other Participant) bool {
	return p.ID == other.ID && p.Type == other.Type
}

// ParseKey is the inverse of Key. The second return value is false when
// the input is not a well-formed "type:id" key.
func ParseKey(key string) (Participant, bool) {
	typ, id, ok := strings.Cut(key, ":")
	if !ok || id == "" {
		return Participant{}, false
	}
	switch ParticipantType(typ) {
	case ParticipantTypeUser, ParticipantTypeSeller:
		return Participant{ID: id, Type: ParticipantType(typ)}, true
	}
	return Participant{}, false
}

// PairKey returns a canonical key for the unordered participant pair, so
// that at most one conversation can exist per pair regardless of who
// initiated it.
func PairKey(a, b Participant) string {
	keys := []string{a.Key(), b.Key()}
	sort.Strings(keys)
	return keys[0] + "|" + keys[1]
}
