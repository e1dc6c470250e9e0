package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParticipantKey(t *testing.T) {
	p := Participant{ID: "u1", Type: ParticipantTypeUser}
	assert.Equal(t, "user:u1", p.Key())

	parsed, ok := ParseKey("seller:s1")
	assert.True(t, ok)
	assert.Equal(t, Participant{ID: "s1", Type: ParticipantTypeSeller}, parsed)

	_, ok = ParseKey("admin:x")
	assert.False(t, ok)
	_, ok = ParseKey("user:")
	assert.False(t, ok)
	_, ok = ParseKey("garbage")
	assert.False(t, ok)
}

func TestPairKeyIsOrderIndependent(t *testing.T) {
	buyer := Participant{ID: "u1", Type: ParticipantTypeUser}
	seller := Participant{ID: "s1", Type: ParticipantTypeSeller}

	assert.Equal(t, PairKey(buyer, seller), PairKey(seller, buyer))
	assert.NotEqual(t, PairKey(buyer, seller), PairKey(buyer, Participant{ID: "s2", Type: ParticipantTypeSeller}))
}

// The same account id can exist as both a user and a seller; the typed
// keys keep those pairs distinct.
func TestPairKeyDistinguishesTypes(t *testing.T) {
	asUser := Participant{ID: "x", Type: ParticipantTypeUser}
	asSeller := Participant{ID: "x", Type: ParticipantTypeSeller}
	other := Participant{ID: "y", Type: ParticipantTypeUser}

	assert.NotEqual(t, PairKey(asUser, other), PairKey(asSeller, other))
	assert.False(t, asUser.Equal(asSeller))
}

func TestConversationOther(t *testing.T) {
	buyer := Participant{ID: "u1", Type: ParticipantTypeUser}
	seller := Participant{ID: "s1", Type: ParticipantTypeSeller}
	c := &Conversation{ParticipantA: buyer, ParticipantB: seller}

	other, ok := c.Other(buyer)
	assert.True(t, ok)
	assert.Equal(t, seller, other)

	_, ok = c.Other(Participant{ID: "u2", Type: ParticipantTypeUser})
	assert.False(t, ok)
}
