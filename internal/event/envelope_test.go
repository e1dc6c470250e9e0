package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andriel300/tec-shop-sub006/pkg/errors"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	signal := TypingSignal{
		ConversationID: "conv-1",
		ParticipantID:  "user-1",
		IsTyping:       true,
	}

	env, err := Encode(TypeTyping, MaxVersion(TypeTyping), signal)
	require.NoError(t, err)
	assert.Equal(t, TypeTyping, env.Type)
	assert.Equal(t, 1, env.Version)

	raw, err := env.Bytes()
	require.NoError(t, err)

	parsed, err := ParseEnvelope(raw)
	require.NoError(t, err)

	var decoded TypingSignal
	require.NoError(t, Decode(parsed, &decoded))
	assert.Equal(t, signal, decoded)
}

func TestDecodeRejectsNewerVersion(t *testing.T) {
	env, err := Encode(TypeNewMessage, MaxVersion(TypeNewMessage)+1, map[string]string{"id": "m1"})
	require.NoError(t, err)

	var out map[string]string
	err = Decode(env, &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "UNSUPPORTED_VERSION"))
}

func TestDecodeRejectsUnknownType(t *testing.T) {
	env := Envelope{Type: "SOMETHING_ELSE", Version: 1, Payload: []byte(`{}`)}

	var out map[string]string
	err := Decode(env, &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))
}

func TestParseEnvelopeMalformed(t *testing.T) {
	_, err := ParseEnvelope([]byte("not json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))
}

func TestDecodeAcceptsOlderVersion(t *testing.T) {
	env, err := Encode(TypeMessageSeen, 1, SeenMarker{ConversationID: "conv-1", ParticipantID: "user-1"})
	require.NoError(t, err)

	var out SeenMarker
	require.NoError(t, Decode(env, &out))
	assert.Equal(t, "conv-1", out.ConversationID)
}
