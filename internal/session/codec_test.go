package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	raw, err := Encode(MsgPlaylist, 2)
	require.NoError(t, err)
	assert.Equal(t, "playlist:2", raw)

	raw, err = Encode(MsgAdmin, "participant-1")
	require.NoError(t, err)
	assert.Equal(t, `admin:"participant-1"`, raw)

	// multiple arguments serialize as a list
	raw, err = Encode(MsgMessage, "hello", "world")
	require.NoError(t, err)
	assert.Equal(t, `message:["hello","world"]`, raw)

	_, err = Encode("not a type", 1)
	require.ErrorIs(t, err, ErrInvalidMessageType)

	_, err = Encode("with:colon", 1)
	require.ErrorIs(t, err, ErrInvalidMessageType)
}

func TestDecode(t *testing.T) {
	msgType, payload, ok := Decode("playlist:2")
	require.True(t, ok)
	assert.Equal(t, MsgPlaylist, msgType)
	assert.JSONEq(t, "2", string(payload))

	msgType, payload, ok = Decode(`admin:"participant-1"`)
	require.True(t, ok)
	assert.Equal(t, MsgAdmin, msgType)
	assert.JSONEq(t, `"participant-1"`, string(payload))

	// payloads containing colons split on the first colon only
	msgType, payload, ok = Decode(`message:"a:b:c"`)
	require.True(t, ok)
	assert.Equal(t, MsgMessage, msgType)
	assert.JSONEq(t, `"a:b:c"`, string(payload))

	for _, raw := range []string{
		"",
		"no-colon",
		":2",
		"playlist:",
		"bad type:2",
		"playlist:{not json",
	} {
		_, _, ok := Decode(raw)
		assert.False(t, ok, "expected %q to fail decoding", raw)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	raw, err := Encode(MsgPlayback, PlaybackPause)
	require.NoError(t, err)

	msgType, payload, ok := Decode(raw)
	require.True(t, ok)
	assert.Equal(t, MsgPlayback, msgType)
	assert.Equal(t, `"pause"`, string(payload))
}
