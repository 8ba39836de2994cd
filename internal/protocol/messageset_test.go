package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeMessageSetRoundTrip(t *testing.T) {
	messages := []Message{
		{Offset: 0, Timestamp: 1000, Key: []byte("k1"), Value: []byte("v1")},
		{Offset: 1, Timestamp: 1001, Key: nil, Value: []byte("v2")},
		{Offset: 2, Timestamp: 1002, Key: []byte("k3"), Value: []byte("")},
	}

	encoded := EncodeMessageSet(messages)
	decoded := DecodeMessageSet(encoded)

	require.Len(t, decoded, len(messages))
	for i, m := range messages {
		assert.Equal(t, m.Timestamp, decoded[i].Timestamp)
		assert.Equal(t, m.Key, decoded[i].Key)
		assert.Equal(t, m.Value, decoded[i].Value)
	}
}

func TestDecodeMessageSetDropsPartialTrailingMessage(t *testing.T) {
	full := EncodeMessageSet([]Message{
		{Offset: 0, Timestamp: 1, Key: nil, Value: []byte("complete")},
	})
	truncated := append(full, []byte{0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 50}...) // header claims 50 more bytes that aren't there

	decoded := DecodeMessageSet(truncated)
	require.Len(t, decoded, 1)
	assert.Equal(t, []byte("complete"), decoded[0].Value)
}

func TestDecodeMessageSetEmpty(t *testing.T) {
	assert.Empty(t, DecodeMessageSet(nil))
	assert.Empty(t, DecodeMessageSet([]byte{}))
}

func TestDecodeMessageSetRejectsShortHeader(t *testing.T) {
	assert.Empty(t, DecodeMessageSet([]byte{1, 2, 3}))
}
