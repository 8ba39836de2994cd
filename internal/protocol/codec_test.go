package protocol

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoderDecoderPrimitivesRoundTrip(t *testing.T) {
	e := NewEncoder()
	e.WriteInt8(-5)
	e.WriteInt16(1234)
	e.WriteInt32(-98765)
	e.WriteInt64(1 << 40)
	e.WriteString("hello")
	e.WriteBytes([]byte("payload"))
	e.WriteBytes(nil)
	e.WriteBool(true)

	d := NewDecoder(bytes.NewReader(e.Bytes()))

	i8, err := d.ReadInt8()
	require.NoError(t, err)
	assert.EqualValues(t, -5, i8)

	i16, err := d.ReadInt16()
	require.NoError(t, err)
	assert.EqualValues(t, 1234, i16)

	i32, err := d.ReadInt32()
	require.NoError(t, err)
	assert.EqualValues(t, -98765, i32)

	i64, err := d.ReadInt64()
	require.NoError(t, err)
	assert.EqualValues(t, 1<<40, i64)

	s, err := d.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	b, err := d.ReadBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), b)

	nilBytes, err := d.ReadBytes()
	require.NoError(t, err)
	assert.Nil(t, nilBytes)

	boolVal, err := d.ReadBool()
	require.NoError(t, err)
	assert.True(t, boolVal)
}

func TestWriteReadHeaderNonFlexible(t *testing.T) {
	e := NewEncoder()
	e.WriteInt16(APIKeyMetadata)
	e.WriteInt16(1)
	e.WriteInt32(42)
	e.WriteString("test-client")

	d := NewDecoder(bytes.NewReader(e.Bytes()))
	h, err := d.ReadHeader()
	require.NoError(t, err)

	assert.EqualValues(t, APIKeyMetadata, h.APIKey)
	assert.EqualValues(t, 1, h.APIVersion)
	assert.EqualValues(t, 42, h.CorrelationID)
	assert.Equal(t, "test-client", h.ClientID)
}

func TestUVarIntRoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 127, 128, 300, 1 << 20} {
		e := NewEncoder()
		e.WriteUVarInt(v)

		d := NewDecoder(bytes.NewReader(e.Bytes()))
		got, err := d.ReadUVarInt()
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}
