package protocol

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeOffsetCommitRequestV2IncludesRetentionTime(t *testing.T) {
	e := NewEncoder()
	e.WriteString("consumers")
	e.WriteInt32(3) // generation id
	e.WriteString("member-1")
	e.WriteInt64(86400000) // retention time ms, v2-v4 only
	e.WriteArrayLen(1)
	e.WriteString("orders")
	e.WriteArrayLen(1)
	e.WriteInt32(0)    // partition index
	e.WriteInt64(42)   // committed offset
	e.WriteNullableString(nil)

	d := NewDecoder(bytes.NewReader(e.Bytes()))
	req, err := DecodeOffsetCommitRequest(d, 2)
	require.NoError(t, err)

	assert.Equal(t, "consumers", req.GroupID)
	assert.EqualValues(t, 3, req.GenerationID)
	assert.EqualValues(t, 86400000, req.RetentionTimeMs)
	require.Len(t, req.Topics, 1)
	assert.Equal(t, "orders", req.Topics[0].Name)
	assert.EqualValues(t, 42, req.Topics[0].Partitions[0].CommittedOffset)
}

func TestDecodeOffsetCommitRequestV0SkipsMemberAndRetentionFields(t *testing.T) {
	e := NewEncoder()
	e.WriteString("consumers")
	e.WriteArrayLen(1)
	e.WriteString("orders")
	e.WriteArrayLen(1)
	e.WriteInt32(0)
	e.WriteInt64(7)
	e.WriteNullableString(nil)

	d := NewDecoder(bytes.NewReader(e.Bytes()))
	req, err := DecodeOffsetCommitRequest(d, 0)
	require.NoError(t, err)

	assert.Equal(t, "consumers", req.GroupID)
	assert.Empty(t, req.MemberID)
	assert.EqualValues(t, 0, req.RetentionTimeMs)
	assert.EqualValues(t, 7, req.Topics[0].Partitions[0].CommittedOffset)
}

func TestEncodeOffsetCommitResponseV2WritesTopicsDirectly(t *testing.T) {
	resp := &OffsetCommitResponse{
		Topics: []OffsetCommitResponseTopic{
			{Name: "orders", Partitions: []OffsetCommitResponsePartition{{Index: 0, ErrorCode: ErrNone}}},
		},
	}

	e := NewEncoder()
	EncodeOffsetCommitResponse(e, 2, resp)
	d := NewDecoder(bytes.NewReader(e.Bytes()))

	topicCount, err := d.ReadInt32()
	require.NoError(t, err)
	require.EqualValues(t, 1, topicCount)

	name, err := d.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "orders", name)
}
