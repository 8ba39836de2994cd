package protocol

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJoinGroupRequestV1IncludesRebalanceTimeout(t *testing.T) {
	e := NewEncoder()
	e.WriteString("consumers")
	e.WriteInt32(10000) // session timeout
	e.WriteInt32(20000) // rebalance timeout (v1+)
	e.WriteString("member-1")
	e.WriteString("range")
	e.WriteArrayLen(1)
	e.WriteString("range")
	e.WriteBytes([]byte("meta"))

	d := NewDecoder(bytes.NewReader(e.Bytes()))
	req, err := DecodeJoinGroupRequest(d, 1)
	require.NoError(t, err)

	assert.Equal(t, "consumers", req.GroupID)
	assert.EqualValues(t, 20000, req.RebalanceTimeout)
	assert.Equal(t, "member-1", req.MemberID)
	require.Len(t, req.Protocols, 1)
	assert.Equal(t, "range", req.Protocols[0].Name)
	assert.Equal(t, []byte("meta"), req.Protocols[0].Metadata)
}

func TestDecodeJoinGroupRequestV0OmitsRebalanceTimeout(t *testing.T) {
	e := NewEncoder()
	e.WriteString("consumers")
	e.WriteInt32(10000) // session timeout
	e.WriteString("member-1")
	e.WriteString("range")
	e.WriteArrayLen(0)

	d := NewDecoder(bytes.NewReader(e.Bytes()))
	req, err := DecodeJoinGroupRequest(d, 0)
	require.NoError(t, err)

	assert.Equal(t, "consumers", req.GroupID)
	assert.Zero(t, req.RebalanceTimeout)
	assert.Equal(t, "member-1", req.MemberID)
}

func TestEncodeJoinGroupResponseV0OmitsProtocolType(t *testing.T) {
	resp := &JoinGroupResponse{
		ErrorCode:    ErrNone,
		GenerationID: 1,
		ProtocolName: "range",
		LeaderID:     "member-1",
		MemberID:     "member-1",
		Members: []JoinGroupResponseMember{
			{MemberID: "member-1", Metadata: []byte("meta")},
		},
	}

	e := NewEncoder()
	EncodeJoinGroupResponse(e, 0, resp)
	d := NewDecoder(bytes.NewReader(e.Bytes()))

	errCode, err := d.ReadInt16()
	require.NoError(t, err)
	assert.EqualValues(t, ErrNone, errCode)

	gen, err := d.ReadInt32()
	require.NoError(t, err)
	assert.EqualValues(t, 1, gen)

	protoName, err := d.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "range", protoName)

	leader, err := d.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "member-1", leader)

	member, err := d.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "member-1", member)

	count, err := d.ReadInt32()
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	memberID, err := d.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "member-1", memberID)

	metadata, err := d.ReadBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("meta"), metadata)
}
