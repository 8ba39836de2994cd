package protocol

// ============================================================================
// JoinGroup (API Key 11)
// Supported versions: 0-1
// ============================================================================

// ----------------------------------------------------------------------------
// Request
// ----------------------------------------------------------------------------

type JoinGroupRequest struct {
	GroupID          string
	SessionTimeoutMs int32
	RebalanceTimeout int32 // v1+
	MemberID         string
	ProtocolType     string
	Protocols        []JoinGroupRequestProtocol
}

type JoinGroupRequestProtocol struct {
	Name     string
	Metadata []byte
}

// Request Readers

func (r *JoinGroupRequest) readGroupID(d *Decoder) {
	r.GroupID, _ = d.ReadString()
}

func (r *JoinGroupRequest) readSessionTimeout(d *Decoder) {
	r.SessionTimeoutMs, _ = d.ReadInt32()
}

func (r *JoinGroupRequest) readRebalanceTimeout(d *Decoder) {
	r.RebalanceTimeout, _ = d.ReadInt32()
}

func (r *JoinGroupRequest) readMemberID(d *Decoder) {
	r.MemberID, _ = d.ReadString()
}

func (r *JoinGroupRequest) readProtocolType(d *Decoder) {
	r.ProtocolType, _ = d.ReadString()
}

func (r *JoinGroupRequest) readProtocols(d *Decoder) {
	count, _ := d.ReadInt32()
	r.Protocols = make([]JoinGroupRequestProtocol, count)

	for i := range r.Protocols {
		r.Protocols[i].Name, _ = d.ReadString()
		r.Protocols[i].Metadata, _ = d.ReadBytes()
	}
}

// Decode - the recipe

func DecodeJoinGroupRequest(d *Decoder, v int16) (*JoinGroupRequest, error) {
	r := &JoinGroupRequest{}

	r.readGroupID(d)        // v0+
	r.readSessionTimeout(d) // v0+
	if v >= 1 {
		r.readRebalanceTimeout(d) // v1+
	}
	r.readMemberID(d)     // v0+
	r.readProtocolType(d) // v0+
	r.readProtocols(d)    // v0+

	return r, nil
}

// ----------------------------------------------------------------------------
// Response
// ----------------------------------------------------------------------------

type JoinGroupResponse struct {
	ErrorCode    int16
	GenerationID int32
	ProtocolName string
	LeaderID     string
	MemberID     string
	Members      []JoinGroupResponseMember
}

type JoinGroupResponseMember struct {
	MemberID string
	Metadata []byte
}

// Response Writers

func (r *JoinGroupResponse) writeErrorCode(e *Encoder) {
	e.WriteInt16(r.ErrorCode)
}

func (r *JoinGroupResponse) writeGenerationID(e *Encoder) {
	e.WriteInt32(r.GenerationID)
}

func (r *JoinGroupResponse) writeProtocolName(e *Encoder) {
	e.WriteString(r.ProtocolName)
}

func (r *JoinGroupResponse) writeLeaderAndMember(e *Encoder) {
	e.WriteString(r.LeaderID)
	e.WriteString(r.MemberID)
}

func (r *JoinGroupResponse) writeMembers(e *Encoder) {
	e.WriteArrayLen(len(r.Members))

	for _, m := range r.Members {
		m.writeTo(e)
	}
}

func (m *JoinGroupResponseMember) writeTo(e *Encoder) {
	e.WriteString(m.MemberID)
	e.WriteBytes(m.Metadata)
}

// Encode - the recipe

func EncodeJoinGroupResponse(e *Encoder, v int16, r *JoinGroupResponse) {
	r.writeErrorCode(e)       // v0+
	r.writeGenerationID(e)    // v0+
	r.writeProtocolName(e)    // v0+
	r.writeLeaderAndMember(e) // v0+
	r.writeMembers(e)         // v0+
}
