package protocol

// ============================================================================
// LeaveGroup (API Key 13)
// Supported versions: 0
// ============================================================================

// ----------------------------------------------------------------------------
// Request
// ----------------------------------------------------------------------------

type LeaveGroupRequest struct {
	GroupID  string
	MemberID string
}

// Request Readers

func (r *LeaveGroupRequest) readGroupID(d *Decoder) {
	r.GroupID, _ = d.ReadString()
}

func (r *LeaveGroupRequest) readMemberID(d *Decoder) {
	r.MemberID, _ = d.ReadString()
}

// Decode - the recipe

func DecodeLeaveGroupRequest(d *Decoder, v int16) (*LeaveGroupRequest, error) {
	r := &LeaveGroupRequest{}

	r.readGroupID(d)  // v0
	r.readMemberID(d) // v0

	return r, nil
}

// ----------------------------------------------------------------------------
// Response
// ----------------------------------------------------------------------------

type LeaveGroupResponse struct {
	ErrorCode int16
}

// Response Writers

func (r *LeaveGroupResponse) writeErrorCode(e *Encoder) {
	e.WriteInt16(r.ErrorCode)
}

// Encode - the recipe

func EncodeLeaveGroupResponse(e *Encoder, v int16, r *LeaveGroupResponse) {
	r.writeErrorCode(e) // v0
}
