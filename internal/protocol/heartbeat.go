package protocol

// ============================================================================
// Heartbeat (API Key 12)
// Supported versions: 0
// ============================================================================

// ----------------------------------------------------------------------------
// Request
// ----------------------------------------------------------------------------

type HeartbeatRequest struct {
	GroupID      string
	GenerationID int32
	MemberID     string
}

// Request Readers

func (r *HeartbeatRequest) readGroupID(d *Decoder) {
	r.GroupID, _ = d.ReadString()
}

func (r *HeartbeatRequest) readGenerationID(d *Decoder) {
	r.GenerationID, _ = d.ReadInt32()
}

func (r *HeartbeatRequest) readMemberID(d *Decoder) {
	r.MemberID, _ = d.ReadString()
}

// Decode - the recipe

func DecodeHeartbeatRequest(d *Decoder, v int16) (*HeartbeatRequest, error) {
	r := &HeartbeatRequest{}

	r.readGroupID(d)      // v0
	r.readGenerationID(d) // v0
	r.readMemberID(d)     // v0

	return r, nil
}

// ----------------------------------------------------------------------------
// Response
// ----------------------------------------------------------------------------

type HeartbeatResponse struct {
	ErrorCode int16
}

// Response Writers

func (r *HeartbeatResponse) writeErrorCode(e *Encoder) {
	e.WriteInt16(r.ErrorCode)
}

// Encode - the recipe

func EncodeHeartbeatResponse(e *Encoder, v int16, r *HeartbeatResponse) {
	r.writeErrorCode(e) // v0
}
