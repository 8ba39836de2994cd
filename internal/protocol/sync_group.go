package protocol

// ============================================================================
// SyncGroup (API Key 14)
// Supported versions: 0
// ============================================================================

// ----------------------------------------------------------------------------
// Request
// ----------------------------------------------------------------------------

type SyncGroupRequest struct {
	GroupID      string
	GenerationID int32
	MemberID     string
	Assignments  []SyncGroupRequestAssignment
}

type SyncGroupRequestAssignment struct {
	MemberID   string
	Assignment []byte
}

// Request Readers

func (r *SyncGroupRequest) readGroupID(d *Decoder) {
	r.GroupID, _ = d.ReadString()
}

func (r *SyncGroupRequest) readGenerationID(d *Decoder) {
	r.GenerationID, _ = d.ReadInt32()
}

func (r *SyncGroupRequest) readMemberID(d *Decoder) {
	r.MemberID, _ = d.ReadString()
}

func (r *SyncGroupRequest) readAssignments(d *Decoder) {
	count, _ := d.ReadInt32()
	r.Assignments = make([]SyncGroupRequestAssignment, count)

	for i := range r.Assignments {
		r.Assignments[i].MemberID, _ = d.ReadString()
		r.Assignments[i].Assignment, _ = d.ReadBytes()
	}
}

// Decode - the recipe

func DecodeSyncGroupRequest(d *Decoder, v int16) (*SyncGroupRequest, error) {
	r := &SyncGroupRequest{}

	r.readGroupID(d)      // v0
	r.readGenerationID(d) // v0
	r.readMemberID(d)     // v0
	r.readAssignments(d)  // v0

	return r, nil
}

// ----------------------------------------------------------------------------
// Response
// ----------------------------------------------------------------------------

type SyncGroupResponse struct {
	ErrorCode  int16
	Assignment []byte
}

// Response Writers

func (r *SyncGroupResponse) writeErrorCode(e *Encoder) {
	e.WriteInt16(r.ErrorCode)
}

func (r *SyncGroupResponse) writeAssignment(e *Encoder) {
	e.WriteBytes(r.Assignment)
}

// Encode - the recipe

func EncodeSyncGroupResponse(e *Encoder, v int16, r *SyncGroupResponse) {
	r.writeErrorCode(e)  // v0
	r.writeAssignment(e) // v0
}
