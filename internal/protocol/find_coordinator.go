package protocol

// ============================================================================
// FindCoordinator (API Key 10)
// Supported versions: 0
// ============================================================================

// ----------------------------------------------------------------------------
// Request
// ----------------------------------------------------------------------------

type FindCoordinatorRequest struct {
	Key string
}

// Request Readers

func (r *FindCoordinatorRequest) readKey(d *Decoder) {
	r.Key, _ = d.ReadString()
}

// Decode - the recipe

func DecodeFindCoordinatorRequest(d *Decoder, v int16) (*FindCoordinatorRequest, error) {
	r := &FindCoordinatorRequest{}

	r.readKey(d) // v0

	return r, nil
}

// ----------------------------------------------------------------------------
// Response
// ----------------------------------------------------------------------------

type FindCoordinatorResponse struct {
	ErrorCode int16
	NodeID    int32
	Host      string
	Port      int32
}

// Response Writers

func (r *FindCoordinatorResponse) writeErrorCode(e *Encoder) {
	e.WriteInt16(r.ErrorCode)
}

func (r *FindCoordinatorResponse) writeCoordinator(e *Encoder) {
	e.WriteInt32(r.NodeID)
	e.WriteString(r.Host)
	e.WriteInt32(r.Port)
}

// Encode - the recipe

func EncodeFindCoordinatorResponse(e *Encoder, v int16, r *FindCoordinatorResponse) {
	r.writeErrorCode(e)   // v0
	r.writeCoordinator(e) // v0
}
