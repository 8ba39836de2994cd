package protocol

// ============================================================================
// ApiVersions (API Key 18)
// Supported versions: 0-3
// ============================================================================

// ----------------------------------------------------------------------------
// Request
// ----------------------------------------------------------------------------

type ApiVersionsRequest struct {
	ClientSoftwareName    string // v3+
	ClientSoftwareVersion string // v3+
}

// Request Readers

func (r *ApiVersionsRequest) readClientInfo(d *Decoder) {
	r.ClientSoftwareName, _ = d.ReadCompactString()
	r.ClientSoftwareVersion, _ = d.ReadCompactString()
	d.ReadUVarInt() // tagged fields
}

// Decode - the recipe

func DecodeApiVersionsRequest(d *Decoder, v int16) (*ApiVersionsRequest, error) {
	r := &ApiVersionsRequest{}

	// v0-v2: empty request body
	if v >= 3 {
		r.readClientInfo(d)                     // v3+
	}

	return r, nil
}

// ----------------------------------------------------------------------------
// Response
// ----------------------------------------------------------------------------

type ApiVersionsResponse struct {
	ErrorCode      int16
	ApiVersions    []ApiVersion
	ThrottleTimeMs int32 // v1+
}

// Response Writers

func (r *ApiVersionsResponse) writeErrorCode(e *Encoder) {
	e.WriteInt16(r.ErrorCode)
}

func (r *ApiVersionsResponse) writeApiVersions(e *Encoder) {
	e.WriteArrayLen(len(r.ApiVersions))

	for _, v := range r.ApiVersions {
		e.WriteInt16(v.APIKey)
		e.WriteInt16(v.MinVersion)
		e.WriteInt16(v.MaxVersion)
	}
}

func (r *ApiVersionsResponse) writeApiVersionsCompact(e *Encoder) {
	e.WriteCompactArrayLen(len(r.ApiVersions))

	for _, v := range r.ApiVersions {
		e.WriteInt16(v.APIKey)
		e.WriteInt16(v.MinVersion)
		e.WriteInt16(v.MaxVersion)
		e.WriteEmptyTaggedFields()              // per-entry tagged fields
	}
}

func (r *ApiVersionsResponse) writeThrottleTime(e *Encoder) {
	e.WriteInt32(r.ThrottleTimeMs)
}

// Encode - the recipe

func EncodeApiVersionsResponse(e *Encoder, v int16, r *ApiVersionsResponse) {
	r.writeErrorCode(e)                         // v0+

	if v >= 3 {
		r.writeApiVersionsCompact(e)            // v3+ compact
		r.writeThrottleTime(e)                  // v3+ (moved after api_keys)
		e.WriteEmptyTaggedFields()              // v3+ response tagged fields
	} else {
		r.writeApiVersions(e)                   // v0-v2 regular
		if v >= 1 {
			r.writeThrottleTime(e)              // v1+
		}
	}
}

// ----------------------------------------------------------------------------
// Helpers
// ----------------------------------------------------------------------------

// DefaultApiVersions returns the list of API versions this broker
// advertises. The range per key is deliberately narrow: it is exactly
// what the handlers in internal/server implement, not the widest range
// the wire encoders in this package are capable of decoding.
func DefaultApiVersions() []ApiVersion {
	return []ApiVersion{
		{APIKey: 0, MinVersion: 0, MaxVersion: 2},   // Produce
		{APIKey: 1, MinVersion: 0, MaxVersion: 3},   // Fetch
		{APIKey: 2, MinVersion: 0, MaxVersion: 1},   // ListOffsets
		{APIKey: 3, MinVersion: 0, MaxVersion: 2},   // Metadata
		{APIKey: 4, MinVersion: 0, MaxVersion: 0},   // LeaderAndIsr (stub)
		{APIKey: 5, MinVersion: 0, MaxVersion: 0},   // StopReplica (stub)
		{APIKey: 6, MinVersion: 0, MaxVersion: 3},   // UpdateMetadata (stub)
		{APIKey: 7, MinVersion: 1, MaxVersion: 1},   // ControlledShutdown (stub)
		{APIKey: APIKeyOffsetCommit, MinVersion: 0, MaxVersion: 2},
		{APIKey: APIKeyOffsetFetch, MinVersion: 0, MaxVersion: 2},
		{APIKey: APIKeyFindCoordinator, MinVersion: 0, MaxVersion: 0},
		{APIKey: APIKeyJoinGroup, MinVersion: 0, MaxVersion: 1},
		{APIKey: APIKeyHeartbeat, MinVersion: 0, MaxVersion: 0},
		{APIKey: APIKeyLeaveGroup, MinVersion: 0, MaxVersion: 0},
		{APIKey: APIKeySyncGroup, MinVersion: 0, MaxVersion: 0},
		{APIKey: 15, MinVersion: 0, MaxVersion: 0}, // DescribeGroups (stub)
		{APIKey: 16, MinVersion: 0, MaxVersion: 0}, // ListGroups (stub)
		{APIKey: 17, MinVersion: 0, MaxVersion: 0}, // SaslHandshake (stub)
		{APIKey: APIKeyApiVersions, MinVersion: 0, MaxVersion: 0},
		{APIKey: APIKeyCreateTopics, MinVersion: 0, MaxVersion: 1},
		{APIKey: 20, MinVersion: 0, MaxVersion: 0}, // DeleteTopics (stub)
	}
}
