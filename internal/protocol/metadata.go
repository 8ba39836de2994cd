package protocol

// ============================================================================
// Metadata (API Key 3)
// Supported versions: 0-2
// ============================================================================

// ----------------------------------------------------------------------------
// Request
// ----------------------------------------------------------------------------

type MetadataRequest struct {
	Topics []string // nil = all topics
}

// Request Readers

func (r *MetadataRequest) readTopics(d *Decoder) {
	count, _ := d.ReadInt32()

	if count > 0 {
		r.Topics = make([]string, count)
		for i := range r.Topics {
			r.Topics[i], _ = d.ReadString()
		}
	} else if count == -1 {
		r.Topics = nil // all topics
	}
}

// Decode - the recipe

func DecodeMetadataRequest(d *Decoder, v int16) (*MetadataRequest, error) {
	r := &MetadataRequest{}

	r.readTopics(d) // v0+

	return r, nil
}

// ----------------------------------------------------------------------------
// Response
// ----------------------------------------------------------------------------

type MetadataResponse struct {
	Brokers      []MetadataBroker
	ClusterID    *string // v2+
	ControllerID int32   // v1+
	Topics       []MetadataTopic
}

type MetadataBroker struct {
	NodeID int32
	Host   string
	Port   int32
	Rack   *string // v1+
}

type MetadataTopic struct {
	ErrorCode  int16
	Name       string
	IsInternal bool // v1+
	Partitions []MetadataPartition
}

type MetadataPartition struct {
	ErrorCode       int16
	PartitionIndex  int32
	LeaderID        int32
	ReplicaNodes    []int32
	IsrNodes        []int32
	OfflineReplicas []int32 // v5+ only; not written by the v0-2 encoder
}

// Response Writers

func (r *MetadataResponse) writeBrokers(e *Encoder, version int16) {
	e.WriteArrayLen(len(r.Brokers))

	for _, b := range r.Brokers {
		b.writeTo(e, version)
	}
}

func (b *MetadataBroker) writeTo(e *Encoder, version int16) {
	e.WriteInt32(b.NodeID)
	e.WriteString(b.Host)
	e.WriteInt32(b.Port)

	if version >= 1 {
		e.WriteNullableString(b.Rack) // v1+
	}
}

func (r *MetadataResponse) writeClusterID(e *Encoder) {
	e.WriteNullableString(r.ClusterID)
}

func (r *MetadataResponse) writeControllerID(e *Encoder) {
	e.WriteInt32(r.ControllerID)
}

func (r *MetadataResponse) writeTopics(e *Encoder, version int16) {
	e.WriteArrayLen(len(r.Topics))

	for _, t := range r.Topics {
		t.writeTo(e, version)
	}
}

func (t *MetadataTopic) writeTo(e *Encoder, version int16) {
	e.WriteInt16(t.ErrorCode)
	e.WriteString(t.Name)

	if version >= 1 {
		e.WriteBool(t.IsInternal) // v1+
	}

	e.WriteArrayLen(len(t.Partitions))
	for _, p := range t.Partitions {
		p.writeTo(e)
	}
}

func (p *MetadataPartition) writeTo(e *Encoder) {
	e.WriteInt16(p.ErrorCode)
	e.WriteInt32(p.PartitionIndex)
	e.WriteInt32(p.LeaderID)

	e.WriteArrayLen(len(p.ReplicaNodes))
	for _, r := range p.ReplicaNodes {
		e.WriteInt32(r)
	}

	e.WriteArrayLen(len(p.IsrNodes))
	for _, r := range p.IsrNodes {
		e.WriteInt32(r)
	}
}

// Encode - the recipe

func EncodeMetadataResponse(e *Encoder, v int16, r *MetadataResponse) {
	r.writeBrokers(e, v) // v0+
	if v >= 2 {
		r.writeClusterID(e) // v2+
	}
	if v >= 1 {
		r.writeControllerID(e) // v1+
	}
	r.writeTopics(e, v) // v0+
}
